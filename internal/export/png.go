// Package export renders diagram documents to PNG.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

var ErrEmptyDiagram = errors.New("nothing to export")

const (
	margin        = 60.0
	outcomeRadius = 6.0
	labelSize     = 14.0
)

// Renderer draws documents at a fixed output size. The diagram is centered
// and uniformly scaled to fit.
type Renderer struct {
	Width  int
	Height int
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height}
}

// RenderPNG draws the document and returns encoded PNG bytes. Blobs paint
// first so swimlanes and outcomes stay visible on top.
func (r *Renderer) RenderPNG(doc *diagram.Document) ([]byte, error) {
	if len(doc.Swimlanes) == 0 && len(doc.Blobs) == 0 {
		return nil, ErrEmptyDiagram
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(color.White)
	dc.Clear()

	face, err := labelFace()
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	scale := r.fitScale(doc)
	cx, cy := float64(r.Width)/2, float64(r.Height)/2
	tx := func(p geometry.Point) (float64, float64) {
		return cx + (p.X-doc.Center.X)*scale, cy + (p.Y-doc.Center.Y)*scale
	}

	for _, b := range doc.Blobs {
		if len(b.Points) < 3 {
			continue
		}
		dc.NewSubPath()
		for i, p := range b.Points {
			x, y := tx(geometry.Point{X: p[0], Y: p[1]})
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.SetRGBA255(int(b.Color.R), int(b.Color.G), int(b.Color.B), int(b.Color.A))
		dc.Fill()
	}

	for _, s := range doc.Swimlanes {
		end := geometry.PointAtAngleDistance(doc.Center, s.Angle, s.Length)
		x1, y1 := tx(doc.Center)
		x2, y2 := tx(end)

		dc.SetRGBA255(int(s.Color.R), int(s.Color.G), int(s.Color.B), 255)
		dc.SetLineWidth(2.5)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()

		if s.Label != "" {
			lx, ly := labelAnchor(x2, y2, cx, cy)
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(s.Label, lx, ly, 0.5, 0.5)
		}

		for _, o := range s.Outcomes {
			pos := geometry.PointAtAngleDistance(doc.Center, s.Angle, o.Distance)
			ox, oy := tx(pos)

			dc.SetRGBA255(int(s.Color.R), int(s.Color.G), int(s.Color.B), 255)
			dc.DrawCircle(ox, oy, outcomeRadius)
			dc.Fill()
			dc.SetColor(color.White)
			dc.SetLineWidth(1.5)
			dc.DrawCircle(ox, oy, outcomeRadius)
			dc.Stroke()

			if o.Label != "" {
				dc.SetColor(color.Black)
				dc.DrawStringAnchored(o.Label, ox, oy-outcomeRadius-8, 0.5, 1)
			}
		}
	}

	// Center hub.
	hx, hy := tx(doc.Center)
	dc.SetColor(color.Black)
	dc.DrawCircle(hx, hy, 4)
	dc.Fill()

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// fitScale picks the uniform scale that fits every swimlane endpoint and
// blob vertex inside the margin.
func (r *Renderer) fitScale(doc *diagram.Document) float64 {
	extent := 1.0
	grow := func(p geometry.Point) {
		d := math.Max(math.Abs(p.X-doc.Center.X), math.Abs(p.Y-doc.Center.Y))
		if d > extent {
			extent = d
		}
	}
	for _, s := range doc.Swimlanes {
		grow(geometry.PointAtAngleDistance(doc.Center, s.Angle, s.Length))
		for _, o := range s.Outcomes {
			grow(geometry.PointAtAngleDistance(doc.Center, s.Angle, o.Distance))
		}
	}
	for _, b := range doc.Blobs {
		for _, p := range b.Points {
			grow(geometry.Point{X: p[0], Y: p[1]})
		}
	}
	half := math.Min(float64(r.Width), float64(r.Height))/2 - margin
	if half < 1 {
		half = 1
	}
	return half / extent
}

// labelAnchor nudges a swimlane label past the line endpoint, away from
// the center, so the text does not sit on the stroke.
func labelAnchor(x, y, cx, cy float64) (float64, float64) {
	dx, dy := x-cx, y-cy
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return x, y - 16
	}
	const offset = 24.0
	return x + dx/length*offset, y + dy/length*offset
}

func labelFace() (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    labelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
