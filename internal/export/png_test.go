package export

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
)

func TestRenderPNGSampleDiagram(t *testing.T) {
	r := NewRenderer(800, 800)
	doc := diagram.Encode(diagram.NewSampleDiagram())

	data, err := r.RenderPNG(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty output")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 800 {
		t.Errorf("image size = %dx%d, want 800x800", bounds.Dx(), bounds.Dy())
	}

	// The sample diagram has colored content; at least one pixel should
	// differ from the white background.
	colored := false
	for x := bounds.Min.X; x < bounds.Max.X && !colored; x += 8 {
		for y := bounds.Min.Y; y < bounds.Max.Y; y += 8 {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr != 0xFFFF || cg != 0xFFFF || cb != 0xFFFF {
				colored = true
				break
			}
		}
	}
	if !colored {
		t.Error("rendered image is entirely white")
	}
}

func TestRenderPNGEmptyDiagram(t *testing.T) {
	r := NewRenderer(400, 400)
	doc := &diagram.Document{}
	if _, err := r.RenderPNG(doc); !errors.Is(err, ErrEmptyDiagram) {
		t.Errorf("got %v, want ErrEmptyDiagram", err)
	}
}
