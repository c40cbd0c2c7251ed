// Package geometry holds the pure coordinate math shared by the diagram
// model, the editor, and the PNG exporter. Angles are in degrees measured
// from the diagram center; distances are scene units.
package geometry

import (
	"errors"
	"math"
)

// ErrDegenerateGeometry is returned when a path computation would collapse
// to a zero-area shape (coincident swimlane angles, zero-length segment).
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Point is a Cartesian position in scene coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// blobArcSteps is the number of interpolation steps along the outer arc of
// a wedge path. Matches the visual smoothness of the original editor.
const blobArcSteps = 30

// Inner radius of a wedge blob, keeping the shape clear of the center hub.
const wedgeInnerRadius = 30.0

// PointAtAngleDistance returns the point at the given angle (degrees) and
// distance from center.
func PointAtAngleDistance(center Point, angleDeg, distance float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{
		X: center.X + distance*math.Cos(rad),
		Y: center.Y + distance*math.Sin(rad),
	}
}

// NormalizeAngle maps any angle into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// BlobPath computes the wedge-shaped polygon for a scope blob spanning two
// swimlanes. The path runs center → inner arc at the start angle → outer arc
// sweeping start to end → inner arc at the end angle → center, closed. The
// sweep is always non-negative and at most a full turn: when the raw end
// angle is numerically below the start angle, a full turn is added before
// interpolating.
func BlobPath(center Point, startAngleDeg, endAngleDeg, startDist, endDist float64) ([]Point, error) {
	if NormalizeAngle(startAngleDeg) == NormalizeAngle(endAngleDeg) {
		return nil, ErrDegenerateGeometry
	}

	start := startAngleDeg * math.Pi / 180
	end := endAngleDeg * math.Pi / 180
	if end < start {
		end += 2 * math.Pi
	}

	outer := math.Max(startDist, endDist)
	if outer <= wedgeInnerRadius {
		return nil, ErrDegenerateGeometry
	}

	pts := make([]Point, 0, blobArcSteps+5)
	pts = append(pts, center)
	pts = append(pts, Point{
		X: center.X + wedgeInnerRadius*math.Cos(start),
		Y: center.Y + wedgeInnerRadius*math.Sin(start),
	})
	for i := 0; i <= blobArcSteps; i++ {
		t := float64(i) / blobArcSteps
		a := start*(1-t) + end*t
		pts = append(pts, Point{
			X: center.X + outer*math.Cos(a),
			Y: center.Y + outer*math.Sin(a),
		})
	}
	pts = append(pts, Point{
		X: center.X + wedgeInnerRadius*math.Cos(end),
		Y: center.Y + wedgeInnerRadius*math.Sin(end),
	})
	pts = append(pts, center)

	return pts, nil
}

// RibbonPath computes a straight four-corner ribbon of the given width
// between two points. Used for blobs drawn directly between outcome
// positions rather than swept around the center.
func RibbonPath(a, b Point, width float64) ([]Point, error) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-3 {
		return nil, ErrDegenerateGeometry
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	return []Point{
		{X: a.X + px, Y: a.Y + py},
		{X: b.X + px, Y: b.Y + py},
		{X: b.X - px, Y: b.Y - py},
		{X: a.X - px, Y: a.Y - py},
	}, nil
}

// DistanceToSegment returns the distance from p to the segment ab. The
// projection parameter is clamped to [0,1] so points beyond either end
// measure against the nearest endpoint.
func DistanceToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj := Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return math.Hypot(p.X-proj.X, p.Y-proj.Y)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PolygonContains reports whether p lies inside the polygon using the
// odd-even fill rule.
func PolygonContains(polygon []Point, p Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
