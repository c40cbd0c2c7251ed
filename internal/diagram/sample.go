package diagram

import "github.com/scopemap/scopemap/backend-go/internal/geometry"

// NewSampleDiagram builds the starter diagram seeded into new projects:
// four swimlanes with a few outcomes and one scope blob connecting two of
// them, enough to demonstrate every entity kind.
func NewSampleDiagram() *Diagram {
	d := New(geometry.Point{X: 0, Y: 0})

	product, _ := d.AddSwimlane("Product", 0, DefaultPalette[0], DefaultSwimlaneLength)
	engineering, _ := d.AddSwimlane("Engineering", 90, DefaultPalette[1], DefaultSwimlaneLength)
	d.AddSwimlane("Marketing", 180, DefaultPalette[2], DefaultSwimlaneLength)
	d.AddSwimlane("Operations", 270, DefaultPalette[3], DefaultSwimlaneLength)

	launch, _ := d.AddOutcome(product.ID, 100, "Launch MVP")
	d.AddOutcome(product.ID, 200, "Feature complete")
	scale, _ := d.AddOutcome(engineering.ID, 120, "Scale backend")

	points, err := geometry.BlobPath(d.Center, product.Angle, engineering.Angle, launch.Distance, scale.Distance)
	if err == nil {
		d.AddBlobBetween(points, DefaultPalette[0].WithAlpha(BlobAlpha), "Phase 1", launch.ID, scale.ID)
	}

	return d
}
