package diagram

import (
	"errors"
	"math"
	"testing"

	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

func mustSwimlane(t *testing.T, d *Diagram, label string, angle float64) *Swimlane {
	t.Helper()
	s, err := d.AddSwimlane(label, angle, DefaultPalette[0], 0)
	if err != nil {
		t.Fatalf("AddSwimlane(%q): %v", label, err)
	}
	return s
}

func mustOutcome(t *testing.T, d *Diagram, swimlaneID int64, distance float64, label string) *Outcome {
	t.Helper()
	o, err := d.AddOutcome(swimlaneID, distance, label)
	if err != nil {
		t.Fatalf("AddOutcome(%q): %v", label, err)
	}
	return o
}

func TestAddSwimlaneDefaults(t *testing.T) {
	d := New(geometry.Point{})
	s := mustSwimlane(t, d, "Product", 45)

	if s.ID == 0 {
		t.Error("swimlane got zero id")
	}
	if s.Length != DefaultSwimlaneLength {
		t.Errorf("length = %v, want default %v", s.Length, DefaultSwimlaneLength)
	}
}

func TestAddSwimlaneDuplicateLabel(t *testing.T) {
	d := New(geometry.Point{})
	mustSwimlane(t, d, "Product", 0)

	if _, err := d.AddSwimlane("Product", 90, DefaultPalette[1], 0); !errors.Is(err, ErrSwimlaneExists) {
		t.Errorf("expected ErrSwimlaneExists, got %v", err)
	}
	if len(d.Swimlanes()) != 1 {
		t.Errorf("failed add must leave the model unchanged, have %d swimlanes", len(d.Swimlanes()))
	}
}

func TestAddOutcomeDerivesPosition(t *testing.T) {
	d := New(geometry.Point{})
	a := mustSwimlane(t, d, "A", 0)
	b := mustSwimlane(t, d, "B", 90)

	launch := mustOutcome(t, d, a.ID, 100, "Launch")
	scale := mustOutcome(t, d, b.ID, 100, "Scale")

	if math.Abs(launch.Position.X-100) > 1e-9 || math.Abs(launch.Position.Y) > 1e-9 {
		t.Errorf("Launch position = %v, want (100, 0)", launch.Position)
	}
	if math.Abs(scale.Position.X) > 1e-9 || math.Abs(scale.Position.Y-100) > 1e-9 {
		t.Errorf("Scale position = %v, want (0, 100)", scale.Position)
	}
}

func TestAddOutcomeUnknownSwimlane(t *testing.T) {
	d := New(geometry.Point{})
	if _, err := d.AddOutcome(42, 100, "ghost"); !errors.Is(err, ErrUnknownReference) {
		t.Errorf("expected ErrUnknownReference, got %v", err)
	}
}

func TestAddOutcomeNegativeDistance(t *testing.T) {
	d := New(geometry.Point{})
	s := mustSwimlane(t, d, "A", 0)
	if _, err := d.AddOutcome(s.ID, -5, "bad"); !errors.Is(err, ErrInvalidDistance) {
		t.Errorf("expected ErrInvalidDistance, got %v", err)
	}
}

func TestRecomputeAfterLengthChangeKeepsOutcomePositions(t *testing.T) {
	d := New(geometry.Point{})
	s := mustSwimlane(t, d, "A", 30)
	o := mustOutcome(t, d, s.ID, 150, "milestone")
	before := o.Position

	// Length does not enter the outcome position math; only angle and
	// distance do.
	if err := d.SetSwimlanePlacement(s.ID, s.Angle, 400); err != nil {
		t.Fatalf("SetSwimlanePlacement: %v", err)
	}
	if o.Position != before {
		t.Errorf("position changed after length-only change: %v -> %v", before, o.Position)
	}
}

func TestRecomputeAfterAngleChange(t *testing.T) {
	d := New(geometry.Point{})
	s := mustSwimlane(t, d, "A", 0)
	o := mustOutcome(t, d, s.ID, 100, "milestone")

	if err := d.SetSwimlanePlacement(s.ID, 90, s.Length); err != nil {
		t.Fatalf("SetSwimlanePlacement: %v", err)
	}

	want := geometry.PointAtAngleDistance(d.Center, 90, 100)
	if math.Abs(o.Position.X-want.X) > 1e-9 || math.Abs(o.Position.Y-want.Y) > 1e-9 {
		t.Errorf("position = %v, want %v", o.Position, want)
	}
}

func TestBlobEndpointValidation(t *testing.T) {
	d := New(geometry.Point{})
	s := mustSwimlane(t, d, "A", 0)
	o := mustOutcome(t, d, s.ID, 100, "m")
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

	if _, err := d.AddBlobBetween(pts, DefaultPalette[0], "", o.ID, 999); !errors.Is(err, ErrUnknownReference) {
		t.Errorf("expected ErrUnknownReference for dangling endpoint, got %v", err)
	}
	if d.BlobCount() != 0 {
		t.Error("failed add must leave the blob list unchanged")
	}
}

func TestBlobRelationshipIndex(t *testing.T) {
	d := New(geometry.Point{})
	a := mustSwimlane(t, d, "A", 0)
	b := mustSwimlane(t, d, "B", 90)
	start := mustOutcome(t, d, a.ID, 100, "start")
	end := mustOutcome(t, d, b.ID, 100, "end")

	pts, err := geometry.BlobPath(d.Center, a.Angle, b.Angle, start.Distance, end.Distance)
	if err != nil {
		t.Fatalf("BlobPath: %v", err)
	}
	blob, err := d.AddBlobBetween(pts, DefaultPalette[0].WithAlpha(BlobAlpha), "phase", start.ID, end.ID)
	if err != nil {
		t.Fatalf("AddBlobBetween: %v", err)
	}

	for _, outcomeID := range []int64{start.ID, end.ID} {
		ids := d.BlobsAt(outcomeID)
		if len(ids) != 1 || ids[0] != blob.ID {
			t.Errorf("BlobsAt(%d) = %v, want [%d]", outcomeID, ids, blob.ID)
		}
	}

	d.RemoveBlob(blob.ID)
	if ids := d.BlobsAt(start.ID); len(ids) != 0 {
		t.Errorf("index not deregistered: BlobsAt(start) = %v", ids)
	}
}

func TestRemoveBlobIdempotent(t *testing.T) {
	d := New(geometry.Point{})
	blob, err := d.AddBlob([]geometry.Point{{}, {X: 1}, {X: 1, Y: 1}}, DefaultPalette[0], "")
	if err != nil {
		t.Fatalf("AddBlob: %v", err)
	}

	d.RemoveBlob(blob.ID)
	first := Encode(d)
	d.RemoveBlob(blob.ID)
	second := Encode(d)

	if len(first.Blobs) != 0 || len(second.Blobs) != 0 {
		t.Errorf("blob count after removals: %d then %d, want 0", len(first.Blobs), len(second.Blobs))
	}
}

func TestRemoveSwimlaneCascades(t *testing.T) {
	d := New(geometry.Point{})
	a := mustSwimlane(t, d, "A", 0)
	b := mustSwimlane(t, d, "B", 90)
	o1 := mustOutcome(t, d, a.ID, 100, "o1")
	o2 := mustOutcome(t, d, a.ID, 200, "o2")
	survivor := mustOutcome(t, d, b.ID, 100, "o3")

	pts := []geometry.Point{{}, {X: 1}, {X: 1, Y: 1}}
	if _, err := d.AddBlobBetween(pts, DefaultPalette[0], "doomed1", o1.ID, survivor.ID); err != nil {
		t.Fatalf("AddBlobBetween: %v", err)
	}
	if _, err := d.AddBlobBetween(pts, DefaultPalette[1], "doomed2", o2.ID, survivor.ID); err != nil {
		t.Fatalf("AddBlobBetween: %v", err)
	}
	keeper, err := d.AddBlob(pts, DefaultPalette[2], "freehand")
	if err != nil {
		t.Fatalf("AddBlob: %v", err)
	}

	d.RemoveSwimlane(a.ID)

	if d.Swimlane(a.ID) != nil {
		t.Error("swimlane still present")
	}
	if d.Outcome(o1.ID) != nil || d.Outcome(o2.ID) != nil {
		t.Error("cascaded outcomes still present")
	}
	if d.Outcome(survivor.ID) == nil {
		t.Error("outcome on the surviving swimlane was removed")
	}
	if d.BlobCount() != 1 || d.Blob(keeper.ID) == nil {
		t.Errorf("expected only the freehand blob to survive, have %d blobs", d.BlobCount())
	}
	if ids := d.BlobsAt(survivor.ID); len(ids) != 0 {
		t.Errorf("dangling associations on surviving outcome: %v", ids)
	}
}

func TestRemoveOutcomeRemovesEndpointBlobs(t *testing.T) {
	d := New(geometry.Point{})
	a := mustSwimlane(t, d, "A", 0)
	b := mustSwimlane(t, d, "B", 90)
	start := mustOutcome(t, d, a.ID, 100, "start")
	end := mustOutcome(t, d, b.ID, 100, "end")

	pts := []geometry.Point{{}, {X: 1}, {X: 1, Y: 1}}
	if _, err := d.AddBlobBetween(pts, DefaultPalette[0], "", start.ID, end.ID); err != nil {
		t.Fatalf("AddBlobBetween: %v", err)
	}

	d.RemoveOutcome(start.ID)

	if d.BlobCount() != 0 {
		t.Errorf("blob with removed endpoint must be deleted, have %d", d.BlobCount())
	}
	if ids := d.BlobsAt(end.ID); len(ids) != 0 {
		t.Errorf("dangling association on the other endpoint: %v", ids)
	}
	if d.Outcome(end.ID) == nil {
		t.Error("unrelated outcome removed")
	}
}

func TestRestorePreservesOrder(t *testing.T) {
	d := New(geometry.Point{})
	a := mustSwimlane(t, d, "A", 0)
	mustSwimlane(t, d, "B", 90)
	mustSwimlane(t, d, "C", 180)

	idx := d.SwimlaneIndex(a.ID)
	if idx != 0 {
		t.Fatalf("SwimlaneIndex = %d, want 0", idx)
	}

	snapshot := *a
	d.RemoveSwimlane(a.ID)
	if err := d.RestoreSwimlane(&snapshot, idx); err != nil {
		t.Fatalf("RestoreSwimlane: %v", err)
	}

	labels := make([]string, 0, 3)
	for _, s := range d.Swimlanes() {
		labels = append(labels, s.Label)
	}
	if labels[0] != "A" || labels[1] != "B" || labels[2] != "C" {
		t.Errorf("lane order after restore = %v", labels)
	}
}

func TestRestoreAdvancesAllocator(t *testing.T) {
	d := New(geometry.Point{})
	if err := d.RestoreSwimlane(&Swimlane{ID: 50, Label: "loaded", Length: 250}, -1); err != nil {
		t.Fatalf("RestoreSwimlane: %v", err)
	}

	fresh := mustSwimlane(t, d, "fresh", 10)
	if fresh.ID <= 50 {
		t.Errorf("allocator handed out id %d, must be past restored id 50", fresh.ID)
	}
}

func TestOutcomesInBlob(t *testing.T) {
	d := New(geometry.Point{})
	a := mustSwimlane(t, d, "A", 0)
	inside := mustOutcome(t, d, a.ID, 50, "inside")
	mustOutcome(t, d, a.ID, 500, "outside")

	square := []geometry.Point{{X: 0, Y: -60}, {X: 100, Y: -60}, {X: 100, Y: 60}, {X: 0, Y: 60}}
	blob, err := d.AddBlob(square, DefaultPalette[0], "")
	if err != nil {
		t.Fatalf("AddBlob: %v", err)
	}

	got := d.OutcomesInBlob(blob.ID)
	if len(got) != 1 || got[0] != inside.ID {
		t.Errorf("OutcomesInBlob = %v, want [%d]", got, inside.ID)
	}
}

func TestSetLabelKeepsSwimlaneLabelsUnique(t *testing.T) {
	d := New(geometry.Point{})
	mustSwimlane(t, d, "A", 0)
	b := mustSwimlane(t, d, "B", 90)

	if err := d.SetLabel(KindSwimlane, b.ID, "A"); !errors.Is(err, ErrSwimlaneExists) {
		t.Errorf("expected ErrSwimlaneExists, got %v", err)
	}
	// Renaming to its own label is fine.
	if err := d.SetLabel(KindSwimlane, b.ID, "B"); err != nil {
		t.Errorf("self-rename: %v", err)
	}
}
