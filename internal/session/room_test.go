package session

import (
	"errors"
	"testing"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

func TestRoomAppliesOperations(t *testing.T) {
	r := NewRoom("proj_test", diagram.New(geometry.Point{}))

	seq, laneID, err := r.Apply(Operation{Type: OpSwimlaneAdd, Label: "Product", Angle: 0})
	if err != nil {
		t.Fatal(err)
	}
	if seq != 1 || laneID == 0 {
		t.Fatalf("seq = %d, laneID = %d", seq, laneID)
	}

	seq, outcomeID, err := r.Apply(Operation{Type: OpOutcomeAdd, SwimlaneID: laneID, Distance: 100, Label: "Launch"})
	if err != nil {
		t.Fatal(err)
	}
	if seq != 2 || outcomeID == 0 {
		t.Fatalf("seq = %d, outcomeID = %d", seq, outcomeID)
	}

	_, lane2, err := r.Apply(Operation{Type: OpSwimlaneAdd, Label: "Engineering", Angle: 90})
	if err != nil {
		t.Fatal(err)
	}
	_, outcome2, err := r.Apply(Operation{Type: OpOutcomeAdd, SwimlaneID: lane2, Distance: 150, Label: "Scale"})
	if err != nil {
		t.Fatal(err)
	}

	_, blobID, err := r.Apply(Operation{Type: OpBlobConnect, StartOutcomeID: outcomeID, EndOutcomeID: outcome2})
	if err != nil {
		t.Fatal(err)
	}
	if blobID == 0 {
		t.Fatal("no blob id returned")
	}

	doc := r.Document()
	if len(doc.Swimlanes) != 2 || len(doc.Blobs) != 1 {
		t.Errorf("document has %d swimlanes, %d blobs", len(doc.Swimlanes), len(doc.Blobs))
	}
}

func TestRoomRejectsBadOperations(t *testing.T) {
	r := NewRoom("proj_test", diagram.New(geometry.Point{}))
	if _, _, err := r.Apply(Operation{Type: OpSwimlaneAdd, Label: "A"}); err != nil {
		t.Fatal(err)
	}
	before := r.ServerSeq()

	tests := []struct {
		name string
		op   Operation
	}{
		{"duplicate label", Operation{Type: OpSwimlaneAdd, Label: "A"}},
		{"unknown swimlane", Operation{Type: OpOutcomeAdd, SwimlaneID: 999, Distance: 50}},
		{"unknown kind", Operation{Type: OpEntityRemove, Kind: "widget", TargetID: 1}},
		{"bad color", Operation{Type: OpEntityRecolor, Kind: diagram.KindSwimlane, TargetID: 1, Color: "red"}},
		{"unknown op type", Operation{Type: "widget.spin"}},
		{"too few blob points", Operation{Type: OpBlobDraw, Points: [][2]float64{{0, 0}, {1, 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := r.Apply(tt.op); err == nil {
				t.Fatal("operation accepted")
			}
			if r.ServerSeq() != before {
				t.Error("rejected operation advanced the sequence")
			}
		})
	}
}

func TestRoomUndoRedo(t *testing.T) {
	r := NewRoom("proj_test", diagram.New(geometry.Point{}))
	if _, _, err := r.Apply(Operation{Type: OpSwimlaneAdd, Label: "A"}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := r.Apply(Operation{Type: OpHistoryUndo}); err != nil {
		t.Fatal(err)
	}
	if len(r.Document().Swimlanes) != 0 {
		t.Error("undo did not remove the swimlane")
	}
	if _, _, err := r.Apply(Operation{Type: OpHistoryRedo}); err != nil {
		t.Fatal(err)
	}
	if len(r.Document().Swimlanes) != 1 {
		t.Error("redo did not restore the swimlane")
	}

	// Undo past the bottom nacks without advancing.
	if _, _, err := r.Apply(Operation{Type: OpHistoryUndo}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Apply(Operation{Type: OpHistoryUndo}); err == nil {
		t.Error("undo on empty history accepted")
	}
}

func TestRoomDirtyTracking(t *testing.T) {
	r := NewRoom("proj_test", diagram.New(geometry.Point{}))
	if r.TakeDirty() {
		t.Error("fresh room is dirty")
	}
	if _, _, err := r.Apply(Operation{Type: OpSwimlaneAdd, Label: "A"}); err != nil {
		t.Fatal(err)
	}
	if !r.TakeDirty() {
		t.Error("mutated room is clean")
	}
	if r.TakeDirty() {
		t.Error("dirty flag not cleared by TakeDirty")
	}

	if _, _, err := r.Apply(Operation{Type: OpSwimlaneAdd, Label: "A"}); !errors.Is(err, diagram.ErrSwimlaneExists) {
		t.Fatalf("expected duplicate-label error, got %v", err)
	}
	if r.TakeDirty() {
		t.Error("rejected operation marked the room dirty")
	}
}
