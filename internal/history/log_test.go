package history

import (
	"errors"
	"testing"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

// snapshot renders the full entity graph, ids and associations included,
// for value comparison.
func snapshot(t *testing.T, d *diagram.Diagram) string {
	t.Helper()
	data, err := diagram.MarshalJSONDocument(d)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return string(data)
}

// buildDiagram returns a diagram with two connected swimlanes: outcomes
// "start" and "end" joined by one wedge blob.
func buildDiagram(t *testing.T) (*diagram.Diagram, *diagram.Outcome, *diagram.Outcome, *diagram.ScopeBlob) {
	t.Helper()
	d := diagram.New(geometry.Point{})
	a, err := d.AddSwimlane("A", 0, diagram.DefaultPalette[0], 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := d.AddSwimlane("B", 90, diagram.DefaultPalette[1], 0)
	if err != nil {
		t.Fatal(err)
	}
	start, err := d.AddOutcome(a.ID, 100, "start")
	if err != nil {
		t.Fatal(err)
	}
	end, err := d.AddOutcome(b.ID, 150, "end")
	if err != nil {
		t.Fatal(err)
	}
	pts, err := geometry.BlobPath(d.Center, a.Angle, b.Angle, start.Distance, end.Distance)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := d.AddBlobBetween(pts, diagram.DefaultPalette[0].WithAlpha(diagram.BlobAlpha), "phase", start.ID, end.ID)
	if err != nil {
		t.Fatal(err)
	}
	return d, start, end, blob
}

func TestCommandRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		cmd  func(t *testing.T, d *diagram.Diagram, start, end *diagram.Outcome, blob *diagram.ScopeBlob) Command
	}{
		{"add swimlane", func(t *testing.T, d *diagram.Diagram, _, _ *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			return NewAddSwimlane(d, "C", 180, diagram.DefaultPalette[2], 0)
		}},
		{"add outcome", func(t *testing.T, d *diagram.Diagram, start, _ *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			return NewAddOutcome(d, start.SwimlaneID, 200, "later")
		}},
		{"add blob", func(t *testing.T, d *diagram.Diagram, start, end *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			pts := []geometry.Point{{}, {X: 50}, {X: 50, Y: 50}}
			return NewAddBlob(d, pts, diagram.DefaultPalette[3], "extra", start.ID, end.ID)
		}},
		{"remove blob", func(t *testing.T, d *diagram.Diagram, _, _ *diagram.Outcome, blob *diagram.ScopeBlob) Command {
			return NewRemoveBlob(d, blob.ID)
		}},
		{"remove outcome cascades blob", func(t *testing.T, d *diagram.Diagram, start, _ *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			return NewRemoveOutcome(d, start.ID)
		}},
		{"remove swimlane cascades all", func(t *testing.T, d *diagram.Diagram, start, _ *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			return NewRemoveSwimlane(d, start.SwimlaneID)
		}},
		{"move outcome", func(t *testing.T, d *diagram.Diagram, start, _ *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			return NewMoveItem(d, diagram.KindOutcome, start.ID,
				Placement{Distance: start.Distance}, Placement{Distance: 175})
		}},
		{"move swimlane", func(t *testing.T, d *diagram.Diagram, start, _ *diagram.Outcome, _ *diagram.ScopeBlob) Command {
			s := d.Swimlane(start.SwimlaneID)
			return NewMoveItem(d, diagram.KindSwimlane, s.ID,
				Placement{Angle: s.Angle, Length: s.Length}, Placement{Angle: 45, Length: 300})
		}},
		{"change color", func(t *testing.T, d *diagram.Diagram, _, _ *diagram.Outcome, blob *diagram.ScopeBlob) Command {
			cmd, err := NewChangeColor(d, diagram.KindBlob, blob.ID, diagram.DefaultPalette[7])
			if err != nil {
				t.Fatal(err)
			}
			return cmd
		}},
		{"rename", func(t *testing.T, d *diagram.Diagram, _, _ *diagram.Outcome, blob *diagram.ScopeBlob) Command {
			cmd, err := NewRename(d, diagram.KindBlob, blob.ID, "renamed")
			if err != nil {
				t.Fatal(err)
			}
			return cmd
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, start, end, blob := buildDiagram(t)
			cmd := tt.cmd(t, d, start, end, blob)

			before := snapshot(t, d)
			if err := cmd.Apply(); err != nil {
				t.Fatalf("apply: %v", err)
			}
			applied := snapshot(t, d)
			if applied == before {
				t.Fatal("apply had no observable effect")
			}

			if err := cmd.Revert(); err != nil {
				t.Fatalf("revert: %v", err)
			}
			if got := snapshot(t, d); got != before {
				t.Errorf("revert did not restore the pre-apply state\n got: %s\nwant: %s", got, before)
			}

			// Determinism: re-apply reproduces the first application.
			if err := cmd.Apply(); err != nil {
				t.Fatalf("re-apply: %v", err)
			}
			if got := snapshot(t, d); got != applied {
				t.Errorf("re-apply diverged from the first application\n got: %s\nwant: %s", got, applied)
			}
		})
	}
}

func TestCommandStateMachine(t *testing.T) {
	d, _, _, blob := buildDiagram(t)
	cmd := NewRemoveBlob(d, blob.ID)

	if cmd.State() != StateCreated {
		t.Fatalf("initial state = %v, want created", cmd.State())
	}
	if err := cmd.Revert(); !errors.Is(err, ErrInconsistentCommand) {
		t.Errorf("revert before apply: got %v, want ErrInconsistentCommand", err)
	}
	if err := cmd.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cmd.State() != StateApplied {
		t.Errorf("state after apply = %v", cmd.State())
	}
	if err := cmd.Apply(); !errors.Is(err, ErrInconsistentCommand) {
		t.Errorf("double apply: got %v, want ErrInconsistentCommand", err)
	}
	if err := cmd.Revert(); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if cmd.State() != StateReverted {
		t.Errorf("state after revert = %v", cmd.State())
	}
}

func TestCommandFailsLoudlyOnMissingState(t *testing.T) {
	d, _, _, blob := buildDiagram(t)
	cmd := NewRemoveBlob(d, blob.ID)
	if err := cmd.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := cmd.Revert(); err != nil {
		t.Fatalf("revert: %v", err)
	}

	// The blob disappears behind the command's back.
	d.RemoveBlob(blob.ID)

	if err := cmd.Apply(); !errors.Is(err, ErrInconsistentCommand) {
		t.Fatalf("apply against mutated state: got %v, want ErrInconsistentCommand", err)
	}
	if cmd.State() != StateFailed {
		t.Errorf("state = %v, want failed", cmd.State())
	}
	// Dead commands stay dead.
	if err := cmd.Apply(); !errors.Is(err, ErrInconsistentCommand) {
		t.Errorf("apply after failure: got %v, want ErrInconsistentCommand", err)
	}
}

func TestLogUndoRedo(t *testing.T) {
	d := diagram.New(geometry.Point{})
	log := NewLog()

	empty := snapshot(t, d)
	if err := log.Push(NewAddSwimlane(d, "A", 0, diagram.DefaultPalette[0], 0)); err != nil {
		t.Fatalf("push: %v", err)
	}
	one := snapshot(t, d)
	if err := log.Push(NewAddSwimlane(d, "B", 90, diagram.DefaultPalette[1], 0)); err != nil {
		t.Fatalf("push: %v", err)
	}
	two := snapshot(t, d)

	if err := log.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := snapshot(t, d); got != one {
		t.Error("undo did not restore the one-swimlane state")
	}
	if err := log.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := snapshot(t, d); got != empty {
		t.Error("undo did not restore the empty state")
	}
	if err := log.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("undo past bottom: got %v, want ErrNothingToUndo", err)
	}

	if err := log.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if err := log.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if got := snapshot(t, d); got != two {
		t.Error("redo did not reproduce the two-swimlane state")
	}
	if err := log.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("redo past top: got %v, want ErrNothingToRedo", err)
	}
}

func TestLogPushDiscardsRedoTail(t *testing.T) {
	d := diagram.New(geometry.Point{})
	log := NewLog()

	if err := log.Push(NewAddSwimlane(d, "A", 0, diagram.DefaultPalette[0], 0)); err != nil {
		t.Fatal(err)
	}
	if err := log.Push(NewAddSwimlane(d, "B", 90, diagram.DefaultPalette[1], 0)); err != nil {
		t.Fatal(err)
	}
	if err := log.Undo(); err != nil {
		t.Fatal(err)
	}

	if err := log.Push(NewAddSwimlane(d, "C", 180, diagram.DefaultPalette[2], 0)); err != nil {
		t.Fatal(err)
	}

	if log.CanRedo() {
		t.Error("redo tail must be discarded after a push")
	}
	if log.Len() != 2 {
		t.Errorf("log length = %d, want 2", log.Len())
	}
	if d.SwimlaneByLabel("B") != nil {
		t.Error("undone swimlane B must stay gone")
	}
	if d.SwimlaneByLabel("C") == nil {
		t.Error("swimlane C missing")
	}
}

func TestLogFailedPushLeavesModelUnchanged(t *testing.T) {
	d := diagram.New(geometry.Point{})
	log := NewLog()
	if err := log.Push(NewAddSwimlane(d, "A", 0, diagram.DefaultPalette[0], 0)); err != nil {
		t.Fatal(err)
	}
	before := snapshot(t, d)

	// Duplicate label: the command fails on apply.
	err := log.Push(NewAddSwimlane(d, "A", 90, diagram.DefaultPalette[1], 0))
	if err == nil {
		t.Fatal("expected push failure for duplicate label")
	}
	if got := snapshot(t, d); got != before {
		t.Error("failed push mutated the model")
	}
	if log.Len() != 1 {
		t.Errorf("failed command recorded in log: len = %d", log.Len())
	}
	if !log.CanUndo() || log.CanRedo() {
		t.Error("log cursor disturbed by failed push")
	}
}

func TestUndoRedoFullScenario(t *testing.T) {
	// Build two connected swimlanes via commands, then unwind and replay
	// the entire history.
	d := diagram.New(geometry.Point{})
	log := NewLog()

	addA := NewAddSwimlane(d, "A", 0, diagram.DefaultPalette[0], 0)
	if err := log.Push(addA); err != nil {
		t.Fatal(err)
	}
	addB := NewAddSwimlane(d, "B", 90, diagram.DefaultPalette[1], 0)
	if err := log.Push(addB); err != nil {
		t.Fatal(err)
	}
	addLaunch := NewAddOutcome(d, addA.SwimlaneID(), 100, "Launch")
	if err := log.Push(addLaunch); err != nil {
		t.Fatal(err)
	}
	addScale := NewAddOutcome(d, addB.SwimlaneID(), 100, "Scale")
	if err := log.Push(addScale); err != nil {
		t.Fatal(err)
	}

	launch := d.Outcome(addLaunch.OutcomeID())
	if launch.Position.X != 100 || launch.Position.Y != 0 {
		t.Errorf("Launch position = %v, want (100, 0)", launch.Position)
	}

	pts, err := geometry.BlobPath(d.Center, 0, 90, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	connect := NewAddBlob(d, pts, diagram.DefaultPalette[0].WithAlpha(diagram.BlobAlpha), "", addLaunch.OutcomeID(), addScale.OutcomeID())
	if err := log.Push(connect); err != nil {
		t.Fatal(err)
	}

	full := snapshot(t, d)
	if d.BlobCount() != 1 {
		t.Fatalf("blob count = %d, want 1", d.BlobCount())
	}

	if err := log.Undo(); err != nil {
		t.Fatal(err)
	}
	if d.BlobCount() != 0 {
		t.Errorf("blob count after undo = %d, want 0", d.BlobCount())
	}
	if err := log.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := snapshot(t, d); got != full {
		t.Error("redo did not reproduce the blob with identical points")
	}

	// All the way down and back up.
	for log.CanUndo() {
		if err := log.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	if len(d.Swimlanes()) != 0 || d.BlobCount() != 0 {
		t.Error("full unwind left entities behind")
	}
	for log.CanRedo() {
		if err := log.Redo(); err != nil {
			t.Fatal(err)
		}
	}
	if got := snapshot(t, d); got != full {
		t.Error("full replay diverged from the original build")
	}
}
