// Package editor is the interaction controller: it turns user gestures into
// commands over a diagram, keeps the undo log, and tells the render layer
// what changed. All methods run on the caller's goroutine; the editor is
// not safe for concurrent use and is meant to be owned by a single
// interaction loop (a session room, a wasm bridge, a test).
package editor

import (
	"errors"
	"fmt"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
	"github.com/scopemap/scopemap/backend-go/internal/history"
)

var (
	// ErrNothingNearby is returned by picking operations when the diagram
	// has no candidate entity for the query point.
	ErrNothingNearby = errors.New("nothing nearby")
	// ErrNotDrawing is returned when a drawing-phase call arrives outside
	// an active freehand interaction.
	ErrNotDrawing = errors.New("no drawing in progress")
	// ErrTooFewPoints is returned when a freehand blob is finished with
	// fewer than three points.
	ErrTooFewPoints = errors.New("blob needs at least three points")
)

// Editor orchestrates compound operations over a Diagram and its command
// log. Every mutation goes through the log so it can be undone; every
// successful mutation is reported to the notifier.
type Editor struct {
	d        *diagram.Diagram
	log      *history.Log
	notifier Notifier
	prompter Prompter

	// Transient freehand-drawing state. Nothing here touches the model
	// until Finish.
	drawing    bool
	draft      []geometry.Point
	draftColor diagram.Color
}

// New creates an editor over the given diagram. notifier and prompter may
// be nil; a nil notifier discards events and a nil prompter makes the
// Prompt* operations cancel.
func New(d *diagram.Diagram, notifier Notifier, prompter Prompter) *Editor {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Editor{
		d:        d,
		log:      history.NewLog(),
		notifier: notifier,
		prompter: prompter,
	}
}

// Diagram returns the model under edit.
func (e *Editor) Diagram() *diagram.Diagram { return e.d }

// Log returns the command log.
func (e *Editor) Log() *history.Log { return e.log }

// --- Palette ---

// nextSwimlaneColor cycles the palette by current swimlane count.
func (e *Editor) nextSwimlaneColor() diagram.Color {
	return diagram.DefaultPalette[len(e.d.Swimlanes())%len(diagram.DefaultPalette)]
}

// nextBlobColor cycles the palette by current blob count, with the standard
// blob translucency.
func (e *Editor) nextBlobColor() diagram.Color {
	c := diagram.DefaultPalette[e.d.BlobCount()%len(diagram.DefaultPalette)]
	return c.WithAlpha(diagram.BlobAlpha)
}

// --- Entity creation ---

// AddSwimlane creates a swimlane through the command log. A zero length
// takes the model default; the color is the next palette color.
func (e *Editor) AddSwimlane(label string, angle, length float64) (*diagram.Swimlane, error) {
	cmd := history.NewAddSwimlane(e.d, label, angle, e.nextSwimlaneColor(), length)
	if err := e.log.Push(cmd); err != nil {
		return nil, err
	}
	s := e.d.Swimlane(cmd.SwimlaneID())
	e.notifier.OnEntityAdded(diagram.KindSwimlane, s.ID)
	return s, nil
}

// AddOutcome creates an outcome on a swimlane through the command log.
func (e *Editor) AddOutcome(swimlaneID int64, distance float64, label string) (*diagram.Outcome, error) {
	cmd := history.NewAddOutcome(e.d, swimlaneID, distance, label)
	if err := e.log.Push(cmd); err != nil {
		return nil, err
	}
	o := e.d.Outcome(cmd.OutcomeID())
	e.notifier.OnEntityAdded(diagram.KindOutcome, o.ID)
	return o, nil
}

// --- Picking ---

// ClosestSwimlane returns the swimlane whose line segment is nearest to p,
// or ErrNothingNearby on an empty diagram.
func (e *Editor) ClosestSwimlane(p geometry.Point) (*diagram.Swimlane, error) {
	var best *diagram.Swimlane
	bestDist := 0.0
	for _, s := range e.d.Swimlanes() {
		dist := geometry.DistanceToSegment(p, e.d.Center, s.Endpoint(e.d.Center))
		if best == nil || dist < bestDist {
			best, bestDist = s, dist
		}
	}
	if best == nil {
		return nil, fmt.Errorf("closest swimlane: %w", ErrNothingNearby)
	}
	return best, nil
}

// ClosestOutcome resolves the nearest swimlane to p, then the nearest
// outcome on that swimlane by Euclidean distance.
func (e *Editor) ClosestOutcome(p geometry.Point) (*diagram.Outcome, error) {
	s, err := e.ClosestSwimlane(p)
	if err != nil {
		return nil, err
	}
	var best *diagram.Outcome
	bestDist := 0.0
	for _, id := range s.Outcomes {
		o := e.d.Outcome(id)
		dist := geometry.Distance(p, o.Position)
		if best == nil || dist < bestDist {
			best, bestDist = o, dist
		}
	}
	if best == nil {
		return nil, fmt.Errorf("closest outcome on %q: %w", s.Label, ErrNothingNearby)
	}
	return best, nil
}

// --- Blob creation ---

// ConnectOutcomes resolves the outcomes nearest to the two query points and
// connects them with a wedge blob. The blob path is derived from the two
// swimlane angles and outcome distances.
func (e *Editor) ConnectOutcomes(from, to geometry.Point) (*diagram.ScopeBlob, error) {
	start, err := e.ClosestOutcome(from)
	if err != nil {
		return nil, err
	}
	end, err := e.ClosestOutcome(to)
	if err != nil {
		return nil, err
	}
	return e.ConnectOutcomeIDs(start.ID, end.ID)
}

// ConnectOutcomeIDs connects two outcomes by id with a wedge blob.
func (e *Editor) ConnectOutcomeIDs(startID, endID int64) (*diagram.ScopeBlob, error) {
	start := e.d.Outcome(startID)
	end := e.d.Outcome(endID)
	if start == nil || end == nil {
		return nil, fmt.Errorf("connect outcomes: %w", diagram.ErrUnknownReference)
	}
	startLane := e.d.Swimlane(start.SwimlaneID)
	endLane := e.d.Swimlane(end.SwimlaneID)

	points, err := geometry.BlobPath(e.d.Center, startLane.Angle, endLane.Angle, start.Distance, end.Distance)
	if err != nil {
		return nil, fmt.Errorf("connect outcomes: %w", err)
	}
	cmd := history.NewAddBlob(e.d, points, e.nextBlobColor(), "", start.ID, end.ID)
	if err := e.log.Push(cmd); err != nil {
		return nil, err
	}
	b := e.d.Blob(cmd.BlobID())
	e.notifier.OnEntityAdded(diagram.KindBlob, b.ID)
	return b, nil
}

// ConnectOutcomesRibbon connects two outcomes by id with a straight ribbon
// instead of a wedge, for outcomes whose swimlanes are nearly opposite and
// would sweep a huge arc.
func (e *Editor) ConnectOutcomesRibbon(startID, endID int64, width float64) (*diagram.ScopeBlob, error) {
	start := e.d.Outcome(startID)
	end := e.d.Outcome(endID)
	if start == nil || end == nil {
		return nil, fmt.Errorf("connect outcomes: %w", diagram.ErrUnknownReference)
	}

	points, err := geometry.RibbonPath(start.Position, end.Position, width)
	if err != nil {
		return nil, fmt.Errorf("connect outcomes: %w", err)
	}
	cmd := history.NewAddBlob(e.d, points, e.nextBlobColor(), "", start.ID, end.ID)
	if err := e.log.Push(cmd); err != nil {
		return nil, err
	}
	b := e.d.Blob(cmd.BlobID())
	e.notifier.OnEntityAdded(diagram.KindBlob, b.ID)
	return b, nil
}

// BeginBlob starts a freehand drawing interaction. Any previous transient
// state is discarded; the blob color is fixed now so the palette cycle is
// decided by the blob count at the start of the gesture.
func (e *Editor) BeginBlob() {
	e.drawing = true
	e.draft = e.draft[:0]
	e.draftColor = e.nextBlobColor()
}

// AppendPoint adds a point to the in-progress freehand blob.
func (e *Editor) AppendPoint(p geometry.Point) error {
	if !e.drawing {
		return ErrNotDrawing
	}
	e.draft = append(e.draft, p)
	return nil
}

// FinishBlob commits the freehand blob. It needs at least three points;
// on any failure the model is left untouched and the drawing state is
// cleared either way.
func (e *Editor) FinishBlob(label string) (*diagram.ScopeBlob, error) {
	if !e.drawing {
		return nil, ErrNotDrawing
	}
	defer e.CancelBlob()
	if len(e.draft) < 3 {
		return nil, fmt.Errorf("finish blob with %d points: %w", len(e.draft), ErrTooFewPoints)
	}
	points := make([]geometry.Point, len(e.draft))
	copy(points, e.draft)
	cmd := history.NewAddBlob(e.d, points, e.draftColor, label, 0, 0)
	if err := e.log.Push(cmd); err != nil {
		return nil, err
	}
	b := e.d.Blob(cmd.BlobID())
	e.notifier.OnEntityAdded(diagram.KindBlob, b.ID)
	return b, nil
}

// CancelBlob aborts the freehand interaction without touching the model.
func (e *Editor) CancelBlob() {
	e.drawing = false
	e.draft = e.draft[:0]
}

// Drawing reports whether a freehand interaction is active.
func (e *Editor) Drawing() bool { return e.drawing }

// OutcomesCovered returns the outcomes whose position falls inside the
// blob's outline. Freehand blobs carry no endpoint references, so this is
// how they are associated with the outcomes they enclose.
func (e *Editor) OutcomesCovered(blobID int64) ([]int64, error) {
	if e.d.Blob(blobID) == nil {
		return nil, fmt.Errorf("blob %d: %w", blobID, diagram.ErrUnknownReference)
	}
	return e.d.OutcomesInBlob(blobID), nil
}

// --- Mutation ---

// MoveSwimlane commits a net angle/length change as one command. Callers
// doing interactive drags update the visual themselves and call this once
// on release with the final placement.
func (e *Editor) MoveSwimlane(id int64, angle, length float64) error {
	s := e.d.Swimlane(id)
	if s == nil {
		return fmt.Errorf("move swimlane %d: %w", id, diagram.ErrUnknownReference)
	}
	old := history.Placement{Angle: s.Angle, Length: s.Length}
	cmd := history.NewMoveItem(e.d, diagram.KindSwimlane, id, old, history.Placement{Angle: angle, Length: length})
	if err := e.log.Push(cmd); err != nil {
		return err
	}
	e.notifier.OnSwimlaneGeometryChanged(id)
	return nil
}

// MoveOutcome commits a net distance change as one command.
func (e *Editor) MoveOutcome(id int64, distance float64) error {
	o := e.d.Outcome(id)
	if o == nil {
		return fmt.Errorf("move outcome %d: %w", id, diagram.ErrUnknownReference)
	}
	old := history.Placement{Distance: o.Distance}
	cmd := history.NewMoveItem(e.d, diagram.KindOutcome, id, old, history.Placement{Distance: distance})
	if err := e.log.Push(cmd); err != nil {
		return err
	}
	e.notifier.OnOutcomeMoved(id)
	return nil
}

// Recolor changes an entity's color through the command log.
func (e *Editor) Recolor(kind diagram.EntityKind, id int64, color diagram.Color) error {
	cmd, err := history.NewChangeColor(e.d, kind, id, color)
	if err != nil {
		return err
	}
	if err := e.log.Push(cmd); err != nil {
		return err
	}
	if kind == diagram.KindBlob {
		e.notifier.OnBlobShapeChanged(id)
	}
	return nil
}

// Rename changes an entity's label through the command log.
func (e *Editor) Rename(kind diagram.EntityKind, id int64, label string) error {
	cmd, err := history.NewRename(e.d, kind, id, label)
	if err != nil {
		return err
	}
	return e.log.Push(cmd)
}

// Remove deletes an entity through the command log, with the model's
// cascade rules. Removing an unknown id is an error here, unlike the raw
// model operations: a user gesture that resolves to nothing is a bug in
// the caller's picking.
func (e *Editor) Remove(kind diagram.EntityKind, id int64) error {
	var cmd history.Command
	switch kind {
	case diagram.KindSwimlane:
		if e.d.Swimlane(id) == nil {
			return fmt.Errorf("remove swimlane %d: %w", id, diagram.ErrUnknownReference)
		}
		cmd = history.NewRemoveSwimlane(e.d, id)
	case diagram.KindOutcome:
		if e.d.Outcome(id) == nil {
			return fmt.Errorf("remove outcome %d: %w", id, diagram.ErrUnknownReference)
		}
		cmd = history.NewRemoveOutcome(e.d, id)
	case diagram.KindBlob:
		if e.d.Blob(id) == nil {
			return fmt.Errorf("remove blob %d: %w", id, diagram.ErrUnknownReference)
		}
		cmd = history.NewRemoveBlob(e.d, id)
	default:
		return fmt.Errorf("remove: unknown entity kind %q", kind)
	}
	if err := e.log.Push(cmd); err != nil {
		return err
	}
	e.notifier.OnEntityRemoved(kind, id)
	return nil
}

// --- Prompted operations ---
//
// These wrap the raw operations behind the input collaborator. A cancelled
// prompt means nothing happens: no command is pushed and no error is
// returned.

// PromptAddSwimlane asks for a label and creates a swimlane at the given
// angle with the default length.
func (e *Editor) PromptAddSwimlane(angle float64) (*diagram.Swimlane, error) {
	if e.prompter == nil {
		return nil, nil
	}
	label, ok := e.prompter.Text("Swimlane label", "")
	if !ok {
		return nil, nil
	}
	return e.AddSwimlane(label, angle, 0)
}

// PromptAddOutcome asks for a label and a distance on the given swimlane.
func (e *Editor) PromptAddOutcome(swimlaneID int64) (*diagram.Outcome, error) {
	if e.prompter == nil {
		return nil, nil
	}
	label, ok := e.prompter.Text("Outcome label", "")
	if !ok {
		return nil, nil
	}
	distance, ok := e.prompter.Number("Distance from center", 100)
	if !ok {
		return nil, nil
	}
	return e.AddOutcome(swimlaneID, distance, label)
}

// PromptRename asks for a new label for the entity.
func (e *Editor) PromptRename(kind diagram.EntityKind, id int64) error {
	if e.prompter == nil {
		return nil
	}
	current, err := e.d.LabelOf(kind, id)
	if err != nil {
		return err
	}
	label, ok := e.prompter.Text("Label", current)
	if !ok {
		return nil
	}
	return e.Rename(kind, id, label)
}

// PromptRecolor asks for a new color for the entity.
func (e *Editor) PromptRecolor(kind diagram.EntityKind, id int64) error {
	if e.prompter == nil {
		return nil
	}
	current, err := e.d.ColorOf(kind, id)
	if err != nil {
		return err
	}
	color, ok := e.prompter.Color("Color", current)
	if !ok {
		return nil
	}
	return e.Recolor(kind, id, color)
}

// --- History ---

// Undo reverts the latest command and tells the render layer to rebuild.
func (e *Editor) Undo() error {
	if err := e.log.Undo(); err != nil {
		return err
	}
	e.notifier.OnDiagramReloaded()
	return nil
}

// Redo re-applies the latest undone command.
func (e *Editor) Redo() error {
	if err := e.log.Redo(); err != nil {
		return err
	}
	e.notifier.OnDiagramReloaded()
	return nil
}
