package history

import (
	"fmt"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

// --- AddSwimlane ---

type AddSwimlane struct {
	base
	d      *diagram.Diagram
	label  string
	angle  float64
	color  diagram.Color
	length float64

	created   *diagram.Swimlane // snapshot after first apply
	laneIndex int               // position captured at revert
}

func NewAddSwimlane(d *diagram.Diagram, label string, angle float64, color diagram.Color, length float64) *AddSwimlane {
	return &AddSwimlane{d: d, label: label, angle: angle, color: color, length: length, laneIndex: -1}
}

func (c *AddSwimlane) Name() string { return "add swimlane" }

// SwimlaneID returns the id assigned on first apply, or 0.
func (c *AddSwimlane) SwimlaneID() int64 {
	if c.created == nil {
		return 0
	}
	return c.created.ID
}

func (c *AddSwimlane) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	if c.created == nil {
		s, err := c.d.AddSwimlane(c.label, c.angle, c.color, c.length)
		if err != nil {
			return c.fail(c.Name(), err)
		}
		c.created = cloneSwimlane(s)
	} else if err := c.d.RestoreSwimlane(cloneSwimlane(c.created), c.laneIndex); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateApplied
	return nil
}

func (c *AddSwimlane) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if c.d.Swimlane(c.created.ID) == nil {
		return c.fail(c.Name(), fmt.Errorf("swimlane %d is gone", c.created.ID))
	}
	c.laneIndex = c.d.SwimlaneIndex(c.created.ID)
	c.d.RemoveSwimlane(c.created.ID)
	c.state = StateReverted
	return nil
}

// --- AddOutcome ---

type AddOutcome struct {
	base
	d          *diagram.Diagram
	swimlaneID int64
	distance   float64
	label      string

	created *diagram.Outcome
	index   int
}

func NewAddOutcome(d *diagram.Diagram, swimlaneID int64, distance float64, label string) *AddOutcome {
	return &AddOutcome{d: d, swimlaneID: swimlaneID, distance: distance, label: label, index: -1}
}

func (c *AddOutcome) Name() string { return "add outcome" }

// OutcomeID returns the id assigned on first apply, or 0.
func (c *AddOutcome) OutcomeID() int64 {
	if c.created == nil {
		return 0
	}
	return c.created.ID
}

func (c *AddOutcome) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	if c.created == nil {
		o, err := c.d.AddOutcome(c.swimlaneID, c.distance, c.label)
		if err != nil {
			return c.fail(c.Name(), err)
		}
		c.created = cloneOutcome(o)
	} else if err := c.d.RestoreOutcome(cloneOutcome(c.created), c.index); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateApplied
	return nil
}

func (c *AddOutcome) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if c.d.Outcome(c.created.ID) == nil {
		return c.fail(c.Name(), fmt.Errorf("outcome %d is gone", c.created.ID))
	}
	c.index = c.d.OutcomeIndex(c.created.ID)
	c.d.RemoveOutcome(c.created.ID)
	c.state = StateReverted
	return nil
}

// --- AddBlob ---

type AddBlob struct {
	base
	d            *diagram.Diagram
	points       []geometry.Point
	color        diagram.Color
	label        string
	startOutcome int64
	endOutcome   int64

	created *diagram.ScopeBlob
	index   int
}

func NewAddBlob(d *diagram.Diagram, points []geometry.Point, color diagram.Color, label string, startOutcome, endOutcome int64) *AddBlob {
	return &AddBlob{
		d: d, points: points, color: color, label: label,
		startOutcome: startOutcome, endOutcome: endOutcome, index: -1,
	}
}

func (c *AddBlob) Name() string { return "add blob" }

// BlobID returns the id assigned on first apply, or 0.
func (c *AddBlob) BlobID() int64 {
	if c.created == nil {
		return 0
	}
	return c.created.ID
}

func (c *AddBlob) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	if c.created == nil {
		b, err := c.d.AddBlobBetween(c.points, c.color, c.label, c.startOutcome, c.endOutcome)
		if err != nil {
			return c.fail(c.Name(), err)
		}
		c.created = cloneBlob(b)
	} else if err := c.d.RestoreBlob(cloneBlob(c.created), c.index); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateApplied
	return nil
}

func (c *AddBlob) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if c.d.Blob(c.created.ID) == nil {
		return c.fail(c.Name(), fmt.Errorf("blob %d is gone", c.created.ID))
	}
	c.index = c.d.BlobIndex(c.created.ID)
	c.d.RemoveBlob(c.created.ID)
	c.state = StateReverted
	return nil
}

// --- RemoveBlob ---

type RemoveBlob struct {
	base
	d      *diagram.Diagram
	blobID int64

	removed *diagram.ScopeBlob
	index   int
}

func NewRemoveBlob(d *diagram.Diagram, blobID int64) *RemoveBlob {
	return &RemoveBlob{d: d, blobID: blobID}
}

func (c *RemoveBlob) Name() string { return "remove blob" }

func (c *RemoveBlob) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	b := c.d.Blob(c.blobID)
	if b == nil {
		return c.fail(c.Name(), fmt.Errorf("blob %d is gone", c.blobID))
	}
	c.removed = cloneBlob(b)
	c.index = c.d.BlobIndex(c.blobID)
	c.d.RemoveBlob(c.blobID)
	c.state = StateApplied
	return nil
}

func (c *RemoveBlob) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if err := c.d.RestoreBlob(cloneBlob(c.removed), c.index); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateReverted
	return nil
}

// --- RemoveOutcome ---

// blobSnapshot pairs a captured blob with its list position so a cascade
// can be rebuilt in original order.
type blobSnapshot struct {
	blob  *diagram.ScopeBlob
	index int
}

type RemoveOutcome struct {
	base
	d         *diagram.Diagram
	outcomeID int64

	removed *diagram.Outcome
	index   int
	blobs   []blobSnapshot
}

func NewRemoveOutcome(d *diagram.Diagram, outcomeID int64) *RemoveOutcome {
	return &RemoveOutcome{d: d, outcomeID: outcomeID}
}

func (c *RemoveOutcome) Name() string { return "remove outcome" }

func (c *RemoveOutcome) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	o := c.d.Outcome(c.outcomeID)
	if o == nil {
		return c.fail(c.Name(), fmt.Errorf("outcome %d is gone", c.outcomeID))
	}
	c.removed = cloneOutcome(o)
	c.index = c.d.OutcomeIndex(c.outcomeID)
	c.blobs = captureBlobs(c.d, []int64{c.outcomeID})
	c.d.RemoveOutcome(c.outcomeID)
	c.state = StateApplied
	return nil
}

func (c *RemoveOutcome) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if err := c.d.RestoreOutcome(cloneOutcome(c.removed), c.index); err != nil {
		return c.fail(c.Name(), err)
	}
	if err := restoreBlobs(c.d, c.blobs); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateReverted
	return nil
}

// --- RemoveSwimlane ---

type RemoveSwimlane struct {
	base
	d          *diagram.Diagram
	swimlaneID int64

	removed   *diagram.Swimlane
	laneIndex int
	outcomes  []*diagram.Outcome // in swimlane order
	blobs     []blobSnapshot
}

func NewRemoveSwimlane(d *diagram.Diagram, swimlaneID int64) *RemoveSwimlane {
	return &RemoveSwimlane{d: d, swimlaneID: swimlaneID}
}

func (c *RemoveSwimlane) Name() string { return "remove swimlane" }

func (c *RemoveSwimlane) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	s := c.d.Swimlane(c.swimlaneID)
	if s == nil {
		return c.fail(c.Name(), fmt.Errorf("swimlane %d is gone", c.swimlaneID))
	}
	c.removed = cloneSwimlane(s)
	c.laneIndex = c.d.SwimlaneIndex(c.swimlaneID)
	c.outcomes = c.outcomes[:0]
	for _, outcomeID := range s.Outcomes {
		c.outcomes = append(c.outcomes, cloneOutcome(c.d.Outcome(outcomeID)))
	}
	c.blobs = captureBlobs(c.d, s.Outcomes)
	c.d.RemoveSwimlane(c.swimlaneID)
	c.state = StateApplied
	return nil
}

func (c *RemoveSwimlane) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	// Restore the lane empty, then rebuild its outcome list in order so
	// RestoreOutcome's bookkeeping stays single-sourced.
	lane := cloneSwimlane(c.removed)
	lane.Outcomes = nil
	if err := c.d.RestoreSwimlane(lane, c.laneIndex); err != nil {
		return c.fail(c.Name(), err)
	}
	for _, o := range c.outcomes {
		if err := c.d.RestoreOutcome(cloneOutcome(o), -1); err != nil {
			return c.fail(c.Name(), err)
		}
	}
	if err := restoreBlobs(c.d, c.blobs); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateReverted
	return nil
}

// --- MoveItem ---

// Placement is the model-space position of a movable entity: angle and
// length for a swimlane, distance along the lane for an outcome.
type Placement struct {
	Angle    float64
	Length   float64
	Distance float64
}

// MoveItem is the generic position change. The old placement is captured
// eagerly at construction — the drag has already moved the visuals, so the
// caller supplies the pre-drag placement and only the net change lands in
// the log.
type MoveItem struct {
	base
	d    *diagram.Diagram
	kind diagram.EntityKind
	id   int64
	old  Placement
	new_ Placement
}

func NewMoveItem(d *diagram.Diagram, kind diagram.EntityKind, id int64, old, new_ Placement) *MoveItem {
	return &MoveItem{d: d, kind: kind, id: id, old: old, new_: new_}
}

func (c *MoveItem) Name() string { return "move item" }

func (c *MoveItem) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	if err := c.place(c.new_); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateApplied
	return nil
}

func (c *MoveItem) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if err := c.place(c.old); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateReverted
	return nil
}

func (c *MoveItem) place(p Placement) error {
	switch c.kind {
	case diagram.KindSwimlane:
		return c.d.SetSwimlanePlacement(c.id, p.Angle, p.Length)
	case diagram.KindOutcome:
		return c.d.SetOutcomeDistance(c.id, p.Distance)
	default:
		return fmt.Errorf("%s is not movable", c.kind)
	}
}

// --- ChangeColor ---

type ChangeColor struct {
	base
	d    *diagram.Diagram
	kind diagram.EntityKind
	id   int64
	old  diagram.Color
	new_ diagram.Color
}

// NewChangeColor captures the old color from the live model at
// construction.
func NewChangeColor(d *diagram.Diagram, kind diagram.EntityKind, id int64, newColor diagram.Color) (*ChangeColor, error) {
	old, err := d.ColorOf(kind, id)
	if err != nil {
		return nil, err
	}
	return &ChangeColor{d: d, kind: kind, id: id, old: old, new_: newColor}, nil
}

func (c *ChangeColor) Name() string { return "change color" }

func (c *ChangeColor) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	if err := c.d.SetColor(c.kind, c.id, c.new_); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateApplied
	return nil
}

func (c *ChangeColor) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if err := c.d.SetColor(c.kind, c.id, c.old); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateReverted
	return nil
}

// --- Rename ---

type Rename struct {
	base
	d    *diagram.Diagram
	kind diagram.EntityKind
	id   int64
	old  string
	new_ string
}

// NewRename captures the old label from the live model at construction.
func NewRename(d *diagram.Diagram, kind diagram.EntityKind, id int64, newLabel string) (*Rename, error) {
	old, err := d.LabelOf(kind, id)
	if err != nil {
		return nil, err
	}
	return &Rename{d: d, kind: kind, id: id, old: old, new_: newLabel}, nil
}

func (c *Rename) Name() string { return "rename" }

func (c *Rename) Apply() error {
	if err := c.canApply(c.Name()); err != nil {
		return err
	}
	if err := c.d.SetLabel(c.kind, c.id, c.new_); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateApplied
	return nil
}

func (c *Rename) Revert() error {
	if err := c.canRevert(c.Name()); err != nil {
		return err
	}
	if err := c.d.SetLabel(c.kind, c.id, c.old); err != nil {
		return c.fail(c.Name(), err)
	}
	c.state = StateReverted
	return nil
}

// --- cascade capture helpers ---

// captureBlobs snapshots every blob with an endpoint on any of the given
// outcomes, ordered by list position so restores rebuild the original
// order.
func captureBlobs(d *diagram.Diagram, outcomeIDs []int64) []blobSnapshot {
	seen := make(map[int64]bool)
	var out []blobSnapshot
	for _, outcomeID := range outcomeIDs {
		for _, blobID := range d.BlobsAt(outcomeID) {
			if seen[blobID] {
				continue
			}
			seen[blobID] = true
			out = append(out, blobSnapshot{
				blob:  cloneBlob(d.Blob(blobID)),
				index: d.BlobIndex(blobID),
			})
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].index < out[j-1].index; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func restoreBlobs(d *diagram.Diagram, snapshots []blobSnapshot) error {
	for _, snap := range snapshots {
		if err := d.RestoreBlob(cloneBlob(snap.blob), snap.index); err != nil {
			return err
		}
	}
	return nil
}
