// Package diagram is the entity model for a scopemap document: swimlanes
// radiating from a center point, outcomes placed along them, and scope
// blobs connecting pairs of outcomes. The Diagram owns all identity,
// relationships, and derived-position recomputation; it never touches the
// render layer, which is the editor's job.
package diagram

import (
	"fmt"

	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

// DefaultSwimlaneLength is the length assigned when a swimlane is created
// without one.
const DefaultSwimlaneLength = 250.0

// EntityKind discriminates targets of generic operations (move, recolor,
// rename).
type EntityKind string

const (
	KindSwimlane EntityKind = "swimlane"
	KindOutcome  EntityKind = "outcome"
	KindBlob     EntityKind = "blob"
)

// Swimlane is a radial line from the diagram center at a fixed angle. It
// owns its outcomes in insertion order.
type Swimlane struct {
	ID       int64
	Label    string
	Angle    float64 // degrees from center
	Length   float64
	Color    Color
	Outcomes []int64 // outcome ids, insertion order
}

// Endpoint returns the outer end of the swimlane line.
func (s *Swimlane) Endpoint(center geometry.Point) geometry.Point {
	return geometry.PointAtAngleDistance(center, s.Angle, s.Length)
}

// Outcome is a milestone at a given distance along its swimlane. Position
// is derived from distance and the swimlane angle; it is never the source
// of truth.
type Outcome struct {
	ID         int64
	Label      string
	Distance   float64
	SwimlaneID int64
	Position   geometry.Point
}

// ScopeBlob is a filled polygon spanning two outcomes, or a freehand
// polygon when both endpoint ids are zero. When endpoints are set the
// points are re-derivable from the wedge geometry; when absent the points
// are authoritative.
type ScopeBlob struct {
	ID           int64
	Label        string
	Color        Color
	Points       []geometry.Point
	StartOutcome int64 // 0 = freehand
	EndOutcome   int64
}

// Freehand reports whether the blob has no outcome endpoints.
func (b *ScopeBlob) Freehand() bool {
	return b.StartOutcome == 0 && b.EndOutcome == 0
}

// ContainsPoint reports whether p lies inside the blob polygon.
func (b *ScopeBlob) ContainsPoint(p geometry.Point) bool {
	return geometry.PolygonContains(b.Points, p)
}

// Diagram is the root aggregate. Lookups go through the id maps; laneOrder
// and the blob list preserve insertion order for serialization and color
// cycling. blobsByOutcome is the relationship index between blob endpoints
// and outcomes — queried for cascades instead of being mirrored onto the
// entities themselves.
type Diagram struct {
	Center geometry.Point

	swimlanes map[int64]*Swimlane
	outcomes  map[int64]*Outcome
	blobs     []*ScopeBlob

	laneOrder      []int64
	blobsByOutcome map[int64][]int64

	ids *IDAllocator
}

// New creates an empty diagram centered at the given point.
func New(center geometry.Point) *Diagram {
	return &Diagram{
		Center:         center,
		swimlanes:      make(map[int64]*Swimlane),
		outcomes:       make(map[int64]*Outcome),
		blobsByOutcome: make(map[int64][]int64),
		ids:            NewIDAllocator(),
	}
}

// --- Lookups ---

// Swimlane returns the swimlane with the given id, or nil.
func (d *Diagram) Swimlane(id int64) *Swimlane { return d.swimlanes[id] }

// Outcome returns the outcome with the given id, or nil.
func (d *Diagram) Outcome(id int64) *Outcome { return d.outcomes[id] }

// Blob returns the blob with the given id, or nil.
func (d *Diagram) Blob(id int64) *ScopeBlob {
	for _, b := range d.blobs {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// SwimlaneByLabel returns the swimlane with the given label, or nil. Labels
// are unique, so at most one matches.
func (d *Diagram) SwimlaneByLabel(label string) *Swimlane {
	for _, id := range d.laneOrder {
		if s := d.swimlanes[id]; s.Label == label {
			return s
		}
	}
	return nil
}

// Swimlanes returns the swimlanes in insertion order.
func (d *Diagram) Swimlanes() []*Swimlane {
	out := make([]*Swimlane, 0, len(d.laneOrder))
	for _, id := range d.laneOrder {
		out = append(out, d.swimlanes[id])
	}
	return out
}

// Blobs returns the blob list in insertion order.
func (d *Diagram) Blobs() []*ScopeBlob {
	out := make([]*ScopeBlob, len(d.blobs))
	copy(out, d.blobs)
	return out
}

// BlobCount returns the number of blobs in the diagram.
func (d *Diagram) BlobCount() int { return len(d.blobs) }

// BlobIndex returns the position of a blob in the ordered list, or -1.
func (d *Diagram) BlobIndex(id int64) int {
	for i, b := range d.blobs {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// BlobsAt returns the ids of blobs that have the given outcome as an
// endpoint, in blob-list order.
func (d *Diagram) BlobsAt(outcomeID int64) []int64 {
	ids := d.blobsByOutcome[outcomeID]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// OutcomesInBlob returns the ids of outcomes whose position falls inside
// the blob polygon. Used to associate freehand blobs with the outcomes they
// cover.
func (d *Diagram) OutcomesInBlob(blobID int64) []int64 {
	b := d.Blob(blobID)
	if b == nil {
		return nil
	}
	var out []int64
	for _, laneID := range d.laneOrder {
		for _, outcomeID := range d.swimlanes[laneID].Outcomes {
			if b.ContainsPoint(d.outcomes[outcomeID].Position) {
				out = append(out, outcomeID)
			}
		}
	}
	return out
}

// --- Creation ---

// AddSwimlane creates a swimlane at the given angle. Labels are unique
// keys: a duplicate fails with ErrSwimlaneExists. A non-positive length
// takes the default.
func (d *Diagram) AddSwimlane(label string, angle float64, color Color, length float64) (*Swimlane, error) {
	if d.SwimlaneByLabel(label) != nil {
		return nil, fmt.Errorf("add swimlane %q: %w", label, ErrSwimlaneExists)
	}
	if length <= 0 {
		length = DefaultSwimlaneLength
	}

	s := &Swimlane{
		ID:     d.ids.Next(),
		Label:  label,
		Angle:  angle,
		Length: length,
		Color:  color,
	}
	d.swimlanes[s.ID] = s
	d.laneOrder = append(d.laneOrder, s.ID)
	return s, nil
}

// AddOutcome creates an outcome bound to an existing swimlane and computes
// its derived position.
func (d *Diagram) AddOutcome(swimlaneID int64, distance float64, label string) (*Outcome, error) {
	s, ok := d.swimlanes[swimlaneID]
	if !ok {
		return nil, fmt.Errorf("add outcome: swimlane %d: %w", swimlaneID, ErrUnknownReference)
	}
	if distance < 0 {
		return nil, fmt.Errorf("add outcome: %w", ErrInvalidDistance)
	}

	o := &Outcome{
		ID:         d.ids.Next(),
		Label:      label,
		Distance:   distance,
		SwimlaneID: swimlaneID,
		Position:   geometry.PointAtAngleDistance(d.Center, s.Angle, distance),
	}
	d.outcomes[o.ID] = o
	s.Outcomes = append(s.Outcomes, o.ID)
	return o, nil
}

// AddBlob creates a freehand blob from an explicit point list.
func (d *Diagram) AddBlob(points []geometry.Point, color Color, label string) (*ScopeBlob, error) {
	return d.AddBlobBetween(points, color, label, 0, 0)
}

// AddBlobBetween creates a blob with optional outcome endpoints. Both
// endpoint ids must resolve (or be zero); on success the blob is registered
// in the relationship index.
func (d *Diagram) AddBlobBetween(points []geometry.Point, color Color, label string, startOutcome, endOutcome int64) (*ScopeBlob, error) {
	if startOutcome != 0 && d.outcomes[startOutcome] == nil {
		return nil, fmt.Errorf("add blob: start outcome %d: %w", startOutcome, ErrUnknownReference)
	}
	if endOutcome != 0 && d.outcomes[endOutcome] == nil {
		return nil, fmt.Errorf("add blob: end outcome %d: %w", endOutcome, ErrUnknownReference)
	}

	b := &ScopeBlob{
		ID:           d.ids.Next(),
		Label:        label,
		Color:        color,
		Points:       points,
		StartOutcome: startOutcome,
		EndOutcome:   endOutcome,
	}
	d.blobs = append(d.blobs, b)
	d.registerBlob(b)
	return b, nil
}

// --- Restoration (explicit ids; deserialization and undo) ---

// RestoreSwimlane inserts a swimlane carrying its own id at the given
// position in lane order (negative or out-of-range appends), advancing the
// allocator past it. The explicit id wins over auto-generation so loaded
// and undone entities keep their identity.
func (d *Diagram) RestoreSwimlane(s *Swimlane, index int) error {
	if _, ok := d.swimlanes[s.ID]; ok {
		return fmt.Errorf("restore swimlane %d: %w", s.ID, ErrIDInUse)
	}
	if existing := d.SwimlaneByLabel(s.Label); existing != nil {
		return fmt.Errorf("restore swimlane %q: %w", s.Label, ErrSwimlaneExists)
	}
	d.ids.Advance(s.ID)
	d.swimlanes[s.ID] = s
	d.laneOrder = insertID(d.laneOrder, s.ID, index)
	return nil
}

// RestoreOutcome inserts an outcome carrying its own id at the given
// position in its swimlane's order (negative or out-of-range appends) and
// recomputes its position. The owning swimlane must be live.
func (d *Diagram) RestoreOutcome(o *Outcome, index int) error {
	if _, ok := d.outcomes[o.ID]; ok {
		return fmt.Errorf("restore outcome %d: %w", o.ID, ErrIDInUse)
	}
	s, ok := d.swimlanes[o.SwimlaneID]
	if !ok {
		return fmt.Errorf("restore outcome %d: swimlane %d: %w", o.ID, o.SwimlaneID, ErrUnknownReference)
	}
	d.ids.Advance(o.ID)
	o.Position = geometry.PointAtAngleDistance(d.Center, s.Angle, o.Distance)
	d.outcomes[o.ID] = o
	s.Outcomes = insertID(s.Outcomes, o.ID, index)
	return nil
}

// RestoreBlob reinserts a blob at the given list position (or appends when
// index is out of range), revalidating endpoints and re-registering the
// relationship index.
func (d *Diagram) RestoreBlob(b *ScopeBlob, index int) error {
	if d.Blob(b.ID) != nil {
		return fmt.Errorf("restore blob %d: %w", b.ID, ErrIDInUse)
	}
	if b.StartOutcome != 0 && d.outcomes[b.StartOutcome] == nil {
		return fmt.Errorf("restore blob %d: start outcome %d: %w", b.ID, b.StartOutcome, ErrUnknownReference)
	}
	if b.EndOutcome != 0 && d.outcomes[b.EndOutcome] == nil {
		return fmt.Errorf("restore blob %d: end outcome %d: %w", b.ID, b.EndOutcome, ErrUnknownReference)
	}

	d.ids.Advance(b.ID)
	if index < 0 || index > len(d.blobs) {
		index = len(d.blobs)
	}
	d.blobs = append(d.blobs, nil)
	copy(d.blobs[index+1:], d.blobs[index:])
	d.blobs[index] = b
	d.registerBlob(b)
	return nil
}

// SwimlaneIndex returns the position of a swimlane in lane order, or -1.
func (d *Diagram) SwimlaneIndex(id int64) int {
	for i, v := range d.laneOrder {
		if v == id {
			return i
		}
	}
	return -1
}

// OutcomeIndex returns the position of an outcome within its swimlane's
// order, or -1.
func (d *Diagram) OutcomeIndex(id int64) int {
	o, ok := d.outcomes[id]
	if !ok {
		return -1
	}
	s, ok := d.swimlanes[o.SwimlaneID]
	if !ok {
		return -1
	}
	for i, v := range s.Outcomes {
		if v == id {
			return i
		}
	}
	return -1
}

// --- Removal (idempotent, cascading) ---

// RemoveSwimlane removes a swimlane and cascades through its outcomes and
// every blob terminating at them. Removing an absent id is a no-op.
func (d *Diagram) RemoveSwimlane(id int64) {
	s, ok := d.swimlanes[id]
	if !ok {
		return
	}
	for _, outcomeID := range append([]int64(nil), s.Outcomes...) {
		d.RemoveOutcome(outcomeID)
	}
	delete(d.swimlanes, id)
	d.laneOrder = removeID(d.laneOrder, id)
}

// RemoveOutcome removes an outcome and every blob that has it as an
// endpoint. Removing an absent id is a no-op.
func (d *Diagram) RemoveOutcome(id int64) {
	o, ok := d.outcomes[id]
	if !ok {
		return
	}
	for _, blobID := range d.BlobsAt(id) {
		d.RemoveBlob(blobID)
	}
	if s, ok := d.swimlanes[o.SwimlaneID]; ok {
		s.Outcomes = removeID(s.Outcomes, id)
	}
	delete(d.outcomes, id)
}

// RemoveBlob removes a blob and deregisters it from the relationship
// index. Removing an absent id is a no-op.
func (d *Diagram) RemoveBlob(id int64) {
	i := d.BlobIndex(id)
	if i < 0 {
		return
	}
	b := d.blobs[i]
	d.blobs = append(d.blobs[:i], d.blobs[i+1:]...)
	d.deregisterBlob(b)
}

// --- Mutation ---

// SetOutcomeDistance moves an outcome along its swimlane and recomputes its
// position.
func (d *Diagram) SetOutcomeDistance(id int64, distance float64) error {
	o, ok := d.outcomes[id]
	if !ok {
		return fmt.Errorf("move outcome %d: %w", id, ErrUnknownReference)
	}
	if distance < 0 {
		return fmt.Errorf("move outcome %d: %w", id, ErrInvalidDistance)
	}
	s := d.swimlanes[o.SwimlaneID]
	o.Distance = distance
	o.Position = geometry.PointAtAngleDistance(d.Center, s.Angle, distance)
	return nil
}

// SetSwimlanePlacement changes a swimlane's angle and length, then
// recomputes every owned outcome's position.
func (d *Diagram) SetSwimlanePlacement(id int64, angle, length float64) error {
	s, ok := d.swimlanes[id]
	if !ok {
		return fmt.Errorf("move swimlane %d: %w", id, ErrUnknownReference)
	}
	s.Angle = angle
	if length > 0 {
		s.Length = length
	}
	d.RecomputeOutcomePositions(id)
	return nil
}

// SetBlobPoints replaces a blob's boundary points.
func (d *Diagram) SetBlobPoints(id int64, points []geometry.Point) error {
	b := d.Blob(id)
	if b == nil {
		return fmt.Errorf("reshape blob %d: %w", id, ErrUnknownReference)
	}
	b.Points = points
	return nil
}

// SetColor changes the color of any entity kind.
func (d *Diagram) SetColor(kind EntityKind, id int64, color Color) error {
	switch kind {
	case KindSwimlane:
		if s, ok := d.swimlanes[id]; ok {
			s.Color = color
			return nil
		}
	case KindBlob:
		if b := d.Blob(id); b != nil {
			b.Color = color
			return nil
		}
	}
	return fmt.Errorf("recolor %s %d: %w", kind, id, ErrUnknownReference)
}

// ColorOf returns the current color of a colorable entity.
func (d *Diagram) ColorOf(kind EntityKind, id int64) (Color, error) {
	switch kind {
	case KindSwimlane:
		if s, ok := d.swimlanes[id]; ok {
			return s.Color, nil
		}
	case KindBlob:
		if b := d.Blob(id); b != nil {
			return b.Color, nil
		}
	}
	return Color{}, fmt.Errorf("color of %s %d: %w", kind, id, ErrUnknownReference)
}

// SetLabel changes the label of any entity kind. Swimlane labels stay
// unique keys.
func (d *Diagram) SetLabel(kind EntityKind, id int64, label string) error {
	switch kind {
	case KindSwimlane:
		s, ok := d.swimlanes[id]
		if !ok {
			break
		}
		if other := d.SwimlaneByLabel(label); other != nil && other.ID != id {
			return fmt.Errorf("rename swimlane %d to %q: %w", id, label, ErrSwimlaneExists)
		}
		s.Label = label
		return nil
	case KindOutcome:
		if o, ok := d.outcomes[id]; ok {
			o.Label = label
			return nil
		}
	case KindBlob:
		if b := d.Blob(id); b != nil {
			b.Label = label
			return nil
		}
	}
	return fmt.Errorf("rename %s %d: %w", kind, id, ErrUnknownReference)
}

// LabelOf returns the current label of an entity.
func (d *Diagram) LabelOf(kind EntityKind, id int64) (string, error) {
	switch kind {
	case KindSwimlane:
		if s, ok := d.swimlanes[id]; ok {
			return s.Label, nil
		}
	case KindOutcome:
		if o, ok := d.outcomes[id]; ok {
			return o.Label, nil
		}
	case KindBlob:
		if b := d.Blob(id); b != nil {
			return b.Label, nil
		}
	}
	return "", fmt.Errorf("label of %s %d: %w", kind, id, ErrUnknownReference)
}

// RecomputeOutcomePositions rederives the position of every outcome on a
// swimlane. Must be called after any angle or length change.
func (d *Diagram) RecomputeOutcomePositions(swimlaneID int64) {
	s, ok := d.swimlanes[swimlaneID]
	if !ok {
		return
	}
	for _, outcomeID := range s.Outcomes {
		o := d.outcomes[outcomeID]
		o.Position = geometry.PointAtAngleDistance(d.Center, s.Angle, o.Distance)
	}
}

// --- Relationship index ---

func (d *Diagram) registerBlob(b *ScopeBlob) {
	for _, outcomeID := range []int64{b.StartOutcome, b.EndOutcome} {
		if outcomeID == 0 {
			continue
		}
		ids := d.blobsByOutcome[outcomeID]
		if !containsID(ids, b.ID) {
			d.blobsByOutcome[outcomeID] = append(ids, b.ID)
		}
	}
}

func (d *Diagram) deregisterBlob(b *ScopeBlob) {
	for _, outcomeID := range []int64{b.StartOutcome, b.EndOutcome} {
		if outcomeID == 0 {
			continue
		}
		ids := removeID(d.blobsByOutcome[outcomeID], b.ID)
		if len(ids) == 0 {
			delete(d.blobsByOutcome, outcomeID)
		} else {
			d.blobsByOutcome[outcomeID] = ids
		}
	}
}

func insertID(ids []int64, id int64, index int) []int64 {
	if index < 0 || index > len(ids) {
		return append(ids, id)
	}
	ids = append(ids, 0)
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
