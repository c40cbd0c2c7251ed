package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/editor"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

var errUnknownOperation = errors.New("unknown operation type")

// Room is one live project session. It owns the authoritative editor for
// the project's diagram; every client operation is serialized through the
// room mutex and applied via the editor's command log, so server-side
// undo/redo sees the same linear history the clients do.
type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager

	mu        sync.Mutex
	editor    *editor.Editor
	serverSeq int64
	dirty     bool
}

func NewRoom(projectID string, d *diagram.Diagram) *Room {
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		editor:    editor.New(d, nil, nil),
	}
}

// Apply runs one operation against the room's editor. It returns the new
// server sequence and, for creating operations, the id of the new entity.
func (r *Room) Apply(op Operation) (serverSeq int64, entityID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entityID, err = r.applyLocked(op)
	if err != nil {
		return 0, 0, err
	}

	r.serverSeq++
	r.dirty = true
	return r.serverSeq, entityID, nil
}

func (r *Room) applyLocked(op Operation) (int64, error) {
	ed := r.editor
	switch op.Type {
	case OpSwimlaneAdd:
		s, err := ed.AddSwimlane(op.Label, op.Angle, op.Length)
		if err != nil {
			return 0, err
		}
		return s.ID, nil

	case OpOutcomeAdd:
		o, err := ed.AddOutcome(op.SwimlaneID, op.Distance, op.Label)
		if err != nil {
			return 0, err
		}
		return o.ID, nil

	case OpBlobConnect:
		b, err := ed.ConnectOutcomeIDs(op.StartOutcomeID, op.EndOutcomeID)
		if err != nil {
			return 0, err
		}
		return b.ID, nil

	case OpBlobRibbon:
		width := op.Width
		if width <= 0 {
			width = 40
		}
		b, err := ed.ConnectOutcomesRibbon(op.StartOutcomeID, op.EndOutcomeID, width)
		if err != nil {
			return 0, err
		}
		return b.ID, nil

	case OpBlobDraw:
		ed.BeginBlob()
		for _, p := range op.Points {
			if err := ed.AppendPoint(geometry.Point{X: p[0], Y: p[1]}); err != nil {
				ed.CancelBlob()
				return 0, err
			}
		}
		b, err := ed.FinishBlob(op.Label)
		if err != nil {
			return 0, err
		}
		return b.ID, nil

	case OpEntityRemove:
		return 0, ed.Remove(op.Kind, op.TargetID)

	case OpSwimlaneMove:
		return 0, ed.MoveSwimlane(op.TargetID, op.Angle, op.Length)

	case OpOutcomeMove:
		return 0, ed.MoveOutcome(op.TargetID, op.Distance)

	case OpEntityRecolor:
		c, err := diagram.ParseColor(op.Color)
		if err != nil {
			return 0, err
		}
		return 0, ed.Recolor(op.Kind, op.TargetID, c)

	case OpEntityRename:
		return 0, ed.Rename(op.Kind, op.TargetID, op.Label)

	case OpHistoryUndo:
		return 0, ed.Undo()

	case OpHistoryRedo:
		return 0, ed.Redo()

	default:
		return 0, fmt.Errorf("%w: %s", errUnknownOperation, op.Type)
	}
}

// Document snapshots the room's diagram for sync and persistence.
func (r *Room) Document() *diagram.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return diagram.Encode(r.editor.Diagram())
}

// ServerSeq returns the current sequence number.
func (r *Room) ServerSeq() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.serverSeq
}

// TakeDirty reports whether the room has unsaved changes and clears the
// flag; the caller is committing to a save.
func (r *Room) TakeDirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.dirty
	r.dirty = false
	return d
}

func serverTimestamp() int64 {
	return time.Now().UnixMilli()
}
