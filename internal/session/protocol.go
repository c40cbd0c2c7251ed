package session

import (
	"encoding/json"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
)

// Message is the wire envelope for everything crossing a session socket.
type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Sent to a client on join: the authoritative document and sequence.
	TypeDocSync = "doc.sync"

	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Diagram operation types carried by op.submit.
const (
	OpSwimlaneAdd    = "swimlane.add"
	OpOutcomeAdd     = "outcome.add"
	OpBlobConnect    = "blob.connect"
	OpBlobRibbon     = "blob.ribbon"
	OpBlobDraw       = "blob.draw"
	OpEntityRemove   = "entity.remove"
	OpSwimlaneMove   = "swimlane.move"
	OpOutcomeMove    = "outcome.move"
	OpEntityRecolor  = "entity.recolor"
	OpEntityRename   = "entity.rename"
	OpHistoryUndo    = "history.undo"
	OpHistoryRedo    = "history.redo"
)

// Operation is one diagram mutation. Which fields matter depends on Type;
// the room validates against the model, so a malformed operation nacks
// rather than corrupting state.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ClientSeq int64  `json:"clientSeq"`

	// Target for remove/move/recolor/rename.
	Kind     diagram.EntityKind `json:"kind,omitempty"`
	TargetID int64              `json:"targetId,omitempty"`

	Label    string  `json:"label,omitempty"`
	Angle    float64 `json:"angle,omitempty"`
	Length   float64 `json:"length,omitempty"`
	Distance float64 `json:"distance,omitempty"`
	Color    string  `json:"color,omitempty"`

	// Ribbon width for blob.ribbon.
	Width float64 `json:"width,omitempty"`

	// Endpoints for blob.connect and blob.ribbon; SwimlaneID for outcome.add.
	SwimlaneID     int64 `json:"swimlaneId,omitempty"`
	StartOutcomeID int64 `json:"startOutcomeId,omitempty"`
	EndOutcomeID   int64 `json:"endOutcomeId,omitempty"`

	// Polygon for blob.draw.
	Points [][2]float64 `json:"points,omitempty"`
}

type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
	// Id assigned by the server for creating operations, so the client can
	// reference the entity it just made.
	EntityID int64 `json:"entityId,omitempty"`
}

type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

// DocSyncPayload carries the full authoritative document.
type DocSyncPayload struct {
	Document  *diagram.Document `json:"document"`
	ServerSeq int64             `json:"serverSeq"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []int64    `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}
