package editor

import "github.com/scopemap/scopemap/backend-go/internal/diagram"

// Notifier is the render-layer collaborator. The editor calls it after each
// successful mutation; implementations sync whatever visual representation
// they keep. The editor never depends on what the render layer does with
// these calls.
type Notifier interface {
	OnEntityAdded(kind diagram.EntityKind, id int64)
	OnEntityRemoved(kind diagram.EntityKind, id int64)
	OnSwimlaneGeometryChanged(id int64)
	OnOutcomeMoved(id int64)
	OnBlobShapeChanged(id int64)
	// OnDiagramReloaded signals a coarse-grained change (undo, redo, load)
	// where the render layer should rebuild from the model.
	OnDiagramReloaded()
}

// Prompter is the input-collection collaborator. Each method returns the
// collected value and whether the user confirmed; a false second return
// means cancelled, and the editor treats cancellation as a strict no-op.
type Prompter interface {
	Text(prompt, initial string) (string, bool)
	Number(prompt string, initial float64) (float64, bool)
	Color(prompt string, initial diagram.Color) (diagram.Color, bool)
}

// NopNotifier discards all notifications. Useful for headless callers such
// as the session layer and tests.
type NopNotifier struct{}

func (NopNotifier) OnEntityAdded(diagram.EntityKind, int64)   {}
func (NopNotifier) OnEntityRemoved(diagram.EntityKind, int64) {}
func (NopNotifier) OnSwimlaneGeometryChanged(int64)           {}
func (NopNotifier) OnOutcomeMoved(int64)                      {}
func (NopNotifier) OnBlobShapeChanged(int64)                  {}
func (NopNotifier) OnDiagramReloaded()                        {}
