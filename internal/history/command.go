// Package history is the undo/redo engine: reversible commands over a
// diagram plus the linear log that orders them. Every command captures the
// prior state it needs at construction or on its first apply — never
// lazily at undo time — so revert restores the model exactly even after
// unrelated commands have run in between.
package history

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentCommand means a command was applied or reverted
	// against state that no longer matches what it captured (target
	// removed behind its back, transition out of order). The command is
	// dead afterwards; the log refuses to step through it again.
	ErrInconsistentCommand = errors.New("inconsistent command state")

	// ErrNothingToUndo is returned by Log.Undo at the bottom of the stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Log.Redo at the top of the stack.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// State is the lifecycle of a command: Created → Applied ⇄ Reverted, with
// Failed terminal.
type State int

const (
	StateCreated State = iota
	StateApplied
	StateReverted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateApplied:
		return "applied"
	case StateReverted:
		return "reverted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Command is one reversible mutation. Apply performs it (redo); Revert
// restores the exact pre-apply state (undo). Re-applying from Reverted
// must reproduce the same resulting state as the first application.
type Command interface {
	Name() string
	State() State
	Apply() error
	Revert() error
}

// base carries the shared state machine. Concrete commands call guard
// methods before mutating and fail to mark themselves dead on error.
type base struct {
	state State
}

func (b *base) State() State { return b.state }

func (b *base) canApply(name string) error {
	if b.state == StateApplied || b.state == StateFailed {
		return fmt.Errorf("%s: apply from %s: %w", name, b.state, ErrInconsistentCommand)
	}
	return nil
}

func (b *base) canRevert(name string) error {
	if b.state != StateApplied {
		return fmt.Errorf("%s: revert from %s: %w", name, b.state, ErrInconsistentCommand)
	}
	return nil
}

func (b *base) fail(name string, err error) error {
	b.state = StateFailed
	return fmt.Errorf("%s: %v: %w", name, err, ErrInconsistentCommand)
}
