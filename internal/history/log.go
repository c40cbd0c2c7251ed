package history

// Log is the linear undo/redo history. commands[:cursor] are applied;
// commands[cursor:] are reverted and eligible for redo. Pushing a new
// command after undoing discards the reverted tail — there are no redo
// branches.
type Log struct {
	commands []Command
	cursor   int
}

// NewLog returns an empty history.
func NewLog() *Log {
	return &Log{}
}

// Push applies the command and appends it to the history. The model is
// untouched when apply fails, and the redo tail is only discarded once the
// command has actually applied.
func (l *Log) Push(cmd Command) error {
	if err := cmd.Apply(); err != nil {
		return err
	}
	l.commands = append(l.commands[:l.cursor], cmd)
	l.cursor = len(l.commands)
	return nil
}

// Undo reverts the most recent applied command. A revert failure marks
// that command dead and leaves the cursor in place; the caller sees the
// error rather than a silent no-op.
func (l *Log) Undo() error {
	if l.cursor == 0 {
		return ErrNothingToUndo
	}
	if err := l.commands[l.cursor-1].Revert(); err != nil {
		return err
	}
	l.cursor--
	return nil
}

// Redo re-applies the most recently undone command.
func (l *Log) Redo() error {
	if l.cursor == len(l.commands) {
		return ErrNothingToRedo
	}
	if err := l.commands[l.cursor].Apply(); err != nil {
		return err
	}
	l.cursor++
	return nil
}

// CanUndo reports whether an applied command is available to revert.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether a reverted command is available to re-apply.
func (l *Log) CanRedo() bool { return l.cursor < len(l.commands) }

// Len returns the total number of commands held, applied or not.
func (l *Log) Len() int { return len(l.commands) }

// Cursor returns the number of currently applied commands.
func (l *Log) Cursor() int { return l.cursor }

// Clear drops the whole history, e.g. after loading a document.
func (l *Log) Clear() {
	l.commands = nil
	l.cursor = 0
}
