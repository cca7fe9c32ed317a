package engine

import (
	"errors"

	"github.com/dmoreno/cuaderno/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrEmptyNote indicates a send was attempted with nothing to send.
	ErrEmptyNote = errors.New("note is empty")

	// ErrNoTranslator indicates no translation service is configured.
	ErrNoTranslator = errors.New("no translation service configured")

	// ErrNothingToUndo indicates the undo stack is at its bottom.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is at its top.
	ErrNothingToRedo = history.ErrNothingToRedo
)
