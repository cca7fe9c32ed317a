// Package history provides undo/redo for the composer.
//
// The model is a linear stack of full-text checkpoints plus a cursor.
// History stores and replays checkpoints; Recorder sits in front of it
// and coalesces the edit stream so undo steps are paragraph-sized, not
// keystroke-sized. Formatting commands bypass coalescing entirely: the
// dispatcher records the state on both sides of the command, making it
// a single atomic undo unit.
package history
