// Package key provides key event types and parsing for composer input.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: A single key press with modifiers and timestamp
//
// # Key Specifications
//
// Key specifications can be written in multiple formats:
//
//   - Simple keys: "a", "A", "1", "Enter", "Escape"
//   - With modifiers: "Ctrl+B", "Ctrl+Shift+Z", "Mod+Enter"
//   - Vim-style: "<C-b>", "<C-S-z>", "<CR>", "<Esc>"
//
// "Mod" names the primary command modifier and resolves to Ctrl; Meta
// (Cmd) folds into Ctrl during matching, so one binding table covers
// both macOS and everything else.
package key
