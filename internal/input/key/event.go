package key

import (
	"strings"
	"time"
	"unicode"
)

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(key Key, r rune, mods Modifier) Event {
	return Event{
		Key:       key,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// (since Shift changes the character itself).
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// IsNavigation returns true if this event moves the caret.
func (e Event) IsNavigation() bool {
	return e.Key.IsNavigationKey()
}

// String returns a canonical string representation.
// Examples: "a", "C-b", "Enter", "C-S-z"
func (e Event) String() string {
	var parts []string

	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasMeta() {
		parts = append(parts, "M")
	}
	// Only show Shift for non-character keys
	if e.Modifiers.HasShift() && !e.IsRune() {
		parts = append(parts, "S")
	}

	var keyName string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			keyName = "Space"
		} else {
			keyName = string(e.Rune)
		}
	case KeyEscape:
		keyName = "Esc"
	case KeyBackspace:
		keyName = "BS"
	case KeyDelete:
		keyName = "Del"
	case KeyPageUp:
		keyName = "PgUp"
	case KeyPageDown:
		keyName = "PgDn"
	default:
		keyName = e.Key.String()
	}

	parts = append(parts, keyName)

	return strings.Join(parts, "-")
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// Matches reports whether this event matches a key specification
// string. Meta folds into Ctrl on both sides so a "Ctrl+B" binding
// also fires for Cmd+B. For character chords the rune comparison is
// case-insensitive, since terminals disagree on whether Ctrl+Shift+Z
// arrives as 'z' or 'Z'.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	if e.Key != parsed.Key {
		return false
	}
	if e.Modifiers.Normalize() != parsed.Modifiers.Normalize() {
		return false
	}
	if e.Key == KeyRune {
		return unicode.ToLower(e.Rune) == unicode.ToLower(parsed.Rune)
	}
	return true
}

// IsEscape returns true if this is the Escape key (with no modifiers).
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key (with no modifiers).
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// IsBackspace returns true if this is Backspace (with no modifiers).
func (e Event) IsBackspace() bool {
	return e.Key == KeyBackspace && e.Modifiers == ModNone
}

// IsTab returns true if this is Tab (with no modifiers).
func (e Event) IsTab() bool {
	return e.Key == KeyTab && e.Modifiers == ModNone
}
