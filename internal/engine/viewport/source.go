package viewport

// ScrollSource identifies what caused a scroll position change.
// The controller uses it to tell its own programmatic scrolls apart
// from user-driven ones, so caret tracking never reacts to its own echo.
type ScrollSource uint8

const (
	SourceNone ScrollSource = iota
	SourceUser
	SourceWheel
	SourceKeyboard
	SourceProgrammatic
)

// String returns the source name.
func (s ScrollSource) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceWheel:
		return "wheel"
	case SourceKeyboard:
		return "keyboard"
	case SourceProgrammatic:
		return "programmatic"
	default:
		return "none"
	}
}
