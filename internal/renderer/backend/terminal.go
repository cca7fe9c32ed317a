package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dmoreno/cuaderno/internal/input/key"
)

// Terminal implements Backend over a tcell screen.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a Terminal over a newly allocated tcell screen.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalScreen wraps an existing tcell screen.
func NewTerminalScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init takes over the terminal and enables mouse reporting and
// bracketed paste.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.EnablePaste()
	return nil
}

// Fini restores the terminal. Blocked PollEvent calls return EventQuit.
func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Size returns the terminal size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// SetCell writes one cell.
func (t *Terminal) SetCell(x, y int, mainc rune, combc []rune, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, mainc, combc, style)
}

// Clear blanks the screen.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

// Show flushes pending writes to the terminal.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// ShowCursor places the hardware cursor.
func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

// HideCursor hides the hardware cursor.
func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

// PollEvent blocks for the next terminal event.
func (t *Terminal) PollEvent() Event {
	return convertEvent(t.screen.PollEvent())
}

// PostInterrupt wakes a blocked PollEvent with an EventWake. Safe to
// call from any goroutine.
func (t *Terminal) PostInterrupt() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best effort; a full queue wakes the loop anyway
}

// convertEvent maps a tcell event into backend-neutral form. A nil
// event means the screen is finished.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case nil:
		return Event{Type: EventQuit}

	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e)}

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:   EventMouse,
			MouseX: x,
			MouseY: y,
			Button: convertButton(e.Buttons()),
			Mods:   convertMod(e.Modifiers()),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	case *tcell.EventPaste:
		return Event{Type: EventPaste, Start: e.Start()}

	case *tcell.EventInterrupt:
		return Event{Type: EventWake}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey maps a tcell key event onto the engine's key model.
// Control chords arrive from tcell as dedicated key codes; they are
// folded back into rune-plus-modifier form, which is what the chord
// table matches on. Unknown keys come back as KeyNone and fall
// through every handler.
func convertKey(ev *tcell.EventKey) key.Event {
	mods := convertMod(ev.Modifiers())

	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return key.NewSpecialEvent(key.KeySpace, mods)
		}
		return key.NewRuneEvent(ev.Rune(), mods)
	case tcell.KeyEnter:
		return key.NewSpecialEvent(key.KeyEnter, mods)
	case tcell.KeyTab:
		return key.NewSpecialEvent(key.KeyTab, mods)
	case tcell.KeyBacktab:
		return key.NewSpecialEvent(key.KeyTab, mods|key.ModShift)
	case tcell.KeyEscape:
		return key.NewSpecialEvent(key.KeyEscape, mods)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewSpecialEvent(key.KeyBackspace, mods)
	case tcell.KeyDelete:
		return key.NewSpecialEvent(key.KeyDelete, mods)
	case tcell.KeyHome:
		return key.NewSpecialEvent(key.KeyHome, mods)
	case tcell.KeyEnd:
		return key.NewSpecialEvent(key.KeyEnd, mods)
	case tcell.KeyPgUp:
		return key.NewSpecialEvent(key.KeyPageUp, mods)
	case tcell.KeyPgDn:
		return key.NewSpecialEvent(key.KeyPageDown, mods)
	case tcell.KeyUp:
		return key.NewSpecialEvent(key.KeyUp, mods)
	case tcell.KeyDown:
		return key.NewSpecialEvent(key.KeyDown, mods)
	case tcell.KeyLeft:
		return key.NewSpecialEvent(key.KeyLeft, mods)
	case tcell.KeyRight:
		return key.NewSpecialEvent(key.KeyRight, mods)
	case tcell.KeyCtrlSpace:
		return key.NewSpecialEvent(key.KeySpace, mods|key.ModCtrl)
	default:
		if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			return key.NewRuneEvent('a'+rune(k-tcell.KeyCtrlA), mods|key.ModCtrl)
		}
		return key.Event{}
	}
}

// convertMod maps tcell modifier bits onto the engine's modifiers.
func convertMod(m tcell.ModMask) key.Modifier {
	var out key.Modifier
	if m&tcell.ModShift != 0 {
		out |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= key.ModMeta
	}
	return out
}

// convertButton maps the tcell button mask onto a single button.
// Wheel bits win over held buttons so wheel turns mid-drag scroll.
func convertButton(b tcell.ButtonMask) MouseButton {
	switch {
	case b&tcell.WheelUp != 0:
		return WheelUp
	case b&tcell.WheelDown != 0:
		return WheelDown
	case b&tcell.Button1 != 0:
		return ButtonLeft
	case b&tcell.Button3 != 0:
		return ButtonMiddle
	case b&tcell.Button2 != 0:
		return ButtonRight
	default:
		return ButtonNone
	}
}
