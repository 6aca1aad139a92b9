package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

// Button is a styled button. Only an active (focused) button can be
// pressed. The owner decides what a press does, so the action always sees
// the owner's current state.
type Button struct {
	Label  string
	Active bool
}

// NewButton creates a new button.
func NewButton(label string, active bool) Button {
	return Button{Label: label, Active: active}
}

// Pressed reports whether msg presses the button: Enter or Space while
// it is active.
func (b Button) Pressed(msg tea.Msg) bool {
	if !b.Active {
		return false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	switch kmsg.String() {
	case "enter", "space", " ":
		return true
	}
	return false
}

// View renders the button.
func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
