// Package screen defines the contract between the router and the pages of
// the terminal client.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonbuddy/internal/ui/layout"
)

// Screen is one page of the terminal client. The router owns a stack of
// them and only the top one receives input.
type Screen interface {
	// Init starts the screen's first work, typically a remote request, and
	// is called every time the screen is pushed.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body between the header and the footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens whose footer hints depend on
// their state.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Owned is implemented by the results of remote requests. The router hands
// an Owned message to the screen that issued it, wherever that screen sits
// in the stack, and never to any other screen.
type Owned interface {
	Owner() Screen
}

// Abandoner is an Owned message whose owner may be gone by the time it
// arrives. Abandon is called instead of delivery so the message can still
// settle state that outlives the screen.
type Abandoner interface {
	Owned
	Abandon()
}
