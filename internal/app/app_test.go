package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/router"
	"github.com/abhisek/lessonbuddy/internal/screens/chat"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

type nopService struct{}

func (nopService) Chat(context.Context, string) (string, error) { return "hi", nil }
func (nopService) GenerateLesson(context.Context, string) (*api.Lesson, error) {
	return &api.Lesson{}, nil
}
func (nopService) RevisionNotes(context.Context, string) (string, error)      { return "", nil }
func (nopService) GenerateAssessment(context.Context, string) (string, error) { return "", nil }

func newTestModel() AppModel {
	m := newAppModel(Options{Client: nopService{}, Topics: []string{"Gravity"}, Status: "127.0.0.1:5000", Logger: zerolog.Nop()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(AppModel)
}

func TestView_RendersHomeInFrame(t *testing.T) {
	m := newTestModel()
	content := m.render()
	for _, want := range []string{"LessonBuddy", "Home", "Gravity", "127.0.0.1:5000"} {
		if !strings.Contains(content, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_TooSmall(t *testing.T) {
	m := newAppModel(Options{Client: nopService{}, Logger: zerolog.Nop()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	if !strings.Contains(updated.(AppModel).render(), "Terminal too small") {
		t.Error("expected the minimum size message")
	}
}

func TestCtrlT_TogglesTheme(t *testing.T) {
	t.Cleanup(func() { theme.Apply(theme.Dark) })
	theme.Apply(theme.Dark)

	m := newTestModel()
	m.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	if theme.Current().Name != "light" {
		t.Errorf("theme = %q, want light", theme.Current().Name)
	}
}

func TestEsc_PopsPushedScreen(t *testing.T) {
	m := newTestModel()
	m.Update(router.PushScreenMsg{Screen: chat.New(nopService{}, nil, "")})
	if m.router.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.router.Depth())
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	m.Update(cmd())
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.router.Depth())
	}
}

func TestCtrlC_Quits(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
