package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonbuddy/internal/router"
	"github.com/abhisek/lessonbuddy/internal/screen"
)

type fakeChatter struct {
	reply string
	err   error
	got   []string
}

func (f *fakeChatter) Chat(_ context.Context, message string) (string, error) {
	f.got = append(f.got, message)
	return f.reply, f.err
}

func typeText(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

func TestChatScreen_SendAndReply(t *testing.T) {
	client := &fakeChatter{reply: "Photosynthesis turns light into sugar."}
	tr := NewTranscript()
	s := New(client, tr, "")

	var scr screen.Screen = typeText(s, "what is photosynthesis")
	scr, cmd := scr.Update(enter())
	if cmd == nil {
		t.Fatal("expected a chat command")
	}

	if tr.Len() != 2 {
		t.Fatalf("transcript len = %d, want 2", tr.Len())
	}
	if e := tr.Entries()[1]; !e.Pending || e.Text != ThinkingText {
		t.Errorf("placeholder = %+v, want pending %q", e, ThinkingText)
	}
	if !strings.Contains(scr.View(80, 20), ThinkingText) {
		t.Error("view should show the thinking placeholder")
	}

	scr, _ = scr.Update(cmd())
	if got := tr.Entries()[1]; got.Pending || got.Text != client.reply {
		t.Errorf("reply entry = %+v", got)
	}
	if client.got[0] != "what is photosynthesis" {
		t.Errorf("sent %q", client.got[0])
	}
	if scr.(*ChatScreen).Waiting() {
		t.Error("screen should no longer be waiting")
	}
}

func TestChatScreen_ErrorReply(t *testing.T) {
	client := &fakeChatter{err: errors.New("boom")}
	tr := NewTranscript()
	var scr screen.Screen = New(client, tr, "")

	scr = typeText(scr, "hi")
	scr, cmd := scr.Update(enter())
	scr.Update(cmd())

	if got := tr.Entries()[1].Text; got != ErrorText {
		t.Errorf("reply = %q, want %q", got, ErrorText)
	}
}

func TestChatScreen_BlankInputIgnored(t *testing.T) {
	tr := NewTranscript()
	var scr screen.Screen = New(&fakeChatter{}, tr, "")
	scr = typeText(scr, "   ")
	_, cmd := scr.Update(enter())
	if cmd != nil || tr.Len() != 0 {
		t.Error("blank input must not be sent")
	}
}

func TestChatScreen_OneExchangeAtATime(t *testing.T) {
	tr := NewTranscript()
	var scr screen.Screen = New(&fakeChatter{reply: "ok"}, tr, "")
	scr = typeText(scr, "one")
	scr, _ = scr.Update(enter())
	scr = typeText(scr, "two")
	_, cmd := scr.Update(enter())
	if cmd != nil || tr.Len() != 2 {
		t.Error("second message must wait for the first reply")
	}
}

func TestChatScreen_OpeningMessage(t *testing.T) {
	client := &fakeChatter{reply: "Sure."}
	tr := NewTranscript()
	s := New(client, tr, `Can you explain this concept in simpler terms: "x"`)

	if s.Init() == nil {
		t.Fatal("expected Init to send the opening message")
	}
	if tr.Len() != 2 || tr.Entries()[0].Text != `Can you explain this concept in simpler terms: "x"` {
		t.Errorf("transcript = %+v", tr.Entries())
	}
}

func TestChatScreen_SharedTranscript(t *testing.T) {
	tr := NewTranscript()
	tr.Add(Entry{Role: RoleUser, Text: "earlier question"})
	tr.Add(Entry{Role: RoleBot, Text: "earlier answer"})

	view := New(&fakeChatter{}, tr, "").View(80, 20)
	if !strings.Contains(view, "earlier answer") {
		t.Error("a new chat screen should show the shared history")
	}
}

func TestTranscript_ResolveOutOfRange(t *testing.T) {
	tr := NewTranscript()
	tr.Resolve(3, "x")
	if tr.Len() != 0 {
		t.Error("Resolve must not grow the transcript")
	}
}

type lessonStub struct{}

func (lessonStub) Init() tea.Cmd                             { return nil }
func (l lessonStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return l, nil }
func (lessonStub) View(int, int) string                      { return "lesson" }
func (lessonStub) Title() string                             { return "Lesson" }

func TestChatScreen_ReplyAfterCloseSettlesTranscript(t *testing.T) {
	client := &fakeChatter{reply: "Mitochondria make ATP."}
	tr := NewTranscript()
	r := router.New(lessonStub{})

	first := New(client, tr, "")
	r.Update(router.PushScreenMsg{Screen: first})
	typeText(first, "what do mitochondria do")
	_, cmd := first.Update(enter())
	if cmd == nil {
		t.Fatal("expected a chat command")
	}
	r.Update(router.PopScreenMsg{})

	r.Update(cmd())
	if got := tr.Entries()[1]; got.Pending || got.Text != client.reply {
		t.Fatalf("entry = %+v, want settled reply", got)
	}

	next := New(client, tr, "")
	r.Update(router.PushScreenMsg{Screen: next})
	view := next.View(80, 20)
	if strings.Contains(view, ThinkingText) {
		t.Error("reopened chat still shows the placeholder")
	}
	if !strings.Contains(view, "Mitochondria make ATP.") {
		t.Error("reopened chat should show the reply")
	}
}

func TestChatScreen_FailedReplyAfterClose(t *testing.T) {
	client := &fakeChatter{err: errors.New("boom")}
	tr := NewTranscript()
	r := router.New(lessonStub{})

	s := New(client, tr, "")
	r.Update(router.PushScreenMsg{Screen: s})
	typeText(s, "hello")
	_, cmd := s.Update(enter())
	r.Update(router.PopScreenMsg{})
	r.Update(cmd())

	if got := tr.Entries()[1]; got.Pending || got.Text != ErrorText {
		t.Errorf("entry = %+v, want %q", got, ErrorText)
	}
}
