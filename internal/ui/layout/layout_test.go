package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestPopupPosition(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 80, Height: 20}

	tests := []struct {
		name   string
		target Rect
		w, h   int
		wantX  int
		wantY  int
	}{
		{"centred above", Rect{X: 10, Y: 5, Width: 40, Height: 3}, 10, 1, 25, 4},
		{"clamped to top", Rect{X: 10, Y: 0, Width: 40, Height: 3}, 10, 1, 25, 0},
		{"clamped left", Rect{X: 0, Y: 5, Width: 4, Height: 1}, 12, 1, 0, 4},
		{"clamped right", Rect{X: 76, Y: 5, Width: 4, Height: 1}, 12, 1, 68, 4},
		{"wider than area", Rect{X: 0, Y: 5, Width: 10, Height: 1}, 100, 1, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := PopupPosition(tt.target, tt.w, tt.h, area)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("PopupPosition = (%d, %d), want (%d, %d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPopupPosition_OffsetArea(t *testing.T) {
	area := Rect{X: 2, Y: 3, Width: 40, Height: 10}
	x, y := PopupPosition(Rect{X: 2, Y: 3, Width: 2, Height: 1}, 8, 1, area)
	if x != 2 || y != 3 {
		t.Errorf("PopupPosition = (%d, %d), want (2, 3)", x, y)
	}
}

func TestOverlay(t *testing.T) {
	base := strings.Repeat(".", 10) + "\n" + strings.Repeat(".", 10)
	out := strings.ReplaceAll(Overlay(base, "XY", 3, 1), "\r", "")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.Contains(lines[1], "...XY") {
		t.Errorf("popup not drawn at (3,1): %q", lines[1])
	}
	if strings.Contains(lines[0], "X") {
		t.Errorf("popup leaked into row 0: %q", lines[0])
	}
}

func TestRenderHeader_Width(t *testing.T) {
	h := RenderHeader("Lesson", "dark", 80)
	if lipgloss.Width(h) != 80 {
		t.Errorf("header width = %d, want 80", lipgloss.Width(h))
	}
	if !strings.Contains(h, "LessonBuddy") || !strings.Contains(h, "Lesson") {
		t.Errorf("header missing app name or title: %q", h)
	}
}
