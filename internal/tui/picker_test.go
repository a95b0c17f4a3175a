package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rnwolfe/tally/internal/habit"
)

func choices(names ...string) []Choice {
	out := make([]Choice, len(names))
	for i, n := range names {
		out[i] = Choice{Habit: habit.Habit{ID: n, Name: n, LimitCounter: 3}, Counter: i}
	}
	return out
}

func typeString(p *Picker, s string) {
	for _, r := range s {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestPicker_SelectFirst(t *testing.T) {
	p := NewPicker("Toggle which habit?", choices("Run", "Read", "Meditate"))
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	got := p.Chosen()
	if got == nil || got.Name != "Run" {
		t.Fatalf("expected Run, got %+v", got)
	}
}

func TestPicker_FilterAndNavigate(t *testing.T) {
	p := NewPicker("", choices("Run", "Read", "Meditate", "Journal"))

	typeString(p, "r")
	if len(p.visible) != 3 {
		t.Fatalf("r matches Run, Read and Journal, got %d", len(p.visible))
	}
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 2 {
		t.Fatalf("cursor should clamp at the last match, got %d", p.cursor)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := p.Chosen(); got == nil || got.Name != p.visible[1].Habit.Name {
		t.Fatalf("expected the second match, got %+v", got)
	}
}

func TestPicker_Backspace(t *testing.T) {
	p := NewPicker("", choices("Run", "Read"))
	typeString(p, "rea")
	if len(p.visible) != 1 {
		t.Fatalf("rea should only match Read, got %d", len(p.visible))
	}
	p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if p.query != "r" || len(p.visible) != 2 {
		t.Fatalf("backspace should widen the match, query=%q visible=%d", p.query, len(p.visible))
	}
}

func TestPicker_Cancel(t *testing.T) {
	p := NewPicker("", choices("Run"))
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.Chosen() != nil {
		t.Fatal("esc should choose nothing")
	}
}

func TestPicker_NoMatches(t *testing.T) {
	p := NewPicker("", choices("Run"))
	typeString(p, "zzz")
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Chosen() != nil {
		t.Fatal("enter with no matches should choose nothing")
	}
	if !strings.Contains(p.View(), "No matches") {
		t.Fatalf("view should say no matches:\n%s", p.View())
	}
}

func TestPicker_ViewShowsProgress(t *testing.T) {
	p := NewPicker("Pick", choices("Run", "Read"))
	view := p.View()
	if !strings.Contains(view, "Pick") || !strings.Contains(view, "1/3") {
		t.Fatalf("view should show title and counters:\n%s", view)
	}
	if !strings.Contains(view, "2/2") {
		t.Fatalf("status line should count matches:\n%s", view)
	}
}

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		query, target string
		match         bool
	}{
		{"", "anything", true},
		{"rd", "Read", true},
		{"RD", "read", true},
		{"dr", "Read", false},
		{"cafe", "Café au lait", false},
		{"café", "Café au lait", true},
		{"walk", "walk the dog", true},
	}
	for _, tt := range tests {
		_, ok := fuzzyScore(tt.query, tt.target)
		if ok != tt.match {
			t.Errorf("fuzzyScore(%q, %q) match = %v, want %v", tt.query, tt.target, ok, tt.match)
		}
	}

	start, _ := fuzzyScore("r", "Run")
	mid, _ := fuzzyScore("r", "Bar")
	if start <= mid {
		t.Errorf("a match at the start should outscore one in the middle: %d <= %d", start, mid)
	}
	boundary, _ := fuzzyScore("d", "walk the-dog")
	inner, _ := fuzzyScore("d", "walk theodog")
	if boundary <= inner {
		t.Errorf("a match after a separator should outscore an inner one: %d <= %d", boundary, inner)
	}
}
