package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/ui"
)

// Choice is one habit offered by the picker along with its progress on the
// day being picked for.
type Choice struct {
	Habit   habit.Habit
	Counter int
}

// Picker is a type-to-filter habit selector.
type Picker struct {
	title   string
	choices []Choice
	visible []Choice
	query   string
	cursor  int
	offset  int
	height  int

	chosen   *habit.Habit
	canceled bool

	termHeight int
}

var (
	pickUp     = key.NewBinding(key.WithKeys("up", "ctrl+p", "ctrl+k"))
	pickDown   = key.NewBinding(key.WithKeys("down", "ctrl+n", "ctrl+j"))
	pickSelect = key.NewBinding(key.WithKeys("enter"))
	pickCancel = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
)

// NewPicker creates a picker over choices.
func NewPicker(title string, choices []Choice) *Picker {
	p := &Picker{
		title:      title,
		choices:    choices,
		height:     10,
		termHeight: 24,
	}
	p.refilter()
	return p
}

// PickHabit shows the picker and returns the chosen habit, or nil if the
// user cancelled.
func PickHabit(title string, choices []Choice) (*habit.Habit, error) {
	p := NewPicker(title, choices)
	result, err := tea.NewProgram(p).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	return result.(*Picker).Chosen(), nil
}

// Chosen returns the selected habit, or nil.
func (p *Picker) Chosen() *habit.Habit {
	if p.canceled {
		return nil
	}
	return p.chosen
}

func (p *Picker) Init() tea.Cmd {
	return nil
}

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.termHeight = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickCancel):
			p.canceled = true
			return p, tea.Quit
		case key.Matches(msg, pickSelect):
			if len(p.visible) > 0 {
				h := p.visible[p.cursor].Habit
				p.chosen = &h
			}
			return p, tea.Quit
		case key.Matches(msg, pickUp):
			if p.cursor > 0 {
				p.cursor--
				if p.cursor < p.offset {
					p.offset = p.cursor
				}
			}
		case key.Matches(msg, pickDown):
			if p.cursor < len(p.visible)-1 {
				p.cursor++
				if vis := p.rowsShown(); p.cursor >= p.offset+vis {
					p.offset = p.cursor - vis + 1
				}
			}
		case msg.Type == tea.KeyBackspace:
			if r := []rune(p.query); len(r) > 0 {
				p.query = string(r[:len(r)-1])
				p.refilter()
			}
		case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
			p.query += string(msg.Runes)
			p.refilter()
		}
	}
	return p, nil
}

func (p *Picker) rowsShown() int {
	h := p.height
	if h > p.termHeight-6 {
		h = p.termHeight - 6
	}
	return max(h, 3)
}

func (p *Picker) refilter() {
	type scored struct {
		c     Choice
		score int
	}
	var matches []scored
	for _, c := range p.choices {
		if s, ok := fuzzyScore(p.query, c.Habit.Name); ok {
			matches = append(matches, scored{c, s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	p.visible = p.visible[:0]
	for _, m := range matches {
		p.visible = append(p.visible, m.c)
	}
	p.cursor, p.offset = 0, 0
}

func (p *Picker) View() string {
	var b strings.Builder
	if p.title != "" {
		b.WriteString("  " + ui.Title.Render(p.title) + "\n\n")
	}

	prompt := lipgloss.NewStyle().Foreground(ui.Amber).Bold(true).Render("> ")
	b.WriteString("  " + prompt + p.query + lipgloss.NewStyle().Foreground(ui.Amber).Render("▎") + "\n\n")

	if len(p.visible) == 0 {
		b.WriteString("  " + ui.Muted.Render("No matches") + "\n")
	}
	end := min(p.offset+p.rowsShown(), len(p.visible))
	for i := p.offset; i < end; i++ {
		c := p.visible[i]
		pointer := "  "
		title := c.Habit.Label()
		if i == p.cursor {
			pointer = ui.Accent.Render(ui.IconArrow + " ")
			title = lipgloss.NewStyle().Foreground(ui.Amber).Bold(true).Render(title)
		}
		line := "  " + pointer + ui.StyledRing(c.Counter, c.Habit.Limit()) + " " + title
		if n := ui.Count(c.Counter, c.Habit.Limit()); n != "" {
			line += "  " + ui.Muted.Render(n)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + ui.Muted.Render(fmt.Sprintf("  %d/%d · ↑↓ navigate · enter select · esc cancel", len(p.visible), len(p.choices))) + "\n")
	return b.String()
}
