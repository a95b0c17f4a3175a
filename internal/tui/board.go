// Package tui holds tally's interactive terminal views: the daily board and
// the habit picker.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/ui"
)

// Source is the storage the board reads from and toggles through.
// *habit.Store satisfies it.
type Source interface {
	List(ctx context.Context, opts habit.ListOptions) ([]habit.Habit, error)
	Ledger(ctx context.Context, habitID string, opts ...habit.LedgerOption) (*habit.Ledger, error)
	ApplyToggle(ctx context.Context, id string, d, today day.Key) (habit.Decision, error)
}

// FileChangedMsg asks the board to reload; the watcher sends it when the
// database changes on disk.
type FileChangedMsg struct{}

type boardLoadedMsg struct {
	habits  []habit.Habit
	ledgers map[string]*habit.Ledger
}

type boardErrMsg struct{ err error }

type toggledMsg struct {
	name     string
	decision habit.Decision
	err      error
}

// boardRow is a habit as shown for the selected day.
type boardRow struct {
	habit   habit.Habit
	counter int
	streak  habit.StreakResult
	score   int
}

// BoardModel is the Bubbletea model behind `tally board`.
type BoardModel struct {
	src   Source
	log   *slog.Logger
	today func() day.Key

	habits  []habit.Habit
	ledgers map[string]*habit.Ledger

	selected day.Key
	cursor   int

	filtering bool
	filter    string

	keys boardKeys
	help help.Model

	status    string
	statusErr bool
	loading   bool
	err       error

	width  int
	height int
}

// NewBoardModel creates a board showing today as reported by the today
// func.
func NewBoardModel(src Source, today func() day.Key, log *slog.Logger) *BoardModel {
	if log == nil {
		log = slog.Default()
	}
	return &BoardModel{
		src:      src,
		log:      log,
		today:    today,
		selected: today(),
		ledgers:  map[string]*habit.Ledger{},
		keys:     defaultBoardKeys(),
		help:     help.New(),
		loading:  true,
		width:    80,
		height:   24,
	}
}

// RunBoard runs the board until the user quits. When dbPath is non-empty
// the board reloads whenever that database changes on disk.
func RunBoard(src Source, today func() day.Key, log *slog.Logger, dbPath string) error {
	m := NewBoardModel(src, today, log)
	prog := tea.NewProgram(m, tea.WithAltScreen())

	if dbPath != "" {
		stop, err := StartWatcher(dbPath, prog.Send)
		if err != nil {
			log.Warn("file watcher unavailable", "db", dbPath, "error", err)
		} else {
			defer stop()
		}
	}

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	return nil
}

func (m *BoardModel) Init() tea.Cmd {
	return m.load()
}

func (m *BoardModel) load() tea.Cmd {
	src, log := m.src, m.log
	return func() tea.Msg {
		ctx := context.Background()
		habits, err := src.List(ctx, habit.ListOptions{})
		if err != nil {
			return boardErrMsg{err}
		}
		ledgers := make(map[string]*habit.Ledger, len(habits))
		for _, h := range habits {
			l, err := src.Ledger(ctx, h.ID, habit.WarnDuplicates(log))
			if err != nil {
				return boardErrMsg{err}
			}
			ledgers[h.ID] = l
		}
		return boardLoadedMsg{habits: habits, ledgers: ledgers}
	}
}

func (m *BoardModel) toggle(h habit.Habit, d day.Key) tea.Cmd {
	src, today := m.src, m.today()
	return func() tea.Msg {
		dec, err := src.ApplyToggle(context.Background(), h.ID, d, today)
		return toggledMsg{name: h.Label(), decision: dec, err: err}
	}
}

func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case boardLoadedMsg:
		m.habits = msg.habits
		m.ledgers = msg.ledgers
		m.loading = false
		m.err = nil
		m.clampCursor()
		return m, nil

	case boardErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.status, m.statusErr = msg.err.Error(), true
			m.log.Debug("board toggle rejected", "habit", msg.name, "error", msg.err)
			return m, nil
		}
		m.status, m.statusErr = describe(msg.name, msg.decision), false
		return m, m.load()

	case FileChangedMsg:
		return m, m.load()

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *BoardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	switch {
	case key.Matches(msg, m.keys.Quit):
		if msg.String() == "esc" && m.filter != "" {
			m.filter = ""
			m.clampCursor()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Prev):
		m.selected = m.selected.AddDays(-1)
		m.status = ""
		m.clampCursor()

	case key.Matches(msg, m.keys.Next):
		if m.selected.Before(m.today()) {
			m.selected = m.selected.AddDays(1)
			m.status = ""
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Today):
		m.selected = m.today()
		m.status = ""
		m.clampCursor()

	case key.Matches(msg, m.keys.Toggle):
		if len(rows) > 0 && !m.loading {
			return m, m.toggle(rows[m.cursor].habit, m.selected)
		}

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *BoardModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(msg.Runes)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	m.cursor = 0
	return m, nil
}

func (m *BoardModel) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// rows returns the habits active on the selected day that match the
// filter. With a filter the best matches come first.
func (m *BoardModel) rows() []boardRow {
	today := m.today()
	var out []boardRow
	for _, h := range m.habits {
		if !habit.IsActiveOn(h, m.selected) {
			continue
		}
		score, ok := fuzzyScore(m.filter, h.Name)
		if !ok {
			continue
		}
		l := m.ledgers[h.ID]
		out = append(out, boardRow{
			habit:   h,
			counter: l.Counter(m.selected),
			streak:  habit.CalculateStreak(l.Days(), today),
			score:   score,
		})
	}
	if m.filter != "" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	}
	return out
}

func describe(name string, d habit.Decision) string {
	switch d.Action {
	case habit.ActionReset:
		return fmt.Sprintf("%s reset for %s", name, d.Date)
	case habit.ActionIncrement, habit.ActionCreate:
		if d.IsFullyComplete {
			return fmt.Sprintf("%s done for %s", name, d.Date)
		}
		return fmt.Sprintf("%s %d/%d for %s", name, d.NewCounter, d.Limit, d.Date)
	}
	return name
}

func (m *BoardModel) View() string {
	var b strings.Builder

	today := m.today()
	when := m.selected.Time(nil).Format("Mon Jan 2, 2006")
	switch m.selected.DaysUntil(today) {
	case 0:
		when += ui.Muted.Render("  today")
	case 1:
		when += ui.Muted.Render("  yesterday")
	default:
		when += ui.Muted.Render(fmt.Sprintf("  %d days ago", m.selected.DaysUntil(today)))
	}
	b.WriteString("  " + ui.Title.Render(ui.IconTally+"tally") + "  " + when + "\n\n")

	rows := m.rows()
	switch {
	case m.err != nil:
		b.WriteString("  " + ui.Error.Render(ui.IconError+m.err.Error()) + "\n")
	case m.loading:
		b.WriteString("  " + ui.Muted.Render("Loading…") + "\n")
	case len(rows) == 0 && m.filter != "":
		b.WriteString("  " + ui.Muted.Render("No matches. Press esc to clear the filter.") + "\n")
	case len(rows) == 0:
		b.WriteString("  " + ui.Muted.Render("Nothing scheduled for this day.") + "\n")
	default:
		vis := m.height - 9
		if vis < 3 {
			vis = 3
		}
		offset := 0
		if m.cursor >= vis {
			offset = m.cursor - vis + 1
		}
		nameWidth := 0
		for _, r := range rows {
			nameWidth = max(nameWidth, lipgloss.Width(r.habit.Label()))
		}
		for i := offset; i < len(rows) && i < offset+vis; i++ {
			b.WriteString(m.renderRow(rows[i], i == m.cursor, nameWidth) + "\n")
		}
	}
	b.WriteString("\n")

	if m.filtering || m.filter != "" {
		prompt := lipgloss.NewStyle().Foreground(ui.Amber).Bold(true).Render("/")
		cursor := ""
		if m.filtering {
			cursor = lipgloss.NewStyle().Foreground(ui.Amber).Render("▎")
		}
		b.WriteString("  " + prompt + " " + m.filter + cursor + "\n")
	}

	if m.status != "" {
		if m.statusErr {
			b.WriteString("  " + ui.Error.Render(m.status) + "\n")
		} else {
			b.WriteString("  " + ui.Success.Render(ui.IconOk+m.status) + "\n")
		}
	}

	done := 0
	for _, r := range rows {
		if r.counter >= r.habit.Limit() {
			done++
		}
	}
	b.WriteString(ui.Muted.Render(fmt.Sprintf("  %d/%d done", done, len(rows))) + "\n")
	b.WriteString("  " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m *BoardModel) renderRow(r boardRow, selected bool, nameWidth int) string {
	pointer := "  "
	name := lipgloss.NewStyle().Width(nameWidth)
	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		name = name.Foreground(ui.Amber).Bold(true)
	}
	limit := r.habit.Limit()
	line := fmt.Sprintf("  %s%s %s", pointer, ui.StyledRing(r.counter, limit), name.Render(r.habit.Label()))
	if c := ui.Count(r.counter, limit); c != "" {
		line += "  " + ui.Muted.Render(c)
	}
	if r.streak.Current > 0 {
		line += "  " + ui.Streak(r.streak.Current)
	}
	return line
}
