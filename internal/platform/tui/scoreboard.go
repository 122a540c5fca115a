package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

const maxResults = 100

// resultOrder selects how recorded runs are listed.
type resultOrder int

const (
	orderBest resultOrder = iota
	orderRecent
)

func (o resultOrder) String() string {
	if o == orderRecent {
		return "recent"
	}
	return "best"
}

var (
	boardFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	modeActiveStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	modeIdleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type scoreKeys struct {
	Scroll key.Binding
	Mode   key.Binding
	Order  key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func (k scoreKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.Mode, k.Order, k.Back, k.Quit}
}

func (k scoreKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newScoreKeys() scoreKeys {
	return scoreKeys{
		Scroll: key.NewBinding(key.WithKeys("up", "k", "down", "j"), key.WithHelp("↑/↓", "scroll")),
		Mode:   key.NewBinding(key.WithKeys("tab", "shift+tab", "left", "right", "h", "l"), key.WithHelp("tab/←/→", "mode")),
		Order:  key.NewBinding(key.WithKeys("s", "o"), key.WithHelp("s", "best/recent")),
		Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel lists recorded runs per game mode.
type ScoreboardModel struct {
	modes     []registry.GameInfo
	mode      int
	order     resultOrder
	store     *storage.Store
	results   []storage.ResultEntry
	stats     *storage.GameStats
	loadErr   error
	table     table.Model
	help      help.Model
	keys      scoreKeys
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard showing the first registered mode.
// A nil store shows an empty board.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		modes:  registry.List(),
		store:  store,
		help:   help.New(),
		keys:   newScoreKeys(),
		width:  width,
		height: height,
	}
	m.table = m.newTable()
	m.reload()
	return m
}

func (m ScoreboardModel) newTable() table.Model {
	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Score", Width: 8},
		{Title: "Level", Width: 5},
		{Title: "Time", Width: 7},
		{Title: "Played", Width: 12},
	}
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(h))

	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return t
}

func (m ScoreboardModel) modeID() string {
	if len(m.modes) == 0 {
		return ""
	}
	return m.modes[m.mode].ID
}

// reload fetches results for the current mode and order.
func (m *ScoreboardModel) reload() {
	m.results, m.stats, m.loadErr = nil, nil, nil
	if m.store != nil && m.modeID() != "" {
		m.results, m.loadErr = m.fetch(m.modeID())
		if m.loadErr == nil {
			m.stats, m.loadErr = m.store.GetGameStats(m.modeID())
		}
	}

	rows := make([]table.Row, len(m.results))
	for i, r := range m.results {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Level),
			formatDuration(r.Duration),
			r.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) fetch(gameID string) ([]storage.ResultEntry, error) {
	if m.order == orderBest {
		return m.store.TopScores(gameID, maxResults)
	}
	all, err := m.store.AllScores(gameID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}

func (m *ScoreboardModel) shiftMode(delta int) {
	if n := len(m.modes); n > 1 {
		m.mode = (m.mode + delta + n) % n
		m.reload()
	}
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Mode):
			switch msg.String() {
			case "shift+tab", "left", "h":
				m.shiftMode(-1)
			default:
				m.shiftMode(1)
			}
			return m, nil
		case key.Matches(msg, m.keys.Order):
			m.order = 1 - m.order
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		cursor := m.table.Cursor()
		rows := m.table.Rows()
		m.table = m.newTable()
		m.table.SetRows(rows)
		m.table.SetCursor(cursor)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	parts := []string{
		menuTitleStyle.Render(fmt.Sprintf("RESULTS (%s)", m.order)),
		m.modeStrip(),
		boardFrameStyle.Render(m.body()),
	}
	if line := m.selectedLine(); line != "" {
		parts = append(parts, statsStyle.Render(line))
	}
	if line := m.statsLine(); line != "" {
		parts = append(parts, statsStyle.Render(line))
	}
	parts = append(parts, menuDimStyle.Render(m.help.View(m.keys)))

	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = centerBlock(p, m.width)
	}
	return strings.Join(lines, "\n\n")
}

func (m ScoreboardModel) modeStrip() string {
	tabs := make([]string, len(m.modes))
	for i, g := range m.modes {
		if i == m.mode {
			tabs[i] = modeActiveStyle.Render(g.Title)
		} else {
			tabs[i] = modeIdleStyle.Render(g.Title)
		}
	}
	strip := strings.Join(tabs, " ")
	if len(m.modes) > 0 && lipgloss.Width(strip) > m.width-4 {
		strip = modeActiveStyle.Render("< " + m.modes[m.mode].Title + " >")
	}
	return strip
}

func (m ScoreboardModel) body() string {
	switch {
	case m.loadErr != nil:
		return menuDimStyle.Render("Results unavailable: " + m.loadErr.Error())
	case len(m.results) == 0:
		return menuDimStyle.Italic(true).Padding(1, 2).Render("No runs recorded yet.")
	}
	return m.table.View()
}

// selectedLine describes the highlighted run.
func (m ScoreboardModel) selectedLine() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.results) {
		return ""
	}
	r := m.results[i]
	id := r.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Run %s: %d points, level %d, %s", id, r.Score, r.Level, formatDuration(r.Duration))
}

// statsLine summarises every recorded run of the current mode.
func (m ScoreboardModel) statsLine() string {
	st := m.stats
	if st == nil || st.GamesCount == 0 {
		return ""
	}
	return fmt.Sprintf("Runs: %d  Best: %d  Avg: %.0f  Best level: %d  Played: %s",
		st.GamesCount, st.HighScore, st.AvgScore, st.BestLevel, formatDuration(st.TotalPlaytime))
}

// centerBlock centres each line of a rendered block.
func centerBlock(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = centerText(l, width)
	}
	return strings.Join(lines, "\n")
}

// formatDuration renders a run length as m:ss or h:mm:ss.
func formatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// IsGoingBack reports whether the user asked to return to the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the user asked to quit.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard as its own program and reports whether
// the user went back to the menu.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
