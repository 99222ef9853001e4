package tetrisview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/questguild/questguild/internal/tetris"
)

// frameInterval bounds how often the loop polls gravity.
const frameInterval = 15 * time.Millisecond

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	boardBorder = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 0)
	panelStyle  = lipgloss.NewStyle().Padding(0, 2)
)

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model drives one tetris.Game inside a bubbletea program: key presses are
// applied immediately and each frame tick gives gravity a chance to run.
type Model struct {
	Game  *tetris.Game
	Title string

	bar progress.Model
}

// New wraps a game for display. title is shown above the board.
func New(game *tetris.Game, title string) *Model {
	return &Model{
		Game:  game,
		Title: title,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(20)),
	}
}

// Result is the session outcome, valid once the game is over.
func (m *Model) Result() tetris.Result {
	return m.Game.Result()
}

func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if m.Game.IsOver() {
			return m, nil
		}
		m.Game.Tick()
		return m, tickCmd()
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			m.Game.Quit()
			return m, tea.Quit
		}
		// Any key on the final screen returns to the caller.
		if m.Game.IsOver() {
			return m, tea.Quit
		}
		if action, ok := tetris.KeyAction(key); ok {
			m.Game.Apply(action)
		}
	}
	return m, nil
}

func cellStyle(kind tetris.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(kind.Color()))
}

// RenderBoard draws the settled cells with the falling piece overlaid.
func (m *Model) RenderBoard() string {
	board := m.Game.Board()
	cur := m.Game.Current()
	showPiece := !m.Game.IsOver() || m.Game.Result().Outcome == tetris.OutcomeQuit

	var b strings.Builder
	for y := 0; y < board.Height(); y++ {
		for x := 0; x < board.Width(); x++ {
			if showPiece && cur.Occupied(y-cur.Y, x-cur.X) {
				b.WriteString(cellStyle(cur.Kind).Render("██"))
				continue
			}
			if kind, ok := board.At(x, y).Kind(); ok {
				b.WriteString(cellStyle(kind).Render("██"))
				continue
			}
			b.WriteString(dimStyle.Render(" ."))
		}
		if y < board.Height()-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderPreview(p tetris.Piece) string {
	var b strings.Builder
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if p.Occupied(row, col) {
				b.WriteString(cellStyle(p.Kind).Render("██"))
			} else {
				b.WriteString("  ")
			}
		}
		if row < 3 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// targetProgress is the share of lines needed to reach the target level.
func targetProgress(lines, target int) float64 {
	needed := (target - 1) * 10
	if needed <= 0 {
		return 1
	}
	p := float64(lines) / float64(needed)
	if p > 1 {
		return 1
	}
	return p
}

func (m *Model) renderPanel() string {
	g := m.Game
	lines := []string{
		boldStyle.Render("NEXT"),
		renderPreview(g.Next()),
		"",
		scoreStyle.Render(fmt.Sprintf("SCORE: %d", g.Score())),
		fmt.Sprintf("LEVEL: %d / %d", g.Level(), g.TargetLevel()),
		fmt.Sprintf("LINES: %d", g.Lines()),
		"",
		"TARGET",
		m.bar.ViewAs(targetProgress(g.Lines(), g.TargetLevel())),
		"",
		dimStyle.Render("←/→/↓ move  ↑/x rotate"),
		dimStyle.Render("z rotate back  space drop"),
		dimStyle.Render("q quit"),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) View() string {
	header := boldStyle.Render("┃ QUEST CHALLENGE")
	if m.Title != "" {
		header += boldStyle.Render(" | " + m.Title)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, boardBorder.Render(m.RenderBoard()), m.renderPanel())
	display := header + "\n" + body

	if m.Game.IsOver() {
		res := m.Game.Result()
		summary := fmt.Sprintf("Final score: %d | Level %d | %d lines | %s",
			res.Score, res.FinalLevel, res.LinesCleared, res.TimePlayed.Round(time.Second))
		switch res.Outcome {
		case tetris.OutcomeTargetReached:
			display += "\n" + greenStyle.Render("Target level reached! "+summary)
		case tetris.OutcomeToppedOut:
			display += "\n" + redStyle.Render("The board is full. "+summary)
		default:
			display += "\n" + redStyle.Render("Challenge abandoned. "+summary)
		}
		display += "\n" + dimStyle.Render("Press any key to continue.")
	}
	return display
}
