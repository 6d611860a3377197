// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/state"
	"github.com/litescript/ls-cosmos/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewEvents
)

// Calculator produces CosmicData for an instant.
type Calculator interface {
	Calculate(t time.Time) (jyotish.CosmicData, error)
}

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new calculation is available.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a calculation error.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	state *state.Manager
	calc  Calculator

	viewMode ViewMode
	width    int
	height   int
	ready    bool
	animTick int

	dashboard DashboardModel
	events    EventsModel

	snapshot state.Snapshot

	// at is the pinned calculation time; zero means live.
	at          time.Time
	nextRefresh time.Time
	now         func() time.Time
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, calc Calculator) Model {
	return Model{
		state:     stateMgr,
		calc:      calc,
		viewMode:  ViewDashboard,
		dashboard: NewDashboardModel(),
		events:    NewEventsModel(),
		now:       time.Now,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.computeCmd(),
		tickCmd(),
		animTickCmd(),
	)
}

// Live reports whether the model tracks the current time.
func (m Model) Live() bool {
	return m.at.IsZero()
}

// targetTime is the instant the next calculation is for.
func (m Model) targetTime() time.Time {
	if m.Live() {
		return m.now()
	}
	return m.at
}

// displayedTime is the instant currently shown.
func (m Model) displayedTime() time.Time {
	if m.snapshot.Data != nil {
		return m.snapshot.Data.Time
	}
	return m.targetTime()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "d":
			m.viewMode = ViewDashboard
		case "2", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % 2

		case "r":
			cmds = append(cmds, m.computeCmd())
		case "left", "h":
			m.at = m.displayedTime().AddDate(0, 0, -1)
			cmds = append(cmds, m.computeCmd())
		case "right", "l":
			m.at = m.displayedTime().AddDate(0, 0, 1)
			cmds = append(cmds, m.computeCmd())
		case "n":
			// Returning to now jumps over the paused span; nothing in it is
			// reported as a transit.
			rebase := !m.Live()
			m.at = time.Time{}
			if rebase {
				cmds = append(cmds, m.rebaseCmd())
			} else {
				cmds = append(cmds, m.computeCmd())
			}

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes ~10 lines, footer ~2 lines
		contentHeight := msg.Height - 14
		m.dashboard = m.dashboard.SetSize(msg.Width, contentHeight)
		m.events = m.events.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if m.Live() && !m.nextRefresh.IsZero() && !m.now().Before(m.nextRefresh) {
			m.nextRefresh = time.Time{}
			cmds = append(cmds, m.computeCmd())
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case DataUpdateMsg:
		m.snapshot = msg.Snapshot
		m.dashboard = m.dashboard.UpdateData(m.snapshot).SetError(nil)
		m.events = m.events.UpdateData(m.snapshot)
		m.nextRefresh = m.now().Add(m.state.RefreshInterval())

	case ErrorMsg:
		m.snapshot = m.state.Snapshot()
		m.dashboard = m.dashboard.SetError(msg.Error)
		m.nextRefresh = m.now().Add(m.state.RefreshInterval())

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return cmd
}

// computeCmd runs a calculation off the UI goroutine and records it.
func (m Model) computeCmd() tea.Cmd {
	mgr := m.state
	return m.calculateCmd(func(data *jyotish.CosmicData, d time.Duration) {
		mgr.Update(data, d, nil)
	})
}

// rebaseCmd is computeCmd for a jump: the result replaces the baseline
// without producing events.
func (m Model) rebaseCmd() tea.Cmd {
	return m.calculateCmd(m.state.Rebase)
}

func (m Model) calculateCmd(store func(*jyotish.CosmicData, time.Duration)) tea.Cmd {
	calc, mgr, at := m.calc, m.state, m.targetTime()
	return func() tea.Msg {
		start := time.Now()
		data, err := calc.Calculate(at)
		if err != nil {
			mgr.Update(nil, time.Since(start), err)
			return ErrorMsg{Error: err}
		}
		store(&data, time.Since(start))
		return DataUpdateMsg{Snapshot: mgr.Snapshot()}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewDashboard:
		content = m.dashboard.View()
	case ViewEvents:
		content = m.events.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderStatusLine()
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗       ██████╗ ██████╗ ███████╗███╗   ███╗ ██████╗ ███████╗`,
		`  ██║     ██╔════╝      ██╔════╝██╔═══██╗██╔════╝████╗ ████║██╔═══██╗██╔════╝`,
		`  ██║     ███████╗█████╗██║     ██║   ██║███████╗██╔████╔██║██║   ██║███████╗`,
		`  ██║     ╚════██║╚════╝██║     ██║   ██║╚════██║██║╚██╔╝██║██║   ██║╚════██║`,
		`  ███████╗███████║      ╚██████╗╚██████╔╝███████║██║ ╚═╝ ██║╚██████╔╝███████║`,
		`  ╚══════╝╚══════╝       ╚═════╝ ╚═════╝ ╚══════╝╚═╝     ╚═╝ ╚═════╝ ╚══════╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		lineLen := len(runes)

		for col, r := range runes {
			color := gradientColor(col, row, lineLen, len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Sidereal Sky · Cosmic Weather"))
	b.WriteString("\n")

	line := fmt.Sprintf("  (c) 2025 litescript.net | v%s | Lahiri ayanamsa %.1f°", version.Version, jyotish.LahiriAyanamsa)
	b.WriteString(muted.Render(line))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// indigo -> violet -> gold, fading toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Indigo (#4338CA) -> Violet (#8B5CF6) -> Gold (#F59E0B)
	var r, g, b float64
	if xRatio < 0.5 {
		t := xRatio / 0.5
		r = 67 + t*(139-67)
		g = 56 + t*(92-56)
		b = 202 + t*(246-202)
	} else {
		t := (xRatio - 0.5) / 0.5
		r = 139 + t*(245-139)
		g = 92 + t*(158-92)
		b = 246 + t*(11-246)
	}

	brightness := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v > 255:
		return 255
	case v < 0:
		return 0
	default:
		return int(v)
	}
}

func (m Model) renderStatusLine() string {
	tabs := m.renderTabs()

	modeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	mode := modeStyle.Render("● LIVE")
	if !m.Live() {
		mode = modeStyle.Render("⏸ " + m.at.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return tabs + "    " + mode + "\n"
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Dashboard", "[2] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.Data != nil && m.Live():
		countdown := m.nextRefresh.Sub(m.now()).Round(time.Second)
		if countdown < 0 {
			countdown = 0
		}
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" refresh in %ds", int(countdown.Seconds())))
		if m.snapshot.ComputeDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.ComputeDuration.Round(time.Millisecond).String() + ")")
		}
	case m.snapshot.Data != nil:
		status = dimStyle.Render("paused")
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing...")
	}

	var help string
	switch m.viewMode {
	case ViewEvents:
		help = dimStyle.Render("↑↓: scroll | ←/→: day | n: now | r: refresh | q: quit")
	default:
		help = dimStyle.Render("↑↓: bodies | ←/→: day | n: now | r: refresh | tab: view | q: quit")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
