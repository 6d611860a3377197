package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-cosmos/internal/ephem"
	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	exaltedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	debilitatedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Italic(true)

	moonlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E2E8F0"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// DashboardModel is the cosmic weather overview.
type DashboardModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
	lastErr  error
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{}
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m DashboardModel) UpdateData(snapshot state.Snapshot) DashboardModel {
	m.snapshot = snapshot
	return m
}

// SetError sets the last error for display.
func (m DashboardModel) SetError(err error) DashboardModel {
	m.lastErr = err
	return m
}

func (m DashboardModel) bodies() []jyotish.PlanetaryBody {
	if m.snapshot.Data == nil {
		return nil
	}
	return m.snapshot.Data.Bodies()
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		count := len(m.bodies())

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < count-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if count > 0 {
				m.cursor = count - 1
			}
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if m.snapshot.Data == nil {
		if m.lastErr == nil {
			b.WriteString("Computing positions...\n")
		}
		return b.String()
	}

	b.WriteString(m.renderSummary())
	b.WriteString("\n")
	b.WriteString(m.renderBodiesTable())

	return b.String()
}

func (m DashboardModel) renderSummary() string {
	d := m.snapshot.Data
	var b strings.Builder

	b.WriteString(titleStyle.Render("Cosmic Weather"))
	b.WriteString(labelStyle.Render("  " + d.Time.UTC().Format("Mon 2006-01-02 15:04 UTC")))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s %-12s %s\n",
		labelStyle.Render("☉ Sun      "),
		d.SunSign.String()+" "+jyotish.FormatDegree(jyotish.DegreeInSign(d.Sun.Longitude)),
		renderDignity(d.SunDignity))
	fmt.Fprintf(&b, "  %s %-12s %s\n",
		labelStyle.Render("☽ Moon     "),
		d.MoonSign.String()+" "+jyotish.FormatDegree(jyotish.DegreeInSign(d.Moon.Longitude)),
		renderDignity(d.MoonDignity))
	fmt.Fprintf(&b, "  %s %s, pada %d %s\n",
		labelStyle.Render("✶ Nakshatra"),
		d.MoonNakshatra.Name,
		jyotish.Pada(d.Moon.Longitude),
		labelStyle.Render(fmt.Sprintf("(%s · %s)", d.MoonNakshatra.Ruler, d.MoonNakshatra.Meaning)))
	fmt.Fprintf(&b, "  %s %d %s · %s\n",
		labelStyle.Render("◐ Tithi    "),
		d.Tithi.Index, d.Tithi.Name, d.Tithi.Paksha)
	fmt.Fprintf(&b, "  %s %-16s %s %5.1f%%\n",
		labelStyle.Render("◯ Phase    "),
		d.MoonPhase,
		m.renderIlluminationBar(d.Illumination, 20),
		d.Illumination)

	b.WriteString("\n")
	b.WriteString(renderLunarEvent("Full Moon", d.NextFullMoon, d.Time))
	b.WriteString(renderLunarEvent("New Moon ", d.NextNewMoon, d.Time))

	return b.String()
}

func renderLunarEvent(label string, ev jyotish.LunarEvent, from time.Time) string {
	return fmt.Sprintf("  %s %s in %s (%s) %s\n",
		labelStyle.Render(label),
		ev.Time.UTC().Format("2006-01-02 15:04"),
		ev.Sign,
		ev.Nakshatra.Name,
		labelStyle.Render("· "+formatUntil(ev.Time.Sub(from))))
}

// formatUntil renders a positive duration as "in 3d 4h" or "in 5h 12m".
func formatUntil(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("in %dd %dh", days, hours)
	}
	return fmt.Sprintf("in %dh %dm", hours, int(d.Minutes())%60)
}

func renderDignity(d jyotish.Dignity) string {
	switch d {
	case jyotish.Exalted:
		return exaltedStyle.Render("▲ " + string(d))
	case jyotish.Debilitated:
		return debilitatedStyle.Render("▼ " + string(d))
	default:
		return ""
	}
}

// renderIlluminationBar draws pct (0-100) as a bracketed bar.
func (m DashboardModel) renderIlluminationBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + moonlightStyle.Render(bar) + "]"
}

func (m DashboardModel) renderBodiesTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Grahas"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-8s %-12s %-7s %-18s %-2s %-2s %-7s %-12s",
		"Body", "Sign", "Degree", "Nakshatra", "Pd", "R", "°/day", "Dignity")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	bodies := m.bodies()

	maxRows := m.height - 12
	if maxRows < 5 {
		maxRows = 5
	}

	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := startIdx + maxRows
	if endIdx > len(bodies) {
		endIdx = len(bodies)
	}

	for i := startIdx; i < endIdx; i++ {
		body := bodies[i]

		retro := ""
		if body.IsRetro {
			retro = "℞"
		}

		dignity := string(body.Dignity)
		if body.Combust {
			dignity = strings.TrimSpace(dignity + " Combust")
		}

		row := fmt.Sprintf("%-8s %-12s %-7s %-18s %-2d %-2s %-7s %-12s",
			body.Name,
			body.Sign,
			jyotish.FormatDegree(jyotish.DegreeInSign(body.Longitude)),
			truncate(body.Nakshatra.Name, 18),
			jyotish.Pada(body.Longitude),
			retro,
			m.formatMotion(body.Body),
			dignity,
		)

		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatMotion renders daily motion, or a dash before two samples exist.
func (m DashboardModel) formatMotion(b ephem.Body) string {
	v, ok := m.snapshot.Motion[b]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%+.2f", v)
}

// SelectedBody returns the body under the cursor, if any.
func (m DashboardModel) SelectedBody() *jyotish.PlanetaryBody {
	bodies := m.bodies()
	if m.cursor < 0 || m.cursor >= len(bodies) {
		return nil
	}
	b := bodies[m.cursor]
	return &b
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
