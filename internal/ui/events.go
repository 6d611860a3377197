package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-cosmos/internal/state"
)

var eventTypeStyles = map[state.EventType]lipgloss.Style{
	state.EventSignIngress:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	state.EventNakshatraChange: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	state.EventTithiChange:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E2E8F0")),
	state.EventStationRetro:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	state.EventStationDirect:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
}

// EventsModel lists detected transits, newest first.
type EventsModel struct {
	width  int
	height int
	offset int
	events []state.Event
}

// NewEventsModel creates a new events model.
func NewEventsModel() EventsModel {
	return EventsModel{}
}

// SetSize updates the viewport size.
func (m EventsModel) SetSize(width, height int) EventsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData replaces the event list from a snapshot.
func (m EventsModel) UpdateData(snapshot state.Snapshot) EventsModel {
	m.events = snapshot.Events
	if m.offset >= len(m.events) {
		m.offset = 0
	}
	return m
}

// Update handles messages.
func (m EventsModel) Update(msg tea.Msg) (EventsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.events)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m EventsModel) visibleRows() int {
	if m.height < 5 {
		return 5
	}
	return m.height - 2
}

// View renders the event log.
func (m EventsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Transit Log"))
	b.WriteString("\n")

	if len(m.events) == 0 {
		b.WriteString(labelStyle.Render("  No transits yet. Step forward with → to watch the sky move."))
		b.WriteString("\n")
		return b.String()
	}

	shown := 0
	for i := len(m.events) - 1 - m.offset; i >= 0 && shown < m.visibleRows(); i-- {
		e := m.events[i]
		style, ok := eventTypeStyles[e.Type]
		if !ok {
			style = rowStyle
		}
		fmt.Fprintf(&b, "  %s  %-17s %s\n",
			labelStyle.Render(e.Timestamp.UTC().Format("2006-01-02 15:04")),
			style.Render(string(e.Type)),
			e.String())
		shown++
	}

	return b.String()
}
