package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-cosmos/internal/astro"
	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/state"
)

var errTest = errors.New("boom")

type stubCalc struct {
	calls []time.Time
	err   error

	// moonPerDay moves the Moon from 200° at testNow when non-zero.
	moonPerDay float64
}

func (c *stubCalc) Calculate(t time.Time) (jyotish.CosmicData, error) {
	c.calls = append(c.calls, t)
	if c.err != nil {
		return jyotish.CosmicData{}, c.err
	}
	if c.moonPerDay != 0 {
		days := t.Sub(testNow).Hours() / 24
		return *testDataWithMoon(t, astro.NormalizeDegrees(200+c.moonPerDay*days)), nil
	}
	return *testData(t), nil
}

var testNow = time.Date(2024, 4, 23, 12, 0, 0, 0, time.UTC)

func newTestModel(calc *stubCalc) Model {
	cfg := state.DefaultConfig()
	cfg.RefreshInterval = 30 * time.Second
	m := New(state.NewManager(cfg), calc)
	m.now = func() time.Time { return testNow }
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting calculation, if any.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(Model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if inner := c(); inner != nil {
				next, _ = m.Update(inner)
				m = next.(Model)
			}
		}
		return m
	}
	next, _ = m.Update(msg)
	return next.(Model)
}

func TestModel_QuitKey(t *testing.T) {
	m := newTestModel(&stubCalc{})

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_ComputeOnRefresh(t *testing.T) {
	calc := &stubCalc{}
	m := press(t, newTestModel(calc), "r")

	if len(calc.calls) != 1 || !calc.calls[0].Equal(testNow) {
		t.Fatalf("calls = %v, want one call at now", calc.calls)
	}
	if m.snapshot.Data == nil {
		t.Fatal("snapshot not updated after refresh")
	}
	if !m.nextRefresh.Equal(testNow.Add(30 * time.Second)) {
		t.Errorf("nextRefresh = %v, want now+30s", m.nextRefresh)
	}
	if !m.Live() {
		t.Error("refresh should keep live mode")
	}
}

func TestModel_StepDays(t *testing.T) {
	calc := &stubCalc{}
	m := press(t, newTestModel(calc), "r")

	m = press(t, m, "right")
	if m.Live() {
		t.Error("stepping should pause live mode")
	}
	if want := testNow.AddDate(0, 0, 1); !m.snapshot.Data.Time.Equal(want) {
		t.Errorf("after right: time = %v, want %v", m.snapshot.Data.Time, want)
	}

	m = press(t, m, "left")
	m = press(t, m, "left")
	if want := testNow.AddDate(0, 0, -1); !m.snapshot.Data.Time.Equal(want) {
		t.Errorf("after left x2: time = %v, want %v", m.snapshot.Data.Time, want)
	}

	m = press(t, m, "n")
	if !m.Live() {
		t.Error("n should return to live mode")
	}
	if !m.snapshot.Data.Time.Equal(testNow) {
		t.Errorf("after n: time = %v, want now", m.snapshot.Data.Time)
	}
}

func TestModel_TickRecomputesWhenDue(t *testing.T) {
	calc := &stubCalc{}
	m := press(t, newTestModel(calc), "r")

	// Not yet due.
	next, _ := m.Update(TickMsg(testNow))
	m = next.(Model)
	if len(calc.calls) != 1 {
		t.Fatalf("calls = %d, want 1 before refresh is due", len(calc.calls))
	}

	m.now = func() time.Time { return testNow.Add(31 * time.Second) }
	next, cmd := m.Update(TickMsg(testNow.Add(31 * time.Second)))
	m = next.(Model)
	for _, c := range cmd().(tea.BatchMsg) {
		if c == nil {
			continue
		}
		if msg, ok := c().(DataUpdateMsg); ok {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	if len(calc.calls) != 2 {
		t.Errorf("calls = %d, want 2 after refresh is due", len(calc.calls))
	}
}

func TestModel_TickPausedDoesNotRecompute(t *testing.T) {
	calc := &stubCalc{}
	m := press(t, newTestModel(calc), "r")
	m = press(t, m, "right")
	calls := len(calc.calls)

	m.now = func() time.Time { return testNow.Add(time.Hour) }
	_, cmd := m.Update(TickMsg(testNow.Add(time.Hour)))
	if _, ok := cmd().(TickMsg); !ok {
		t.Error("paused tick should only reschedule the tick")
	}
	if len(calc.calls) != calls {
		t.Errorf("calls = %d, want %d", len(calc.calls), calls)
	}
}

func TestModel_ComputeError(t *testing.T) {
	calc := &stubCalc{err: errTest}
	m := press(t, newTestModel(calc), "r")

	if m.snapshot.LastError == nil {
		t.Error("LastError not recorded")
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if out := next.(Model).View(); !strings.Contains(out, "boom") {
		t.Errorf("error not shown in view")
	}
}

func TestModel_ViewSwitching(t *testing.T) {
	m := newTestModel(&stubCalc{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	m = press(t, m, "2")
	if m.viewMode != ViewEvents {
		t.Errorf("viewMode = %v, want events", m.viewMode)
	}
	if !strings.Contains(m.View(), "Transit Log") {
		t.Error("events view not rendered")
	}

	m = press(t, m, "tab")
	if m.viewMode != ViewDashboard {
		t.Errorf("viewMode after tab = %v, want dashboard", m.viewMode)
	}
}

func TestModel_EventsAfterStepping(t *testing.T) {
	calc := &stubCalc{}
	m := press(t, newTestModel(calc), "r")
	m = press(t, m, "right")

	// Identical positions a day apart: no transits.
	if len(m.events.events) != 0 {
		t.Errorf("events = %+v, want none", m.events.events)
	}
}

func TestModel_EventsAfterSteppingForward(t *testing.T) {
	calc := &stubCalc{moonPerDay: 30}
	m := press(t, newTestModel(calc), "r")
	m = press(t, m, "right")

	// 200° Libra -> 230° Scorpio.
	found := false
	for _, e := range m.events.events {
		if e.Type == state.EventSignIngress && e.Body == "Moon" && e.To == "Scorpio" {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %+v, want Moon ingress into Scorpio", m.events.events)
	}
}

func TestModel_ReturnToNowDoesNotReplayTransits(t *testing.T) {
	calc := &stubCalc{moonPerDay: 30}
	m := press(t, newTestModel(calc), "r")

	// 200° Libra -> 170° Virgo: stepping back is silent.
	m = press(t, m, "left")
	if len(m.events.events) != 0 {
		t.Fatalf("events after stepping back = %+v, want none", m.events.events)
	}

	// Back to now: Virgo -> Libra lies inside the paused span.
	m = press(t, m, "n")
	if !m.Live() || !m.snapshot.Data.Time.Equal(testNow) {
		t.Fatalf("after n: live=%v time=%v", m.Live(), m.snapshot.Data.Time)
	}
	if len(m.events.events) != 0 {
		t.Errorf("events after returning to now = %+v, want none", m.events.events)
	}

	// Live refreshes keep detecting.
	m = press(t, m, "right")
	if len(m.events.events) == 0 {
		t.Error("forward step after returning to now produced no events")
	}
}

func TestModel_ViewBeforeReady(t *testing.T) {
	m := newTestModel(&stubCalc{})
	if m.View() != "Initializing..." {
		t.Errorf("View before size = %q", m.View())
	}
}

func TestEventsView(t *testing.T) {
	snap := state.Snapshot{Events: []state.Event{
		{Type: state.EventSignIngress, Timestamp: testNow, Body: "Moon", From: "Aries", To: "Taurus"},
		{Type: state.EventStationRetro, Timestamp: testNow.Add(time.Hour), Body: "Mars", To: "Cancer"},
	}}
	m := NewEventsModel().SetSize(100, 20).UpdateData(snap)

	out := m.View()
	first := strings.Index(out, "Mars stations retrograde")
	second := strings.Index(out, "Moon Aries → Taurus")
	if first < 0 || second < 0 {
		t.Fatalf("events missing from view: %q", out)
	}
	if first > second {
		t.Error("events should be listed newest first")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if strings.Contains(m.View(), "Mars stations") {
		t.Error("scrolling down should hide the newest event")
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 6); got != "#4338CA" {
		t.Errorf("gradientColor start = %s, want #4338CA", got)
	}
	got := gradientColor(9, 5, 10, 6)
	if len(got) != 7 || got[0] != '#' {
		t.Errorf("gradientColor = %q, want #RRGGBB", got)
	}
}
