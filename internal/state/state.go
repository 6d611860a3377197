// Package state provides thread-safe state management for the application.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-cosmos/internal/astro"
	"github.com/litescript/ls-cosmos/internal/ephem"
	"github.com/litescript/ls-cosmos/internal/jyotish"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventSignIngress     EventType = "SIGN_INGRESS"
	EventNakshatraChange EventType = "NAKSHATRA_CHANGE"
	EventTithiChange     EventType = "TITHI_CHANGE"
	EventStationRetro    EventType = "STATION_RETRO"
	EventStationDirect   EventType = "STATION_DIRECT"
)

// Event represents a change between two consecutive calculations.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
}

// String renders the event as a short log line.
func (e Event) String() string {
	switch e.Type {
	case EventStationRetro:
		return fmt.Sprintf("%s stations retrograde in %s", e.Body, e.To)
	case EventStationDirect:
		return fmt.Sprintf("%s stations direct in %s", e.Body, e.To)
	case EventTithiChange:
		return fmt.Sprintf("Tithi %s → %s", e.From, e.To)
	default:
		return fmt.Sprintf("%s %s → %s", e.Body, e.From, e.To)
	}
}

// sample is one sidereal longitude reading.
type sample struct {
	at  time.Time
	lon float64
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	current         *jyotish.CosmicData
	lastCompute     time.Time
	lastError       error
	computeDuration time.Duration

	samples     map[ephem.Body][]sample // last two readings per body
	maxEventGap time.Duration

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents       int
	RefreshInterval time.Duration

	// MaxEventGap is the largest forward step between two calculations
	// that still produces events. Larger jumps re-base silently.
	MaxEventGap time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:       50,
		RefreshInterval: 60 * time.Second,
		MaxEventGap:     36 * time.Hour, // one-day steps in the dashboard
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxGap := cfg.MaxEventGap
	if maxGap <= 0 {
		maxGap = DefaultConfig().MaxEventGap
	}
	return &Manager{
		maxEventGap:     maxGap,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		samples:         make(map[ephem.Body][]sample),
	}
}

// Update atomically records a calculation result. A nil data with a
// non-nil err records the failure and keeps the previous data.
//
// Events are detected only for a forward step of at most MaxEventGap.
// Stepping back re-bases without events; a jump beyond MaxEventGap in
// either direction also drops the motion samples.
func (m *Manager) Update(data *jyotish.CosmicData, computeDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(computeDuration, err)
	if data == nil {
		return
	}

	if m.current != nil {
		gap := data.Time.Sub(m.current.Time)
		switch {
		case gap > m.maxEventGap || gap < -m.maxEventGap:
			m.samples = make(map[ephem.Body][]sample)
		case gap > 0:
			m.detectEvents(m.current, data)
		}
	}

	m.current = data
	m.addSamples(data)
}

// Rebase records data as the new baseline without detecting events and
// without relating it to earlier samples. Use it when the caller jumps,
// e.g. returning from a pinned instant to now.
func (m *Manager) Rebase(data *jyotish.CosmicData, computeDuration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(computeDuration, nil)
	if data == nil {
		return
	}
	m.current = data
	m.samples = make(map[ephem.Body][]sample)
	m.addSamples(data)
}

func (m *Manager) record(computeDuration time.Duration, err error) {
	m.lastCompute = time.Now()
	m.lastError = err
	m.computeDuration = computeDuration
}

// detectEvents compares two calculations and appends events to the log.
func (m *Manager) detectEvents(prev, next *jyotish.CosmicData) {
	ts := next.Time

	prevBodies := make(map[ephem.Body]jyotish.PlanetaryBody, 9)
	for _, b := range prev.Bodies() {
		prevBodies[b.Body] = b
	}

	for _, b := range next.Bodies() {
		p, ok := prevBodies[b.Body]
		if !ok {
			continue
		}

		if p.Sign != b.Sign {
			m.addEvent(Event{
				Type:      EventSignIngress,
				Timestamp: ts,
				Body:      b.Name,
				From:      p.Sign.String(),
				To:        b.Sign.String(),
			})
		}

		if b.Body == ephem.Moon && p.Nakshatra.Index != b.Nakshatra.Index {
			m.addEvent(Event{
				Type:      EventNakshatraChange,
				Timestamp: ts,
				Body:      b.Name,
				From:      p.Nakshatra.Name,
				To:        b.Nakshatra.Name,
			})
		}

		// Nodes are always retrograde; the Sun and Moon never are.
		if p.IsRetro != b.IsRetro {
			typ := EventStationDirect
			if b.IsRetro {
				typ = EventStationRetro
			}
			m.addEvent(Event{
				Type:      typ,
				Timestamp: ts,
				Body:      b.Name,
				From:      p.Sign.String(),
				To:        b.Sign.String(),
			})
		}
	}

	if prev.Tithi.Index != next.Tithi.Index {
		m.addEvent(Event{
			Type:      EventTithiChange,
			Timestamp: ts,
			Body:      "Moon",
			From:      prev.Tithi.Name,
			To:        next.Tithi.Name,
		})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// addSamples appends one longitude sample per body, keeping the last two. A repeat of the same
// instant replaces the last sample.
func (m *Manager) addSamples(data *jyotish.CosmicData) {
	for _, b := range data.Bodies() {
		hist := m.samples[b.Body]
		smp := sample{at: data.Time, lon: b.Longitude}

		if n := len(hist); n > 0 && hist[n-1].at.Equal(data.Time) {
			hist[n-1] = smp
		} else {
			hist = append(hist, smp)
		}
		if len(hist) > 2 {
			hist = hist[len(hist)-2:]
		}
		m.samples[b.Body] = hist
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Data            *jyotish.CosmicData
	LastCompute     time.Time
	LastError       error
	ComputeDuration time.Duration
	Events          []Event

	// Motion is the apparent motion in degrees per day for each body with
	// two usable samples. Negative means retrograde.
	Motion map[ephem.Body]float64
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var data *jyotish.CosmicData
	if m.current != nil {
		cp := copyData(*m.current)
		data = &cp
	}

	return Snapshot{
		Data:            data,
		LastCompute:     m.lastCompute,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		Events:          m.getEventsOrdered(),
		Motion:          m.motion(),
	}
}

func copyData(d jyotish.CosmicData) jyotish.CosmicData {
	d.Planets = append([]jyotish.PlanetaryBody(nil), d.Planets...)
	d.Nodes = append([]jyotish.PlanetaryBody(nil), d.Nodes...)
	return d
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// motion estimates daily motion from the last two samples of each body.
// Samples may be taken in either time order.
func (m *Manager) motion() map[ephem.Body]float64 {
	out := make(map[ephem.Body]float64, len(m.samples))
	for b, hist := range m.samples {
		n := len(hist)
		if n < 2 {
			continue
		}
		p1, p2 := hist[n-2], hist[n-1]

		days := p2.at.Sub(p1.at).Hours() / 24
		if days == 0 {
			continue
		}
		out[b] = astro.UnwrapDelta(p2.lon-p1.lon) / days
	}
	return out
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}
