// Package server exposes cosmic weather over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/litescript/ls-cosmos/internal/almanac"
	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/logging"
	"github.com/litescript/ls-cosmos/internal/version"
)

const (
	// DefaultWSInterval is the push interval for WebSocket clients.
	DefaultWSInterval = 5 * time.Second

	// maxRangeDays bounds /api/almanac range queries.
	maxRangeDays = 366

	writeWait = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Calculator   almanac.Calculator
	ProviderName string
	Almanac      *almanac.Store // optional
	Logger       *logging.Logger
	Metrics      *Metrics
	WSInterval   time.Duration
}

// Server serves the HTTP API.
type Server struct {
	calc       almanac.Calculator
	provider   string
	store      *almanac.Store
	log        *logging.Logger
	metrics    *Metrics
	wsInterval time.Duration
	upgrader   websocket.Upgrader
	now        func() time.Time
}

// New creates a server. A nil calculator selects the default Meeus calculator.
func New(opts Options) *Server {
	s := &Server{
		calc:       opts.Calculator,
		provider:   opts.ProviderName,
		store:      opts.Almanac,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		wsInterval: opts.WSInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
	if s.calc == nil {
		c := jyotish.NewCalculator(nil)
		s.calc = c
		s.provider = c.Provider().Name()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.wsInterval <= 0 {
		s.wsInterval = DefaultWSInterval
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", s.metrics.Handler())
	r.HandleFunc("/ws", s.websocketHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.metrics.Middleware)
	api.HandleFunc("/version", s.versionHandler).Methods(http.MethodGet)
	api.HandleFunc("/cosmic", s.cosmicHandler).Methods(http.MethodGet)
	api.HandleFunc("/almanac", s.almanacRangeHandler).Methods(http.MethodGet)
	api.HandleFunc("/almanac/{date}", s.almanacDayHandler).Methods(http.MethodGet)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) calculate(at time.Time) (jyotish.CosmicData, error) {
	data, err := s.calc.Calculate(at)
	s.metrics.recordCalculation(err)
	if err != nil {
		s.log.Error("calculate %s: %v", at.Format(time.RFC3339), err)
	}
	return data, err
}

func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":  version.Version,
		"provider": s.provider,
	})
}

func (s *Server) cosmicHandler(w http.ResponseWriter, r *http.Request) {
	at := s.now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid at %q: want RFC3339", raw))
			return
		}
		at = t
	}

	data, err := s.calculate(at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "calculation failed")
		return
	}
	writeJSON(w, http.StatusOK, jyotish.ExportSnapshot(data, s.now().UTC(), s.provider))
}

func (s *Server) almanacDayHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "almanac not configured")
		return
	}

	day, err := almanac.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: want YYYY-MM-DD")
		return
	}

	entry, err := s.store.Get(day)
	if errors.Is(err, almanac.ErrNotFound) {
		// Read-through: compute the missing day and keep it.
		data, cerr := s.calculate(day)
		if cerr != nil {
			writeError(w, http.StatusInternalServerError, "calculation failed")
			return
		}
		if perr := s.store.Put(data); perr != nil {
			s.log.Warn("almanac put %s: %v", day.Format(time.DateOnly), perr)
		}
		writeJSON(w, http.StatusOK, jyotish.ExportSnapshot(data, s.now().UTC(), s.provider))
		return
	}
	if err != nil {
		s.log.Error("almanac get %s: %v", day.Format(time.DateOnly), err)
		writeError(w, http.StatusInternalServerError, "almanac read failed")
		return
	}

	writeJSON(w, http.StatusOK, jyotish.ExportSnapshot(entry.Data, entry.ComputedAt, s.provider))
}

func (s *Server) almanacRangeHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "almanac not configured")
		return
	}

	q := r.URL.Query()
	from := almanac.Day(s.now())
	if raw := q.Get("from"); raw != "" {
		d, err := almanac.ParseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from: want YYYY-MM-DD")
			return
		}
		from = d
	}

	days := 7
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRangeDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid days: want 1..%d", maxRangeDays))
			return
		}
		days = n
	}

	entries, err := s.store.Range(from, from.AddDate(0, 0, days-1))
	if err != nil {
		s.log.Error("almanac range: %v", err)
		writeError(w, http.StatusInternalServerError, "almanac read failed")
		return
	}

	out := make([]*jyotish.SnapshotExport, 0, len(entries))
	for _, e := range entries {
		out = append(out, jyotish.ExportSnapshot(e.Data, e.ComputedAt, s.provider))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	s.metrics.wsClients.Inc()
	defer s.metrics.wsClients.Dec()

	// Drain client frames so close messages are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.wsInterval)
	defer ticker.Stop()

	for {
		if err := s.pushSnapshot(conn); err != nil {
			s.log.Debug("websocket closed: %v", err)
			return
		}
		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) pushSnapshot(conn *websocket.Conn) error {
	data, err := s.calculate(s.now())
	if err != nil {
		return conn.WriteJSON(errorBody{Error: "calculation failed"})
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(jyotish.ExportSnapshot(data, s.now().UTC(), s.provider))
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
