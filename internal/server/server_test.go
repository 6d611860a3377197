package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-cosmos/internal/almanac"
	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/version"
)

var fixedNow = time.Date(2024, 4, 8, 12, 0, 0, 0, time.UTC)

// stubCalc returns a minimal calculation stamped with the requested time.
type stubCalc struct {
	calls atomic.Int32
	err   error
}

func (c *stubCalc) Calculate(t time.Time) (jyotish.CosmicData, error) {
	c.calls.Add(1)
	if c.err != nil {
		return jyotish.CosmicData{}, c.err
	}
	return jyotish.CosmicData{
		Time:     t,
		SunSign:  jyotish.Pisces,
		MoonSign: jyotish.Pisces,
		Tithi:    jyotish.TithiOf(355, 350),
	}, nil
}

func newTestServer(t *testing.T, calc *stubCalc, store *almanac.Store) (*Server, http.Handler) {
	t.Helper()
	s := New(Options{
		Calculator:   calc,
		ProviderName: "stub",
		Almanac:      store,
		WSInterval:   20 * time.Millisecond,
	})
	s.now = func() time.Time { return fixedNow }
	return s, s.Router()
}

func openStore(t *testing.T) *almanac.Store {
	t.Helper()
	store, err := almanac.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestVersionHandler(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, nil)

	rec := get(t, h, "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]string](t, rec)
	assert.Equal(t, version.Version, body["version"])
	assert.Equal(t, "stub", body["provider"])
}

func TestCosmicHandler_DefaultsToNow(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, nil)

	rec := get(t, h, "/api/cosmic")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[jyotish.SnapshotExport](t, rec)
	assert.True(t, body.Time.Equal(fixedNow))
	assert.Equal(t, "Pisces", body.SunSign)
	assert.Equal(t, "stub", body.Provider)
}

func TestCosmicHandler_At(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, nil)

	rec := get(t, h, "/api/cosmic?at=2025-01-02T03:04:05Z")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[jyotish.SnapshotExport](t, rec)
	assert.True(t, body.Time.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestCosmicHandler_BadInput(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, nil)

	rec := get(t, h, "/api/cosmic?at=yesterday")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error, "RFC3339")
}

func TestCosmicHandler_CalculationError(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{err: errors.New("boom")}, nil)

	rec := get(t, h, "/api/cosmic")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "calculation failed", decode[errorBody](t, rec).Error)
}

func TestAlmanacDay_NotConfigured(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, nil)

	rec := get(t, h, "/api/almanac/2024-04-08")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAlmanacDay_BadDate(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, openStore(t))

	rec := get(t, h, "/api/almanac/08-04-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlmanacDay_ReadThrough(t *testing.T) {
	calc := &stubCalc{}
	store := openStore(t)
	_, h := newTestServer(t, calc, store)

	rec := get(t, h, "/api/almanac/2024-04-08")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[jyotish.SnapshotExport](t, rec)
	assert.True(t, body.Time.Equal(time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC)))
	assert.EqualValues(t, 1, calc.calls.Load())

	// Stored on miss, so the second request is served from the almanac.
	_, err := store.Get(time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	rec = get(t, h, "/api/almanac/2024-04-08")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, calc.calls.Load())
}

func TestAlmanacRange(t *testing.T) {
	calc := &stubCalc{}
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	_, err := store.Fill(ctx, calc, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)

	_, h := newTestServer(t, calc, store)

	rec := get(t, h, "/api/almanac?from=2024-04-03&days=3")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[[]jyotish.SnapshotExport](t, rec)
	require.Len(t, body, 3)
	assert.Equal(t, 3, body[0].Time.Day())
	assert.Equal(t, 5, body[2].Time.Day())
}

func TestAlmanacRange_BadInput(t *testing.T) {
	_, h := newTestServer(t, &stubCalc{}, openStore(t))

	tests := []string{
		"/api/almanac?from=tomorrow",
		"/api/almanac?days=0",
		"/api/almanac?days=many",
		"/api/almanac?days=1000",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := get(t, h, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMetrics(t *testing.T) {
	s, h := newTestServer(t, &stubCalc{}, nil)

	get(t, h, "/api/cosmic")
	get(t, h, "/api/cosmic?at=nope")

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("/api/cosmic", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("/api/cosmic", "GET", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.calculations.WithLabelValues("ok")))

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "ls_cosmos_http_requests_total")
	assert.Contains(t, string(body), "ls_cosmos_calculations_total")
}

func TestWebsocket_PushesSnapshots(t *testing.T) {
	calc := &stubCalc{}
	_, h := newTestServer(t, calc, nil)

	ts := httptest.NewServer(h)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 2; i++ {
		var snap jyotish.SnapshotExport
		require.NoError(t, conn.ReadJSON(&snap))
		assert.Equal(t, "Pisces", snap.MoonSign)
	}
	assert.GreaterOrEqual(t, calc.calls.Load(), int32(2))
}
