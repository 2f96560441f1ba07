package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

type fakeReports struct {
	reports map[string]*domain.SweepReport
	latest  string
	err     error
}

func (f *fakeReports) Get(ctx context.Context, runID string) (*domain.SweepReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.reports[runID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return r, nil
}

func (f *fakeReports) Latest(ctx context.Context) (*domain.SweepReport, error) {
	if f.latest == "" {
		return nil, domain.ErrReportNotFound
	}
	return f.Get(ctx, f.latest)
}

func (f *fakeReports) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ReportSummary
	for _, r := range f.reports {
		out = append(out, r.Summary())
	}
	return out, nil
}

type fakeTrigger struct {
	report *domain.SweepReport
	err    error
}

func (f fakeTrigger) Run(ctx context.Context) (*domain.SweepReport, error) {
	return f.report, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func newRouter(reports ReportReader, trigger Trigger, health Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return BuildRouter(RouterDeps{
		ServiceName: "lock-sweeper",
		Version:     "1.0.0",
		Health:      health,
		Reports:     reports,
		Trigger:     trigger,
		Gatherer:    prometheus.NewRegistry(),
	})
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		want   string
	}{
		{"no redis", nil, "disabled"},
		{"redis up", fakePinger{}, "up"},
		{"redis down", fakePinger{err: errors.New("refused")}, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(nil, fakeTrigger{}, tt.pinger)
			rr := do(r, http.MethodGet, "/healthz")
			require.Equal(t, http.StatusOK, rr.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "healthy", resp.Status)
			assert.Equal(t, "lock-sweeper", resp.Service)
			assert.Equal(t, tt.want, resp.Redis)
		})
	}
}

func TestSweepRoutes(t *testing.T) {
	finished := time.Now()
	reports := &fakeReports{
		reports: map[string]*domain.SweepReport{
			"run-1": {RunID: "run-1", StartedAt: finished.Add(-time.Second), FinishedAt: &finished, Released: 2},
		},
		latest: "run-1",
	}
	r := newRouter(reports, fakeTrigger{}, nil)

	t.Run("latest", func(t *testing.T) {
		rr := do(r, http.MethodGet, "/api/v1/sweeps/latest")
		require.Equal(t, http.StatusOK, rr.Code)

		var report domain.SweepReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, "run-1", report.RunID)
		assert.Equal(t, 2, report.Released)
	})

	t.Run("by id", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/sweeps/run-1").Code)
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/sweeps/run-9").Code)
	})

	t.Run("list", func(t *testing.T) {
		rr := do(r, http.MethodGet, "/api/v1/sweeps?limit=5")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"run_id":"run-1"`)

		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/sweeps?limit=0").Code)
	})
}

func TestSweepRoutes_NoHistory(t *testing.T) {
	r := newRouter(nil, fakeTrigger{}, nil)
	assert.Equal(t, http.StatusNotImplemented, do(r, http.MethodGet, "/api/v1/sweeps/latest").Code)
	assert.Equal(t, http.StatusNotImplemented, do(r, http.MethodGet, "/api/v1/sweeps").Code)
}

func TestSweepRoutes_StoreError(t *testing.T) {
	r := newRouter(&fakeReports{err: errors.New("redis down"), latest: "x"}, fakeTrigger{}, nil)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/v1/sweeps/latest").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/v1/sweeps").Code)
}

func TestTrigger(t *testing.T) {
	tests := []struct {
		name    string
		trigger fakeTrigger
		want    int
	}{
		{"ok", fakeTrigger{report: &domain.SweepReport{RunID: "run-2"}}, http.StatusOK},
		{"busy", fakeTrigger{err: domain.ErrSweepInProgress}, http.StatusConflict},
		{"store down", fakeTrigger{report: &domain.SweepReport{RunID: "run-3"}, err: domain.ErrStoreUnavailable}, http.StatusBadGateway},
		{"other failure", fakeTrigger{err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(nil, tt.trigger, nil)
			assert.Equal(t, tt.want, do(r, http.MethodPost, "/api/v1/sweeps").Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "editlock_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	gin.SetMode(gin.TestMode)
	r := BuildRouter(RouterDeps{ServiceName: "lock-sweeper", Trigger: fakeTrigger{}, Gatherer: reg})

	rr := do(r, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "editlock_test_total 1"))
}
