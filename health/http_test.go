package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newMux(checks map[string]Result) *http.ServeMux {
	agg := NewAggregator()
	for name, r := range checks {
		agg.Register(name, static(name, r))
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)
	return mux
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := get(t, newMux(map[string]Result{"store": Unhealthy("down", nil)}), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /healthz = %d %q, want 200 OK", rec.Code, rec.Body.String())
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy(""), http.StatusOK, "OK"},
		{"degraded", Degraded(""), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("", nil), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newMux(map[string]Result{"store": tt.result}), "/readyz")
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("GET /readyz = %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestDetailed(t *testing.T) {
	mux := newMux(map[string]Result{
		"store":   Unhealthy("store unreachable", errors.New("connection refused")),
		"breaker": Healthy("circuit closed"),
	})

	rec := get(t, mux, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health code = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "unhealthy" || len(report.Checks) != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.Checks["store"].Error != "connection refused" {
		t.Errorf("store error = %q", report.Checks["store"].Error)
	}
}

func TestSingleCheck(t *testing.T) {
	mux := newMux(map[string]Result{"breaker": Degraded("circuit open")})

	rec := get(t, mux, "/health/breaker")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health/breaker code = %d, want 200", rec.Code)
	}
	var report CheckReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "degraded" || report.Message != "circuit open" {
		t.Errorf("report = %+v", report)
	}

	rec = httptest.NewRecorder()
	SingleCheckHandler(NewAggregator(), "missing").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing checker code = %d, want 404", rec.Code)
	}
}
