package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/textops/auth"
	"github.com/jonwraymond/textops/diff"
	"github.com/jonwraymond/textops/memo"
)

type downStore struct{}

func (downStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (downStore) Set(context.Context, string, []byte) error { return errors.New("connection refused") }
func (downStore) Delete(context.Context, string) error      { return errors.New("connection refused") }

var failingTransform = memo.TransformFunc(func(context.Context, string, string) (memo.Result, error) {
	return memo.Result{}, errors.New("renderer crashed")
})

func newTestServer(t *testing.T, store memo.Store, opts ...Option) *Server {
	t.Helper()
	return newServerWith(t, store, PlainText, opts...)
}

func newServerWith(t *testing.T, store memo.Store, transform memo.Transform, opts ...Option) *Server {
	t.Helper()
	m, err := memo.New(store, transform)
	if err != nil {
		t.Fatalf("memo.New() error = %v", err)
	}
	s, err := New(m, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestNew_NilMemo(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) succeeded")
	}
}

func TestRender(t *testing.T) {
	store := memo.NewMemoryStore(0)
	h := newTestServer(t, store).Handler()

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/v1/render", RenderRequest{Scope: "wiki", Text: "a < b"})
		if rec.Code != http.StatusOK {
			t.Fatalf("render #%d code = %d: %s", i, rec.Code, rec.Body.String())
		}
		res := decodeBody[memo.Result](t, rec)
		if res.Output != "<p>a &lt; b</p>\n" {
			t.Errorf("render #%d output = %q", i, res.Output)
		}
		if res.Data["words"] != float64(3) {
			t.Errorf("render #%d data = %v", i, res.Data)
		}
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1 entry after repeated renders", store.Len())
	}

	rec := do(t, h, http.MethodDelete, "/v1/render", RenderRequest{Scope: "wiki", Text: "a < b"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("invalidate code = %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d after invalidate, want 0", store.Len())
	}
}

func TestExtract_DoesNotFillStore(t *testing.T) {
	store := memo.NewMemoryStore(0)
	rec := do(t, newTestServer(t, store).Handler(), http.MethodPost, "/v1/extract", RenderRequest{Text: "one two"})

	if rec.Code != http.StatusOK {
		t.Fatalf("extract code = %d", rec.Code)
	}
	if res := decodeBody[memo.Result](t, rec); res.Data["paragraphs"] != float64(1) {
		t.Errorf("extract data = %v", res.Data)
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", store.Len())
	}
}

func TestErrorStatuses(t *testing.T) {
	mem := func() memo.Store { return memo.NewMemoryStore(0) }
	tests := []struct {
		name      string
		store     memo.Store
		transform memo.Transform
		opts      []Option
		path      string
		body      any
		want      int
	}{
		{"malformed json", mem(), PlainText, nil, "/v1/render", "{", http.StatusBadRequest},
		{"unknown field", mem(), PlainText, nil, "/v1/render", `{"txt":"x"}`, http.StatusBadRequest},
		{"too large", mem(), PlainText, []Option{WithMaxBodyBytes(16)}, "/v1/render", RenderRequest{Text: strings.Repeat("x", 64)}, http.StatusRequestEntityTooLarge},
		{"transform failure", mem(), failingTransform, nil, "/v1/render", RenderRequest{Text: "x"}, http.StatusUnprocessableEntity},
		{"revision transform failure", mem(), failingTransform, nil, "/v1/revisions/diff", DiffRequest{Old: "a", New: "b"}, http.StatusUnprocessableEntity},
		{"cache unavailable", downStore{}, PlainText, nil, "/v1/render", RenderRequest{Text: "x"}, http.StatusServiceUnavailable},
		{"revision cache unavailable", downStore{}, PlainText, nil, "/v1/revisions/diff", DiffRequest{Old: "a", New: "b"}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newServerWith(t, tt.store, tt.transform, tt.opts...).Handler(), http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if body := decodeBody[ErrorResponse](t, rec); body.Error == "" {
				t.Error("error body is empty")
			}
		})
	}
}

func TestDiff(t *testing.T) {
	h := newTestServer(t, memo.NewMemoryStore(0)).Handler()

	rec := do(t, h, http.MethodPost, "/v1/diff", DiffRequest{Old: "1 < 2", New: "1 <= 2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("diff code = %d", rec.Code)
	}
	resp := decodeBody[DiffResponse](t, rec)

	want := diff.Diff("1 < 2", "1 <= 2")
	if len(resp.Edits) != len(want) {
		t.Fatalf("edits = %v, want %v", resp.Edits, want)
	}
	if resp.HTML != diff.HTML("1 < 2", "1 <= 2") {
		t.Errorf("html = %q", resp.HTML)
	}
	if resp.Stats.Inserted != 1 || !resp.Stats.Changed() {
		t.Errorf("stats = %+v", resp.Stats)
	}

	rec = do(t, h, http.MethodPost, "/v1/diff", DiffRequest{})
	if resp := decodeBody[DiffResponse](t, rec); resp.HTML != "" || len(resp.Edits) != 0 {
		t.Errorf("empty diff = %+v", resp)
	}
}

func TestRevisionDiff(t *testing.T) {
	store := memo.NewMemoryStore(0)
	h := newTestServer(t, store, WithDiffOptions(diff.Options{Granularity: diff.Lines})).Handler()

	rec := do(t, h, http.MethodPost, "/v1/revisions/diff", DiffRequest{
		Scope: "wiki",
		Old:   "first\n\nsecond",
		New:   "first\n\nsecond, edited",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("revision diff code = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[RevisionDiffResponse](t, rec)
	if !strings.Contains(resp.HTML, "<del") || !strings.Contains(resp.HTML, "<ins") {
		t.Errorf("html = %q, want both markers", resp.HTML)
	}
	if !strings.Contains(resp.HTML, "&lt;p&gt;first&lt;/p&gt;") {
		t.Errorf("html = %q, want the unchanged rendered paragraph escaped", resp.HTML)
	}
	if store.Len() != 2 {
		t.Errorf("store.Len() = %d, want both revisions cached", store.Len())
	}
}

func TestAuthGuardsAPIOnly(t *testing.T) {
	a, err := auth.NewJWTAuthenticator(auth.JWTConfig{Secret: []byte("test-secret")})
	if err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, memo.NewMemoryStore(0), WithAuthenticator(a)).Handler()

	if rec := do(t, h, http.MethodPost, "/v1/render", RenderRequest{Text: "x"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated render code = %d, want 401", rec.Code)
	}

	token, err := a.Issue("editor", []string{ScopeRender}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(t, h, http.MethodPost, "/v1/render", RenderRequest{Text: "x"}, "Authorization", "Bearer "+token); rec.Code != http.StatusOK {
		t.Errorf("authenticated render code = %d, want 200", rec.Code)
	}

	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz code = %d, want 200 without a token", rec.Code)
	}
}

func TestAuthRouteScopes(t *testing.T) {
	a, err := auth.NewJWTAuthenticator(auth.JWTConfig{Secret: []byte("test-secret")})
	if err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, memo.NewMemoryStore(0), WithAuthenticator(a)).Handler()

	render := RenderRequest{Scope: "doc-1", Text: "x"}
	pair := DiffRequest{Scope: "doc-1", Old: "a", New: "b"}

	tests := []struct {
		name   string
		scopes []string
		method string
		path   string
		body   any
		want   int
	}{
		{"render with render scope", []string{ScopeRender}, http.MethodPost, "/v1/render", render, http.StatusOK},
		{"extract with render scope", []string{ScopeRender}, http.MethodPost, "/v1/extract", render, http.StatusOK},
		{"invalidate with render scope", []string{ScopeRender}, http.MethodDelete, "/v1/render", render, http.StatusNoContent},
		{"diff with render scope", []string{ScopeRender}, http.MethodPost, "/v1/diff", pair, http.StatusForbidden},
		{"diff with diff scope", []string{ScopeDiff}, http.MethodPost, "/v1/diff", pair, http.StatusOK},
		{"revision diff with diff scope", []string{ScopeDiff}, http.MethodPost, "/v1/revisions/diff", pair, http.StatusOK},
		{"render with diff scope", []string{ScopeDiff}, http.MethodPost, "/v1/render", render, http.StatusForbidden},
		{"no scopes", nil, http.MethodPost, "/v1/render", render, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := a.Issue("editor", tt.scopes, time.Minute)
			if err != nil {
				t.Fatal(err)
			}
			rec := do(t, h, tt.method, tt.path, tt.body, "Authorization", "Bearer "+token)
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestConcurrencyLimit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := memo.TransformFunc(func(_ context.Context, _, text string) (memo.Result, error) {
		close(entered)
		<-release
		return memo.Result{Output: text}, nil
	})
	h := newServerWith(t, memo.NewMemoryStore(0), blocking, WithConcurrencyLimit(1, 0)).Handler()

	done := make(chan int, 1)
	go func() {
		done <- do(t, h, http.MethodPost, "/v1/render", RenderRequest{Scope: "doc-1", Text: "slow"}).Code
	}()
	<-entered

	rec := do(t, h, http.MethodPost, "/v1/diff", DiffRequest{Old: "a", New: "b"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("diff while full code = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz while full code = %d, want 200", rec.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("render code = %d, want 200", code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/diff", DiffRequest{Old: "a", New: "b"}); rec.Code != http.StatusOK {
		t.Errorf("diff after release code = %d, want 200", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	h := newTestServer(t, memo.NewMemoryStore(0)).Handler()
	if rec := do(t, h, http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without handler = %d, want 404", rec.Code)
	}

	h = newTestServer(t, memo.NewMemoryStore(0), WithMetricsHandler(metrics)).Handler()
	if rec := do(t, h, http.MethodGet, "/metrics", nil); rec.Body.String() != "# metrics" {
		t.Errorf("/metrics body = %q", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, memo.NewMemoryStore(0)).Handler()
	if rec := do(t, h, http.MethodGet, "/v1/diff", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/diff code = %d, want 405", rec.Code)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, memo.NewMemoryStore(0), WithTimeouts(0, 0, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz code = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestClose_RunsClosersInReverse(t *testing.T) {
	var order []int
	boom := errors.New("close failed")
	s := newTestServer(t, memo.NewMemoryStore(0),
		WithCloser(func() error { order = append(order, 1); return nil }),
		WithCloser(func() error { order = append(order, 2); return boom }),
	)

	if err := s.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() error = %v, want %v", err, boom)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("close order = %v, want [2 1]", order)
	}
}
