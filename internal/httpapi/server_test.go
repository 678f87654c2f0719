package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/planforge/planforge/internal/plangen"
)

type fakePlanner struct {
	mu    sync.Mutex
	calls atomic.Int64
	doc   *plangen.PlanDocument
	err   error
	block chan struct{}
}

func (f *fakePlanner) GeneratePlan(ctx context.Context, req plangen.PlanRequest) (*plangen.PlanDocument, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc, f.err
}

func completeDoc() *plangen.PlanDocument {
	doc := &plangen.PlanDocument{
		ExecutiveSummary:       "A complete plan",
		ComprehensivenessScore: 10,
		LastUpdated:            "2026-08-31",
	}
	return doc
}

func postPlan(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	res, err := http.Post(srv.URL+"/generatePlan", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestGeneratePlanSuccess(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakePlanner{doc: completeDoc()}))
	defer srv.Close()

	res := postPlan(t, srv, `{"idea": "A subscription software tool for dog groomers"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if cc := res.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Fatalf("Cache-Control = %q", cc)
	}
	var doc plangen.PlanDocument
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ComprehensivenessScore != 10 {
		t.Fatalf("score = %d", doc.ComprehensivenessScore)
	}
}

func TestGeneratePlanRequiresPOST(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakePlanner{doc: completeDoc()}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/generatePlan")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestGeneratePlanRejectsBadJSON(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakePlanner{doc: completeDoc()}))
	defer srv.Close()

	res := postPlan(t, srv, `{"idea": `)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestGeneratePlanMapsPipelineErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &plangen.PipelineError{Code: plangen.CodeValidation, Message: "idea is required", Status: 400}, 400},
		{"rate limited", &plangen.PipelineError{Code: plangen.CodeRateLimited, Message: "retry in a minute", Status: 429}, 429},
		{"unavailable", &plangen.PipelineError{Code: plangen.CodeUnavailable, Message: "AI providers unavailable", Status: 500}, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(NewServer(&fakePlanner{err: tc.err}))
			defer srv.Close()

			res := postPlan(t, srv, `{"idea": "an idea long enough to pass"}`)
			if res.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.status)
			}
			var payload map[string]string
			if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if payload["error"] != tc.err.(*plangen.PipelineError).Message {
				t.Fatalf("error = %q", payload["error"])
			}
		})
	}
}

func TestConcurrentIdenticalRequestsShareOneGeneration(t *testing.T) {
	planner := &fakePlanner{doc: completeDoc(), block: make(chan struct{})}
	srv := httptest.NewServer(NewServer(planner))
	defer srv.Close()

	const n = 8
	var wg sync.WaitGroup
	statuses := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := http.Post(srv.URL+"/generatePlan", "application/json",
				bytes.NewBufferString(`{"idea": "a very specific idea"}`))
			if err != nil {
				t.Error(err)
				return
			}
			defer res.Body.Close()
			statuses[i] = res.StatusCode
		}(i)
	}

	// Let every request either start the generation or attach to it.
	for planner.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(planner.block)
	wg.Wait()

	if got := planner.calls.Load(); got != 1 {
		t.Fatalf("planner invoked %d times, want 1", got)
	}
	for i, s := range statuses {
		if s != http.StatusOK {
			t.Fatalf("request %d got status %d", i, s)
		}
	}
}

func TestDifferentRequestsDoNotShare(t *testing.T) {
	planner := &fakePlanner{doc: completeDoc()}
	srv := httptest.NewServer(NewServer(planner))
	defer srv.Close()

	postPlan(t, srv, `{"idea": "first idea for a business"}`)
	postPlan(t, srv, `{"idea": "second idea for a business"}`)
	if got := planner.calls.Load(); got != 2 {
		t.Fatalf("planner invoked %d times, want 2", got)
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakePlanner{doc: completeDoc()}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestMetricsExposed(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakePlanner{doc: completeDoc()}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
}
