package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"jobd/internal/model"
	"jobd/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	return New(st), st
}

func seedJob(t *testing.T, st *store.Store, id string, status model.Status) {
	t.Helper()
	job := &model.Job{
		ID:      id,
		Name:    "seed",
		Status:  status,
		Command: "echo hi",
		RetryPolicy: model.RetryPolicy{
			MaxRetries:        1,
			BaseDelayMs:       100,
			BackoffMultiplier: 2.0,
			MaxDelayMs:        1000,
		},
		MaxAttempts: 2,
		CreatedAt:   time.Now(),
	}
	if job.Terminal() {
		now := time.Now()
		job.EndedAt = &now
	}
	if err := st.Write(job); err != nil {
		t.Fatalf("seeding job %s failed: %v", id, err)
	}
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestListJobs(t *testing.T) {
	s, st := newTestServer(t)
	seedJob(t, st, "bbb", model.StatusQueued)
	seedJob(t, st, "aaa", model.StatusQueued)

	rr := doRequest(t, s, "GET", "/jobs")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Jobs []string `json:"jobs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(body.Jobs) != 2 || body.Jobs[0] != "aaa" || body.Jobs[1] != "bbb" {
		t.Fatalf("expected sorted [aaa bbb], got %v", body.Jobs)
	}
}

func TestListJobsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(t, s, "GET", "/jobs")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Jobs []string `json:"jobs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Jobs == nil || len(body.Jobs) != 0 {
		t.Fatalf("expected empty list, got %v", body.Jobs)
	}
}

func TestGetJob(t *testing.T) {
	s, st := newTestServer(t)
	seedJob(t, st, "job-1", model.StatusRunning)

	rr := doRequest(t, s, "GET", "/jobs/job-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		JobID string     `json:"job_id"`
		State *model.Job `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.JobID != "job-1" || body.State == nil || body.State.Status != model.StatusRunning {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetJobNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(t, s, "GET", "/jobs/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestStopJob(t *testing.T) {
	s, st := newTestServer(t)
	seedJob(t, st, "job-1", model.StatusQueued)

	rr := doRequest(t, s, "POST", "/jobs/job-1/stop")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	got, err := st.Read("job-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}

func TestStopJobIdempotent(t *testing.T) {
	s, st := newTestServer(t)
	seedJob(t, st, "job-1", model.StatusCompleted)

	for i := 0; i < 2; i++ {
		rr := doRequest(t, s, "POST", "/jobs/job-1/stop")
		if rr.Code != http.StatusOK {
			t.Fatalf("stop %d: expected 200, got %d", i, rr.Code)
		}
	}

	got, err := st.Read("job-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("stop changed terminal status to %s", got.Status)
	}
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t)
	s.limiter = rate.NewLimiter(rate.Limit(1), 2)

	var limited bool
	for i := 0; i < 5; i++ {
		rr := doRequest(t, s, "GET", "/jobs")
		if rr.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Fatal("expected at least one request to be rate limited")
	}
}
