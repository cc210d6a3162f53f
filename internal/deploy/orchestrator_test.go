package deploy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/github"
	"github.com/yz4230/retrigger/internal/queue"
)

type fakeTrigger struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	delay time.Duration
}

func (f *fakeTrigger) CreateEmptyCommit(ctx context.Context, token, owner, repo, branch string, opts github.CommitOptions) (*entity.CommitResult, error) {
	key := fmt.Sprintf("%s/%s@%s", owner, repo, branch)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	return &entity.CommitResult{SHA: "sha-" + key, Branch: branch, Message: opts.Message, Timestamp: time.Now()}, nil
}

func notFound(msg string) error {
	return &github.CommitError{Code: github.CodeRefNotFound, Status: 404, Message: msg}
}

func target(fullName string, branches ...string) entity.DeploymentTarget {
	owner, repo, _ := strings.Cut(fullName, "/")
	return entity.DeploymentTarget{Owner: owner, Repo: repo, Branches: branches}
}

func TestTriggerDeploymentKeepsBranchOrder(t *testing.T) {
	trigger := &fakeTrigger{}
	o := NewOrchestrator(trigger)
	branches := []string{"main", "develop", "release/1.0", "a", "z"}

	res := o.TriggerDeployment(context.Background(), "tok", target("o/r", branches...))
	if len(res.Branches) != len(branches) {
		t.Fatalf("expected %d outcomes, got %d", len(branches), len(res.Branches))
	}
	for i, b := range branches {
		if res.Branches[i].Branch != b {
			t.Errorf("branches[%d] = %q, want %q", i, res.Branches[i].Branch, b)
		}
		if want := "o/r@" + b; trigger.calls[i] != want {
			t.Errorf("call[%d] = %q, want %q (branches run sequentially)", i, trigger.calls[i], want)
		}
	}
	if res.Status != entity.DeploymentStatusSuccess || res.Repo != "o/r" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestTriggerDeploymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		branches []string
		failing  []string
		want     entity.DeploymentStatus
	}{
		{"single success", []string{"main"}, nil, entity.DeploymentStatusSuccess},
		{"single failure", []string{"main"}, []string{"main"}, entity.DeploymentStatusFailed},
		{"k of n failed", []string{"a", "b", "c"}, []string{"b"}, entity.DeploymentStatusPartial},
		{"n-1 of n failed", []string{"a", "b", "c"}, []string{"a", "c"}, entity.DeploymentStatusPartial},
		{"all failed", []string{"a", "b"}, []string{"a", "b"}, entity.DeploymentStatusFailed},
		{"none failed", []string{"a", "b"}, nil, entity.DeploymentStatusSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := map[string]error{}
			for _, b := range tt.failing {
				fail["o/r@"+b] = notFound("Branch not found")
			}
			o := NewOrchestrator(&fakeTrigger{fail: fail})
			res := o.TriggerDeployment(context.Background(), "tok", target("o/r", tt.branches...))
			if res.Status != tt.want {
				t.Errorf("Status = %q, want %q", res.Status, tt.want)
			}
			if res.Summary.Total != len(tt.branches) || res.Summary.Failed != len(tt.failing) {
				t.Errorf("unexpected summary: %+v", res.Summary)
			}
		})
	}
}

func TestTriggerDeploymentPartialFailure(t *testing.T) {
	o := NewOrchestrator(&fakeTrigger{fail: map[string]error{"o/r@develop": notFound("Branch not found")}})

	res := o.TriggerDeployment(context.Background(), "tok", target("o/r", "main", "develop"))
	if res.Status != entity.DeploymentStatusPartial {
		t.Fatalf("Status = %q, want partial", res.Status)
	}
	dev := res.Branches[1]
	if dev.Status != entity.BranchStatusFailed || !strings.Contains(dev.Error, "Branch not found") || dev.Code != string(github.CodeRefNotFound) {
		t.Errorf("unexpected develop outcome: %+v", dev)
	}
	main := res.Branches[0]
	if main.Status != entity.BranchStatusSuccess || main.SHA == "" || main.Timestamp == nil {
		t.Errorf("unexpected main outcome: %+v", main)
	}
}

func TestTriggerDeploymentUntypedError(t *testing.T) {
	o := NewOrchestrator(&fakeTrigger{fail: map[string]error{"o/r@main": errors.New("connection reset")}})
	res := o.TriggerDeployment(context.Background(), "tok", target("o/r", "main"))
	if res.Branches[0].Code != CodeUnknown || res.Branches[0].Error != "connection reset" {
		t.Errorf("unexpected outcome: %+v", res.Branches[0])
	}
}

func TestTriggerBatchDeploymentSummary(t *testing.T) {
	o := NewOrchestrator(&fakeTrigger{fail: map[string]error{
		"o/repo2@main":    notFound("Not Found"),
		"o/repo2@develop": notFound("Not Found"),
	}})

	batch := o.TriggerBatchDeployment(context.Background(), "tok", []entity.DeploymentTarget{
		target("o/repo1", "main", "develop"),
		target("o/repo2", "main", "develop"),
	}, BatchOptions{Concurrency: 1})

	want := entity.BatchSummary{Total: 2, Successful: 1, Failed: 1, Partial: 0}
	if batch.Summary != want {
		t.Errorf("Summary = %+v, want %+v", batch.Summary, want)
	}
	if batch.Timestamp.IsZero() {
		t.Errorf("Timestamp should be set")
	}
}

func TestTriggerBatchDeploymentKeepsInputOrder(t *testing.T) {
	o := NewOrchestrator(&fakeTrigger{delay: time.Millisecond})
	targets := []entity.DeploymentTarget{
		target("o/one", "main"),
		target("o/two", "main"),
		target("o/three", "main"),
	}

	batch := o.TriggerBatchDeployment(context.Background(), "tok", targets, BatchOptions{Concurrency: 2})
	if len(batch.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(batch.Results))
	}
	for i, tg := range targets {
		if batch.Results[i].Repo != tg.FullName() {
			t.Errorf("results[%d] = %q, want %q", i, batch.Results[i].Repo, tg.FullName())
		}
	}
	s := batch.Summary
	if s.Successful+s.Failed+s.Partial != s.Total || s.Total != len(batch.Results) {
		t.Errorf("summary does not add up: %+v", s)
	}
}

type event struct {
	start bool
	repo  string
}

type recordingObserver struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingObserver) OnRepositoryStart(t entity.DeploymentTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{start: true, repo: t.FullName()})
}

func (r *recordingObserver) OnRepositoryDone(res entity.RepositoryDeploymentResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{start: false, repo: res.Repo})
}

func TestTriggerBatchDeploymentWaveBarrier(t *testing.T) {
	obs := &recordingObserver{}
	o := NewOrchestrator(&fakeTrigger{delay: 2 * time.Millisecond}, WithObserver(obs))

	var targets []entity.DeploymentTarget
	for i := range 7 {
		targets = append(targets, target(fmt.Sprintf("o/r%d", i), "main"))
	}
	const concurrency = 3
	o.TriggerBatchDeployment(context.Background(), "tok", targets, BatchOptions{Concurrency: concurrency})

	wave := func(repo string) int {
		for i, tg := range targets {
			if tg.FullName() == repo {
				return i / concurrency
			}
		}
		t.Fatalf("unknown repo %q", repo)
		return -1
	}

	doneInWave := map[int]int{}
	for _, ev := range obs.events {
		w := wave(ev.repo)
		if ev.start {
			if w > 0 && doneInWave[w-1] != concurrency {
				t.Fatalf("%s (wave %d) started before wave %d settled", ev.repo, w, w-1)
			}
			continue
		}
		doneInWave[w]++
	}
	if len(obs.events) != 2*len(targets) {
		t.Errorf("expected %d events, got %d", 2*len(targets), len(obs.events))
	}
}

func TestTriggerBatchDeploymentDefaultConcurrency(t *testing.T) {
	o := NewOrchestrator(&fakeTrigger{})
	batch := o.TriggerBatchDeployment(context.Background(), "tok", []entity.DeploymentTarget{target("o/a", "main")}, BatchOptions{})
	if batch.Summary.Successful != 1 {
		t.Errorf("unexpected summary: %+v", batch.Summary)
	}

	empty := o.TriggerBatchDeployment(context.Background(), "tok", nil, BatchOptions{})
	if empty.Summary.Total != 0 || empty.Results == nil {
		t.Errorf("empty batch should have an empty, non-nil result list: %+v", empty)
	}
}

type steppingClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func TestTriggerRateLimitedBatch(t *testing.T) {
	clock := &steppingClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	o := NewOrchestrator(&fakeTrigger{fail: map[string]error{"o/b@main": notFound("Not Found")}}, WithClock(clock))

	batch := o.TriggerRateLimitedBatch(context.Background(), "tok", []entity.DeploymentTarget{
		target("o/a", "main"),
		target("o/b", "main"),
		target("o/c", "main", "dev"),
	}, queue.Config{RateLimit: 2, RateLimitWindow: time.Minute})

	if len(clock.waits) != 1 || clock.waits[0] != time.Minute {
		t.Errorf("expected a single one-minute wait, got %v", clock.waits)
	}
	want := entity.BatchSummary{Total: 3, Successful: 2, Failed: 1}
	if batch.Summary != want {
		t.Errorf("Summary = %+v, want %+v", batch.Summary, want)
	}
	if batch.Results[2].Repo != "o/c" || len(batch.Results[2].Branches) != 2 {
		t.Errorf("unexpected third result: %+v", batch.Results[2])
	}
}

func TestTriggerRateLimitedBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(&fakeTrigger{})
	batch := o.TriggerRateLimitedBatch(ctx, "tok", []entity.DeploymentTarget{target("o/a", "main", "dev")}, queue.Config{})
	res := batch.Results[0]
	if res.Status != entity.DeploymentStatusFailed || len(res.Branches) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Branches[0].Code != CodeQueueAborted {
		t.Errorf("Code = %q, want %q", res.Branches[0].Code, CodeQueueAborted)
	}
}

// githubAPI fakes the Git Data endpoints; refs listed in missing return 404.
func githubAPI(missing ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		for _, m := range missing {
			if r.Method == http.MethodGet && strings.HasSuffix(p, m) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"Branch not found"}`))
				return
			}
		}
		switch {
		case r.Method == http.MethodGet && strings.Contains(p, "/git/refs/heads/"):
			_, _ = w.Write([]byte(`{"object":{"sha":"abc123"}}`))
		case r.Method == http.MethodGet && strings.Contains(p, "/git/commits/"):
			_, _ = w.Write([]byte(`{"tree":{"sha":"tree123"}}`))
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"sha":"newcommit123"}`))
		case r.Method == http.MethodPatch:
			_, _ = w.Write([]byte(`{"object":{"sha":"newcommit123"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestEndToEndWithGitHubClient(t *testing.T) {
	srv := httptest.NewServer(githubAPI("/repos/o/r/git/refs/heads/develop", "/repos/o/repo2/git/refs/heads/main"))
	defer srv.Close()
	client := github.NewClient(github.Config{BaseURL: srv.URL}, zerolog.Nop())
	o := NewOrchestrator(client)
	ctx := context.Background()

	res := o.TriggerDeployment(ctx, "tok", target("o/r", "main", "develop"))
	if res.Status != entity.DeploymentStatusPartial {
		t.Errorf("Status = %q, want partial", res.Status)
	}
	if res.Branches[0].SHA != "newcommit123" {
		t.Errorf("main SHA = %q", res.Branches[0].SHA)
	}
	if !strings.Contains(res.Branches[1].Error, "Branch not found") || res.Branches[1].Code != "REF_NOT_FOUND" {
		t.Errorf("develop outcome = %+v", res.Branches[1])
	}

	batch := o.TriggerBatchDeployment(ctx, "tok", []entity.DeploymentTarget{
		target("o/repo1", "main"),
		target("o/repo2", "main"),
	}, BatchOptions{Concurrency: 1})
	want := entity.BatchSummary{Total: 2, Successful: 1, Failed: 1}
	if batch.Summary != want {
		t.Errorf("Summary = %+v, want %+v", batch.Summary, want)
	}
}
