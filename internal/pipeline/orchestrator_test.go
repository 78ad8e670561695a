package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:        2,
		MaxQueueSize:       4,
		JobTTL:             time.Hour,
		ProximityThreshold: 5,
	}
}

func waitTerminal(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Terminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := NewOrchestrator(testConfig(), extract.Noop{}, nil, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	jobs := []*Job{textJob(twoParts), textJob("PHẦN I. A\nx\nPHẦN II. B\ny\nPHẦN III. C\nz")}
	for _, j := range jobs {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	wantSections := []int{2, 3}
	for i, j := range jobs {
		snap := waitTerminal(t, j)
		if snap.Status != StatusCompleted {
			t.Fatalf("job %d: expected status %q, got %q", i, StatusCompleted, snap.Status)
		}
		if got := len(j.Result().Nodes); got != wantSections[i] {
			t.Errorf("job %d: expected %d sections, got %d", i, wantSections[i], got)
		}
		if o.GetJob(j.ID) != j {
			t.Errorf("job %d: expected GetJob to return the submitted job", i)
		}
	}
	if o.ExtractorName() != "off" {
		t.Errorf("expected extractor name %q, got %q", "off", o.ExtractorName())
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, nil, nil, nil, testLogger())

	if err := o.Submit(textJob(twoParts)); err != nil {
		t.Fatalf("expected first submit to succeed, got %v", err)
	}
	overflow := textJob(twoParts)
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if got := overflow.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected overflow job %q, got %q", StatusFailed, got)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}
