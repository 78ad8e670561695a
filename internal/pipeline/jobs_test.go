package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusDetecting, "detecting"},
		{StatusExtracting, "extracting"},
		{StatusReconciling, "reconciling"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusExtracting,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "extract error")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("extract: timeout")
	job.AddError("store: status 500")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "extract: timeout" {
		t.Errorf("expected first error %q, got %q", "extract: timeout", snap.Progress.Errors[0])
	}
}

func TestJob_Progress(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetDetection(1200, 7, 6)
	job.IncrExtractAttempts()
	job.IncrExtractAttempts()
	job.SetExternalSections(9)

	snap := job.Snapshot()
	if snap.Progress.TextChars != 1200 {
		t.Errorf("expected 1200 text chars, got %d", snap.Progress.TextChars)
	}
	if snap.Progress.Candidates != 7 || snap.Progress.LocalSections != 6 {
		t.Errorf("expected 7 candidates and 6 local sections, got %d and %d",
			snap.Progress.Candidates, snap.Progress.LocalSections)
	}
	if snap.Progress.ExtractAttempts != 2 {
		t.Errorf("expected 2 extract attempts, got %d", snap.Progress.ExtractAttempts)
	}
	if snap.Progress.ExternalSections != 9 {
		t.Errorf("expected 9 external sections, got %d", snap.Progress.ExternalSections)
	}
}

func TestJob_SetParsed(t *testing.T) {
	job := NewJob("doc", "a.txt", "")
	job.SetParsed("Báo cáo", "abc")
	snap := job.Snapshot()
	if snap.Title != "Báo cáo" || snap.ContentHash != "abc" {
		t.Errorf("expected title and hash to be recorded, got %q and %q", snap.Title, snap.ContentHash)
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("doc-1", "report.pdf", "Title")
	b := NewJob("doc-1", "report.pdf", "Title")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued || a.Phase != "queued" {
		t.Errorf("expected queued job, got %q/%q", a.Status, a.Phase)
	}
}

func TestJob_SetResultReleasesInput(t *testing.T) {
	job := NewJob("doc", "a.txt", "")
	job.SetFileData([]byte("data"))
	job.SetText("text")
	if job.Result() != nil {
		t.Fatal("expected nil result before completion")
	}

	job.SetResult(NewResult(nil, outline.Report{Rule: outline.RuleAcceptExternal}, "off"))

	r := job.Result()
	if r == nil {
		t.Fatal("expected result after SetResult")
	}
	if r.Nodes == nil {
		t.Error("expected non-nil node slice for JSON")
	}
	if job.FileData() != nil || job.Text() != "" {
		t.Error("expected input buffers to be released")
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{StatusQueued, false},
		{StatusDetecting, false},
		{StatusReconciling, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusPartial, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("expected Terminal()=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
