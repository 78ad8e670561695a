package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/outline"
)

// JobStatus represents the state of an outline job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusDetecting   JobStatus = "detecting"
	StatusExtracting  JobStatus = "extracting"
	StatusReconciling JobStatus = "reconciling"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	// StatusPartial: an outline was produced, but the external service or
	// persistence failed along the way.
	StatusPartial JobStatus = "partial"
)

// Terminal reports whether no further transitions follow.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Job tracks the state of a single document outline.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	text     string
	result   *Result
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TextChars        int      `json:"text_chars"`
	Candidates       int      `json:"candidates"`
	LocalSections    int      `json:"local_sections"`
	ExternalSections int      `json:"external_sections"`
	ExtractAttempts  int      `json:"extract_attempts"`
	Errors           []string `json:"errors"`
}

// Result is the outcome of a finished job.
type Result struct {
	Nodes     []outline.SectionNode `json:"nodes"`
	Tree      []*outline.TreeNode   `json:"tree"`
	Report    outline.Report        `json:"report"`
	Extractor string                `json:"extractor"`
}

// NewJob returns a queued job with a fresh random id.
func NewJob(docID, filename, title string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocID:     docID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewResult pairs a reconciled node list with its nested view.
func NewResult(nodes []outline.SectionNode, report outline.Report, extractor string) *Result {
	if nodes == nil {
		nodes = []outline.SectionNode{}
	}
	return &Result{Nodes: nodes, Tree: outline.Nest(nodes), Report: report, Extractor: extractor}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetParsed records the title and content hash of the parsed text.
func (j *Job) SetParsed(title, contentHash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.ContentHash = contentHash
	j.UpdatedAt = time.Now()
}

// SetDetection records the outcome of local detection.
func (j *Job) SetDetection(textChars, candidates, sections int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TextChars = textChars
	j.Progress.Candidates = candidates
	j.Progress.LocalSections = sections
	j.UpdatedAt = time.Now()
}

// IncrExtractAttempts counts one call to the external service.
func (j *Job) IncrExtractAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ExtractAttempts++
	j.UpdatedAt = time.Now()
}

// SetExternalSections records how many sections the service proposed.
func (j *Job) SetExternalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ExternalSections = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetText supplies already extracted text; the parse phase is then skipped.
func (j *Job) SetText(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.text = text
}

// Text returns text supplied with SetText.
func (j *Job) Text() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.text
}

// SetResult stores the final outline and releases the input buffers.
func (j *Job) SetResult(r *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.fileData = nil
	j.text = ""
	j.UpdatedAt = time.Now()
}

// Result returns the final outline, or nil while the job is running.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress:    p,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
