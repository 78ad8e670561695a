package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// MatcherSource supplies the heading matcher for each job. The patterns
// registry implements it; a nil source selects the built-in families.
type MatcherSource interface {
	Matcher() *outline.Matcher
}

// WorkerConfig tunes a Worker.
type WorkerConfig struct {
	Proximity      int
	ExtractTimeout time.Duration
	Parser         parser.Options
}

// Worker processes a single outline job.
type Worker struct {
	extractor extract.StructureExtractor
	store     *pathstore.Client
	matchers  MatcherSource
	log       *slog.Logger
	cfg       WorkerConfig

	backoff func(attempt int) time.Duration
}

// NewWorker builds a worker. A nil extractor disables the external service;
// a nil store disables persistence.
func NewWorker(ex extract.StructureExtractor, store *pathstore.Client, matchers MatcherSource, log *slog.Logger, cfg WorkerConfig) *Worker {
	if ex == nil {
		ex = extract.Noop{}
	}
	return &Worker{
		extractor: ex,
		store:     store,
		matchers:  matchers,
		log:       log,
		cfg:       cfg,
		backoff:   Backoff,
	}
}

func (w *Worker) matcher() *outline.Matcher {
	if w.matchers == nil {
		return nil
	}
	return w.matchers.Matcher()
}

// Process runs the full outline pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.parse(job)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	job.SetParsed(doc.Title, ContentHashHex([]byte(doc.Text)))

	if strings.TrimSpace(doc.Text) == "" {
		log.Warn("no text extracted")
		job.AddError("no extractable text")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Local detection
	job.SetStatus(StatusDetecting, "detecting")
	ex := outline.NewExtractor(w.matcher(), w.cfg.Proximity)
	hints := headingHints(doc.Headings)
	candidates := ex.Candidates(doc.Text, hints...)
	local := ex.Extract(doc.Text, hints...)
	job.SetDetection(len(doc.Text), len(candidates), len(local))
	log.Info("local structure detected", "candidates", len(candidates), "sections", len(local), "hints", len(hints))

	// Phase 3: External extraction. Failure here degrades to the local tree.
	job.SetStatus(StatusExtracting, "extracting")
	degraded := false
	external, err := w.extractWithRetry(ctx, log, job, doc)
	switch {
	case errors.Is(err, extract.ErrDisabled):
		log.Debug("external extraction disabled")
	case err != nil:
		log.Warn("external extraction failed, using local structure", "extractor", w.extractor.Name(), "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		degraded = true
		external = nil
	default:
		job.SetExternalSections(len(external))
	}

	// Phase 4: Reconcile
	job.SetStatus(StatusReconciling, "reconciling")
	nodes, report := outline.ReconcileWithReport(local, external)
	log.Info("structure reconciled",
		"rule", report.Rule,
		"local", report.LocalCount,
		"external", report.ExternalCount,
		"appended", report.Appended,
		"backfilled", report.Backfilled,
		"sections", len(nodes),
	)
	result := NewResult(nodes, report, w.extractor.Name())

	// Phase 5: Store
	if w.store != nil {
		job.SetStatus(StatusStoring, "storing")
		snap := job.Snapshot()
		err := w.store.SaveOutline(ctx, pathstore.Outline{
			Meta: pathstore.Meta{
				DocID:       snap.DocID,
				Title:       snap.Title,
				Filename:    snap.Filename,
				ContentHash: snap.ContentHash,
				Extractor:   result.Extractor,
				Report:      report,
				CreatedAt:   snap.CreatedAt,
			},
			Nodes: result.Nodes,
		})
		if err != nil {
			log.Error("store failed", "error", err)
			job.AddError(fmt.Sprintf("store: %s", err))
			degraded = true
		}
	}

	job.SetResult(result)
	if degraded {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) parse(job *Job) (*parser.Document, error) {
	if text := job.Text(); text != "" {
		return &parser.Document{Title: job.Title, Text: parser.NormalizeText(text)}, nil
	}
	p, err := parser.ForFile(job.Filename, w.cfg.Parser)
	if err != nil {
		return nil, err
	}
	return p.Parse(bytes.NewReader(job.FileData()), job.Filename)
}

// extractWithRetry calls the external service, retrying transient failures
// with backoff. Each call is bounded by the configured timeout.
func (w *Worker) extractWithRetry(ctx context.Context, log *slog.Logger, job *Job, doc *parser.Document) ([]outline.SectionNode, error) {
	var nodes []outline.SectionNode
	var lastErr error
	for attempt := range MaxRetries {
		job.IncrExtractAttempts()
		nodes, lastErr = w.callExtractor(ctx, doc)
		if lastErr == nil || !IsRetryable(lastErr) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable extraction error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nodes, lastErr
}

func (w *Worker) callExtractor(ctx context.Context, doc *parser.Document) ([]outline.SectionNode, error) {
	if w.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.ExtractTimeout)
		defer cancel()
	}
	return w.extractor.ExtractStructure(ctx, doc.Title, doc.Text)
}

func headingHints(headings []parser.Heading) []outline.Candidate {
	if len(headings) == 0 {
		return nil
	}
	hints := make([]outline.Candidate, len(headings))
	for i, h := range headings {
		hints[i] = outline.HeadingHint(h.Offset, h.Level, h.Title)
	}
	return hints
}
