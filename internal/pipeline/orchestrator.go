package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Orchestrator manages the outline pipeline: a bounded queue drained by a
// fixed pool of workers, plus TTL eviction of finished jobs.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	extractor extract.StructureExtractor
	store     *pathstore.Client
	matchers  MatcherSource
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, ex extract.StructureExtractor, store *pathstore.Client, matchers MatcherSource, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		extractor: ex,
		store:     store,
		matchers:  matchers,
		log:       log,
		cfg:       cfg,
	}
}

func (o *Orchestrator) workerConfig() WorkerConfig {
	return WorkerConfig{
		Proximity:      o.cfg.ProximityThreshold,
		ExtractTimeout: o.cfg.ExtractTimeout,
		Parser:         parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.extractor, o.store, o.matchers, o.log, o.workerConfig())
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the persistence client, or nil when persistence is off.
func (o *Orchestrator) Store() *pathstore.Client {
	return o.store
}

// ExtractorName names the configured external service.
func (o *Orchestrator) ExtractorName() string {
	if o.extractor == nil {
		return extract.ProviderOff
	}
	return o.extractor.Name()
}
