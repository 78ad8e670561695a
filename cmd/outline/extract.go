package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/patterns"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/render"
)

// fileResult is the outcome for one input file, as printed with --json.
type fileResult struct {
	File      string                `json:"file"`
	Title     string                `json:"title"`
	Status    pipeline.JobStatus    `json:"status"`
	Extractor string                `json:"extractor,omitempty"`
	Report    *outline.Report       `json:"report,omitempty"`
	Nodes     []outline.SectionNode `json:"nodes"`
	Errors    []string              `json:"errors,omitempty"`
}

type extractOptions struct {
	asJSON      bool
	provider    string
	model       string
	maxChars    int
	timeout     time.Duration
	concurrency int
	patternDir  string
	proximity   int
	pdftotext   bool
	preview     int
	showIDs     bool
}

func extractCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Print the section outline of one or more files",
		Long: `Parse each file, detect its headings locally and, with --ai, reconcile the
result with an outline proposed by an external model. Files are processed in
parallel; output keeps the argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, logger(cmd), args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	f.StringVar(&opts.provider, "ai", extract.ProviderOff, "External extractor: claude, gemini or off")
	f.StringVar(&opts.model, "model", "", "Model name for the external extractor")
	f.IntVar(&opts.maxChars, "max-chars", 60000, "Characters of text sent to the external extractor")
	f.DurationVar(&opts.timeout, "timeout", 90*time.Second, "Timeout around one external call")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 4, "Files processed in parallel")
	f.StringVar(&opts.patternDir, "patterns", os.Getenv("PATTERN_DIR"), "Directory of extra heading-family YAML files")
	f.IntVar(&opts.proximity, "proximity", outline.DefaultProximity, "Offset distance under which two headings collapse")
	f.BoolVar(&opts.pdftotext, "pdftotext", true, "Fall back to pdftotext for unreadable PDFs")
	f.IntVar(&opts.preview, "preview", 0, "Show this many characters of each section's content")
	f.BoolVar(&opts.showIDs, "ids", false, "Show section ids")
	return cmd
}

func newExtractor(ctx context.Context, opts extractOptions) (extract.StructureExtractor, error) {
	eo := extract.Options{
		Provider:        opts.provider,
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		MaxChars:        opts.maxChars,
	}
	switch strings.ToLower(opts.provider) {
	case extract.ProviderClaude:
		eo.AnthropicModel = opts.model
	case extract.ProviderGemini:
		eo.GeminiModel = opts.model
	}
	return extract.New(ctx, eo)
}

func runExtract(cmd *cobra.Command, log *slog.Logger, files []string, opts extractOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := patterns.NewRegistryWithDirectory(opts.patternDir, log)
	if err != nil {
		return err
	}
	ex, err := newExtractor(ctx, opts)
	if err != nil {
		return err
	}

	worker := pipeline.NewWorker(ex, nil, registry, log, pipeline.WorkerConfig{
		Proximity:      opts.proximity,
		ExtractTimeout: opts.timeout,
		Parser:         parser.Options{PDFFallbackPdftotext: opts.pdftotext},
	})

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.concurrency))
	for i, path := range files {
		g.Go(func() error {
			results[i] = processFile(gctx, worker, path)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printResult(cmd, r, opts)
		}
	}

	var failed []string
	for _, r := range results {
		if r.Status == pipeline.StatusFailed {
			failed = append(failed, r.File)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %s", len(failed), len(files), strings.Join(failed, ", "))
	}
	return nil
}

// processFile runs one file through the same worker the server uses.
func processFile(ctx context.Context, w *pipeline.Worker, path string) fileResult {
	res := fileResult{File: path, Nodes: []outline.SectionNode{}}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Status = pipeline.StatusFailed
		res.Errors = []string{err.Error()}
		return res
	}

	job := pipeline.NewJob(pipeline.ContentHashHex(data)[:16], filepath.Base(path), "")
	job.SetFileData(data)
	w.Process(ctx, job)

	snap := job.Snapshot()
	res.Title = snap.Title
	res.Status = snap.Status
	res.Errors = snap.Progress.Errors
	if r := job.Result(); r != nil {
		res.Nodes = r.Nodes
		res.Extractor = r.Extractor
		report := r.Report
		res.Report = &report
	}
	return res
}

func printResult(cmd *cobra.Command, r fileResult, opts extractOptions) {
	out := cmd.OutOrStdout()
	if r.Status == pipeline.StatusFailed {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.File, strings.Join(r.Errors, "; "))
		return
	}
	title := r.Title
	if title == "" {
		title = r.File
	}
	render.Header(out, title, r.Nodes, r.Extractor)
	render.Tree(out, r.Nodes, render.Options{Preview: opts.preview, ShowIDs: opts.showIDs})
	if r.Report != nil && r.Extractor != extract.ProviderOff {
		render.Report(out, *r.Report)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: %s\n", r.File, e)
	}
}
