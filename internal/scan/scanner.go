// Package scan orchestrates corpus scans: it loads every law file under the
// corpus root, builds the name resolver from the loaded titles, runs the
// detection pipeline across documents with a bounded worker pool, and hands
// each document's batch to storage and the search index.
package scan

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s-hayashi/lawgraph/internal/detect"
	"github.com/s-hayashi/lawgraph/internal/ingest"
	"github.com/s-hayashi/lawgraph/internal/law"
	"github.com/s-hayashi/lawgraph/internal/lawname"
	"github.com/s-hayashi/lawgraph/internal/oracle"
	"github.com/s-hayashi/lawgraph/internal/search"
	"github.com/s-hayashi/lawgraph/internal/storage"
)

// DefaultWorkers bounds concurrent document pipelines.
const DefaultWorkers = 4

// Stats summarizes one completed scan.
type Stats struct {
	FilesFound  int
	LawsScanned int
	FilesFailed int
	References  int
	Failures    int
	Duration    time.Duration
}

// Scanner runs corpus scans. Construct once and reuse; Scan is safe to call
// repeatedly (watch mode re-runs it).
type Scanner struct {
	loader   *ingest.Loader
	store    *storage.Store
	index    *search.Index
	progress ProgressReporter
	logger   *slog.Logger

	threshold     float64
	workers       int
	oracleClient  oracle.Client
	oracleWorkers int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSearchIndex enables full-text indexing of scanned provisions.
func WithSearchIndex(ix *search.Index) Option {
	return func(s *Scanner) { s.index = ix }
}

// WithOracle enables the oracle verification phase.
func WithOracle(client oracle.Client, workers int) Option {
	return func(s *Scanner) {
		s.oracleClient = client
		s.oracleWorkers = workers
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(s *Scanner) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithWorkers bounds concurrent document pipelines.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithReviewThreshold overrides the confidence threshold below which
// references are flagged for review.
func WithReviewThreshold(t float64) Option {
	return func(s *Scanner) { s.threshold = t }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a scanner writing to store.
func NewScanner(loader *ingest.Loader, store *storage.Store, opts ...Option) *Scanner {
	s := &Scanner{
		loader:   loader,
		store:    store,
		progress: &NoOpProgressReporter{},
		logger:   slog.Default(),
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs a full corpus scan under root. A file that fails to load is
// counted and logged but never aborts the scan; only context cancellation
// stops it.
func (s *Scanner) Scan(ctx context.Context, root string) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	s.progress.OnDiscoveryStart()
	files, err := s.loader.Files(root)
	if err != nil {
		return nil, err
	}
	stats.FilesFound = len(files)
	s.progress.OnDiscoveryComplete(len(files))

	// Load every document up front: the name resolver needs the full title
	// set before the first sentence is scanned.
	docs := make([]*law.Document, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.loader.LoadFile(f)
		if err != nil {
			stats.FilesFailed++
			s.logger.Warn("skipping law file", "file", f, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	resolver, err := buildResolver(docs)
	if err != nil {
		return nil, err
	}

	pipelineOpts := []detect.Option{detect.WithLogger(s.logger)}
	if s.oracleClient != nil {
		pipelineOpts = append(pipelineOpts, detect.WithOracle(s.oracleClient, s.oracleWorkers))
	}
	pipeline := detect.NewPipeline(detect.NewCatalog(), resolver, detect.NewScorer(s.threshold), pipelineOpts...)

	// Law rows exist before any edge batch references them.
	for _, doc := range docs {
		if err := s.store.SaveLaw(ctx, doc); err != nil {
			return nil, err
		}
	}

	s.progress.OnScanStart(len(docs))

	var refCount, failCount atomic.Int64
	var mu sync.Mutex // serializes progress callbacks

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			res, err := pipeline.DetectDocument(gctx, doc)
			if err != nil {
				return err
			}
			if err := s.store.SaveBatch(gctx, res); err != nil {
				return err
			}
			if s.index != nil {
				if err := s.index.IndexDocument(gctx, doc); err != nil {
					return err
				}
			}
			refCount.Add(int64(len(res.References)))
			failCount.Add(int64(len(res.Failures)))

			mu.Lock()
			s.progress.OnLawScanned(doc.ID, doc.Title)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.LawsScanned = len(docs)
	stats.References = int(refCount.Load())
	stats.Failures = int(failCount.Load())
	stats.Duration = time.Since(start)
	s.progress.OnComplete(stats)

	s.logger.Info("scan complete",
		"laws", stats.LawsScanned,
		"references", stats.References,
		"failures", stats.Failures,
		"skipped_files", stats.FilesFailed,
		"duration", stats.Duration)
	return stats, nil
}

// buildResolver seeds the name resolver with every loaded title and
// abbreviation.
func buildResolver(docs []*law.Document) (*lawname.Resolver, error) {
	entries := make([]lawname.Entry, 0, len(docs)*2)
	for _, doc := range docs {
		entries = append(entries, lawname.Entry{ID: doc.ID, Title: doc.Title})
		if doc.Abbreviation != "" {
			entries = append(entries, lawname.Entry{ID: doc.ID, Title: doc.Abbreviation})
		}
	}
	return lawname.NewResolver(entries)
}
