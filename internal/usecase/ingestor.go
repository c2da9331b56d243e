package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/extractor"
	applogger "StockPulse/pkg/logger"
)

// Ingestor runs the per-item analysis pipeline over raw item batches:
// exclusion filtering, date scoping, dedup, ticker extraction, sentiment
// classification, and atomic persistence. Classification is independent
// across items, so batches fan out over a bounded worker pool without
// affecting results.
type Ingestor struct {
	store    domrepo.PostStore
	pub      domrepo.Publisher
	cls      domsvc.Classifier
	registry *extractor.Registry
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	workers  int
	exclude  []*regexp.Regexp
}

// NewIngestor creates an ingestor. Exclusion patterns are matched
// case-insensitively against title and body.
func NewIngestor(
	store domrepo.PostStore,
	pub domrepo.Publisher,
	cls domsvc.Classifier,
	registry *extractor.Registry,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	workers int,
	excludePatterns []string,
) (*Ingestor, error) {
	if workers <= 0 {
		workers = 4
	}
	exclude := make([]*regexp.Regexp, 0, len(excludePatterns))
	for _, p := range excludePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile exclusion pattern %q: %w", p, err)
		}
		exclude = append(exclude, re)
	}
	return &Ingestor{
		store:    store,
		pub:      pub,
		cls:      cls,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		workers:  workers,
		exclude:  exclude,
	}, nil
}

// IngestBatch processes items and returns the batch summary. The window
// filter's date bounds scope which items are eligible (used for historical
// backfill); other filter fields are ignored here.
//
// A classifier that is unreachable at batch start aborts the whole batch.
// Per-item classification failures degrade to posts with null sentiment. A
// storage dependency failure aborts remaining work but keeps everything
// already persisted.
func (in *Ingestor) IngestBatch(ctx context.Context, items []models.RawItem, window models.Filter) (models.IngestSummary, error) {
	var summary models.IngestSummary
	if len(items) == 0 {
		return summary, nil
	}

	if err := in.cls.Ping(ctx); err != nil {
		return summary, models.NewDependencyError("classifier", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// One snapshot per batch keeps extraction deterministic even if the
	// registry is reloaded mid-flight.
	snap := in.registry.Snapshot()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fatalErr error
	)
	jobs := make(chan *models.RawItem)

	for w := 0; w < in.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				outcome, err := in.processItem(ctx, snap, item, window)
				mu.Lock()
				switch outcome {
				case outcomeIngested:
					summary.Ingested++
				case outcomeSkipped:
					summary.Skipped++
				case outcomeFiltered:
					summary.Filtered++
				case outcomeFailed:
					summary.Failed++
				}
				if err != nil && fatalErr == nil {
					fatalErr = err
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range items {
		select {
		case jobs <- &items[i]:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		in.logger.Error("ingest batch aborted", applogger.Error(fatalErr),
			applogger.Int("ingested", summary.Ingested))
		return summary, fatalErr
	}
	in.logger.Info("ingest batch done",
		applogger.Int("ingested", summary.Ingested),
		applogger.Int("skipped", summary.Skipped),
		applogger.Int("filtered", summary.Filtered),
		applogger.Int("failed", summary.Failed),
	)
	return summary, nil
}

type itemOutcome int

const (
	outcomeIngested itemOutcome = iota
	outcomeSkipped
	outcomeFiltered
	outcomeFailed
	outcomeAborted
)

// processItem handles one raw item. The returned error is only non-nil for
// fatal failures that should abort the batch.
func (in *Ingestor) processItem(ctx context.Context, snap *extractor.Snapshot, item *models.RawItem, window models.Filter) (itemOutcome, error) {
	if ctx.Err() != nil {
		return outcomeAborted, nil
	}

	// Cheap rejections first, before extraction/classification burns CPU.
	if in.isExcluded(item) {
		in.metrics.RecordSkipped("filtered")
		return outcomeFiltered, nil
	}
	if !inWindow(item.CreatedAt, window) {
		in.metrics.RecordSkipped("window")
		return outcomeFiltered, nil
	}

	exists, err := in.store.Exists(ctx, item.SourceID)
	if err != nil {
		in.metrics.RecordFailed("dedup_check")
		return outcomeFailed, err
	}
	if exists {
		in.metrics.RecordSkipped("duplicate")
		return outcomeSkipped, nil
	}

	text := item.Text()
	tickers := extractor.ExtractWith(snap, text)

	post := &models.Post{
		SourceID:  item.SourceID,
		Title:     item.Title,
		Body:      item.Body,
		Author:    item.Author,
		Channel:   item.Channel,
		CreatedAt: item.CreatedAt,
		URL:       item.URL,
		Tickers:   tickers,
		FetchedAt: time.Now().UTC(),
	}
	for _, sym := range tickers {
		if meta, ok := snap.Lookup(sym); ok {
			post.Industries = appendUnique(post.Industries, meta.Industry)
			post.Sectors = appendUnique(post.Sectors, meta.Sector)
		}
	}

	failed := false
	start := time.Now()
	cl, err := in.cls.Classify(ctx, text)
	in.metrics.RecordLatency("classify", time.Since(start).Seconds())
	if err != nil {
		// Per-item classification failure: keep the post, null sentiment.
		in.logger.Warn("classification failed",
			applogger.String("source_id", item.SourceID),
			applogger.Error(err),
		)
		in.metrics.RecordFailed("classify")
		failed = true
	} else {
		post.Sentiment = &cl
		in.metrics.RecordClassification(cl.Label)
	}

	start = time.Now()
	if err := in.store.Insert(ctx, post); err != nil {
		if err == models.ErrDuplicatePost {
			// Lost the race against a concurrent batch; documented skip.
			in.metrics.RecordSkipped("duplicate")
			return outcomeSkipped, nil
		}
		in.metrics.RecordFailed("insert")
		return outcomeFailed, err
	}
	in.metrics.RecordLatency("insert", time.Since(start).Seconds())
	in.metrics.RecordIngested(item.Channel)

	if err := in.pub.Publish(ctx, post); err != nil {
		// Event delivery is best effort; the post is already durable.
		in.logger.Warn("post event publish failed",
			applogger.String("source_id", item.SourceID),
			applogger.Error(err),
		)
	}

	if failed {
		return outcomeFailed, nil
	}
	return outcomeIngested, nil
}

func (in *Ingestor) isExcluded(item *models.RawItem) bool {
	for _, re := range in.exclude {
		if re.MatchString(item.Title) || re.MatchString(item.Body) {
			return true
		}
	}
	return false
}

func inWindow(t time.Time, window models.Filter) bool {
	if window.StartDate != nil && t.Before(*window.StartDate) {
		return false
	}
	if window.EndDate != nil && !t.Before(window.EndDate.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func appendUnique(xs []string, s string) []string {
	if s == "" {
		return xs
	}
	for _, x := range xs {
		if x == s {
			return xs
		}
	}
	return append(xs, s)
}
