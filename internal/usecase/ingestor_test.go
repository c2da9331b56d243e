package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/extractor"
	"StockPulse/internal/repository"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
)

type fakeClassifier struct {
	pingErr  error
	classify func(text string) (models.Classification, error)
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (models.Classification, error) {
	if f.classify != nil {
		return f.classify(text)
	}
	return models.Classification{
		Label: models.SentimentPositive,
		Score: 0.9,
		Scores: map[string]float64{
			models.SentimentPositive: 0.9,
			models.SentimentNeutral:  0.05,
			models.SentimentNegative: 0.05,
		},
	}, nil
}

func (f *fakeClassifier) Ping(ctx context.Context) error { return f.pingErr }

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, p *models.Post) error {
	return errors.New("broker down")
}
func (failingPublisher) Close() error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testRegistry() *extractor.Registry {
	return extractor.NewStaticRegistry(extractor.NewSnapshot([]models.Ticker{
		{Symbol: "AAPL", Company: "Apple Inc.", Sector: "Technology", Industry: "Consumer Electronics"},
		{Symbol: "GME", Company: "GameStop Corp.", Sector: "Consumer Cyclical", Industry: "Specialty Retail"},
	}, []string{"DD"}))
}

func newTestIngestor(t *testing.T, store *repository.MemoryPostStore, cls *fakeClassifier, patterns []string) *Ingestor {
	t.Helper()
	in, err := NewIngestor(store, repository.NoopPublisher{}, cls, testRegistry(),
		metrics.Noop{}, testLogger(t), 2, patterns)
	if err != nil {
		t.Fatalf("ingestor: %v", err)
	}
	return in
}

func rawItem(id, title, body string, created time.Time) models.RawItem {
	return models.RawItem{
		SourceID:  id,
		Title:     title,
		Body:      body,
		Author:    "u/tester",
		Channel:   "wallstreetbets",
		CreatedAt: created,
	}
}

func TestIngestBatchStoresAnalyzedPosts(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)
	now := time.Now().UTC()

	summary, err := in.IngestBatch(context.Background(), []models.RawItem{
		rawItem("a1", "$AAPL earnings beat", "calls printing", now),
		rawItem("a2", "boring day", "nothing to see", now),
	}, models.Filter{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.Ingested != 2 || summary.Total() != 2 {
		t.Fatalf("summary %+v", summary)
	}

	posts, err := store.Query(context.Background(), models.Filter{Ticker: "AAPL"}, 0, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 AAPL post, got %d", len(posts))
	}
	p := posts[0]
	if p.Sentiment == nil || p.Sentiment.Label != models.SentimentPositive {
		t.Fatalf("sentiment %+v", p.Sentiment)
	}
	if len(p.Industries) != 1 || p.Industries[0] != "Consumer Electronics" {
		t.Fatalf("industries %v", p.Industries)
	}
	if len(p.Sectors) != 1 || p.Sectors[0] != "Technology" {
		t.Fatalf("sectors %v", p.Sectors)
	}
}

func TestIngestBatchExclusionPatterns(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, []string{`daily.*discussion`, `weekend.*thread`})
	now := time.Now().UTC()

	summary, err := in.IngestBatch(context.Background(), []models.RawItem{
		rawItem("b1", "Daily Discussion Thread - January 10", "", now),
		rawItem("b2", "WEEKEND earnings THREAD", "", now),
		rawItem("b3", "$GME squeeze incoming", "", now),
	}, models.Filter{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.Filtered != 2 || summary.Ingested != 1 {
		t.Fatalf("summary %+v", summary)
	}

	n, _ := store.Count(context.Background(), models.Filter{})
	if n != 1 {
		t.Fatalf("stored %d", n)
	}
}

func TestIngestBatchDateWindow(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)
	window := models.Filter{StartDate: &start, EndDate: &end}

	summary, err := in.IngestBatch(context.Background(), []models.RawItem{
		rawItem("c1", "in window", "", time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)),
		rawItem("c2", "end day inclusive", "", time.Date(2026, 1, 11, 23, 0, 0, 0, time.UTC)),
		rawItem("c3", "too early", "", time.Date(2026, 1, 9, 23, 0, 0, 0, time.UTC)),
		rawItem("c4", "too late", "", time.Date(2026, 1, 12, 0, 30, 0, 0, time.UTC)),
	}, window)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.Ingested != 2 || summary.Filtered != 2 {
		t.Fatalf("summary %+v", summary)
	}
}

func TestIngestBatchDeduplicates(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)
	now := time.Now().UTC()
	items := []models.RawItem{rawItem("d1", "$GME again", "", now)}

	if _, err := in.IngestBatch(context.Background(), items, models.Filter{}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	summary, err := in.IngestBatch(context.Background(), items, models.Filter{})
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if summary.Skipped != 1 || summary.Ingested != 0 {
		t.Fatalf("summary %+v", summary)
	}

	n, _ := store.Count(context.Background(), models.Filter{})
	if n != 1 {
		t.Fatalf("stored %d, want 1", n)
	}
}

func TestIngestBatchAbortsWhenClassifierDown(t *testing.T) {
	store := repository.NewMemoryPostStore()
	cls := &fakeClassifier{pingErr: models.NewDependencyError("classifier", errors.New("connection refused"))}
	in := newTestIngestor(t, store, cls, nil)

	summary, err := in.IngestBatch(context.Background(), []models.RawItem{
		rawItem("e1", "anything", "", time.Now().UTC()),
	}, models.Filter{})
	if !models.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if summary.Total() != 0 {
		t.Fatalf("nothing should be processed, summary %+v", summary)
	}
	n, _ := store.Count(context.Background(), models.Filter{})
	if n != 0 {
		t.Fatalf("stored %d, want 0", n)
	}
}

func TestIngestBatchClassifyFailureKeepsPost(t *testing.T) {
	store := repository.NewMemoryPostStore()
	cls := &fakeClassifier{classify: func(text string) (models.Classification, error) {
		return models.Classification{}, models.NewDependencyError("classifier", errors.New("timeout"))
	}}
	in := newTestIngestor(t, store, cls, nil)

	summary, err := in.IngestBatch(context.Background(), []models.RawItem{
		rawItem("f1", "$AAPL news", "", time.Now().UTC()),
	}, models.Filter{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary %+v", summary)
	}

	posts, _ := store.Query(context.Background(), models.Filter{}, 0, 0)
	if len(posts) != 1 {
		t.Fatalf("post must still be stored, got %d", len(posts))
	}
	if posts[0].Sentiment != nil {
		t.Fatalf("sentiment must be nil, got %+v", posts[0].Sentiment)
	}
	if len(posts[0].Tickers) != 1 || posts[0].Tickers[0] != "AAPL" {
		t.Fatalf("tickers %v", posts[0].Tickers)
	}
}

func TestIngestBatchPublishFailureIsBestEffort(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in, err := NewIngestor(store, failingPublisher{}, &fakeClassifier{}, testRegistry(),
		metrics.Noop{}, testLogger(t), 1, nil)
	if err != nil {
		t.Fatalf("ingestor: %v", err)
	}

	summary, err := in.IngestBatch(context.Background(), []models.RawItem{
		rawItem("g1", "publish me", "", time.Now().UTC()),
	}, models.Filter{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.Ingested != 1 {
		t.Fatalf("summary %+v", summary)
	}
}

func TestNewIngestorRejectsBadPattern(t *testing.T) {
	_, err := NewIngestor(repository.NewMemoryPostStore(), repository.NoopPublisher{},
		&fakeClassifier{}, testRegistry(), metrics.Noop{}, nil, 1, []string{`[unclosed`})
	if err == nil {
		t.Fatalf("expected pattern compile error")
	}
}
