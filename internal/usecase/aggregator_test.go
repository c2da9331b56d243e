package usecase

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
)

func newTestAggregator(t *testing.T, store *repository.MemoryPostStore) *Aggregator {
	t.Helper()
	return NewAggregator(store, testRegistry(), nil, testLogger(t), AggregatorConfig{
		MinSampleSize: 2,
		MaxRankSize:   3,
		PageLimit:     100,
	})
}

func seedPost(t *testing.T, store *repository.MemoryPostStore, id, label string, score float64, created time.Time, tickers ...string) {
	t.Helper()
	snap := testRegistry().Snapshot()
	p := &models.Post{
		SourceID:  id,
		Title:     id,
		Channel:   "stocks",
		CreatedAt: created,
		Tickers:   tickers,
		FetchedAt: created,
	}
	if label != "" {
		p.Sentiment = &models.Classification{Label: label, Score: score}
	}
	for _, sym := range tickers {
		if meta, ok := snap.Lookup(sym); ok {
			p.Industries = append(p.Industries, meta.Industry)
			p.Sectors = append(p.Sectors, meta.Sector)
		}
	}
	if err := store.Insert(context.Background(), p); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestStatsCountsClassifiedOnly(t *testing.T) {
	store := repository.NewMemoryPostStore()
	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedPost(t, store, "s1", models.SentimentPositive, 0.9, day, "AAPL")
	seedPost(t, store, "s2", models.SentimentPositive, 0.8, day, "AAPL")
	seedPost(t, store, "s3", models.SentimentNegative, 0.7, day, "GME")
	seedPost(t, store, "s4", "", 0, day, "GME") // classification failed

	agg := newTestAggregator(t, store)
	stats, err := agg.Stats(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("total %d, want 3 (unclassified excluded)", stats.Total)
	}
	c := stats.BySentiment.Counts
	if c[models.SentimentPositive] != 2 || c[models.SentimentNegative] != 1 || c[models.SentimentNeutral] != 0 {
		t.Fatalf("counts %v", c)
	}
	sum := 0
	for _, n := range c {
		sum += n
	}
	if sum != stats.Total {
		t.Fatalf("counts sum %d != total %d", sum, stats.Total)
	}
	pctSum := 0.0
	for _, p := range stats.BySentiment.Percentages {
		pctSum += p
	}
	if pctSum < 99.99 || pctSum > 100.01 {
		t.Fatalf("percentages sum %v", pctSum)
	}
}

func TestTrendsDailyDenseBuckets(t *testing.T) {
	store := repository.NewMemoryPostStore()
	end := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	seedPost(t, store, "t1", models.SentimentPositive, 0.9, end.AddDate(0, 0, -1).Add(10*time.Hour), "AAPL")
	seedPost(t, store, "t2", models.SentimentNegative, 0.8, end.Add(5*time.Hour), "AAPL")
	seedPost(t, store, "t3", "", 0, end.Add(6*time.Hour), "AAPL") // excluded

	agg := newTestAggregator(t, store)
	buckets, err := agg.Trends(context.Background(), models.Filter{EndDate: &end}, 7, models.GranularityDay)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("got %d buckets, want 7", len(buckets))
	}
	if buckets[0].Label != "2026-01-08" || buckets[6].Label != "2026-01-14" {
		t.Fatalf("bucket range %s..%s", buckets[0].Label, buckets[6].Label)
	}
	for i, b := range buckets[:5] {
		if b.Total != 0 {
			t.Fatalf("bucket %d (%s) should be empty, got %+v", i, b.Label, b)
		}
	}
	if buckets[5].Positive != 1 || buckets[6].Negative != 1 || buckets[6].Total != 1 {
		t.Fatalf("buckets %+v %+v", buckets[5], buckets[6])
	}
}

func TestTrendsWeeklyISOLabels(t *testing.T) {
	store := repository.NewMemoryPostStore()
	// Jan 7 2026 is a Wednesday of ISO week 2.
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)
	seedPost(t, store, "w1", models.SentimentNeutral, 0.8, end.Add(3*time.Hour), "GME")
	// Jan 2 2026 falls in ISO week 1.
	seedPost(t, store, "w2", models.SentimentPositive, 0.9, time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC), "GME")

	agg := newTestAggregator(t, store)
	buckets, err := agg.Trends(context.Background(), models.Filter{EndDate: &end}, 7, models.GranularityWeek)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets: %+v", len(buckets), buckets)
	}
	if buckets[0].Label != "2026-w01" || buckets[1].Label != "2026-w02" {
		t.Fatalf("labels %s %s", buckets[0].Label, buckets[1].Label)
	}
	if buckets[0].Positive != 1 || buckets[1].Neutral != 1 {
		t.Fatalf("buckets %+v", buckets)
	}
}

func TestPulseRankingsAndMinSample(t *testing.T) {
	store := repository.NewMemoryPostStore()
	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// AAPL: 3 posts, strongly positive.
	seedPost(t, store, "p1", models.SentimentPositive, 0.9, day, "AAPL")
	seedPost(t, store, "p2", models.SentimentPositive, 0.8, day.Add(time.Hour), "AAPL")
	seedPost(t, store, "p3", models.SentimentNegative, 0.5, day.Add(2*time.Hour), "AAPL")
	// GME: 1 post, perfect score, below the sample floor of 2.
	seedPost(t, store, "p4", models.SentimentPositive, 1.0, day.Add(3*time.Hour), "GME")

	agg := newTestAggregator(t, store)
	pulse, err := agg.Pulse(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("pulse: %v", err)
	}
	if pulse.TotalPosts != 4 {
		t.Fatalf("total %d", pulse.TotalPosts)
	}
	if len(pulse.MostDiscussed) != 2 || pulse.MostDiscussed[0].Symbol != "AAPL" {
		t.Fatalf("most discussed %+v", pulse.MostDiscussed)
	}
	if pulse.MostDiscussed[0].Company != "Apple Inc." {
		t.Fatalf("company %q", pulse.MostDiscussed[0].Company)
	}
	// GME's single perfect post must not top the sentiment board.
	if len(pulse.MostPositive) != 1 || pulse.MostPositive[0].Symbol != "AAPL" {
		t.Fatalf("most positive %+v", pulse.MostPositive)
	}
	// AAPL carries Technology, GME Consumer Cyclical; sorted by name.
	if len(pulse.BySector) != 2 || pulse.BySector[0].Sector != "Consumer Cyclical" {
		t.Fatalf("by sector %+v", pulse.BySector)
	}
}

func TestPulseMostDiscussedTieBreak(t *testing.T) {
	store := repository.NewMemoryPostStore()
	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedPost(t, store, "q1", models.SentimentNeutral, 0.8, day, "GME")
	seedPost(t, store, "q2", models.SentimentNeutral, 0.8, day.Add(time.Hour), "AAPL")

	agg := newTestAggregator(t, store)
	pulse, err := agg.Pulse(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("pulse: %v", err)
	}
	// Equal counts: alphabetical order decides.
	if pulse.MostDiscussed[0].Symbol != "AAPL" || pulse.MostDiscussed[1].Symbol != "GME" {
		t.Fatalf("tie break %+v", pulse.MostDiscussed)
	}
}

func TestHeatmapGroupsByIndustry(t *testing.T) {
	store := repository.NewMemoryPostStore()
	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedPost(t, store, "h1", models.SentimentPositive, 0.9, day, "AAPL")
	seedPost(t, store, "h2", models.SentimentNegative, 0.8, day.Add(time.Hour), "AAPL")
	seedPost(t, store, "h3", models.SentimentNeutral, 0.7, day.Add(2*time.Hour), "GME")

	agg := newTestAggregator(t, store)
	heat, err := agg.Heatmap(context.Background(), models.Filter{})
	if err != nil {
		t.Fatalf("heatmap: %v", err)
	}
	if len(heat) != 2 {
		t.Fatalf("industries %+v", heat)
	}
	if heat[0].Industry != "Consumer Electronics" || heat[0].Total != 2 {
		t.Fatalf("first %+v", heat[0])
	}
	if heat[1].Industry != "Specialty Retail" || heat[1].Total != 1 {
		t.Fatalf("second %+v", heat[1])
	}
}

func TestCompareKeepsCallerOrderAndRejectsUnknown(t *testing.T) {
	store := repository.NewMemoryPostStore()
	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedPost(t, store, "c1", models.SentimentPositive, 0.9, day, "AAPL")
	seedPost(t, store, "c2", models.SentimentNegative, 0.6, day.Add(time.Hour), "GME")

	agg := newTestAggregator(t, store)
	res, err := agg.Compare(context.Background(), []string{"gme", "AAPL"}, models.Filter{})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(res) != 2 || res[0].Symbol != "GME" || res[1].Symbol != "AAPL" {
		t.Fatalf("order %+v", res)
	}
	if res[0].Counts[models.SentimentNegative] != 1 || res[0].Total != 1 {
		t.Fatalf("gme %+v", res[0])
	}
	if res[1].AvgScores[models.SentimentPositive] != 0.9 {
		t.Fatalf("aapl avg %v", res[1].AvgScores)
	}

	_, err = agg.Compare(context.Background(), []string{"AAPL", "NOPE"}, models.Filter{})
	if !models.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCorrelationDenseDailySeries(t *testing.T) {
	store := repository.NewMemoryPostStore()
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	seedPost(t, store, "v1", models.SentimentPositive, 0.8, end.Add(10*time.Hour), "AAPL")
	seedPost(t, store, "v2", models.SentimentNegative, 0.6, end.Add(11*time.Hour), "AAPL")
	seedPost(t, store, "v3", "", 0, end.Add(12*time.Hour), "AAPL") // volume only

	agg := newTestAggregator(t, store)
	points, err := agg.Correlation(context.Background(), models.Filter{EndDate: &end}, 5)
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points, want 5", len(points))
	}
	last := points[4]
	if last.Date != "2026-01-10" || last.Volume != 3 {
		t.Fatalf("last %+v", last)
	}
	// Unclassified posts count toward volume but not sentiment.
	if last.Positive != 1 || last.Negative != 1 || last.Neutral != 0 {
		t.Fatalf("last %+v", last)
	}
	// (0.8 - 0.6) / 2 classified posts.
	if last.AvgSentiment != 0.1 {
		t.Fatalf("avg %v", last.AvgSentiment)
	}
	for _, p := range points[:4] {
		if p.Volume != 0 {
			t.Fatalf("expected empty day %+v", p)
		}
	}
}

func TestPostsPagination(t *testing.T) {
	store := repository.NewMemoryPostStore()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPost(t, store, string(rune('a'+i)), models.SentimentNeutral, 0.8,
			base.Add(time.Duration(i)*time.Hour), "AAPL")
	}

	agg := newTestAggregator(t, store)
	page1, total, err := agg.Posts(context.Background(), models.Filter{}, 1, 2)
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("total %d len %d", total, len(page1))
	}
	// Newest first.
	if page1[0].SourceID != "e" || page1[1].SourceID != "d" {
		t.Fatalf("page1 %s %s", page1[0].SourceID, page1[1].SourceID)
	}

	page3, _, err := agg.Posts(context.Background(), models.Filter{}, 3, 2)
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if len(page3) != 1 || page3[0].SourceID != "a" {
		t.Fatalf("page3 %+v", page3)
	}
}
