package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/extractor"
	"StockPulse/internal/service/cache"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// AggregatorConfig tunes the read-side behavior.
type AggregatorConfig struct {
	MinSampleSize int           // ranking eligibility floor for most positive/negative
	MaxRankSize   int           // entries per ranking list
	PageLimit     int           // hard page size cap
	CacheTTL      time.Duration // 0 disables result caching
}

// Aggregator computes every read-side aggregation over the post store. All
// aggregations share the same filter semantics; the same filter applied to
// the same data always yields the same result, so encoded results are
// cacheable by filter key.
type Aggregator struct {
	store    domrepo.PostStore
	registry *extractor.Registry
	cache    cache.BytesCache
	logger   *applogger.Logger
	cfg      AggregatorConfig
}

// NewAggregator creates an aggregator. Cache may be nil.
func NewAggregator(store domrepo.PostStore, registry *extractor.Registry, c cache.BytesCache, logger *applogger.Logger, cfg AggregatorConfig) *Aggregator {
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = 3
	}
	if cfg.MaxRankSize <= 0 {
		cfg.MaxRankSize = 5
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}
	return &Aggregator{store: store, registry: registry, cache: c, logger: logger, cfg: cfg}
}

// Posts returns one page of filtered posts, newest first, with the total
// match count for pagination.
func (a *Aggregator) Posts(ctx context.Context, f models.Filter, page, limit int) ([]*models.Post, int, error) {
	if page < 1 {
		page = 1
	}
	limit = util.Clamp(limit, 1, a.cfg.PageLimit)

	total, err := a.store.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	posts, err := a.store.Query(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Stats computes the headline sentiment breakdown. Totals count classified
// posts only, so per-label counts always sum to the total.
func (a *Aggregator) Stats(ctx context.Context, f models.Filter) (models.Stats, error) {
	var out models.Stats
	err := a.cached(ctx, "stats|"+f.CacheKey(), &out, func() (any, error) {
		posts, err := a.store.Query(ctx, f, 0, 0)
		if err != nil {
			return nil, err
		}
		counts := newCounts()
		for _, p := range posts {
			if p.Sentiment != nil {
				counts[p.Sentiment.Label]++
			}
		}
		s := models.Stats{BySentiment: breakdown(counts)}
		for _, n := range counts {
			s.Total += n
		}
		return s, nil
	})
	return out, err
}

// Trends buckets classified posts into a dense daily or weekly series
// covering the last days of the filter window. The window ends on the
// filter's end date when set, otherwise today; empty buckets are present
// with zero counts.
func (a *Aggregator) Trends(ctx context.Context, f models.Filter, days int, granularity string) ([]models.TrendBucket, error) {
	if days <= 0 {
		days = 7
	}
	end := util.DayStart(time.Now().UTC())
	if f.EndDate != nil {
		end = util.DayStart(*f.EndDate)
	}
	start := end.AddDate(0, 0, -(days - 1))

	// Narrow the store query to the trend window on top of the caller's
	// filter.
	qf := f
	qf.StartDate = &start
	if f.StartDate != nil && f.StartDate.After(start) {
		qf.StartDate = f.StartDate
	}
	qf.EndDate = &end

	var out []models.TrendBucket
	key := "trends|" + granularity + "|" + qf.CacheKey()
	err := a.cached(ctx, key, &out, func() (any, error) {
		posts, err := a.store.Query(ctx, qf, 0, 0)
		if err != nil {
			return nil, err
		}

		if granularity == models.GranularityWeek {
			return weeklyBuckets(posts, start, end), nil
		}
		return dailyBuckets(posts, start, end), nil
	})
	return out, err
}

func dailyBuckets(posts []*models.Post, start, end time.Time) []models.TrendBucket {
	byDay := make(map[string]*models.TrendBucket)
	var order []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		label := d.Format(util.DateLayout)
		byDay[label] = &models.TrendBucket{Label: label}
		order = append(order, label)
	}
	for _, p := range posts {
		if p.Sentiment == nil {
			continue
		}
		b, ok := byDay[util.DayStart(p.CreatedAt).Format(util.DateLayout)]
		if !ok {
			continue
		}
		tally(b, p.Sentiment.Label)
	}
	out := make([]models.TrendBucket, 0, len(order))
	for _, label := range order {
		out = append(out, *byDay[label])
	}
	return out
}

func weeklyBuckets(posts []*models.Post, start, end time.Time) []models.TrendBucket {
	byWeek := make(map[string]*models.TrendBucket)
	var order []string
	for d := util.WeekStart(start); !d.After(end); d = d.AddDate(0, 0, 7) {
		label := util.ISOWeekLabel(d)
		byWeek[label] = &models.TrendBucket{Label: label}
		order = append(order, label)
	}
	for _, p := range posts {
		if p.Sentiment == nil {
			continue
		}
		b, ok := byWeek[util.ISOWeekLabel(p.CreatedAt)]
		if !ok {
			continue
		}
		tally(b, p.Sentiment.Label)
	}
	out := make([]models.TrendBucket, 0, len(order))
	for _, label := range order {
		out = append(out, *byWeek[label])
	}
	return out
}

func tally(b *models.TrendBucket, label string) {
	switch label {
	case models.SentimentPositive:
		b.Positive++
	case models.SentimentNegative:
		b.Negative++
	default:
		b.Neutral++
	}
	b.Total++
}

// Pulse computes the cross-ticker market snapshot: most discussed, most
// positive, most negative rankings, per-sector sentiment, and the overall
// distribution. Sentiment rankings exclude tickers below the minimum sample
// size so a single enthusiastic post cannot top the board.
func (a *Aggregator) Pulse(ctx context.Context, f models.Filter) (models.MarketPulse, error) {
	var out models.MarketPulse
	err := a.cached(ctx, "pulse|"+f.CacheKey(), &out, func() (any, error) {
		posts, err := a.store.Query(ctx, f, 0, 0)
		if err != nil {
			return nil, err
		}
		snap := a.registry.Snapshot()

		type tickerAgg struct {
			posts    int
			scoreSum float64
			scored   int
		}
		byTicker := make(map[string]*tickerAgg)
		bySector := make(map[string]map[string]int)

		counts := newCounts()
		var scoreSum float64
		var scored int
		pulse := models.MarketPulse{}

		for _, p := range posts {
			pulse.TotalPosts++
			for _, sym := range p.Tickers {
				agg := byTicker[sym]
				if agg == nil {
					agg = &tickerAgg{}
					byTicker[sym] = agg
				}
				agg.posts++
				if p.Sentiment != nil {
					agg.scoreSum += p.Sentiment.SignedScore()
					agg.scored++
				}
			}
			if p.Sentiment == nil {
				continue
			}
			counts[p.Sentiment.Label]++
			scoreSum += p.Sentiment.SignedScore()
			scored++
			for _, sec := range p.Sectors {
				m := bySector[sec]
				if m == nil {
					m = newCounts()
					bySector[sec] = m
				}
				m[p.Sentiment.Label]++
			}
		}

		ranks := make([]models.TickerRank, 0, len(byTicker))
		for sym, agg := range byTicker {
			r := models.TickerRank{Symbol: sym, Posts: agg.posts}
			if meta, ok := snap.Lookup(sym); ok {
				r.Company = meta.Company
			}
			if agg.scored > 0 {
				r.AvgScore = util.Round2(agg.scoreSum / float64(agg.scored))
			}
			ranks = append(ranks, r)
		}

		pulse.MostDiscussed = topBy(ranks, a.cfg.MaxRankSize, func(x, y models.TickerRank) bool {
			if x.Posts != y.Posts {
				return x.Posts > y.Posts
			}
			return x.Symbol < y.Symbol
		})

		eligible := ranks[:0:0]
		for _, r := range ranks {
			if r.Posts >= a.cfg.MinSampleSize {
				eligible = append(eligible, r)
			}
		}
		pulse.MostPositive = topBy(eligible, a.cfg.MaxRankSize, func(x, y models.TickerRank) bool {
			if x.AvgScore != y.AvgScore {
				return x.AvgScore > y.AvgScore
			}
			return x.Symbol < y.Symbol
		})
		pulse.MostNegative = topBy(eligible, a.cfg.MaxRankSize, func(x, y models.TickerRank) bool {
			if x.AvgScore != y.AvgScore {
				return x.AvgScore < y.AvgScore
			}
			return x.Symbol < y.Symbol
		})

		sectors := make([]string, 0, len(bySector))
		for sec := range bySector {
			sectors = append(sectors, sec)
		}
		sort.Strings(sectors)
		for _, sec := range sectors {
			ss := models.SectorSentiment{Sector: sec, Counts: bySector[sec]}
			for _, n := range ss.Counts {
				ss.Total += n
			}
			pulse.BySector = append(pulse.BySector, ss)
		}

		if scored > 0 {
			pulse.AvgScore = util.Round2(scoreSum / float64(scored))
		}
		pulse.Distribution = breakdown(counts)
		return pulse, nil
	})
	return out, err
}

// Heatmap aggregates sentiment per industry, sorted by post count
// descending then industry name.
func (a *Aggregator) Heatmap(ctx context.Context, f models.Filter) ([]models.IndustryHeat, error) {
	var out []models.IndustryHeat
	err := a.cached(ctx, "heatmap|"+f.CacheKey(), &out, func() (any, error) {
		posts, err := a.store.Query(ctx, f, 0, 0)
		if err != nil {
			return nil, err
		}
		byIndustry := make(map[string]map[string]int)
		for _, p := range posts {
			if p.Sentiment == nil {
				continue
			}
			for _, ind := range p.Industries {
				m := byIndustry[ind]
				if m == nil {
					m = newCounts()
					byIndustry[ind] = m
				}
				m[p.Sentiment.Label]++
			}
		}
		heat := make([]models.IndustryHeat, 0, len(byIndustry))
		for ind, counts := range byIndustry {
			h := models.IndustryHeat{Industry: ind, BySentiment: breakdown(counts)}
			for _, n := range counts {
				h.Total += n
			}
			heat = append(heat, h)
		}
		sort.Slice(heat, func(i, j int) bool {
			if heat[i].Total != heat[j].Total {
				return heat[i].Total > heat[j].Total
			}
			return heat[i].Industry < heat[j].Industry
		})
		return heat, nil
	})
	return out, err
}

// Compare returns per-ticker sentiment for the requested symbols, preserving
// the caller's order. An unknown symbol fails the whole request.
func (a *Aggregator) Compare(ctx context.Context, symbols []string, f models.Filter) ([]models.TickerComparison, error) {
	snap := a.registry.Snapshot()
	out := make([]models.TickerComparison, 0, len(symbols))
	for _, raw := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		meta, ok := snap.Lookup(sym)
		if !ok {
			return nil, models.NewNotFoundError("ticker", sym)
		}

		tf := f
		tf.Ticker = sym
		posts, err := a.store.Query(ctx, tf, 0, 0)
		if err != nil {
			return nil, err
		}

		tc := models.TickerComparison{
			Symbol:    sym,
			Company:   meta.Company,
			Counts:    newCounts(),
			AvgScores: make(map[string]float64, len(models.SentimentLabels)),
		}
		sums := make(map[string]float64, len(models.SentimentLabels))
		for _, p := range posts {
			if p.Sentiment == nil {
				continue
			}
			tc.Total++
			tc.Counts[p.Sentiment.Label]++
			sums[p.Sentiment.Label] += p.Sentiment.Score
		}
		for _, label := range models.SentimentLabels {
			if n := tc.Counts[label]; n > 0 {
				tc.AvgScores[label] = util.Round2(sums[label] / float64(n))
			} else {
				tc.AvgScores[label] = 0
			}
		}
		out = append(out, tc)
	}
	return out, nil
}

// Correlation returns the daily volume/sentiment series over the filter
// window, dense across the window so volume dips are visible.
func (a *Aggregator) Correlation(ctx context.Context, f models.Filter, days int) ([]models.CorrelationPoint, error) {
	if days <= 0 {
		days = 30
	}
	end := util.DayStart(time.Now().UTC())
	if f.EndDate != nil {
		end = util.DayStart(*f.EndDate)
	}
	start := end.AddDate(0, 0, -(days - 1))
	if f.StartDate != nil && f.StartDate.After(start) {
		start = util.DayStart(*f.StartDate)
	}

	qf := f
	qf.StartDate = &start
	qf.EndDate = &end

	var out []models.CorrelationPoint
	err := a.cached(ctx, "correlation|"+qf.CacheKey(), &out, func() (any, error) {
		posts, err := a.store.Query(ctx, qf, 0, 0)
		if err != nil {
			return nil, err
		}

		type dayAgg struct {
			point    models.CorrelationPoint
			scoreSum float64
			scored   int
		}
		byDay := make(map[string]*dayAgg)
		var order []string
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			label := d.Format(util.DateLayout)
			byDay[label] = &dayAgg{point: models.CorrelationPoint{Date: label}}
			order = append(order, label)
		}
		for _, p := range posts {
			agg, ok := byDay[util.DayStart(p.CreatedAt).Format(util.DateLayout)]
			if !ok {
				continue
			}
			agg.point.Volume++
			if p.Sentiment == nil {
				continue
			}
			agg.scoreSum += p.Sentiment.SignedScore()
			agg.scored++
			switch p.Sentiment.Label {
			case models.SentimentPositive:
				agg.point.Positive++
			case models.SentimentNegative:
				agg.point.Negative++
			default:
				agg.point.Neutral++
			}
		}
		points := make([]models.CorrelationPoint, 0, len(order))
		for _, label := range order {
			agg := byDay[label]
			if agg.scored > 0 {
				agg.point.AvgSentiment = util.Round2(agg.scoreSum / float64(agg.scored))
			}
			points = append(points, agg.point)
		}
		return points, nil
	})
	return out, err
}

// cached runs compute and round-trips the result through the byte cache when
// one is configured. Cache failures are logged and treated as misses.
func (a *Aggregator) cached(ctx context.Context, key string, dst any, compute func() (any, error)) error {
	if a.cache != nil && a.cfg.CacheTTL > 0 {
		if b, ok, err := a.cache.GetBytes(key); err != nil {
			a.logger.Warn("aggregation cache read failed", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			if err := json.Unmarshal(b, dst); err == nil {
				return nil
			}
		}
	}

	v, err := compute()
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if a.cache != nil && a.cfg.CacheTTL > 0 {
		if err := a.cache.SetBytes(key, b, a.cfg.CacheTTL); err != nil {
			a.logger.Warn("aggregation cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return json.Unmarshal(b, dst)
}

func newCounts() map[string]int {
	m := make(map[string]int, len(models.SentimentLabels))
	for _, label := range models.SentimentLabels {
		m[label] = 0
	}
	return m
}

func breakdown(counts map[string]int) models.SentimentBreakdown {
	total := 0
	for _, n := range counts {
		total += n
	}
	pct := make(map[string]float64, len(counts))
	for label, n := range counts {
		if total > 0 {
			pct[label] = util.Round2(float64(n) / float64(total) * 100)
		} else {
			pct[label] = 0
		}
	}
	return models.SentimentBreakdown{Counts: counts, Percentages: pct}
}

func topBy(ranks []models.TickerRank, n int, less func(x, y models.TickerRank) bool) []models.TickerRank {
	out := make([]models.TickerRank, len(ranks))
	copy(out, ranks)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
