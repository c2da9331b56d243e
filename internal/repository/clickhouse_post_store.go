package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// ClickHousePostStore implements PostStore backed by ClickHouse. A post is
// one row with denormalized ticker/industry/sector arrays, so a single
// insert commits atomically and readers never see a partial post. Dedup is
// enforced by an existence check plus a ReplacingMergeTree keyed on
// source_id, which collapses rows from concurrent batch replays.
type ClickHousePostStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHousePostStore creates a ClickHouse-backed post store.
func NewClickHousePostStore(ch *pkgch.Client, table string) *ClickHousePostStore {
	return &ClickHousePostStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *ClickHousePostStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHousePostStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            source_id String,
            title String,
            body String,
            author String,
            channel String,
            created_at DateTime,
            url String,
            has_sentiment UInt8,
            sentiment_label LowCardinality(String),
            sentiment_score Float64,
            score_positive Float64,
            score_neutral Float64,
            score_negative Float64,
            low_confidence UInt8,
            tickers Array(String),
            industries Array(String),
            sectors Array(String),
            fetched_at DateTime
        ) ENGINE = ReplacingMergeTree(fetched_at)
        ORDER BY source_id
    `, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init posts schema: %w", err)
	}
	return nil
}

func (s *ClickHousePostStore) Insert(ctx context.Context, p *models.Post) error {
	ok, err := s.Exists(ctx, p.SourceID)
	if err != nil {
		return err
	}
	if ok {
		return models.ErrDuplicatePost
	}

	var (
		hasSentiment  uint8
		label         string
		score         float64
		pos, neu, neg float64
		lowConf       uint8
	)
	if p.Sentiment != nil {
		hasSentiment = 1
		label = p.Sentiment.Label
		score = p.Sentiment.Score
		pos = p.Sentiment.Scores[models.SentimentPositive]
		neu = p.Sentiment.Scores[models.SentimentNeutral]
		neg = p.Sentiment.Scores[models.SentimentNegative]
		if p.Sentiment.LowConfidence {
			lowConf = 1
		}
	}

	start := time.Now()
	q := fmt.Sprintf(`INSERT INTO %s
        (source_id, title, body, author, channel, created_at, url,
         has_sentiment, sentiment_label, sentiment_score,
         score_positive, score_neutral, score_negative, low_confidence,
         tickers, industries, sectors, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		p.SourceID, p.Title, p.Body, p.Author, p.Channel, p.CreatedAt.UTC(), p.URL,
		hasSentiment, label, score,
		pos, neu, neg, lowConf,
		p.Tickers, p.Industries, p.Sectors, p.FetchedAt.UTC(),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse insert post error",
				applogger.String("source_id", p.SourceID),
				applogger.Error(err),
			)
		}
		return models.NewDependencyError("storage", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse insert post ok",
			applogger.String("source_id", p.SourceID),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *ClickHousePostStore) Exists(ctx context.Context, sourceID string) (bool, error) {
	q := fmt.Sprintf("SELECT count() FROM %s FINAL WHERE source_id = ?", s.table)
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, sourceID).Scan(&n); err != nil {
		return false, models.NewDependencyError("storage", err)
	}
	return n > 0, nil
}

func (s *ClickHousePostStore) Query(ctx context.Context, f models.Filter, limit, offset int) ([]*models.Post, error) {
	where, args := buildWhere(f)
	q := fmt.Sprintf(`SELECT source_id, title, body, author, channel, created_at, url,
        has_sentiment, sentiment_label, sentiment_score,
        score_positive, score_neutral, score_negative, low_confidence,
        tickers, industries, sectors, fetched_at
        FROM %s FINAL %s ORDER BY created_at DESC, source_id ASC`, s.table, where)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
		if offset > 0 {
			q += fmt.Sprintf(" OFFSET %d", offset)
		}
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query posts error", applogger.Error(err))
		}
		return nil, models.NewDependencyError("storage", err)
	}
	defer rows.Close()

	out := make([]*models.Post, 0, 128)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, models.NewDependencyError("storage", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewDependencyError("storage", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse query posts ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *ClickHousePostStore) Count(ctx context.Context, f models.Filter) (int, error) {
	where, args := buildWhere(f)
	q := fmt.Sprintf("SELECT count() FROM %s FINAL %s", s.table, where)
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, models.NewDependencyError("storage", err)
	}
	return int(n), nil
}

func (s *ClickHousePostStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHousePostStore) Close() error {
	return nil // pool owned by pkg/clickhouse client
}

// buildWhere compiles the canonical filter predicate to WHERE clauses with
// the same semantics as models.Filter.Matches.
func buildWhere(f models.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Ticker != "" {
		conds = append(conds, "has(tickers, ?)")
		args = append(args, f.Ticker)
	}
	if f.Industry != "" {
		conds = append(conds, "has(industries, ?)")
		args = append(args, f.Industry)
	}
	if f.Sector != "" {
		conds = append(conds, "has(sectors, ?)")
		args = append(args, f.Sector)
	}
	if f.Sentiment != "" {
		conds = append(conds, "has_sentiment = 1 AND sentiment_label = ?")
		args = append(args, f.Sentiment)
	}
	if f.StartDate != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conds = append(conds, "created_at < ?")
		args = append(args, f.EndDate.UTC().AddDate(0, 0, 1))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(r rowScanner) (*models.Post, error) {
	var (
		p             models.Post
		hasSentiment  uint8
		label         string
		score         float64
		pos, neu, neg float64
		lowConf       uint8
	)
	if err := r.Scan(
		&p.SourceID, &p.Title, &p.Body, &p.Author, &p.Channel, &p.CreatedAt, &p.URL,
		&hasSentiment, &label, &score,
		&pos, &neu, &neg, &lowConf,
		&p.Tickers, &p.Industries, &p.Sectors, &p.FetchedAt,
	); err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if hasSentiment == 1 {
		p.Sentiment = &models.Classification{
			Label: label,
			Score: score,
			Scores: map[string]float64{
				models.SentimentPositive: pos,
				models.SentimentNeutral:  neu,
				models.SentimentNegative: neg,
			},
			LowConfidence: lowConf == 1,
		}
	}
	return &p, nil
}

var _ domrepo.PostStore = (*ClickHousePostStore)(nil)
