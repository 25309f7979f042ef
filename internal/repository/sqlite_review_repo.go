package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"review-sentiment/internal/models"
)

type reviewRow struct {
	ID        int64  `db:"id"`
	Text      string `db:"text"`
	Sentiment string `db:"sentiment"`
	CreatedAt string `db:"created_at"`
}

func (r reviewRow) toModel() (models.Review, error) {
	sentiment, err := models.ParseSentiment(r.Sentiment)
	if err != nil {
		return models.Review{}, fmt.Errorf("review %d: %w", r.ID, err)
	}
	createdAt, err := models.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return models.Review{}, fmt.Errorf("review %d: %w", r.ID, err)
	}
	return models.Review{
		ID:        r.ID,
		Text:      r.Text,
		Sentiment: sentiment,
		CreatedAt: createdAt,
	}, nil
}

// SQLiteReviewRepo persists reviews in a SQLite database migrated by
// database.NewSQLite. AUTOINCREMENT guarantees ids are never reused, even
// across restarts.
type SQLiteReviewRepo struct {
	db     *sqlx.DB
	logger *slog.Logger

	mu    sync.Mutex
	clock *monotonicClock
}

// NewSQLiteReviewRepo wraps an already migrated database. The newest stored
// timestamp becomes the floor for future inserts.
func NewSQLiteReviewRepo(ctx context.Context, db *sqlx.DB, clock clockwork.Clock, logger *slog.Logger) (*SQLiteReviewRepo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &SQLiteReviewRepo{
		db:     db,
		logger: logger.With("component", "sqlite_review_repo"),
		clock:  newMonotonicClock(clock),
	}

	var last string
	err := db.GetContext(ctx, &last, `SELECT created_at FROM reviews ORDER BY id DESC LIMIT 1`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to read latest review: %w", err)
	default:
		ts, err := models.ParseTimestamp(last)
		if err != nil {
			return nil, fmt.Errorf("failed to read latest review: %w", err)
		}
		r.clock.seed(ts.Time)
	}

	return r, nil
}

func (r *SQLiteReviewRepo) Insert(ctx context.Context, text string, sentiment models.Sentiment) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := reviewRow{
		Text:      text,
		Sentiment: string(sentiment),
		CreatedAt: r.clock.next().String(),
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Review{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.WarnContext(ctx, "Error rolling back transaction", "error", rbErr)
		}
	}()

	result, err := tx.NamedExecContext(ctx,
		`INSERT INTO reviews (text, sentiment, created_at) VALUES (:text, :sentiment, :created_at)`, row)
	if err != nil {
		return models.Review{}, fmt.Errorf("failed to insert review: %w", err)
	}

	row.ID, err = result.LastInsertId()
	if err != nil {
		return models.Review{}, fmt.Errorf("failed to read inserted review id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Review{}, fmt.Errorf("failed to commit review: %w", err)
	}

	r.logger.DebugContext(ctx, "Review saved", "review_id", row.ID, "sentiment", row.Sentiment)
	return row.toModel()
}

func (r *SQLiteReviewRepo) List(ctx context.Context, filter *models.Sentiment) ([]models.Review, error) {
	query := `SELECT id, text, sentiment, created_at FROM reviews`
	var args []any
	if filter != nil {
		query += ` WHERE sentiment = ?`
		args = append(args, string(*filter))
	}
	query += ` ORDER BY id ASC`

	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		review, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, review)
	}
	return out, nil
}

func (r *SQLiteReviewRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteReviewRepo) Close(context.Context) error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
