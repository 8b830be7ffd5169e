package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ai-blog-writer/internal/database"
	"github.com/ai-blog-writer/internal/models"
)

// analyticsRepo is the concrete implementation of AnalyticsRepository
type analyticsRepo struct {
	db *database.DB
}

// NewAnalyticsRepo creates a new analytics repository
func NewAnalyticsRepo(db *database.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

// Upsert records one day of metrics, replacing any earlier values for that day
func (r *analyticsRepo) Upsert(ctx context.Context, row *models.Analytics) error {
	query := `
		INSERT INTO article_analytics (article_id, day, views, likes, comments, shares, avg_read_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (article_id, day) DO UPDATE SET
			views = EXCLUDED.views,
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			avg_read_seconds = EXCLUDED.avg_read_seconds
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		row.ArticleID, row.Day, row.Views, row.Likes, row.Comments, row.Shares, row.AvgReadSeconds,
	).Scan(&row.ID)
}

// ListRange returns daily rows for an article within [from, to], oldest first
func (r *analyticsRepo) ListRange(ctx context.Context, articleID string, from, to *time.Time) ([]*models.Analytics, error) {
	q := psql.Select("id", "article_id", "day", "views", "likes", "comments", "shares", "avg_read_seconds").
		From("article_analytics").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("day")
	if from != nil {
		q = q.Where(sq.GtOrEq{"day": *from})
	}
	if to != nil {
		q = q.Where(sq.LtOrEq{"day": *to})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build analytics query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Analytics{}
	for rows.Next() {
		var a models.Analytics
		err := rows.Scan(&a.ID, &a.ArticleID, &a.Day, &a.Views, &a.Likes, &a.Comments, &a.Shares, &a.AvgReadSeconds)
		if err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// Count returns the number of analytics rows
func (r *analyticsRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "article_analytics")
}
