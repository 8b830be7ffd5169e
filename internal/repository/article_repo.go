package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ai-blog-writer/internal/database"
	"github.com/ai-blog-writer/internal/models"
)

var articleColumns = []string{
	"id", "title", "content", "topic", "style", "audience", "tone", "ai_model",
	"keywords", "status", "word_count", "series_id", "series_order", "published_at",
	"created_at", "updated_at",
}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article and bumps its series counter
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	query := `
		INSERT INTO articles (id, title, content, topic, style, audience, tone, ai_model,
			keywords, status, word_count, series_id, series_order, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			article.ID, article.Title, article.Content, article.Topic, article.Style,
			article.Audience, article.Tone, article.AIModel, encodeStrings(article.Keywords),
			article.Status, article.WordCount, article.SeriesID, article.SeriesOrder,
			article.PublishedAt, article.CreatedAt, article.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert article: %w", err)
		}
		return adjustSeriesCount(ctx, tx, article.SeriesID, 1, now)
	})
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := "SELECT " + strings.Join(articleColumns, ", ") + " FROM articles WHERE id = $1"

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// List returns articles matching filter, newest first. Series listings are
// ordered by series position instead.
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	q := psql.Select(articleColumns...).From("articles").
		Limit(clampLimit(filter.Limit)).
		Offset(clampOffset(filter.Offset))

	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	if filter.SeriesID != "" {
		q = q.Where(sq.Eq{"series_id": filter.SeriesID}).OrderBy("series_order NULLS LAST", "created_at")
	} else {
		q = q.OrderBy("created_at DESC")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": like},
			sq.ILike{"topic": like},
			sq.ILike{"keywords": like},
		})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Update saves an article. Moving it between series updates both counters.
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	now := time.Now().UTC()

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var prevSeries sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT series_id FROM articles WHERE id = $1 FOR UPDATE", article.ID).Scan(&prevSeries)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock article: %w", err)
		}

		query := `
			UPDATE articles SET title = $2, content = $3, topic = $4, style = $5, audience = $6,
				tone = $7, ai_model = $8, keywords = $9, status = $10, word_count = $11,
				series_id = $12, series_order = $13, published_at = $14, updated_at = $15
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, query,
			article.ID, article.Title, article.Content, article.Topic, article.Style,
			article.Audience, article.Tone, article.AIModel, encodeStrings(article.Keywords),
			article.Status, article.WordCount, article.SeriesID, article.SeriesOrder,
			article.PublishedAt, now,
		)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		article.UpdatedAt = now

		prev := nullString(prevSeries)
		if sameSeries(prev, article.SeriesID) {
			return nil
		}
		if err := adjustSeriesCount(ctx, tx, prev, -1, now); err != nil {
			return err
		}
		return adjustSeriesCount(ctx, tx, article.SeriesID, 1, now)
	})
}

// Delete removes an article. Tag relations cascade in the database, so the
// usage they held is released here first.
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	now := time.Now().UTC()

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var seriesID sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT series_id FROM articles WHERE id = $1 FOR UPDATE", id).Scan(&seriesID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock article: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE tags SET usage_count = GREATEST(usage_count - 1, 0)
			WHERE id IN (SELECT tag_id FROM article_tags WHERE article_id = $1)
		`, id)
		if err != nil {
			return fmt.Errorf("release tag usage: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		return adjustSeriesCount(ctx, tx, nullString(seriesID), -1, now)
	})
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "articles")
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var keywords string
	var seriesID sql.NullString
	var seriesOrder sql.NullInt64
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.Title, &article.Content, &article.Topic, &article.Style,
		&article.Audience, &article.Tone, &article.AIModel, &keywords, &article.Status,
		&article.WordCount, &seriesID, &seriesOrder, &publishedAt,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Keywords = decodeStrings(keywords)
	article.SeriesID = nullString(seriesID)
	article.SeriesOrder = nullInt(seriesOrder)
	article.PublishedAt = nullTime(publishedAt)
	return &article, nil
}

// adjustSeriesCount moves series.current_articles by delta, never below zero
func adjustSeriesCount(ctx context.Context, ex execer, seriesID *string, delta int, now time.Time) error {
	if seriesID == nil || *seriesID == "" {
		return nil
	}
	_, err := ex.ExecContext(ctx,
		"UPDATE series SET current_articles = GREATEST(current_articles + $2, 0), updated_at = $3 WHERE id = $1",
		*seriesID, delta, now,
	)
	if err != nil {
		return fmt.Errorf("update series counter: %w", err)
	}
	return nil
}

func sameSeries(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
