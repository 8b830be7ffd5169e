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

var tagColumns = []string{"id", "name", "slug", "category", "usage_count", "last_used_at", "created_at"}

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db  *database.DB
	now func() time.Time
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new tag with a zero usage count. A name or slug that is
// already taken returns ErrDuplicate.
func (r *tagRepo) Create(ctx context.Context, tag *models.Tag) error {
	tag.CreatedAt = r.now()
	tag.UsageCount = 0
	tag.LastUsedAt = nil

	query := `
		INSERT INTO tags (id, name, slug, category, usage_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`
	_, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Slug, tag.Category, tag.CreatedAt)
	return duplicateAsConflict(err)
}

// GetByID retrieves a tag by ID
func (r *tagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	return r.getOne(ctx, "id", id)
}

// GetByName retrieves a tag by its unique name
func (r *tagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return r.getOne(ctx, "name", name)
}

// GetBySlug retrieves a tag by its unique slug
func (r *tagRepo) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *tagRepo) getOne(ctx context.Context, column, value string) (*models.Tag, error) {
	query := "SELECT " + strings.Join(tagColumns, ", ") + " FROM tags WHERE " + column + " = $1"

	tag, err := scanTag(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// List returns tags ordered by usage, most used first
func (r *tagRepo) List(ctx context.Context, category string, limit int) ([]*models.Tag, error) {
	q := psql.Select(tagColumns...).From("tags").
		OrderBy("usage_count DESC", "name").
		Limit(clampLimit(limit))
	if category != "" {
		q = q.Where(sq.Eq{"category": category})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tag query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Attach inserts an article-tag relation. In the same transaction the tag's
// usage_count grows by one and last_used_at is set to the insertion time.
// An existing relation is left untouched and reported as false.
func (r *tagRepo) Attach(ctx context.Context, rel *models.ArticleTag) (bool, error) {
	now := r.now()
	if rel.RelevanceScore == 0 {
		rel.RelevanceScore = models.DefaultRelevance
	}

	inserted := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO article_tags (article_id, tag_id, relevance_score, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (article_id, tag_id) DO NOTHING
		`, rel.ArticleID, rel.TagID, rel.RelevanceScore, now)
		if err != nil {
			return fmt.Errorf("insert article tag: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		err = expectOneRow(tx.ExecContext(ctx,
			"UPDATE tags SET usage_count = usage_count + 1, last_used_at = $2 WHERE id = $1",
			rel.TagID, now,
		))
		if err != nil {
			return fmt.Errorf("increment tag usage: %w", err)
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if inserted {
		rel.CreatedAt = now
	}
	return inserted, nil
}

// Detach removes an article-tag relation and releases its usage
func (r *tagRepo) Detach(ctx context.Context, articleID, tagID string) (bool, error) {
	removed := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM article_tags WHERE article_id = $1 AND tag_id = $2", articleID, tagID)
		if err != nil {
			return fmt.Errorf("delete article tag: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE tags SET usage_count = GREATEST(usage_count - 1, 0) WHERE id = $1", tagID)
		if err != nil {
			return fmt.Errorf("decrement tag usage: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}

// ListForArticle returns the tags attached to an article, most relevant first
func (r *tagRepo) ListForArticle(ctx context.Context, articleID string) ([]*models.ArticleTagView, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.category, t.usage_count, t.last_used_at, t.created_at, at.relevance_score
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = $1
		ORDER BY at.relevance_score DESC, t.name
	`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []*models.ArticleTagView{}
	for rows.Next() {
		var view models.ArticleTagView
		var lastUsed sql.NullTime
		err := rows.Scan(
			&view.ID, &view.Name, &view.Slug, &view.Category, &view.UsageCount,
			&lastUsed, &view.CreatedAt, &view.RelevanceScore,
		)
		if err != nil {
			return nil, err
		}
		view.LastUsedAt = nullTime(lastUsed)
		views = append(views, &view)
	}
	return views, rows.Err()
}

// Count returns the total number of tags
func (r *tagRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "tags")
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	var lastUsed sql.NullTime
	err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Category, &tag.UsageCount, &lastUsed, &tag.CreatedAt)
	if err != nil {
		return nil, err
	}
	tag.LastUsedAt = nullTime(lastUsed)
	return &tag, nil
}
