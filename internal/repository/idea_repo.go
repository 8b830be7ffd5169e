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

var ideaColumns = []string{
	"id", "title", "description", "keywords", "priority", "status", "article_id", "created_at", "updated_at",
}

// ideaRepo is the concrete implementation of IdeaRepository
type ideaRepo struct {
	db *database.DB
}

// NewIdeaRepo creates a new idea repository
func NewIdeaRepo(db *database.DB) IdeaRepository {
	return &ideaRepo{db: db}
}

// Create inserts a new idea
func (r *ideaRepo) Create(ctx context.Context, idea *models.Idea) error {
	now := time.Now().UTC()
	idea.CreatedAt = now
	idea.UpdatedAt = now

	query := `
		INSERT INTO ideas (id, title, description, keywords, priority, status, article_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		idea.ID, idea.Title, idea.Description, encodeStrings(idea.Keywords),
		idea.Priority, idea.Status, idea.ArticleID, idea.CreatedAt, idea.UpdatedAt,
	)
	return err
}

// GetByID retrieves an idea by ID
func (r *ideaRepo) GetByID(ctx context.Context, id string) (*models.Idea, error) {
	query := "SELECT " + strings.Join(ideaColumns, ", ") + " FROM ideas WHERE id = $1"

	idea, err := scanIdea(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// List returns ideas, high priority and newest first
func (r *ideaRepo) List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]*models.Idea, error) {
	q := psql.Select(ideaColumns...).From("ideas").
		OrderBy("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END", "created_at DESC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset))
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build idea query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := []*models.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// Update saves an idea
func (r *ideaRepo) Update(ctx context.Context, idea *models.Idea) error {
	now := time.Now().UTC()
	query := `
		UPDATE ideas SET title = $2, description = $3, keywords = $4, priority = $5, status = $6,
			article_id = $7, updated_at = $8
		WHERE id = $1
	`
	err := expectOneRow(r.db.ExecContext(ctx, query,
		idea.ID, idea.Title, idea.Description, encodeStrings(idea.Keywords),
		idea.Priority, idea.Status, idea.ArticleID, now,
	))
	if err != nil {
		return err
	}
	idea.UpdatedAt = now
	return nil
}

// Delete removes an idea
func (r *ideaRepo) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, "DELETE FROM ideas WHERE id = $1", id))
}

// Count returns the total number of ideas
func (r *ideaRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "ideas")
}

func scanIdea(row rowScanner) (*models.Idea, error) {
	var idea models.Idea
	var keywords string
	var articleID sql.NullString

	err := row.Scan(
		&idea.ID, &idea.Title, &idea.Description, &keywords, &idea.Priority,
		&idea.Status, &articleID, &idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	idea.Keywords = decodeStrings(keywords)
	idea.ArticleID = nullString(articleID)
	return &idea, nil
}
