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

var seriesColumns = []string{
	"id", "title", "description", "planned_articles", "current_articles", "status",
	"structure_template", "created_at", "updated_at",
}

// seriesRepo is the concrete implementation of SeriesRepository
type seriesRepo struct {
	db *database.DB
}

// NewSeriesRepo creates a new series repository
func NewSeriesRepo(db *database.DB) SeriesRepository {
	return &seriesRepo{db: db}
}

// Create inserts a new series. current_articles always starts at zero.
func (r *seriesRepo) Create(ctx context.Context, series *models.Series) error {
	now := time.Now().UTC()
	series.CreatedAt = now
	series.UpdatedAt = now
	series.CurrentArticles = 0

	query := `
		INSERT INTO series (id, title, description, planned_articles, current_articles, status,
			structure_template, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		series.ID, series.Title, series.Description, series.PlannedArticles, series.Status,
		encodeStrings(series.StructureTemplate), series.CreatedAt, series.UpdatedAt,
	)
	return err
}

// GetByID retrieves a series by ID
func (r *seriesRepo) GetByID(ctx context.Context, id string) (*models.Series, error) {
	query := "SELECT " + strings.Join(seriesColumns, ", ") + " FROM series WHERE id = $1"

	series, err := scanSeries(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return series, nil
}

// List returns series, newest first
func (r *seriesRepo) List(ctx context.Context, status models.SeriesStatus, limit, offset int) ([]*models.Series, error) {
	q := psql.Select(seriesColumns...).From("series").
		OrderBy("created_at DESC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset))
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build series query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Series{}
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, series)
	}
	return list, rows.Err()
}

// Update saves the editable fields of a series; current_articles is left to the article hooks
func (r *seriesRepo) Update(ctx context.Context, series *models.Series) error {
	now := time.Now().UTC()
	query := `
		UPDATE series SET title = $2, description = $3, planned_articles = $4, status = $5,
			structure_template = $6, updated_at = $7
		WHERE id = $1
	`
	err := expectOneRow(r.db.ExecContext(ctx, query,
		series.ID, series.Title, series.Description, series.PlannedArticles, series.Status,
		encodeStrings(series.StructureTemplate), now,
	))
	if err != nil {
		return err
	}
	series.UpdatedAt = now
	return nil
}

// Delete removes a series; its articles are detached by the foreign key
func (r *seriesRepo) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, "DELETE FROM series WHERE id = $1", id))
}

// Exists checks if a series with the given ID exists
func (r *seriesRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM series WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Count returns the total number of series
func (r *seriesRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "series")
}

func scanSeries(row rowScanner) (*models.Series, error) {
	var series models.Series
	var template string

	err := row.Scan(
		&series.ID, &series.Title, &series.Description, &series.PlannedArticles,
		&series.CurrentArticles, &series.Status, &template, &series.CreatedAt, &series.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	series.StructureTemplate = decodeStrings(template)
	return &series, nil
}
