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

var scheduleColumns = []string{
	"id", "article_id", "scheduled_at", "timezone", "recurrence_type", "recurrence_interval",
	"recurrence_end", "platforms", "status", "error_message", "published_at", "created_at", "updated_at",
}

// scheduleRepo is the concrete implementation of ScheduleRepository
type scheduleRepo struct {
	db  *database.DB
	now func() time.Time
}

// NewScheduleRepo creates a new schedule repository
func NewScheduleRepo(db *database.DB) ScheduleRepository {
	return &scheduleRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new scheduled publication
func (r *scheduleRepo) Create(ctx context.Context, s *models.Schedule) error {
	now := r.now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.RecurrenceInterval <= 0 {
		s.RecurrenceInterval = 1
	}

	query := `
		INSERT INTO scheduled_publications (id, article_id, scheduled_at, timezone, recurrence_type,
			recurrence_interval, recurrence_end, platforms, status, error_message, published_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ArticleID, s.ScheduledAt, s.Timezone, s.RecurrenceType, s.RecurrenceInterval,
		s.RecurrenceEnd, encodeStrings(s.Platforms), s.Status, s.ErrorMessage, s.PublishedAt,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetByID retrieves a schedule by ID
func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := "SELECT " + strings.Join(scheduleColumns, ", ") + " FROM scheduled_publications WHERE id = $1"

	s, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns schedules matching filter, soonest first
func (r *scheduleRepo) List(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error) {
	q := psql.Select(scheduleColumns...).From("scheduled_publications").
		OrderBy("scheduled_at", "created_at").
		Limit(clampLimit(filter.Limit)).
		Offset(clampOffset(filter.Offset))

	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	if filter.ArticleID != "" {
		q = q.Where(sq.Eq{"article_id": filter.ArticleID})
	}
	if filter.DueBefore != nil {
		q = q.Where(sq.LtOrEq{"scheduled_at": *filter.DueBefore})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build schedule query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update saves a schedule. updated_at is refreshed on every call; when the
// stored status differs from s.Status exactly one schedule_status_logs row
// is appended in the same transaction. The stored status is re-checked under
// the row lock and ErrStatusConflict is returned when it cannot move to
// s.Status. The returned bool reports whether the status changed.
func (r *scheduleRepo) Update(ctx context.Context, s *models.Schedule) (bool, error) {
	now := r.now()
	changed := false

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var old models.ScheduleStatus
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM scheduled_publications WHERE id = $1 FOR UPDATE", s.ID,
		).Scan(&old)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock schedule: %w", err)
		}
		if !old.CanMoveTo(s.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrStatusConflict, old, s.Status)
		}

		query := `
			UPDATE scheduled_publications SET scheduled_at = $2, timezone = $3, recurrence_type = $4,
				recurrence_interval = $5, recurrence_end = $6, platforms = $7, status = $8,
				error_message = $9, published_at = $10, updated_at = $11
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, query,
			s.ID, s.ScheduledAt, s.Timezone, s.RecurrenceType, s.RecurrenceInterval,
			s.RecurrenceEnd, encodeStrings(s.Platforms), s.Status, s.ErrorMessage, s.PublishedAt, now,
		)
		if err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}

		if old == s.Status {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO schedule_status_logs (schedule_id, old_status, new_status, changed_at) VALUES ($1, $2, $3, $4)",
			s.ID, old, s.Status, now,
		)
		if err != nil {
			return fmt.Errorf("append status log: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	s.UpdatedAt = now
	return changed, nil
}

// Delete removes a schedule and, through the foreign key, its status logs
func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, "DELETE FROM scheduled_publications WHERE id = $1", id))
}

// StatusLogs returns the audit trail of a schedule, oldest first
func (r *scheduleRepo) StatusLogs(ctx context.Context, scheduleID string) ([]*models.ScheduleStatusLog, error) {
	query := `
		SELECT id, schedule_id, old_status, new_status, changed_at
		FROM schedule_status_logs WHERE schedule_id = $1 ORDER BY changed_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*models.ScheduleStatusLog{}
	for rows.Next() {
		var l models.ScheduleStatusLog
		if err := rows.Scan(&l.ID, &l.ScheduleID, &l.OldStatus, &l.NewStatus, &l.ChangedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// StreamAll streams every schedule ordered by time, for exports and CLI listings
func (r *scheduleRepo) StreamAll(ctx context.Context, callback func(*models.Schedule) error) error {
	query := "SELECT " + strings.Join(scheduleColumns, ", ") + " FROM scheduled_publications ORDER BY scheduled_at"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return err
		}
		if err := callback(s); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the total number of schedules
func (r *scheduleRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "scheduled_publications")
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	var platforms string
	var recurrenceEnd, publishedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.ArticleID, &s.ScheduledAt, &s.Timezone, &s.RecurrenceType, &s.RecurrenceInterval,
		&recurrenceEnd, &platforms, &s.Status, &s.ErrorMessage, &publishedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Platforms = decodeStrings(platforms)
	s.RecurrenceEnd = nullTime(recurrenceEnd)
	s.PublishedAt = nullTime(publishedAt)
	return &s, nil
}
