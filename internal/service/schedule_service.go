package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone names are validated on hosts without zoneinfo

	"github.com/ai-blog-writer/internal/metrics"
	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimezone = "Asia/Seoul"

// scheduleService is the concrete implementation of ScheduleService
type scheduleService struct {
	schedules repository.ScheduleRepository
	articles  repository.ArticleRepository
	now       func() time.Time
	log       zerolog.Logger
}

func newScheduleService(repos *repository.Repositories, log zerolog.Logger) *scheduleService {
	return &scheduleService{
		schedules: repos.Schedule,
		articles:  repos.Article,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("service", "schedule").Logger(),
	}
}

// Create plans a publication. The article must exist; a draft article is
// marked scheduled.
func (s *scheduleService) Create(ctx context.Context, in *models.ScheduleInput) (*models.Schedule, error) {
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("scheduled_at", "scheduled_at is required"))
	}
	if in.RecurrenceEnd != nil && in.RecurrenceEnd.Before(in.ScheduledAt) {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("recurrence_end", "recurrence_end must not be before scheduled_at"))
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("timezone", "unknown timezone"))
	}

	article, err := s.articles.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("article_id", "article not found"))
	}

	schedule := &models.Schedule{
		ID:                 uuid.New().String(),
		ArticleID:          in.ArticleID,
		ScheduledAt:        in.ScheduledAt.UTC(),
		Timezone:           tz,
		RecurrenceType:     in.RecurrenceType,
		RecurrenceInterval: in.RecurrenceInterval,
		RecurrenceEnd:      in.RecurrenceEnd,
		Platforms:          cleanList(in.Platforms),
		Status:             models.ScheduleStatusScheduled,
	}
	if schedule.RecurrenceType == "" {
		schedule.RecurrenceType = models.RecurrenceNone
	}
	if schedule.RecurrenceInterval <= 0 {
		schedule.RecurrenceInterval = 1
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	if article.Status == models.ArticleStatusDraft {
		article.Status = models.ArticleStatusScheduled
		if err := s.articles.Update(ctx, article); err != nil {
			return nil, fmt.Errorf("mark article scheduled: %w", err)
		}
	}

	s.log.Info().
		Str("schedule_id", schedule.ID).
		Str("article_id", schedule.ArticleID).
		Time("scheduled_at", schedule.ScheduledAt).
		Str("recurrence", string(schedule.RecurrenceType)).
		Msg("Publication scheduled")
	return schedule, nil
}

// Get returns a schedule or ErrNotFound
func (s *scheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if schedule == nil {
		return nil, ErrNotFound
	}
	return schedule, nil
}

// List returns schedules matching filter
func (s *scheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error) {
	return s.schedules.List(ctx, filter)
}

// UpdateStatus moves a schedule out of "scheduled". Publishing also marks
// the article published and, for recurring schedules, plans the next run.
func (s *scheduleService) UpdateStatus(ctx context.Context, id string, in *models.ScheduleStatusInput) (*models.ScheduleTransition, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := schedule.Status
	if !from.CanTransition(in.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, in.Status)
	}

	schedule.Status = in.Status
	schedule.ErrorMessage = ""
	if in.Status == models.ScheduleStatusFailed {
		schedule.ErrorMessage = strings.TrimSpace(in.ErrorMessage)
	}
	if in.Status == models.ScheduleStatusPublished && schedule.PublishedAt == nil {
		now := s.now()
		schedule.PublishedAt = &now
	}

	changed, err := s.schedules.Update(ctx, schedule)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	result := &models.ScheduleTransition{Schedule: schedule, Changed: changed}
	if !changed {
		return result, nil
	}

	metrics.RecordScheduleTransition(string(from), string(in.Status))
	s.log.Info().
		Str("schedule_id", id).
		Str("from", string(from)).
		Str("to", string(in.Status)).
		Msg("Schedule status changed")

	if in.Status == models.ScheduleStatusPublished {
		if err := s.publishArticle(ctx, schedule); err != nil {
			return nil, err
		}
		next, err := s.planNext(ctx, schedule)
		if err != nil {
			return nil, err
		}
		result.Next = next
	}
	return result, nil
}

// Reschedule moves any unpublished schedule back to "scheduled" at a new time
func (s *scheduleService) Reschedule(ctx context.Context, id string, in *models.RescheduleInput) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.Status.CanReschedule() {
		return nil, fmt.Errorf("%w: published schedules cannot be rescheduled", ErrInvalidTransition)
	}
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("scheduled_at", "scheduled_at is required"))
	}

	from := schedule.Status
	schedule.ScheduledAt = in.ScheduledAt.UTC()
	schedule.Status = models.ScheduleStatusScheduled
	schedule.ErrorMessage = ""

	changed, err := s.schedules.Update(ctx, schedule)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return nil, fmt.Errorf("reschedule: %w", err)
	}
	if changed {
		metrics.RecordScheduleTransition(string(from), string(schedule.Status))
	}
	return schedule, nil
}

// Delete removes a schedule
func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// StatusLogs returns the audit trail of a schedule
func (s *scheduleService) StatusLogs(ctx context.Context, id string) ([]*models.ScheduleStatusLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.schedules.StatusLogs(ctx, id)
}

// StreamAll walks every schedule in time order
func (s *scheduleService) StreamAll(ctx context.Context, callback func(*models.Schedule) error) error {
	return s.schedules.StreamAll(ctx, callback)
}

func (s *scheduleService) publishArticle(ctx context.Context, schedule *models.Schedule) error {
	article, err := s.articles.GetByID(ctx, schedule.ArticleID)
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}
	if article == nil || article.Status == models.ArticleStatusPublished {
		return nil
	}

	article.Status = models.ArticleStatusPublished
	article.PublishedAt = schedule.PublishedAt
	if err := s.articles.Update(ctx, article); err != nil {
		return fmt.Errorf("mark article published: %w", err)
	}
	return nil
}

func (s *scheduleService) planNext(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	at, ok := schedule.NextOccurrence()
	if !ok {
		return nil, nil
	}

	next := &models.Schedule{
		ID:                 uuid.New().String(),
		ArticleID:          schedule.ArticleID,
		ScheduledAt:        at,
		Timezone:           schedule.Timezone,
		RecurrenceType:     schedule.RecurrenceType,
		RecurrenceInterval: schedule.RecurrenceInterval,
		RecurrenceEnd:      schedule.RecurrenceEnd,
		Platforms:          schedule.Platforms,
		Status:             models.ScheduleStatusScheduled,
	}
	if err := s.schedules.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("plan next occurrence: %w", err)
	}

	s.log.Info().
		Str("schedule_id", next.ID).
		Str("previous_id", schedule.ID).
		Time("scheduled_at", at).
		Msg("Next occurrence planned")
	return next, nil
}
