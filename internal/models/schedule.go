package models

import (
	"time"
)

// ScheduleStatus represents the status of a scheduled publication
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusPublished ScheduleStatus = "published"
	ScheduleStatusFailed    ScheduleStatus = "failed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// ValidScheduleStatuses defines allowed schedule statuses
var ValidScheduleStatuses = map[ScheduleStatus]bool{
	ScheduleStatusScheduled: true,
	ScheduleStatusPublished: true,
	ScheduleStatusFailed:    true,
	ScheduleStatusCancelled: true,
}

// CanTransition reports whether a status change is allowed.
// Transitions only leave "scheduled"; returning to "scheduled" is a reschedule
// and is handled separately. Same-value updates are always allowed.
func (s ScheduleStatus) CanTransition(to ScheduleStatus) bool {
	if s == to {
		return true
	}
	return s == ScheduleStatusScheduled && to != ScheduleStatusScheduled && ValidScheduleStatuses[to]
}

// CanReschedule reports whether a schedule may be moved back to "scheduled"
func (s ScheduleStatus) CanReschedule() bool {
	return s != ScheduleStatusPublished
}

// CanMoveTo reports whether a stored status may be overwritten with to,
// either by a transition or by a reschedule.
func (s ScheduleStatus) CanMoveTo(to ScheduleStatus) bool {
	if to == ScheduleStatusScheduled {
		return s.CanReschedule()
	}
	return s.CanTransition(to)
}

// RecurrenceType describes how a schedule repeats
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// Schedule represents a planned publication of an article
type Schedule struct {
	ID                 string         `json:"id" db:"id"`
	ArticleID          string         `json:"article_id" db:"article_id"`
	ScheduledAt        time.Time      `json:"scheduled_at" db:"scheduled_at"`
	Timezone           string         `json:"timezone" db:"timezone"`
	RecurrenceType     RecurrenceType `json:"recurrence_type" db:"recurrence_type"`
	RecurrenceInterval int            `json:"recurrence_interval" db:"recurrence_interval"`
	RecurrenceEnd      *time.Time     `json:"recurrence_end,omitempty" db:"recurrence_end"`
	Platforms          []string       `json:"platforms" db:"-"` // Stored as JSON text in DB
	Status             ScheduleStatus `json:"status" db:"status"`
	ErrorMessage       string         `json:"error_message,omitempty" db:"error_message"`
	PublishedAt        *time.Time     `json:"published_at,omitempty" db:"published_at"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// NextOccurrence returns the next publication time for a recurring schedule.
// Days and months are counted on the wall clock of s.Timezone, so a 09:00
// publication stays at 09:00 local across daylight saving changes. The
// result is in UTC. ok is false when the schedule does not recur or the
// series has ended.
func (s *Schedule) NextOccurrence() (next time.Time, ok bool) {
	interval := s.RecurrenceInterval
	if interval <= 0 {
		interval = 1
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil || s.Timezone == "" {
		loc = time.UTC
	}
	local := s.ScheduledAt.In(loc)

	switch s.RecurrenceType {
	case RecurrenceDaily:
		next = local.AddDate(0, 0, interval)
	case RecurrenceWeekly:
		next = local.AddDate(0, 0, 7*interval)
	case RecurrenceMonthly:
		next = local.AddDate(0, interval, 0)
	default:
		return time.Time{}, false
	}
	next = next.UTC()

	if s.RecurrenceEnd != nil && next.After(*s.RecurrenceEnd) {
		return time.Time{}, false
	}
	return next, true
}

// ScheduleStatusLog is an audit row appended whenever a schedule's status changes
type ScheduleStatusLog struct {
	ID         int64          `json:"id" db:"id"`
	ScheduleID string         `json:"schedule_id" db:"schedule_id"`
	OldStatus  ScheduleStatus `json:"old_status" db:"old_status"`
	NewStatus  ScheduleStatus `json:"new_status" db:"new_status"`
	ChangedAt  time.Time      `json:"changed_at" db:"changed_at"`
}

// ScheduleFilter narrows schedule listings
type ScheduleFilter struct {
	Status    ScheduleStatus
	ArticleID string
	DueBefore *time.Time
	Limit     int
	Offset    int
}

// ScheduleInput is the request body for creating a schedule
type ScheduleInput struct {
	ArticleID          string         `json:"article_id" binding:"required,uuid"`
	ScheduledAt        time.Time      `json:"scheduled_at" binding:"required"`
	Timezone           string         `json:"timezone" binding:"max=64"`
	RecurrenceType     RecurrenceType `json:"recurrence_type" binding:"omitempty,recurrence"`
	RecurrenceInterval int            `json:"recurrence_interval" binding:"min=0"`
	RecurrenceEnd      *time.Time     `json:"recurrence_end"`
	Platforms          []string       `json:"platforms"`
}

// ScheduleStatusInput is the request body for a status change
type ScheduleStatusInput struct {
	Status       ScheduleStatus `json:"status" binding:"required,schedule_status"`
	ErrorMessage string         `json:"error_message"`
}

// RescheduleInput is the request body for moving a schedule to a new time
type RescheduleInput struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// ScheduleTransition is the outcome of a status change. Next is set when
// publishing a recurring schedule created its following occurrence.
type ScheduleTransition struct {
	Schedule *Schedule `json:"schedule"`
	Changed  bool      `json:"changed"`
	Next     *Schedule `json:"next,omitempty"`
}
