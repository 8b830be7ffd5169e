package models

import (
	"time"
)

// SeriesStatus represents the progress of a series
type SeriesStatus string

const (
	SeriesStatusPlanning  SeriesStatus = "planning"
	SeriesStatusActive    SeriesStatus = "active"
	SeriesStatusPaused    SeriesStatus = "paused"
	SeriesStatusCompleted SeriesStatus = "completed"
)

// Series groups articles published as a planned sequence
type Series struct {
	ID                string       `json:"id" db:"id"`
	Title             string       `json:"title" db:"title"`
	Description       string       `json:"description" db:"description"`
	PlannedArticles   int          `json:"planned_articles" db:"planned_articles"`
	CurrentArticles   int          `json:"current_articles" db:"current_articles"`
	Status            SeriesStatus `json:"status" db:"status"`
	StructureTemplate []string     `json:"structure_template" db:"-"` // Stored as JSON text in DB
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// SeriesInput is the request body for creating or updating a series
type SeriesInput struct {
	Title             string       `json:"title" binding:"required,max=300"`
	Description       string       `json:"description"`
	PlannedArticles   int          `json:"planned_articles" binding:"min=0"`
	Status            SeriesStatus `json:"status" binding:"omitempty,oneof=planning active paused completed"`
	StructureTemplate []string     `json:"structure_template"`
}
