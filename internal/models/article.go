package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ArticleStatus represents the lifecycle state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusScheduled ArticleStatus = "scheduled"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[ArticleStatus]bool{
	ArticleStatusDraft:     true,
	ArticleStatusScheduled: true,
	ArticleStatusPublished: true,
	ArticleStatusArchived:  true,
}

// Article represents a generated or hand-written blog article
type Article struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Content     string        `json:"content" db:"content"`
	Topic       string        `json:"topic" db:"topic"`
	Style       string        `json:"style" db:"style"`
	Audience    string        `json:"audience" db:"audience"`
	Tone        string        `json:"tone" db:"tone"`
	AIModel     string        `json:"ai_model" db:"ai_model"`
	Keywords    []string      `json:"keywords" db:"-"` // Stored as JSON text in DB
	Status      ArticleStatus `json:"status" db:"status"`
	WordCount   int           `json:"word_count" db:"word_count"`
	SeriesID    *string       `json:"series_id,omitempty" db:"series_id"`
	SeriesOrder *int          `json:"series_order,omitempty" db:"series_order"`
	PublishedAt *time.Time    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// CountWords counts whitespace separated words, falling back to a rune
// estimate for text without spaces.
func CountWords(content string) int {
	words := len(strings.Fields(content))
	if words == 0 && content != "" {
		return utf8.RuneCountInString(content)
	}
	return words
}

// ArticleFilter narrows article listings
type ArticleFilter struct {
	Status   ArticleStatus
	SeriesID string
	Search   string
	Limit    int
	Offset   int
}

// ArticleInput is the request body for creating or updating an article
type ArticleInput struct {
	Title       string        `json:"title" binding:"required,max=300"`
	Content     string        `json:"content"`
	Topic       string        `json:"topic" binding:"max=200"`
	Style       string        `json:"style" binding:"max=50"`
	Audience    string        `json:"audience" binding:"max=50"`
	Tone        string        `json:"tone" binding:"max=50"`
	AIModel     string        `json:"ai_model" binding:"max=50"`
	Keywords    []string      `json:"keywords"`
	Status      ArticleStatus `json:"status" binding:"omitempty,oneof=draft scheduled published archived"`
	SeriesID    *string       `json:"series_id" binding:"omitempty,uuid"`
	SeriesOrder *int          `json:"series_order" binding:"omitempty,min=1"`
}

// TagAttachment attaches a tag (by id or by name) with a relevance score
type TagAttachment struct {
	TagID     string  `json:"tag_id" binding:"omitempty,uuid"`
	Name      string  `json:"name" binding:"omitempty,max=100"`
	Category  string  `json:"category" binding:"max=50"`
	Relevance float64 `json:"relevance" binding:"omitempty,min=0,max=1"`
}
