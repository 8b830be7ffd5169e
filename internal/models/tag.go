package models

import (
	"time"
)

// Tag is a label attached to articles. UsageCount is denormalized and always
// equals the number of article_tags rows referencing the tag.
type Tag struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Slug       string     `json:"slug" db:"slug"`
	Category   string     `json:"category" db:"category"`
	UsageCount int        `json:"usage_count" db:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// ArticleTag is the many-to-many relation between articles and tags
type ArticleTag struct {
	ArticleID      string    `json:"article_id" db:"article_id"`
	TagID          string    `json:"tag_id" db:"tag_id"`
	RelevanceScore float64   `json:"relevance_score" db:"relevance_score"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ArticleTagView is a tag as seen from one article
type ArticleTagView struct {
	Tag
	RelevanceScore float64 `json:"relevance_score"`
}

// TagInput is the request body for creating a tag
type TagInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Slug     string `json:"slug" binding:"omitempty,slug"`
	Category string `json:"category" binding:"max=50"`
}

// DefaultRelevance is used when a relation is created without a score
const DefaultRelevance = 1.0
