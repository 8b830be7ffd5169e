package models

import (
	"time"
)

// IdeaStatus represents where a backlog idea stands
type IdeaStatus string

const (
	IdeaStatusNew        IdeaStatus = "new"
	IdeaStatusInProgress IdeaStatus = "in_progress"
	IdeaStatusConverted  IdeaStatus = "converted"
	IdeaStatusDiscarded  IdeaStatus = "discarded"
)

// Idea is a backlog item before it becomes an article
type Idea struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Keywords    []string   `json:"keywords" db:"-"` // Stored as JSON text in DB
	Priority    string     `json:"priority" db:"priority"`
	Status      IdeaStatus `json:"status" db:"status"`
	ArticleID   *string    `json:"article_id,omitempty" db:"article_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IdeaInput is the request body for creating or updating an idea
type IdeaInput struct {
	Title       string     `json:"title" binding:"required,max=300"`
	Description string     `json:"description"`
	Keywords    []string   `json:"keywords"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      IdeaStatus `json:"status" binding:"omitempty,oneof=new in_progress discarded"`
}
