package models

import (
	"time"
)

// Analytics is one day of engagement metrics for an article
type Analytics struct {
	ID             int64     `json:"id" db:"id"`
	ArticleID      string    `json:"article_id" db:"article_id"`
	Day            time.Time `json:"day" db:"day"`
	Views          int       `json:"views" db:"views"`
	Likes          int       `json:"likes" db:"likes"`
	Comments       int       `json:"comments" db:"comments"`
	Shares         int       `json:"shares" db:"shares"`
	AvgReadSeconds int       `json:"avg_read_seconds" db:"avg_read_seconds"`
}

// AnalyticsSummary aggregates metrics over a range
type AnalyticsSummary struct {
	ArticleID string `json:"article_id"`
	Days      int    `json:"days"`
	Views     int    `json:"views"`
	Likes     int    `json:"likes"`
	Comments  int    `json:"comments"`
	Shares    int    `json:"shares"`
}

// Summarize folds daily rows into totals
func Summarize(articleID string, rows []*Analytics) AnalyticsSummary {
	summary := AnalyticsSummary{ArticleID: articleID, Days: len(rows)}
	for _, r := range rows {
		summary.Views += r.Views
		summary.Likes += r.Likes
		summary.Comments += r.Comments
		summary.Shares += r.Shares
	}
	return summary
}

// AnalyticsInput is the request body for recording a day of metrics
type AnalyticsInput struct {
	Day            string `json:"day" binding:"required,datetime=2006-01-02"`
	Views          int    `json:"views" binding:"min=0"`
	Likes          int    `json:"likes" binding:"min=0"`
	Comments       int    `json:"comments" binding:"min=0"`
	Shares         int    `json:"shares" binding:"min=0"`
	AvgReadSeconds int    `json:"avg_read_seconds" binding:"min=0"`
}
