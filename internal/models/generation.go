package models

// SubKeywordRequest asks a provider for related sub-keywords of a topic
type SubKeywordRequest struct {
	Topic     string `json:"topic" binding:"required,max=200"`
	AIModel   string `json:"aiModel" binding:"omitempty,provider"`
	MaxTokens int    `json:"maxTokens" binding:"min=0,max=8192"`
}

// SubKeywordResponse is returned by the sub-keyword endpoint
type SubKeywordResponse struct {
	Success        bool     `json:"success"`
	SubKeywords    []string `json:"subKeywords"`
	Content        string   `json:"content"`
	Model          string   `json:"model"`
	Provider       string   `json:"provider"`
	IsDemo         bool     `json:"isDemo"`
	FallbackReason string   `json:"fallbackReason,omitempty"`
}

// ArticleRequest asks a provider to draft a full article
type ArticleRequest struct {
	Topic      string   `json:"topic" binding:"required,max=200"`
	SubKeyword string   `json:"subKeyword" binding:"max=200"`
	Audience   string   `json:"audience" binding:"max=50"`
	Tone       string   `json:"tone" binding:"max=50"`
	Style      string   `json:"style" binding:"max=50"`
	Length     string   `json:"length" binding:"omitempty,oneof=short medium long"`
	Keywords   []string `json:"keywords"`
	AIModel    string   `json:"aiModel" binding:"omitempty,provider"`
	MaxTokens  int      `json:"maxTokens" binding:"min=0,max=8192"`
	Save       bool     `json:"save"`
	SeriesID   *string  `json:"seriesId" binding:"omitempty,uuid"`
}

// ArticleResponse is returned by the article generation endpoint
type ArticleResponse struct {
	Success        bool   `json:"success"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Model          string `json:"model"`
	Provider       string `json:"provider"`
	IsDemo         bool   `json:"isDemo"`
	FallbackReason string `json:"fallbackReason,omitempty"`
	ArticleID      string `json:"articleId,omitempty"`
}

// Fallback reasons reported with demo content
const (
	FallbackMissingKey    = "missing_api_key"
	FallbackProviderError = "provider_error"
)
