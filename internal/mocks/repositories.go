package mocks

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
)

// Store is an in-memory database shared by the mock repositories. It applies
// the same write hooks as the Postgres repositories: tag usage counters,
// schedule status logs and series article counters.
type Store struct {
	mu sync.Mutex

	Articles    map[string]*models.Article
	Series      map[string]*models.Series
	Tags        map[string]*models.Tag
	ArticleTags map[string]*models.ArticleTag // key: article_id/tag_id
	Schedules   map[string]*models.Schedule
	StatusLogs  []*models.ScheduleStatusLog
	Analytics   map[string]*models.Analytics // key: article_id/day
	Ideas       map[string]*models.Idea

	// Err, when set, is returned by every call
	Err error
	// Now supplies hook timestamps
	Now func() time.Time

	nextLogID       int64
	nextAnalyticsID int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Articles:    make(map[string]*models.Article),
		Series:      make(map[string]*models.Series),
		Tags:        make(map[string]*models.Tag),
		ArticleTags: make(map[string]*models.ArticleTag),
		Schedules:   make(map[string]*models.Schedule),
		Analytics:   make(map[string]*models.Analytics),
		Ideas:       make(map[string]*models.Idea),
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Repositories returns repository views over the store
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Article:   &MockArticleRepository{s},
		Series:    &MockSeriesRepository{s},
		Tag:       &MockTagRepository{s},
		Schedule:  &MockScheduleRepository{s},
		Analytics: &MockAnalyticsRepository{s},
		Idea:      &MockIdeaRepository{s},
	}
}

// NewRepositories is a shortcut for NewStore().Repositories()
func NewRepositories() (*Store, *repository.Repositories) {
	s := NewStore()
	return s, s.Repositories()
}

// LogsFor returns the status log rows of one schedule
func (s *Store) LogsFor(scheduleID string) []*models.ScheduleStatusLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ScheduleStatusLog
	for _, l := range s.StatusLogs {
		if l.ScheduleID == scheduleID {
			c := *l
			out = append(out, &c)
		}
	}
	return out
}

func relKey(articleID, tagID string) string { return articleID + "/" + tagID }

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit <= 0 {
		limit = 50
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (s *Store) adjustSeries(seriesID *string, delta int) {
	if seriesID == nil {
		return
	}
	if series, ok := s.Series[*seriesID]; ok {
		series.CurrentArticles += delta
		if series.CurrentArticles < 0 {
			series.CurrentArticles = 0
		}
	}
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct{ *Store }

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	now := m.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now
	c := *article
	m.Articles[article.ID] = &c
	m.adjustSeries(article.SeriesID, 1)
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []*models.Article{}
	for _, a := range m.Articles {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.SeriesID != "" && (a.SeriesID == nil || *a.SeriesID != filter.SeriesID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Title+" "+a.Topic+" "+strings.Join(a.Keywords, " ")), search) {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	prev, ok := m.Articles[article.ID]
	if !ok {
		return repository.ErrNotFound
	}
	prevSeries := prev.SeriesID
	article.UpdatedAt = m.Now()
	c := *article
	m.Articles[article.ID] = &c

	if (prevSeries == nil) != (article.SeriesID == nil) || (prevSeries != nil && *prevSeries != *article.SeriesID) {
		m.adjustSeries(prevSeries, -1)
		m.adjustSeries(article.SeriesID, 1)
	}
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.Articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	for key, rel := range m.ArticleTags {
		if rel.ArticleID != id {
			continue
		}
		if tag, ok := m.Tags[rel.TagID]; ok && tag.UsageCount > 0 {
			tag.UsageCount--
		}
		delete(m.ArticleTags, key)
	}
	for sid, sch := range m.Schedules {
		if sch.ArticleID == id {
			delete(m.Schedules, sid)
		}
	}
	m.adjustSeries(a.SeriesID, -1)
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Articles[id]
	return ok, m.Err
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), m.Err
}

// MockSeriesRepository is a mock implementation of SeriesRepository
type MockSeriesRepository struct{ *Store }

var _ repository.SeriesRepository = (*MockSeriesRepository)(nil)

func (m *MockSeriesRepository) Create(ctx context.Context, series *models.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	now := m.Now()
	series.CreatedAt, series.UpdatedAt, series.CurrentArticles = now, now, 0
	c := *series
	m.Series[series.ID] = &c
	return nil
}

func (m *MockSeriesRepository) GetByID(ctx context.Context, id string) (*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Series[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MockSeriesRepository) List(ctx context.Context, status models.SeriesStatus, limit, offset int) ([]*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*models.Series{}
	for _, s := range m.Series {
		if status != "" && s.Status != status {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (m *MockSeriesRepository) Update(ctx context.Context, series *models.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	prev, ok := m.Series[series.ID]
	if !ok {
		return repository.ErrNotFound
	}
	series.CurrentArticles = prev.CurrentArticles
	series.UpdatedAt = m.Now()
	c := *series
	m.Series[series.ID] = &c
	return nil
}

func (m *MockSeriesRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Series[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range m.Articles {
		if a.SeriesID != nil && *a.SeriesID == id {
			a.SeriesID = nil
		}
	}
	delete(m.Series, id)
	return nil
}

func (m *MockSeriesRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Series[id]
	return ok, m.Err
}

func (m *MockSeriesRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Series), m.Err
}

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct{ *Store }

var _ repository.TagRepository = (*MockTagRepository)(nil)

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, t := range m.Tags {
		if t.Name == tag.Name || t.Slug == tag.Slug {
			return repository.ErrDuplicate
		}
	}
	tag.CreatedAt, tag.UsageCount, tag.LastUsedAt = m.Now(), 0, nil
	c := *tag
	m.Tags[tag.ID] = &c
	return nil
}

func (m *MockTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Tags[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (m *MockTagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Tags {
		if t.Name == name {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockTagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Tags {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockTagRepository) List(ctx context.Context, category string, limit int) ([]*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*models.Tag{}
	for _, t := range m.Tags {
		if category != "" && t.Category != category {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Name < out[j].Name
	})
	return page(out, limit, 0), nil
}

func (m *MockTagRepository) Attach(ctx context.Context, rel *models.ArticleTag) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	key := relKey(rel.ArticleID, rel.TagID)
	if _, ok := m.ArticleTags[key]; ok {
		return false, nil
	}
	tag, ok := m.Tags[rel.TagID]
	if !ok {
		return false, repository.ErrNotFound
	}

	now := m.Now()
	if rel.RelevanceScore == 0 {
		rel.RelevanceScore = models.DefaultRelevance
	}
	rel.CreatedAt = now
	c := *rel
	m.ArticleTags[key] = &c

	tag.UsageCount++
	lastUsed := now
	tag.LastUsedAt = &lastUsed
	return true, nil
}

func (m *MockTagRepository) Detach(ctx context.Context, articleID, tagID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	key := relKey(articleID, tagID)
	if _, ok := m.ArticleTags[key]; !ok {
		return false, nil
	}
	delete(m.ArticleTags, key)
	if tag, ok := m.Tags[tagID]; ok && tag.UsageCount > 0 {
		tag.UsageCount--
	}
	return true, nil
}

func (m *MockTagRepository) ListForArticle(ctx context.Context, articleID string) ([]*models.ArticleTagView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*models.ArticleTagView{}
	for _, rel := range m.ArticleTags {
		if rel.ArticleID != articleID {
			continue
		}
		if tag, ok := m.Tags[rel.TagID]; ok {
			out = append(out, &models.ArticleTagView{Tag: *tag, RelevanceScore: rel.RelevanceScore})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MockTagRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tags), m.Err
}

// MockScheduleRepository is a mock implementation of ScheduleRepository
type MockScheduleRepository struct{ *Store }

var _ repository.ScheduleRepository = (*MockScheduleRepository)(nil)

func (m *MockScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	now := m.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	if s.RecurrenceInterval <= 0 {
		s.RecurrenceInterval = 1
	}
	c := *s
	m.Schedules[s.ID] = &c
	return nil
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Schedules[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MockScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*models.Schedule{}
	for _, s := range m.Schedules {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.ArticleID != "" && s.ArticleID != filter.ArticleID {
			continue
		}
		if filter.DueBefore != nil && s.ScheduledAt.After(*filter.DueBefore) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

// Update mirrors the Postgres hook: the stored status must allow the change,
// updated_at always moves, and a log row is appended only when the status
// differs from the stored one.
func (m *MockScheduleRepository) Update(ctx context.Context, s *models.Schedule) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	prev, ok := m.Schedules[s.ID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if !prev.Status.CanMoveTo(s.Status) {
		return false, fmt.Errorf("%w: %s -> %s", repository.ErrStatusConflict, prev.Status, s.Status)
	}

	now := m.Now()
	changed := prev.Status != s.Status
	if changed {
		m.nextLogID++
		m.Store.StatusLogs = append(m.Store.StatusLogs, &models.ScheduleStatusLog{
			ID:         m.nextLogID,
			ScheduleID: s.ID,
			OldStatus:  prev.Status,
			NewStatus:  s.Status,
			ChangedAt:  now,
		})
	}
	s.UpdatedAt = now
	c := *s
	m.Schedules[s.ID] = &c
	return changed, nil
}

func (m *MockScheduleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Schedules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Schedules, id)
	kept := m.Store.StatusLogs[:0]
	for _, l := range m.Store.StatusLogs {
		if l.ScheduleID != id {
			kept = append(kept, l)
		}
	}
	m.Store.StatusLogs = kept
	return nil
}

func (m *MockScheduleRepository) StatusLogs(ctx context.Context, scheduleID string) ([]*models.ScheduleStatusLog, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	logs := m.LogsFor(scheduleID)
	if logs == nil {
		logs = []*models.ScheduleStatusLog{}
	}
	return logs, nil
}

func (m *MockScheduleRepository) StreamAll(ctx context.Context, callback func(*models.Schedule) error) error {
	list, err := m.List(ctx, models.ScheduleFilter{Limit: math.MaxInt32})
	if err != nil {
		return err
	}
	for _, s := range list {
		if err := callback(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockScheduleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Schedules), m.Err
}

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository
type MockAnalyticsRepository struct{ *Store }

var _ repository.AnalyticsRepository = (*MockAnalyticsRepository)(nil)

func (m *MockAnalyticsRepository) Upsert(ctx context.Context, row *models.Analytics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := row.ArticleID + "/" + row.Day.Format("2006-01-02")
	if prev, ok := m.Analytics[key]; ok {
		row.ID = prev.ID
	} else {
		m.nextAnalyticsID++
		row.ID = m.nextAnalyticsID
	}
	c := *row
	m.Analytics[key] = &c
	return nil
}

func (m *MockAnalyticsRepository) ListRange(ctx context.Context, articleID string, from, to *time.Time) ([]*models.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*models.Analytics{}
	for _, a := range m.Analytics {
		if a.ArticleID != articleID {
			continue
		}
		if from != nil && a.Day.Before(*from) {
			continue
		}
		if to != nil && a.Day.After(*to) {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (m *MockAnalyticsRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Analytics), m.Err
}

// MockIdeaRepository is a mock implementation of IdeaRepository
type MockIdeaRepository struct{ *Store }

var _ repository.IdeaRepository = (*MockIdeaRepository)(nil)

func (m *MockIdeaRepository) Create(ctx context.Context, idea *models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	now := m.Now()
	idea.CreatedAt, idea.UpdatedAt = now, now
	c := *idea
	m.Ideas[idea.ID] = &c
	return nil
}

func (m *MockIdeaRepository) GetByID(ctx context.Context, id string) (*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i, ok := m.Ideas[id]
	if !ok {
		return nil, nil
	}
	c := *i
	return &c, nil
}

func (m *MockIdeaRepository) List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*models.Idea{}
	for _, i := range m.Ideas {
		if status != "" && i.Status != status {
			continue
		}
		c := *i
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (m *MockIdeaRepository) Update(ctx context.Context, idea *models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Ideas[idea.ID]; !ok {
		return repository.ErrNotFound
	}
	idea.UpdatedAt = m.Now()
	c := *idea
	m.Ideas[idea.ID] = &c
	return nil
}

func (m *MockIdeaRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Ideas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Ideas, id)
	return nil
}

func (m *MockIdeaRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Ideas), m.Err
}
