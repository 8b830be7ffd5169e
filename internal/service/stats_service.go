package service

import (
	"context"
	"sync"

	"github.com/ai-blog-writer/internal/repository"
	"golang.org/x/sync/errgroup"
)

type counter interface {
	Count(ctx context.Context) (int, error)
}

// statsService is the concrete implementation of StatsService
type statsService struct {
	counters map[string]counter
}

func newStatsService(repos *repository.Repositories) *statsService {
	return &statsService{counters: map[string]counter{
		"articles":  repos.Article,
		"series":    repos.Series,
		"tags":      repos.Tag,
		"schedules": repos.Schedule,
		"analytics": repos.Analytics,
		"ideas":     repos.Idea,
	}}
}

// Counts queries every table concurrently
func (s *statsService) Counts(ctx context.Context) (map[string]int, error) {
	var mu sync.Mutex
	counts := make(map[string]int, len(s.counters))

	g, ctx := errgroup.WithContext(ctx)
	for name, c := range s.counters {
		g.Go(func() error {
			n, err := c.Count(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[name] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
