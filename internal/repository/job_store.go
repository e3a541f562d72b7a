package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/cache"
)

// ErrJobNotFound is returned for unknown or expired job ids.
var ErrJobNotFound = errors.New("job not found")

// CacheJobStore keeps job state in the shared cache under job:<id>.
type CacheJobStore struct {
	c   cache.Service
	ttl time.Duration
}

func NewCacheJobStore(c cache.Service, ttl time.Duration) domrepo.JobStore {
	return &CacheJobStore{c: c, ttl: ttl}
}

func (s *CacheJobStore) Save(ctx context.Context, job *models.Job) error {
	if err := s.c.Set(ctx, jobKey(job.ID), job, s.ttl); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *CacheJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := s.c.Get(ctx, jobKey(id), &job); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	return &job, nil
}

func jobKey(id string) string {
	return cache.GenerateKey("job", id)
}
