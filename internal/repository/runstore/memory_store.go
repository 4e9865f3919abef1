package runstore

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore backs run tracking when no Redis URL is configured. Suitable
// for a single instance only.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() Store {
	return &MemoryStore{
		cache: cache.New(defaultTTL, 1*time.Hour),
	}
}

func (s *MemoryStore) Save(_ context.Context, run *Run) error {
	run.UpdatedAt = time.Now()
	copied := *run
	s.cache.Set(run.MessageId, &copied, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, messageId string) (*Run, error) {
	v, found := s.cache.Get(messageId)
	if !found {
		return nil, nil
	}
	run, ok := v.(*Run)
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, messageId string, status string, errorMessage string) error {
	run, err := s.Get(ctx, messageId)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", messageId)
	}
	run.Status = status
	run.ErrorMessage = errorMessage
	return s.Save(ctx, run)
}
