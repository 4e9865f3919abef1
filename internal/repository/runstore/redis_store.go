package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) Store {
	return &RedisStore{
		client: client,
		ttl:    defaultTTL,
	}
}

func runKey(messageId string) string {
	return fmt.Sprintf("chatbot:run:%s", messageId)
}

func (s *RedisStore) Save(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now()
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, runKey(run.MessageId), payload, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, messageId string) (*Run, error) {
	payload, err := s.client.Get(ctx, runKey(messageId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RedisStore) SetStatus(ctx context.Context, messageId string, status string, errorMessage string) error {
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
