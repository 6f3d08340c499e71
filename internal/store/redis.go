package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

const (
	sequenceKey = "portfolio:seq"
	recordKey   = "portfolio:"
)

// RedisStore keeps records as JSON values. Ids come from an atomic INCR so
// several processes can share one store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    Clock
}

// NewRedisStore creates a store whose records expire after ttl; zero keeps
// them until the database is flushed.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (s *RedisStore) WithClock(now Clock) *RedisStore {
	s.now = now
	return s
}

func key(id int64) string {
	return recordKey + strconv.FormatInt(id, 10)
}

func (s *RedisStore) Create(ctx context.Context, userID int64, data models.Portfolio) (*models.PortfolioRecord, error) {
	id, err := s.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate portfolio id: %w", err)
	}

	ts := timestamp(s.now)
	rec := &models.PortfolioRecord{
		ID:        id,
		UserID:    userID,
		Data:      data,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}
	if err := s.client.Set(ctx, key(id), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (*models.PortfolioRecord, error) {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", models.ErrPortfolioNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	var rec models.PortfolioRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portfolio: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Update(ctx context.Context, id int64, data models.Portfolio) (*models.PortfolioRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Data = data
	rec.UpdatedAt = timestamp(s.now)

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}
	// XX fails when the record expired between the read and the write
	err = s.client.SetArgs(ctx, key(id), payload, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", models.ErrPortfolioNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}
	return rec, nil
}
