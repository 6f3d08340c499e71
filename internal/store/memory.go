package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]models.PortfolioRecord
	nextID  int64
	now     Clock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]models.PortfolioRecord),
		nextID:  1,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *MemoryStore) WithClock(now Clock) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Create(_ context.Context, userID int64, data models.Portfolio) (*models.PortfolioRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := timestamp(s.now)
	rec := models.PortfolioRecord{
		ID:        s.nextID,
		UserID:    userID,
		Data:      data.Clone(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.records[rec.ID] = rec
	s.nextID++

	return copyRecord(rec), nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*models.PortfolioRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrPortfolioNotFound, id)
	}
	return copyRecord(rec), nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, data models.Portfolio) (*models.PortfolioRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrPortfolioNotFound, id)
	}
	rec.Data = data.Clone()
	rec.UpdatedAt = timestamp(s.now)
	s.records[id] = rec

	return copyRecord(rec), nil
}

func copyRecord(rec models.PortfolioRecord) *models.PortfolioRecord {
	rec.Data = rec.Data.Clone()
	return &rec
}
