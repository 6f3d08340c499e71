// Package store keeps assembled portfolios behind a small id-keyed interface.
package store

import (
	"context"
	"time"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

// PortfolioStore persists portfolio records. Get and Update return
// models.ErrPortfolioNotFound for unknown ids.
type PortfolioStore interface {
	Create(ctx context.Context, userID int64, data models.Portfolio) (*models.PortfolioRecord, error)
	Get(ctx context.Context, id int64) (*models.PortfolioRecord, error)
	// Update replaces the whole portfolio and refreshes UpdatedAt.
	Update(ctx context.Context, id int64, data models.Portfolio) (*models.PortfolioRecord, error)
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time

func timestamp(now Clock) string {
	return now().UTC().Format(time.RFC3339Nano)
}
