package orders

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/zinxon/towber-api/pkg/db/models"
)

// Guard resolves client idempotency keys against previously persisted orders.
// The storage-level unique index on idempotency_key is the race backstop; the
// guard only answers the common sequential-retry case cheaply.
type Guard struct {
	repo Repository
}

// NewGuard builds an idempotency guard backed by the orders repository.
func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo}
}

// Resolve returns the order previously created under key, or nil when the
// key is blank or unseen.
func (g *Guard) Resolve(ctx context.Context, key string) (*models.TowberOrder, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}

	order, err := g.repo.FindByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}
