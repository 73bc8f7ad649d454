package port

import (
	"context"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

type Catalog interface {
	// GetItem returns the item with its category, or nil if it does not exist
	GetItem(ctx context.Context, itemID int64) (*domain.Item, error)

	// ListAvailableItems returns items flagged available, newest first
	ListAvailableItems(ctx context.Context) ([]domain.Item, error)
}
