package service

import (
	"context"
	"fmt"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/port"
)

type CatalogService struct {
	catalog port.Catalog
}

func NewCatalogService(catalog port.Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// Menu lists the items customers can currently add to a cart.
func (s *CatalogService) Menu(ctx context.Context) ([]domain.Item, error) {
	items, err := s.catalog.ListAvailableItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}
