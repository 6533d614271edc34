package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/infrastructure/logger"
	"github.com/shoplist/core/internal/ports"
)

// ItemService handles shopping item operations
type ItemService struct {
	itemRepo ports.ItemRepository
	logger   *logger.Logger
	newID    func() string
	now      func() time.Time
}

// NewItemService creates a new item service
func NewItemService(itemRepo ports.ItemRepository, logger *logger.Logger) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		logger:   logger.WithComponent("item_service"),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// ListItems returns every item in insertion order
func (s *ItemService) ListItems(ctx context.Context) ([]*entities.Item, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []*entities.Item{}
	}

	return items, nil
}

// CreateItem validates the request, applies defaults and persists a new item
func (s *ItemService) CreateItem(ctx context.Context, req ports.CreateItemRequest) (*entities.Item, error) {
	item, err := entities.NewItem(s.newID(), req.Name, req.Quantity, req.Category, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.LogItemAction("create", item.ID, map[string]interface{}{
		"name":     item.Name,
		"category": item.Category,
	})

	return item, nil
}

// UpdateItem merges the supplied fields over the stored item
func (s *ItemService) UpdateItem(ctx context.Context, id string, patch entities.ItemPatch) (*entities.Item, error) {
	item, err := s.itemRepo.Update(ctx, id, func(item *entities.Item) error {
		item.Apply(patch)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.LogItemAction("update", item.ID, nil)

	return item, nil
}

// DeleteItem removes an item permanently
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.LogItemAction("delete", id, nil)

	return nil
}
