package ports

import (
	"context"

	"github.com/shoplist/core/internal/domain/entities"
)

// ItemService interface for shopping item operations
type ItemService interface {
	ListItems(ctx context.Context) ([]*entities.Item, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*entities.Item, error)
	UpdateItem(ctx context.Context, id string, patch entities.ItemPatch) (*entities.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// Request/Response Types

type CreateItemRequest struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category"`
}
