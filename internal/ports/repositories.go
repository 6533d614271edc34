package ports

import (
	"context"

	"github.com/shoplist/core/internal/domain/entities"
)

// ItemRepository defines the interface for item data operations.
// Every method is one atomic load-mutate-persist unit.
type ItemRepository interface {
	List(ctx context.Context) ([]*entities.Item, error)
	Create(ctx context.Context, item *entities.Item) error
	Update(ctx context.Context, id string, mutate func(*entities.Item) error) (*entities.Item, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// DocumentStore reads and writes the whole item collection as one unit
type DocumentStore interface {
	ReadAll(ctx context.Context) (*entities.Document, error)
	WriteAll(ctx context.Context, doc *entities.Document) error
	EnsureInitialized(ctx context.Context) error
}
