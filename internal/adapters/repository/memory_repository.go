package repository

import (
	"context"
	"sync"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/ports"
)

// MemoryItemRepository keeps items in process memory
type MemoryItemRepository struct {
	mu  sync.RWMutex
	doc *entities.Document
}

// NewMemoryItemRepository creates an empty in-memory item repository
func NewMemoryItemRepository() ports.ItemRepository {
	return &MemoryItemRepository{doc: entities.NewDocument()}
}

func (r *MemoryItemRepository) List(ctx context.Context) ([]*entities.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*entities.Item, 0, len(r.doc.Items))
	for _, item := range r.doc.Items {
		items = append(items, item.Clone())
	}
	return items, nil
}

func (r *MemoryItemRepository) Create(ctx context.Context, item *entities.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc.Items = append(r.doc.Items, item.Clone())
	return nil
}

func (r *MemoryItemRepository) Update(ctx context.Context, id string, mutate func(*entities.Item) error) (*entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.doc.IndexOf(id)
	if idx == -1 {
		return nil, entities.ErrItemNotFound
	}

	item := r.doc.Items[idx].Clone()
	if err := mutate(item); err != nil {
		return nil, err
	}
	item.ID = id
	r.doc.Items[idx] = item

	return item.Clone(), nil
}

func (r *MemoryItemRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.doc.IndexOf(id)
	if idx == -1 {
		return entities.ErrItemNotFound
	}
	r.doc.Remove(idx)

	return nil
}

func (r *MemoryItemRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
