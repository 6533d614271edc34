package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/ports"
)

// JSONDocumentStore keeps the whole item collection in one JSON file
type JSONDocumentStore struct {
	path string
	perm os.FileMode
}

// NewJSONDocumentStore creates a document store backed by path
func NewJSONDocumentStore(path string) *JSONDocumentStore {
	return &JSONDocumentStore{path: path, perm: 0o644}
}

// Path returns the document location on disk
func (s *JSONDocumentStore) Path() string {
	return s.path
}

// ReadAll parses the document file. A missing file is an error.
func (s *JSONDocumentStore) ReadAll(ctx context.Context) (*entities.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc entities.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidDocument, err)
	}

	items := make([]*entities.Item, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item != nil {
			items = append(items, item)
		}
	}
	doc.Items = items

	return &doc, nil
}

// WriteAll replaces the document file. The new content goes to a temp file
// in the same directory first and is renamed over the old one.
func (s *JSONDocumentStore) WriteAll(ctx context.Context, doc *entities.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if doc.Items == nil {
		doc.Items = []*entities.Item{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp document: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}

	return nil
}

// EnsureInitialized creates the document with an empty item list if absent
func (s *JSONDocumentStore) EnsureInitialized(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat document: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document directory: %w", err)
		}
	}

	return s.WriteAll(ctx, entities.NewDocument())
}

// JSONItemRepository implements the ItemRepository interface over a document store
type JSONItemRepository struct {
	store ports.DocumentStore
	mu    sync.Mutex
}

// NewJSONItemRepository creates a new document-backed item repository
func NewJSONItemRepository(store ports.DocumentStore) ports.ItemRepository {
	return &JSONItemRepository{store: store}
}

func (r *JSONItemRepository) List(ctx context.Context) ([]*entities.Item, error) {
	doc, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return doc.Items, nil
}

func (r *JSONItemRepository) Create(ctx context.Context, item *entities.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	doc.Items = append(doc.Items, item.Clone())

	if err := r.store.WriteAll(ctx, doc); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

func (r *JSONItemRepository) Update(ctx context.Context, id string, mutate func(*entities.Item) error) (*entities.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	idx := doc.IndexOf(id)
	if idx == -1 {
		return nil, entities.ErrItemNotFound
	}

	item := doc.Items[idx].Clone()
	if err := mutate(item); err != nil {
		return nil, err
	}
	item.ID = id
	doc.Items[idx] = item

	if err := r.store.WriteAll(ctx, doc); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	return item.Clone(), nil
}

func (r *JSONItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	idx := doc.IndexOf(id)
	if idx == -1 {
		return entities.ErrItemNotFound
	}
	doc.Remove(idx)

	if err := r.store.WriteAll(ctx, doc); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	return nil
}

// Ping checks that the document can be read and parsed
func (r *JSONItemRepository) Ping(ctx context.Context) error {
	if _, err := r.store.ReadAll(ctx); err != nil {
		return fmt.Errorf("ping document store: %w", err)
	}
	return nil
}
