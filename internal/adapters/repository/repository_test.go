package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/core/internal/adapters/repository"
	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/infrastructure/config"
	"github.com/shoplist/core/internal/infrastructure/logger"
	"github.com/shoplist/core/internal/infrastructure/storage"
	"github.com/shoplist/core/internal/ports"
)

type backend struct {
	name string
	open func(t *testing.T) ports.ItemRepository
}

func backends() []backend {
	return []backend{
		{
			name: "json",
			open: func(t *testing.T) ports.ItemRepository {
				store := repository.NewJSONDocumentStore(filepath.Join(t.TempDir(), "shoppingList.json"))
				require.NoError(t, store.EnsureInitialized(context.Background()))
				return repository.NewJSONItemRepository(store)
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) ports.ItemRepository {
				return repository.NewMemoryItemRepository()
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) ports.ItemRepository {
				cfg := &config.Config{
					Storage: config.StorageConfig{Driver: config.StorageSQLite},
					SQLite: config.SQLiteConfig{
						Path:        filepath.Join(t.TempDir(), "shoppingList.db"),
						BusyTimeout: 5 * time.Second,
					},
				}
				st, err := storage.Open(context.Background(), cfg, logger.NewNop())
				require.NoError(t, err)
				t.Cleanup(func() { st.Close() })
				return st.Items
			},
		},
	}
}

func newItem(id, name string, created time.Time) *entities.Item {
	return &entities.Item{
		ID:        id,
		Name:      name,
		Quantity:  1,
		Category:  entities.DefaultCategory,
		CreatedAt: created,
	}
}

// itemsEqual compares items treating timestamps by instant
var itemsEqual = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func TestItemRepositoryContract(t *testing.T) {
	for _, b := range backends() {
		b := b
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

			t.Run("empty list", func(t *testing.T) {
				repo := b.open(t)

				items, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, items)
			})

			t.Run("create keeps insertion order", func(t *testing.T) {
				repo := b.open(t)

				want := []*entities.Item{
					newItem("c", "우유", created),
					newItem("a", "계란", created.Add(time.Minute)),
					newItem("b", "빵", created.Add(2*time.Minute)),
				}
				for _, item := range want {
					require.NoError(t, repo.Create(ctx, item))
				}

				got, err := repo.List(ctx)
				require.NoError(t, err)
				if diff := cmp.Diff(want, got, itemsEqual); diff != "" {
					t.Fatalf("items mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("update mutates one item", func(t *testing.T) {
				repo := b.open(t)
				require.NoError(t, repo.Create(ctx, newItem("a", "계란", created)))
				require.NoError(t, repo.Create(ctx, newItem("b", "빵", created)))

				updated, err := repo.Update(ctx, "b", func(item *entities.Item) error {
					item.Completed = true
					item.Quantity = 4
					return nil
				})
				require.NoError(t, err)
				assert.Equal(t, "b", updated.ID)
				assert.True(t, updated.Completed)
				assert.Equal(t, float64(4), updated.Quantity)

				items, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 2)
				assert.False(t, items[0].Completed)
				assert.True(t, items[1].Completed)
				assert.Equal(t, "빵", items[1].Name)
			})

			t.Run("update cannot change id", func(t *testing.T) {
				repo := b.open(t)
				require.NoError(t, repo.Create(ctx, newItem("a", "계란", created)))

				updated, err := repo.Update(ctx, "a", func(item *entities.Item) error {
					item.ID = "hijacked"
					return nil
				})
				require.NoError(t, err)
				assert.Equal(t, "a", updated.ID)

				items, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, "a", items[0].ID)
			})

			t.Run("update missing item", func(t *testing.T) {
				repo := b.open(t)
				require.NoError(t, repo.Create(ctx, newItem("a", "계란", created)))

				_, err := repo.Update(ctx, "missing", func(item *entities.Item) error {
					item.Name = "changed"
					return nil
				})
				assert.ErrorIs(t, err, entities.ErrItemNotFound)

				items, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, "계란", items[0].Name)
			})

			t.Run("failed mutation persists nothing", func(t *testing.T) {
				repo := b.open(t)
				require.NoError(t, repo.Create(ctx, newItem("a", "계란", created)))

				boom := errors.New("boom")
				_, err := repo.Update(ctx, "a", func(item *entities.Item) error {
					item.Name = "changed"
					return boom
				})
				assert.ErrorIs(t, err, boom)

				items, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, "계란", items[0].Name)
			})

			t.Run("delete removes exactly one item", func(t *testing.T) {
				repo := b.open(t)
				for _, id := range []string{"a", "b", "c"} {
					require.NoError(t, repo.Create(ctx, newItem(id, "item "+id, created)))
				}

				require.NoError(t, repo.Delete(ctx, "b"))

				items, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 2)
				assert.Equal(t, "a", items[0].ID)
				assert.Equal(t, "c", items[1].ID)
			})

			t.Run("delete missing item", func(t *testing.T) {
				repo := b.open(t)
				assert.ErrorIs(t, repo.Delete(ctx, "missing"), entities.ErrItemNotFound)
			})

			t.Run("concurrent creates are all kept", func(t *testing.T) {
				repo := b.open(t)

				const n = 20
				var wg sync.WaitGroup
				errs := make(chan error, n)
				for i := 0; i < n; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						errs <- repo.Create(ctx, newItem(fmt.Sprintf("item-%d", i), "동시", created))
					}(i)
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					require.NoError(t, err)
				}

				items, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Len(t, items, n)
			})

			t.Run("ping", func(t *testing.T) {
				repo := b.open(t)
				assert.NoError(t, repo.Ping(ctx))
			})
		})
	}
}
