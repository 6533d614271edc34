package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/infrastructure/database"
	"github.com/shoplist/core/internal/ports"
)

const itemColumns = `id, name, quantity, category, completed, created_at`

// SQLItemRepository implements the ItemRepository interface over PostgreSQL or SQLite
type SQLItemRepository struct {
	db *database.DB
}

// NewSQLItemRepository creates a new SQL item repository
func NewSQLItemRepository(db *database.DB) ports.ItemRepository {
	return &SQLItemRepository{db: db}
}

func (r *SQLItemRepository) List(ctx context.Context) ([]*entities.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY seq`

	items := []*entities.Item{}
	if err := r.db.DB.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (r *SQLItemRepository) Create(ctx context.Context, item *entities.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES (:id, :name, :quantity, :category, :completed, :created_at)`

	if _, err := r.db.DB.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

func (r *SQLItemRepository) Update(ctx context.Context, id string, mutate func(*entities.Item) error) (*entities.Item, error) {
	selectQuery := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	if r.db.Dialect == database.DialectPostgres {
		selectQuery += ` FOR UPDATE`
	}

	updateQuery := `
		UPDATE items
		SET name = ?, quantity = ?, category = ?, completed = ?, created_at = ?
		WHERE id = ?`

	var item entities.Item
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &item, tx.Rebind(selectQuery), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entities.ErrItemNotFound
			}
			return fmt.Errorf("get item by id: %w", err)
		}

		if err := mutate(&item); err != nil {
			return err
		}
		item.ID = id

		_, err := tx.ExecContext(ctx, tx.Rebind(updateQuery),
			item.Name, item.Quantity, item.Category, item.Completed, item.CreatedAt, item.ID,
		)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *SQLItemRepository) Delete(ctx context.Context, id string) error {
	query := r.db.DB.Rebind(`DELETE FROM items WHERE id = ?`)

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if rows == 0 {
		return entities.ErrItemNotFound
	}

	return nil
}

func (r *SQLItemRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
