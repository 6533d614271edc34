package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

// Common errors
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrNameRequired    = errors.New("item name is required")
	ErrInvalidDocument = errors.New("invalid item document")
)

// Creation defaults
const (
	DefaultQuantity float64 = 1
	DefaultCategory         = "기타"
)

// Item represents a shopping-list entry
type Item struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	Name      string    `json:"name" db:"name" yaml:"name"`
	Quantity  float64   `json:"quantity" db:"quantity" yaml:"quantity"`
	Category  string    `json:"category" db:"category" yaml:"category"`
	Completed bool      `json:"completed" db:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" yaml:"createdAt"`

	// Extra holds document fields this service does not model. They are
	// written back unchanged after the known fields.
	Extra map[string]json.RawMessage `json:"-" db:"-" yaml:"-"`
}

var itemFields = []string{"id", "name", "quantity", "category", "completed", "createdAt"}

func isItemField(key string) bool {
	for _, field := range itemFields {
		if strings.EqualFold(key, field) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the known fields followed by Extra, sorted by key
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	data, err := json.Marshal(plain(i))
	if err != nil || len(i.Extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(i.Extra))
	for key := range i.Extra {
		if !isItemField(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, key := range keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(i.Extra[key])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if isItemField(key) {
			delete(raw, key)
		}
	}

	p.Extra = nil
	if len(raw) > 0 {
		p.Extra = raw
	}

	*i = Item(p)
	return nil
}

// Document is the full persisted collection of items
type Document struct {
	Items []*Item `json:"items"`
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{Items: []*Item{}}
}

// ItemPatch carries the fields supplied in an update request.
// A nil field was absent from the request and is left intact.
type ItemPatch struct {
	Name      *string    `json:"name"`
	Quantity  *float64   `json:"quantity"`
	Category  *string    `json:"category"`
	Completed *bool      `json:"completed"`
	CreatedAt *time.Time `json:"createdAt"`
}

// NewItem builds an item with creation defaults applied
func NewItem(id, name string, quantity float64, category string, now time.Time) (*Item, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	if quantity == 0 {
		quantity = DefaultQuantity
	}
	if category == "" {
		category = DefaultCategory
	}

	return &Item{
		ID:        id,
		Name:      name,
		Quantity:  quantity,
		Category:  category,
		Completed: false,
		CreatedAt: now.UTC(),
	}, nil
}

// Apply shallow-merges the patch over the item. The id is never overwritten.
func (i *Item) Apply(p ItemPatch) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Quantity != nil {
		i.Quantity = *p.Quantity
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Completed != nil {
		i.Completed = *p.Completed
	}
	if p.CreatedAt != nil {
		i.CreatedAt = p.CreatedAt.UTC()
	}
}

// Clone returns a copy of the item
func (i *Item) Clone() *Item {
	c := *i
	if i.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(i.Extra))
		for k, v := range i.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// IsEmpty reports whether the patch carries no fields
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Category == nil && p.Completed == nil && p.CreatedAt == nil
}

// IndexOf returns the position of the item with the given id, or -1
func (d *Document) IndexOf(id string) int {
	for idx, item := range d.Items {
		if item != nil && item.ID == id {
			return idx
		}
	}
	return -1
}

// Remove deletes the item at position idx, preserving order
func (d *Document) Remove(idx int) {
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
}
