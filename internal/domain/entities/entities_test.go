package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemAppliesDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*60*60))

	item, err := NewItem("id-1", "우유", 0, "", now)
	require.NoError(t, err)

	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, "우유", item.Name)
	assert.Equal(t, DefaultQuantity, item.Quantity)
	assert.Equal(t, DefaultCategory, item.Category)
	assert.False(t, item.Completed)
	assert.True(t, item.CreatedAt.Equal(now))
	assert.Equal(t, time.UTC, item.CreatedAt.Location())
}

func TestNewItemKeepsSuppliedValues(t *testing.T) {
	item, err := NewItem("id-2", "사과", 6, "과일", time.Now())
	require.NoError(t, err)

	assert.Equal(t, float64(6), item.Quantity)
	assert.Equal(t, "과일", item.Category)
}

func TestNewItemRequiresName(t *testing.T) {
	item, err := NewItem("id-3", "", 2, "채소", time.Now())
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Nil(t, item)
}

func TestApplyMergesOnlySuppliedFields(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	item := &Item{ID: "a", Name: "빵", Quantity: 1, Category: "기타", CreatedAt: created}

	completed := true
	quantity := 3.0
	item.Apply(ItemPatch{Completed: &completed, Quantity: &quantity})

	assert.Equal(t, &Item{ID: "a", Name: "빵", Quantity: 3, Category: "기타", Completed: true, CreatedAt: created}, item)
}

func TestApplyCanClearStrings(t *testing.T) {
	item := &Item{ID: "a", Name: "빵", Category: "베이커리"}

	empty := ""
	item.Apply(ItemPatch{Category: &empty})

	assert.Equal(t, "", item.Category)
	assert.Equal(t, "빵", item.Name)
}

func TestItemPatchIsEmpty(t *testing.T) {
	assert.True(t, ItemPatch{}.IsEmpty())

	name := "x"
	assert.False(t, ItemPatch{Name: &name}.IsEmpty())
}

func TestDocumentIndexOfAndRemove(t *testing.T) {
	doc := &Document{Items: []*Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	assert.Equal(t, 1, doc.IndexOf("b"))
	assert.Equal(t, -1, doc.IndexOf("zzz"))

	doc.Remove(doc.IndexOf("b"))
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "a", doc.Items[0].ID)
	assert.Equal(t, "c", doc.Items[1].ID)
}

func TestCloneIsIndependent(t *testing.T) {
	item := &Item{ID: "a", Name: "계란"}
	clone := item.Clone()
	clone.Name = "두부"

	assert.Equal(t, "계란", item.Name)
}

func TestItemJSONKeepsUnknownFields(t *testing.T) {
	data := []byte(`{"id":"1","name":"우유","quantity":2,"category":"유제품","completed":false,"createdAt":"2024-01-01T00:00:00Z","note":"lactose free","tags":["아침"]}`)

	var item Item
	require.NoError(t, json.Unmarshal(data, &item))
	assert.Equal(t, "우유", item.Name)
	require.Len(t, item.Extra, 2)
	assert.JSONEq(t, `"lactose free"`, string(item.Extra["note"]))

	encoded, err := json.Marshal(&item)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(encoded))
}

func TestItemJSONWithoutUnknownFields(t *testing.T) {
	var item Item
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"빵"}`), &item))
	assert.Nil(t, item.Extra)

	encoded, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"빵","quantity":0,"category":"","completed":false,"createdAt":"0001-01-01T00:00:00Z"}`, string(encoded))
}

func TestCloneCopiesExtra(t *testing.T) {
	item := &Item{ID: "1", Extra: map[string]json.RawMessage{"note": json.RawMessage(`"a"`)}}

	clone := item.Clone()
	clone.Extra["note"] = json.RawMessage(`"b"`)

	assert.Equal(t, `"a"`, string(item.Extra["note"]))
}
