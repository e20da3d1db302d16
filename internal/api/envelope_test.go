package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envItem struct {
	ID string `json:"id"`
}

func TestDecodeListSingleEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"data": [{"id": "a"}, {"id": "b"}]}`)

	var items []envItem
	meta, err := decodeList(raw, &items)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Zero(t, meta, "no meta in the single-wrapped shape")
}

func TestDecodeListDoubleEnvelope(t *testing.T) {
	raw := json.RawMessage(`{
		"data": {
			"data": [{"id": "a"}],
			"meta": {"page": 2, "page_size": 20, "total": 41}
		}
	}`)

	var items []envItem
	meta, err := decodeList(raw, &items)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, PageMeta{Page: 2, PageSize: 20, Total: 41}, meta)
}

func TestDecodeListBareCollection(t *testing.T) {
	raw := json.RawMessage(`[{"id": "a"}]`)

	var items []envItem
	meta, err := decodeList(raw, &items)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Zero(t, meta)
}

func TestDecodeObject(t *testing.T) {
	var wrapped envItem
	require.NoError(t, decodeObject(json.RawMessage(`{"data": {"id": "x"}}`), &wrapped))
	assert.Equal(t, "x", wrapped.ID)

	var bare envItem
	require.NoError(t, decodeObject(json.RawMessage(`{"id": "y"}`), &bare))
	assert.Equal(t, "y", bare.ID)
}
