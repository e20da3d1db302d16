package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows(n int) []Row {
	rows := make([]Row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, Row{
			"id":      fmt.Sprintf("c-%d", i),
			"subject": fmt.Sprintf("printer %d jammed", i),
			"status":  map[string]any{"id": fmt.Sprintf("st-%d", i%3)},
		})
	}
	return rows
}

func TestSearchMatchesConfiguredFieldsOnly(t *testing.T) {
	rows := []Row{
		{"subject": "Broken Monitor", "body": "screen flickers"},
		{"subject": "leave request", "body": "monitor my hours"},
	}
	tbl := New(rows, Config{SearchFields: []string{"subject"}})

	tbl.SetSearch("monitor")
	page := tbl.Page()
	require.Len(t, page, 1, "search is case-insensitive and scoped to subject")
	assert.Equal(t, "Broken Monitor", page[0]["subject"])

	tbl.SetSearch("no such thing")
	assert.True(t, tbl.Empty())
	assert.Equal(t, 1, tbl.TotalPages(), "empty result still renders one page")
	assert.Equal(t, 1, tbl.CurrentPage())
}

func TestSearchResolvesDotPaths(t *testing.T) {
	tbl := New(sampleRows(5), Config{SearchFields: []string{"status.id"}})

	tbl.SetSearch("st-1")
	assert.Equal(t, 2, tbl.TotalRows(), "rows 1 and 4 have status st-1")
}

func TestMultiValueFilter(t *testing.T) {
	tbl := New(sampleRows(9), Config{})

	tbl.SetFilter("status.id", []string{"st-0", "st-1"})
	assert.Equal(t, 6, tbl.TotalRows())

	tbl.SetFilter("status.id", nil)
	assert.Equal(t, 9, tbl.TotalRows(), "empty value set removes the filter")
}

func TestFilterChangeResetsToPageOne(t *testing.T) {
	tbl := New(sampleRows(30), Config{PageSize: 10})
	tbl.SetPage(3)
	require.Equal(t, 3, tbl.CurrentPage())

	tbl.SetFilter("status.id", []string{"st-0"})
	assert.Equal(t, 1, tbl.CurrentPage())

	tbl.SetPage(2)
	tbl.SetSearch("printer")
	assert.Equal(t, 1, tbl.CurrentPage())
}

func TestSetPageSizeAlwaysResetsToPageOne(t *testing.T) {
	tbl := New(sampleRows(30), Config{PageSize: 10})
	tbl.SetPage(3)

	tbl.SetPageSize(10)
	assert.Equal(t, 1, tbl.CurrentPage(), "reset even when the size is unchanged")
}

func TestPagingSlicesAndClamps(t *testing.T) {
	tbl := New(sampleRows(25), Config{PageSize: 10})

	assert.Equal(t, 3, tbl.TotalPages())
	assert.Len(t, tbl.Page(), 10)

	tbl.SetPage(3)
	assert.Len(t, tbl.Page(), 5, "last page holds the remainder")

	tbl.SetPage(99)
	assert.Equal(t, 3, tbl.CurrentPage(), "clamped to the last page")

	tbl.SetPage(-4)
	assert.Equal(t, 1, tbl.CurrentPage())
}

func TestExternalModeRendersPageVerbatim(t *testing.T) {
	rows := sampleRows(7)
	tbl := NewExternal(rows, 2, 7, 40)

	assert.Len(t, tbl.Page(), 7)
	assert.Equal(t, 40, tbl.TotalRows(), "totals come from the server meta")
	assert.Equal(t, 6, tbl.TotalPages())
	assert.Equal(t, 2, tbl.CurrentPage())

	var requested int
	tbl.OnPageChange = func(page int) { requested = page }
	tbl.SetPage(5)
	assert.Equal(t, 5, requested, "page changes are delegated upward")

	tbl.SetPageSize(20)
	assert.Equal(t, 1, requested, "page-size change requests page 1")
}

func TestToRowsUsesJSONShape(t *testing.T) {
	type item struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	rows, err := ToRows([]item{{ID: "a", Count: 3}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["id"])

	// JSON numbers stringify without a decimal point.
	val, ok := lookup(rows[0], "count")
	require.True(t, ok)
	assert.Equal(t, "3", stringify(val))
}
