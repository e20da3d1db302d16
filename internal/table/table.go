package table

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Row is one record, shaped like its JSON representation so nested fields are
// addressable by dot path.
type Row = map[string]any

// Config controls client-side behavior.
type Config struct {
	// SearchFields lists the (possibly dot-nested) fields free-text search
	// scans. Empty means search matches nothing.
	SearchFields []string
	PageSize     int
}

const defaultPageSize = 10

// Table filters, searches, and pages an in-memory collection. With external
// pagination it renders the supplied page verbatim and delegates page changes
// upward.
type Table struct {
	rows     []Row
	cfg      Config
	search   string
	filters  map[string][]string
	page     int
	pageSize int

	external      bool
	externalTotal int

	// OnPageChange receives page-change requests in external mode.
	OnPageChange func(page int)
}

// New builds a table over a full in-memory collection.
func New(rows []Row, cfg Config) *Table {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	return &Table{
		rows:     rows,
		cfg:      cfg,
		filters:  make(map[string][]string),
		page:     1,
		pageSize: cfg.PageSize,
	}
}

// NewExternal builds a table over one server-provided page. Filtering and
// slicing are skipped; the rows render as-is.
func NewExternal(rows []Row, page, pageSize, total int) *Table {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return &Table{
		rows:          rows,
		filters:       make(map[string][]string),
		page:          page,
		pageSize:      pageSize,
		external:      true,
		externalTotal: total,
	}
}

// ToRows converts any slice of records into rows via their JSON shape.
func ToRows(v any) ([]Row, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetSearch installs a free-text term and returns to page 1.
func (t *Table) SetSearch(term string) {
	t.search = strings.ToLower(strings.TrimSpace(term))
	if !t.external {
		t.page = 1
	}
}

// SetFilter installs a multi-value equality filter for a column. An empty
// value set removes the filter.
func (t *Table) SetFilter(column string, values []string) {
	if len(values) == 0 {
		delete(t.filters, column)
	} else {
		t.filters[column] = values
	}
	if !t.external {
		t.page = 1
	}
}

// SetPage moves to the given page, clamped to the valid range. In external
// mode the request is delegated upward.
func (t *Table) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if t.external {
		if t.OnPageChange != nil {
			t.OnPageChange(page)
		}
		t.page = page
		return
	}
	if max := t.TotalPages(); page > max {
		page = max
	}
	t.page = page
}

// SetPageSize changes the page size and always resets to page 1.
func (t *Table) SetPageSize(size int) {
	if size <= 0 {
		size = defaultPageSize
	}
	t.pageSize = size
	t.page = 1
	if t.external && t.OnPageChange != nil {
		t.OnPageChange(1)
	}
}

// CurrentPage returns the 1-based visible page.
func (t *Table) CurrentPage() int {
	return t.page
}

// TotalRows returns the row count after search and filters.
func (t *Table) TotalRows() int {
	if t.external {
		return t.externalTotal
	}
	return len(t.visible())
}

// TotalPages returns the page count, never less than 1 so an empty result
// still renders one (empty) page.
func (t *Table) TotalPages() int {
	total := t.TotalRows()
	if total == 0 {
		return 1
	}
	pages := total / t.pageSize
	if total%t.pageSize != 0 {
		pages++
	}
	return pages
}

// Empty reports whether the current view has no rows.
func (t *Table) Empty() bool {
	return len(t.Page()) == 0
}

// Page returns the rows of the current page.
func (t *Table) Page() []Row {
	if t.external {
		return t.rows
	}

	visible := t.visible()
	start := (t.page - 1) * t.pageSize
	if start >= len(visible) {
		return nil
	}
	end := start + t.pageSize
	if end > len(visible) {
		end = len(visible)
	}
	return visible[start:end]
}

func (t *Table) visible() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		if !t.matchesSearch(row) {
			continue
		}
		if !t.matchesFilters(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (t *Table) matchesSearch(row Row) bool {
	if t.search == "" {
		return true
	}
	for _, field := range t.cfg.SearchFields {
		val, ok := lookup(row, field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(stringify(val)), t.search) {
			return true
		}
	}
	return false
}

func (t *Table) matchesFilters(row Row) bool {
	for column, allowed := range t.filters {
		val, ok := lookup(row, column)
		if !ok {
			return false
		}
		text := stringify(val)
		matched := false
		for _, candidate := range allowed {
			if text == candidate {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// lookup resolves a dot path into nested maps.
func lookup(row Row, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = row
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers; render integers without the decimal point.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
