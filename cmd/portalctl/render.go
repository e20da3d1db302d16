package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/complaint-portal/internal/table"
	"github.com/spec-kit/complaint-portal/pkg/util"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	emptyStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// column pairs a header with the dot path it reads from each row.
type column struct {
	Title string
	Field string
}

// renderTable renders the current page of a data table plus a page footer.
func renderTable(t *table.Table, columns []column) string {
	rows := t.Page()
	if len(rows) == 0 {
		return emptyStyle.Render("no results") + "\n"
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col.Title)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i, col := range columns {
			text := cellText(row, col.Field)
			cells[r][i] = text
			if len(text) > widths[i] {
				widths[i] = len(text)
			}
		}
	}

	var b strings.Builder
	for i, col := range columns {
		b.WriteString(headerStyle.Render(pad(col.Title, widths[i])))
		b.WriteString(cellStyle.Render(""))
	}
	b.WriteString("\n")
	for _, row := range cells {
		for i, text := range row {
			b.WriteString(pad(text, widths[i]))
			b.WriteString(cellStyle.Render(""))
		}
		b.WriteString("\n")
	}
	b.WriteString(emptyStyle.Render(fmt.Sprintf("page %d of %d (%d rows)",
		t.CurrentPage(), t.TotalPages(), t.TotalRows())))
	b.WriteString("\n")
	return b.String()
}

func cellText(row table.Row, field string) string {
	parts := strings.Split(field, ".")
	var cur any = row
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}
	if cur == nil {
		return ""
	}
	text := fmt.Sprint(cur)
	if len(text) > 48 {
		text = text[:45] + "..."
	}
	return text
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// renderError formats an error for the terminal, keeping backend messages
// front and center.
func renderError(err error) string {
	if apiErr, ok := util.AsAPIError(err); ok {
		return errorStyle.Render(fmt.Sprintf("error [%s]: %s", apiErr.Code, apiErr.Message))
	}
	var netErr *util.NetworkError
	if errors.As(err, &netErr) {
		return errorStyle.Render("network error: " + netErr.Error())
	}
	return errorStyle.Render("error: " + err.Error())
}

func notice(format string, args ...any) string {
	return noticeStyle.Render(fmt.Sprintf(format, args...))
}
