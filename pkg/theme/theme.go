// Package theme carries every style the CLI renders with. One Theme is built
// in the root command and passed down; nothing here is global.
package theme

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/sw33tLie/fundscope/pkg/records"
)

const (
	DefaultAccent   = "#7A1E1E"
	DefaultMaxWidth = 32

	DetailsHeader = "Details"
	DetailsMarker = "…"
)

type Theme struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Border lipgloss.Style
	// MaxCellWidth truncates long values; zero disables truncation.
	MaxCellWidth int
	// Plain drops every color, for pipes and tests.
	Plain bool
}

// New builds the theme from an accent color.
func New(accent string, maxWidth int) Theme {
	if accent == "" {
		accent = DefaultAccent
	}
	acc := lipgloss.Color(accent)
	return Theme{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(acc),
		Header:       lipgloss.NewStyle().Bold(true).Foreground(acc).Padding(0, 1),
		Cell:         lipgloss.NewStyle().Padding(0, 1),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Border:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		MaxCellWidth: maxWidth,
	}
}

// Plain is a colorless theme.
func Plain() Theme {
	base := lipgloss.NewStyle()
	return Theme{
		Title:  base,
		Header: base.Padding(0, 1),
		Cell:   base.Padding(0, 1),
		Muted:  base,
		Error:  base,
		Border: base,
		Plain:  true,
	}
}

func (t Theme) clip(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if t.MaxCellWidth <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= t.MaxCellWidth {
		return s
	}
	return string(r[:t.MaxCellWidth-1]) + DetailsMarker
}

// RenderTable draws the inline columns of recs. When cols has hidden columns
// a Details column points at them.
func (t Theme) RenderTable(cols records.Columns, recs []records.Record) string {
	if len(cols.Inline) == 0 {
		return ""
	}
	headers := append([]string(nil), cols.Inline...)
	if cols.Details {
		headers = append(headers, DetailsHeader)
	}

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := rec.Row(cols.Inline)
		for i := range row {
			row[i] = t.clip(row[i])
		}
		if cols.Details {
			row = append(row, "+"+strconv.Itoa(len(cols.Hidden)))
		}
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.Header
			}
			return t.Cell
		})
	return tbl.String()
}

// RenderDetails lists every field of one record, one per line.
func (t Theme) RenderDetails(rec records.Record) string {
	var b strings.Builder
	width := 0
	for _, k := range rec.Keys() {
		if len(k) > width {
			width = len(k)
		}
	}
	for _, f := range rec.Fields() {
		b.WriteString(t.Header.Render(padRight(f.Key, width)))
		b.WriteString(" ")
		b.WriteString(f.Value.String())
		b.WriteString("\n")
	}
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
