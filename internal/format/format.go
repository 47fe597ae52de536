// Package format renders metric tables for the terminal.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/JakeFAU/weather-lookup/internal/weather"
)

// Align selects where padding goes in FormatString.
type Align int

// Supported alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Table column widths in terminal cells.
const (
	AttributeWidth = 13
	ValueWidth     = 10
	ExtraWidth     = 19
)

// Output formats accepted by ForName.
const (
	FormatTable = "table"
	FormatLines = "lines"
)

var border = "+" + strings.Repeat("-", AttributeWidth) +
	"+" + strings.Repeat("-", ValueWidth) +
	"+" + strings.Repeat("-", ExtraWidth) + "+\n"

// FormatString pads source to width cells. Centering puts the odd cell on the
// right. Text wider than width is returned unchanged.
func FormatString(width int, align Align, source string) string {
	cells := runewidth.StringWidth(source)
	if cells >= width {
		return source
	}
	padding := width - cells
	var left, right int
	switch align {
	case AlignCenter:
		left = padding / 2
		right = padding - left
	case AlignRight:
		left = padding
	default:
		right = padding
	}
	return strings.Repeat(" ", left) + source + strings.Repeat(" ", right)
}

// WriteTable writes table as a bordered three-column grid.
func WriteTable(w io.Writer, table *weather.Table) error {
	var b strings.Builder
	b.WriteString(border)
	writeRow(&b, "Attribute", "Value", "Extra Information")
	b.WriteString(border)
	table.Each(func(label string, m weather.Metric) {
		writeRow(&b, label, m.Value(), m.Direction)
	})
	b.WriteString(border)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

func writeRow(b *strings.Builder, attribute, value, extra string) {
	fmt.Fprintf(b, "|%s|%s|%s|\n",
		FormatString(AttributeWidth, AlignCenter, attribute),
		FormatString(ValueWidth, AlignCenter, value),
		FormatString(ExtraWidth, AlignCenter, extra),
	)
}

// WriteLines writes one "label: magnitude unit direction" line per metric,
// leaving out empty parts.
func WriteLines(w io.Writer, table *weather.Table) error {
	var b strings.Builder
	table.Each(func(label string, m weather.Metric) {
		parts := make([]string, 0, 3)
		for _, p := range []string{m.Magnitude, m.Unit, m.Direction} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(parts, " "))
	})
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write lines: %w", err)
	}
	return nil
}

// ForName returns the formatter registered under name.
func ForName(name string) (weather.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatTable:
		return WriteTable, nil
	case FormatLines:
		return WriteLines, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}
