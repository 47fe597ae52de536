// Package query splits raw user input into individual location queries.
package query

import (
	"errors"
	"strings"
)

// DefaultDelimiter separates locations on the input line.
const DefaultDelimiter = ";"

// ErrEmptyInput is returned when the input line carries no locations.
var ErrEmptyInput = errors.New("query cannot be empty")

// Parse splits line on delimiter and trims each part. Parts that are blank
// after trimming are dropped.
func Parse(line, delimiter string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyInput
	}
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	parts := strings.Split(line, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyInput
	}
	return out, nil
}

// City returns the component before the first comma, so "Atlanta, GA"
// matches on "Atlanta".
func City(q string) string {
	city, _, _ := strings.Cut(q, ",")
	return strings.TrimSpace(city)
}
