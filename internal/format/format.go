// Package format renders storefront data as terminal tables, JSONL or JSON.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// Mode is an output format.
type Mode string

const (
	Table Mode = "table"
	JSONL Mode = "jsonl"
	JSON  Mode = "json"
)

// ParseMode validates a user-supplied output mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Table, JSONL, JSON:
		return m, nil
	case "":
		return Table, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected table, jsonl or json)", s)
}

// Currency is prefixed to every rendered amount.
var Currency = "₹"

// Money renders an amount with two decimals and the currency prefix.
func Money(d decimal.Decimal) string {
	return Currency + d.StringFixed(2)
}

// WriteJSONL writes each item as one compact JSON object per line.
func WriteJSONL[T any](w io.Writer, items []T) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// WriteJSON writes v as pretty-printed JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// cell fits s into width display columns, truncating with "..." and
// padding on the right. Empty values render as "-".
func cell(s string, width int) string {
	s = firstLine(s)
	if s == "" {
		s = "-"
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}

// rcell is cell aligned to the right, for numbers.
func rcell(s string, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(s, width, "..."), width)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ShortID truncates an id to its first 8 characters for compact display.
// The full id (or any unique prefix of it) is accepted by commands.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))
}

func rule(widths ...int) []string {
	out := make([]string, len(widths))
	for i, n := range widths {
		out[i] = strings.Repeat("-", n)
	}
	return out
}
