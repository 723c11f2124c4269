package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatHours renders hours with at most two decimals and an "h" suffix:
// 8 -> "8h", 7.5 -> "7.5h", 1.25 -> "1.25h".
func FormatHours(h float64) string {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return "n/a"
	}
	r := math.Round(h*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "h"
}

// FormatCount pluralizes a noun: 1 client, 2 clients.
func FormatCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// DisplayName substitutes a placeholder for empty keys.
func DisplayName(key string) string {
	if key == "" {
		return "(none)"
	}
	return key
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatRange renders a date range in ISO dates; open ends show as "…".
func FormatRange(r domain.DateRange) string {
	if r.IsZero() {
		return "all dates"
	}
	start, end := "…", "…"
	if r.Start != nil {
		start = r.Start.Format(domain.DateLayoutISO)
	}
	if r.End != nil {
		end = r.End.Format(domain.DateLayoutISO)
	}
	return start + " → " + end
}

// FormatFilters joins filters as "field=a,b; field2=c".
func FormatFilters(filters []domain.Filter) string {
	if len(filters) == 0 {
		return "none"
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}
