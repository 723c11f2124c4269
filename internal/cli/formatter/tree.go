package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree. Items are given in depth-first order.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Value is right-aligned in a column after the titles.
	Value string
	// Detail follows Value, dimmed.
	Detail string
	Style  *lipgloss.Style
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree draws items with box-drawing connectors. A vertical pipe is
// drawn under an ancestor only while that ancestor has later siblings.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	// lastAt[l] records whether the most recent item at level l was the
	// last among its siblings.
	var lastAt []bool
	maxContent, maxValue := 0, 0

	for idx, item := range items {
		for len(lastAt) <= item.Level {
			lastAt = append(lastAt, false)
		}
		lastAt[item.Level] = item.IsLast

		var prefix strings.Builder
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if lastAt[l] {
					prefix.WriteString(treeBlank)
				} else {
					prefix.WriteString(treePipe)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Style != nil {
			title = item.Style.Render(title)
		}
		contents[idx] = StyleDim.Render(prefix.String()) + title
		maxContent = max(maxContent, lipgloss.Width(contents[idx]))
		maxValue = max(maxValue, lipgloss.Width(item.Value))
	}

	var b strings.Builder
	for idx, item := range items {
		line := contents[idx]
		if item.Value != "" || item.Detail != "" {
			line += strings.Repeat(" ", maxContent-lipgloss.Width(line)+2)
			line += strings.Repeat(" ", maxValue-lipgloss.Width(item.Value)) + item.Value
			if item.Detail != "" {
				line += "  " + Dim(item.Detail)
			}
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}
