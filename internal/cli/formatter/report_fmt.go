package formatter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/contract"
)

// NodeDetail lists the distinct counts of the levels below n, e.g.
// "1 client · 2 cases · 3 workers".
func NodeDetail(n *aggregate.Node, h aggregate.Hierarchy) string {
	kinds := h.Kinds()
	i := slices.Index(kinds, n.Kind)
	if i < 0 {
		return ""
	}
	var parts []string
	for _, k := range kinds[i+1:] {
		parts = append(parts, FormatCount(n.UniqueCount(k), string(k)))
	}
	return strings.Join(parts, " · ")
}

// ReportTreeItems flattens roots depth-first down to depth levels
// (0 means all levels).
func ReportTreeItems(roots []*aggregate.Node, h aggregate.Hierarchy, depth int) []TreeItem {
	var items []TreeItem
	var walk func(nodes []*aggregate.Node, level int)
	walk = func(nodes []*aggregate.Node, level int) {
		for i, n := range nodes {
			style := KindStyle(n.Kind)
			items = append(items, TreeItem{
				Title:  DisplayName(n.Key),
				Level:  level,
				IsLast: i == len(nodes)-1,
				Value:  FormatHours(n.TotalHours),
				Detail: NodeDetail(n, h),
				Style:  &style,
			})
			if depth == 0 || level+1 < depth {
				walk(n.Children, level+1)
			}
		}
	}
	walk(roots, 0)
	return items
}

// ReportHeading describes where a report came from and how it was folded.
func ReportHeading(resp *contract.ReportResponse) string {
	var b strings.Builder
	switch resp.Source {
	case contract.SourceSnapshot:
		fmt.Fprintf(&b, "%s %s %s\n", Dim("Source:"), "snapshot "+TruncID(resp.SnapshotID), Dim("("+strings.Join(resp.Slugs, ", ")+")"))
	default:
		fmt.Fprintf(&b, "%s %s\n", Dim("Source:"), strings.Join(resp.Slugs, ", "))
	}
	fmt.Fprintf(&b, "%s %s hours by %s, sorted by %s\n", Dim("View:  "), resp.Field.Label(), resp.Hierarchy, resp.SortBy)
	fmt.Fprintf(&b, "%s %s", Dim("Total: "), Bold(FormatHours(resp.TotalHours)))
	if server := resp.Summary.HoursFor(resp.Field); server != 0 && FormatHours(server) != FormatHours(resp.TotalHours) {
		fmt.Fprintf(&b, " %s", Dim("(server reports "+FormatHours(server)+")"))
	}
	return b.String()
}

// EmptyMessage is shown when no node carries hours in the field.
func EmptyMessage(resp *contract.ReportResponse) string {
	return fmt.Sprintf("No %s hours recorded for this selection.", resp.Field.Label())
}

func formatWarnings(warnings []string) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(Warning(w))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatReport renders the heading box, any warnings and the tree.
func FormatReport(resp *contract.ReportResponse, depth int) string {
	var b strings.Builder
	b.WriteString(RenderBox("Timesheet", ReportHeading(resp)))
	b.WriteString("\n")
	if len(resp.Warnings) > 0 {
		b.WriteString(formatWarnings(resp.Warnings))
	}
	b.WriteString("\n")
	if resp.Empty() {
		b.WriteString(Dim(EmptyMessage(resp)) + "\n")
		return b.String()
	}
	b.WriteString(RenderTree(ReportTreeItems(resp.Roots, resp.Hierarchy, depth)))
	return b.String()
}

// FormatReportTable renders one row per node with a column per distinct
// count. Names are indented by level.
func FormatReportTable(resp *contract.ReportResponse, depth int) string {
	kinds := resp.Hierarchy.Kinds()
	headers := []string{"Name", "Level", "Hours"}
	for _, k := range kinds[1:] {
		headers = append(headers, k.Label())
	}

	var rows [][]string
	aggregate.Walk(resp.Roots, func(n *aggregate.Node, level int) bool {
		row := []string{
			strings.Repeat("  ", level) + DisplayName(n.Key),
			string(n.Kind),
			FormatHours(n.TotalHours),
		}
		at := slices.Index(kinds, n.Kind)
		for i, k := range kinds[1:] {
			if i+1 > at {
				row = append(row, fmt.Sprint(n.UniqueCount(k)))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
		return depth == 0 || level+1 < depth
	})

	right := []int{2}
	for i := range kinds[1:] {
		right = append(right, 3+i)
	}

	var b strings.Builder
	b.WriteString(ReportHeading(resp))
	b.WriteString("\n")
	if len(resp.Warnings) > 0 {
		b.WriteString(formatWarnings(resp.Warnings))
	}
	b.WriteString("\n")
	if resp.Empty() {
		b.WriteString(Dim(EmptyMessage(resp)) + "\n")
		return b.String()
	}
	b.WriteString(RenderTable(headers, rows, right...))
	return b.String()
}

type jsonNode struct {
	Kind       aggregate.Kind `json:"kind"`
	Key        string         `json:"key"`
	Path       []string       `json:"path"`
	TotalHours float64        `json:"totalHours"`
	Unique     map[string]int `json:"unique,omitempty"`
	Children   []jsonNode     `json:"children,omitempty"`
}

type jsonReport struct {
	GeneratedAt time.Time  `json:"generatedAt"`
	Source      string     `json:"source"`
	Slugs       []string   `json:"slugs"`
	SnapshotID  string     `json:"snapshotId,omitempty"`
	Field       string     `json:"field"`
	Hierarchy   string     `json:"hierarchy"`
	SortBy      string     `json:"sortBy"`
	TotalHours  float64    `json:"totalHours"`
	Warnings    []string   `json:"warnings"`
	Nodes       []jsonNode `json:"nodes"`
}

// ReportJSON encodes the report tree, cut at depth (0 means all levels).
func ReportJSON(resp *contract.ReportResponse, depth int) ([]byte, error) {
	kinds := resp.Hierarchy.Kinds()
	var convert func(nodes []*aggregate.Node, level int) []jsonNode
	convert = func(nodes []*aggregate.Node, level int) []jsonNode {
		out := make([]jsonNode, 0, len(nodes))
		for _, n := range nodes {
			jn := jsonNode{
				Kind:       n.Kind,
				Key:        n.Key,
				Path:       []string(n.Path),
				TotalHours: n.TotalHours,
			}
			if i := slices.Index(kinds, n.Kind); i >= 0 && i < len(kinds)-1 {
				jn.Unique = make(map[string]int, len(kinds)-i-1)
				for _, k := range kinds[i+1:] {
					jn.Unique[string(k)] = n.UniqueCount(k)
				}
			}
			if depth == 0 || level+1 < depth {
				jn.Children = convert(n.Children, level+1)
				if len(jn.Children) == 0 {
					jn.Children = nil
				}
			}
			out = append(out, jn)
		}
		return out
	}

	warnings := resp.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	report := jsonReport{
		GeneratedAt: resp.GeneratedAt,
		Source:      string(resp.Source),
		Slugs:       resp.Slugs,
		SnapshotID:  resp.SnapshotID,
		Field:       string(resp.Field),
		Hierarchy:   string(resp.Hierarchy),
		SortBy:      string(resp.SortBy),
		TotalHours:  resp.TotalHours,
		Warnings:    warnings,
		Nodes:       convert(resp.Roots, 0),
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return append(data, '\n'), nil
}
