package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/signalgraph/signalgraph/pkg/graph"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Width(12)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderStats(r graph.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Root))
	fmt.Fprintf(&b, "\nbuild %s in %dms\n\n", r.BuildID, r.DurationMS)

	fmt.Fprintf(&b, "%s%d\n", keyStyle.Render("files"), r.Files)
	fmt.Fprintf(&b, "%s%d\n", keyStyle.Render("nodes"), r.Nodes)
	writeCounts(&b, r.NodesByType)
	fmt.Fprintf(&b, "%s%d\n", keyStyle.Render("links"), r.Links)
	writeCounts(&b, r.LinksByType)

	if len(r.Failures) > 0 {
		b.WriteString("\n" + headingStyle.Render("failures") + "\n")
		for _, f := range r.Failures {
			b.WriteString(errStyle.Render("  "+f.Error()) + "\n")
		}
	}
	if len(r.Skipped) > 0 {
		b.WriteString("\n" + headingStyle.Render("skipped") + "\n")
		for _, s := range r.Skipped {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  %s: %s", s.Path, s.Reason)) + "\n")
		}
	}
	if len(r.Collisions) > 0 {
		b.WriteString("\n" + headingStyle.Render("collisions") + "\n")
		for _, c := range r.Collisions {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  %s x%d (%s)", c.ID, c.Occurrences, strings.Join(c.Sources, ", "))) + "\n")
		}
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeCounts[K ~string](b *strings.Builder, counts map[K]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s%d\n", keyStyle.Render(k), counts[K(k)])
	}
}
