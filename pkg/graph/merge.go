package graph

import (
	"path"
	"regexp"
	"sort"

	"github.com/signalgraph/signalgraph/pkg/common"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// dailyLogRe matches note names such as 2024-01-31.md.
var dailyLogRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.[A-Za-z0-9]+$`)

// IsDailyLog reports whether a note path names a daily log entry.
func IsDailyLog(relPath string) bool {
	return dailyLogRe.MatchString(path.Base(relPath))
}

// BuildGraph merges per-file extractions into one graph. The first node
// seen for an id wins and later duplicates are discarded; links are kept
// verbatim, duplicates included. Consecutive daily logs, ordered by label,
// are joined by timeline links appended after all extracted links.
//
// BuildGraph is sequential and must be given every extraction of a build.
func BuildGraph(results []common.Extraction) (*common.Graph, []IdentityCollision) {
	nodes := make([]*common.Node, 0)
	index := make(map[string]int)
	links := make([]common.Link, 0)

	seen := make(map[string]*IdentityCollision)
	var order []string

	for _, result := range results {
		source := extractionSource(result)
		for _, node := range result.Nodes {
			if _, ok := index[node.ID]; !ok {
				index[node.ID] = len(nodes)
				nodes = append(nodes, node)
				seen[node.ID] = &IdentityCollision{ID: node.ID, Occurrences: 1, Sources: []string{source}}
				continue
			}
			c := seen[node.ID]
			if c.Occurrences == 1 {
				order = append(order, node.ID)
			}
			c.Occurrences++
			if c.Sources[len(c.Sources)-1] != source {
				c.Sources = append(c.Sources, source)
			}
		}
		links = append(links, result.Links...)
	}

	links = append(links, timelineLinks(nodes)...)

	sort.Strings(order)
	collisions := make([]IdentityCollision, 0, len(order))
	for _, id := range order {
		collisions = append(collisions, *seen[id])
	}

	return &common.Graph{Nodes: nodes, Links: links}, collisions
}

// extractionSource names the note an extraction came from.
func extractionSource(result common.Extraction) string {
	if len(result.Nodes) > 0 && result.Nodes[0].Type == common.NodeTypeFile {
		return result.Nodes[0].Path
	}
	return ""
}

func timelineLinks(nodes []*common.Node) []common.Link {
	var daily []*common.Node
	for _, n := range nodes {
		if n.Type == common.NodeTypeFile && IsDailyLog(n.Path) {
			daily = append(daily, n)
		}
	}
	if len(daily) < 2 {
		return nil
	}

	col := collate.New(language.Und)
	sort.SliceStable(daily, func(i, j int) bool {
		return col.CompareString(daily[i].Label, daily[j].Label) < 0
	})

	links := make([]common.Link, 0, len(daily)-1)
	for i := 0; i < len(daily)-1; i++ {
		links = append(links, common.Link{
			Source: daily[i].ID,
			Target: daily[i+1].ID,
			Type:   common.LinkTypeTimeline,
		})
	}
	return links
}
