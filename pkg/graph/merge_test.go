package graph

import (
	"testing"

	"github.com/signalgraph/signalgraph/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linksOfType(g *common.Graph, typ common.LinkType) []common.Link {
	var out []common.Link
	for _, l := range g.Links {
		if l.Type == typ {
			out = append(out, l)
		}
	}
	return out
}

func assertReferentialIntegrity(t *testing.T, g *common.Graph) {
	t.Helper()
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		_, dup := ids[n.ID]
		assert.False(t, dup, "duplicate node id %q", n.ID)
		ids[n.ID] = struct{}{}
	}
	for _, l := range g.Links {
		assert.Contains(t, ids, l.Source, "dangling link source")
		assert.Contains(t, ids, l.Target, "dangling link target")
	}
}

func TestBuildGraphTwoDailyLogs(t *testing.T) {
	g, collisions := BuildGraph([]common.Extraction{
		Extract("[[Alpha]]", "2024-01-01.md"),
		Extract("[[Beta]]", "2024-01-02.md"),
	})

	assert.Empty(t, collisions)
	assert.Equal(t, []common.Link{{
		Source: "file:2024-01-01.md",
		Target: "file:2024-01-02.md",
		Type:   common.LinkTypeTimeline,
	}}, linksOfType(g, common.LinkTypeTimeline))
	assertReferentialIntegrity(t, g)
}

func TestBuildGraphSharedConcept(t *testing.T) {
	g, collisions := BuildGraph([]common.Extraction{
		Extract("uses [[Shared]]", "a.md"),
		Extract("also [[Shared]]", "b.md"),
	})

	var shared []*common.Node
	for _, n := range g.Nodes {
		if n.ID == "concept:Shared" {
			shared = append(shared, n)
		}
	}
	assert.Len(t, shared, 1)
	assert.Equal(t, []common.Link{
		{Source: "file:a.md", Target: "concept:Shared", Type: common.LinkTypeContains},
		{Source: "file:b.md", Target: "concept:Shared", Type: common.LinkTypeContains},
	}, linksOfType(g, common.LinkTypeContains))

	require.Len(t, collisions, 1)
	assert.Equal(t, IdentityCollision{ID: "concept:Shared", Occurrences: 2, Sources: []string{"a.md", "b.md"}}, collisions[0])
	assertReferentialIntegrity(t, g)
}

func TestBuildGraphFirstWins(t *testing.T) {
	first := common.Extraction{Nodes: []*common.Node{
		{ID: "file:a.md", Type: common.NodeTypeFile, Label: "a.md", Path: "a.md"},
		{ID: "concept:X", Type: common.NodeTypeConcept, Label: "first"},
	}}
	second := common.Extraction{Nodes: []*common.Node{
		{ID: "file:b.md", Type: common.NodeTypeFile, Label: "b.md", Path: "b.md"},
		{ID: "concept:X", Type: common.NodeTypeConcept, Label: "second"},
	}}

	g, _ := BuildGraph([]common.Extraction{first, second})
	assert.Equal(t, "first", g.NodeByID("concept:X").Label)
	assert.Equal(t, []string{"file:a.md", "concept:X", "file:b.md"}, nodeIDs(g.Nodes))
}

func TestBuildGraphKeepsDuplicateLinks(t *testing.T) {
	g, collisions := BuildGraph([]common.Extraction{Extract("#x #x", "a.md")})
	assert.Len(t, linksOfType(g, common.LinkTypeTagged), 2)
	assert.Len(t, g.Nodes, 2)
	require.Len(t, collisions, 1)
	assert.Equal(t, []string{"a.md"}, collisions[0].Sources)
	assert.Equal(t, 2, collisions[0].Occurrences)
}

func TestBuildGraphTimelineOrdering(t *testing.T) {
	g, _ := BuildGraph([]common.Extraction{
		Extract("", "2024-03-01.md"),
		Extract("", "notes/ideas.md"),
		Extract("", "2023-12-31.md"),
		Extract("", "journal/2024-01-15.md"),
		Extract("", "2024-1-2.md"),
		Extract("", "2024-01-15-draft.md"),
	})

	assert.Equal(t, []common.Link{
		{Source: "file:2023-12-31.md", Target: "file:2024-03-01.md", Type: common.LinkTypeTimeline},
		{Source: "file:2024-03-01.md", Target: "file:journal/2024-01-15.md", Type: common.LinkTypeTimeline},
	}, linksOfType(g, common.LinkTypeTimeline))
	assertReferentialIntegrity(t, g)
}

func TestBuildGraphTimelineOtherExtensions(t *testing.T) {
	g, _ := BuildGraph([]common.Extraction{
		Extract("", "2024-01-02.txt"),
		Extract("", "2024-01-01.md"),
	})
	assert.Equal(t, []common.Link{
		{Source: "file:2024-01-01.md", Target: "file:2024-01-02.txt", Type: common.LinkTypeTimeline},
	}, linksOfType(g, common.LinkTypeTimeline))
}

func TestBuildGraphSingleOrNoDailyLog(t *testing.T) {
	g, _ := BuildGraph([]common.Extraction{Extract("", "2024-01-01.md")})
	assert.Empty(t, linksOfType(g, common.LinkTypeTimeline))

	g, _ = BuildGraph(nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)
}

func TestBuildGraphDedupBound(t *testing.T) {
	results := []common.Extraction{
		Extract("[[A]] #t\n## H", "a.md"),
		Extract("[[B]] #u\n## H", "b.md"),
	}
	total := 0
	for _, r := range results {
		total += len(r.Nodes)
	}

	g, collisions := BuildGraph(results)
	assert.Equal(t, total, len(g.Nodes))
	assert.Empty(t, collisions)

	results = append(results, Extract("[[A]] #u", "c.md"))
	total += 3
	g, _ = BuildGraph(results)
	assert.Less(t, len(g.Nodes), total)
	assertReferentialIntegrity(t, g)
}

func TestBuildGraphSkipsEmptyExtractions(t *testing.T) {
	g, _ := BuildGraph([]common.Extraction{{}, Extract("[[A]]", "a.md"), {}})
	assert.Equal(t, []string{"file:a.md", "concept:A"}, nodeIDs(g.Nodes))
}

func TestIsDailyLog(t *testing.T) {
	assert.True(t, IsDailyLog("2024-01-01.md"))
	assert.True(t, IsDailyLog("deep/dir/2024-01-01.md"))
	assert.False(t, IsDailyLog("2024-01-01.md.bak"))
	assert.False(t, IsDailyLog("x2024-01-01.md"))
	assert.False(t, IsDailyLog("2024-01-01"))
	assert.False(t, IsDailyLog("2024-01-01/notes.md"))
}
