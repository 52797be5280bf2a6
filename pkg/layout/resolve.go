package layout

import (
	"fmt"

	"github.com/signalgraph/signalgraph/pkg/common"
)

// ResolvedLink is a link whose endpoints point at live nodes.
type ResolvedLink struct {
	Source *common.Node
	Target *common.Node
	Type   common.LinkType
}

// Resolved is the object view of a graph a stepper traverses. Nodes are the
// graph's own node records, so pins applied to the graph are visible here.
type Resolved struct {
	Nodes []*common.Node
	Links []ResolvedLink
	byID  map[string]*common.Node
}

// Node returns the node with the given id, or nil.
func (r *Resolved) Node(id string) *common.Node {
	return r.byID[id]
}

// Resolve builds the id lookup once and replaces link endpoints by node
// references. It fails on a link naming an unknown node.
func Resolve(g *common.Graph) (*Resolved, error) {
	r := &Resolved{
		Nodes: g.Nodes,
		Links: make([]ResolvedLink, 0, len(g.Links)),
		byID:  make(map[string]*common.Node, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		r.byID[n.ID] = n
	}
	for _, l := range g.Links {
		src, ok := r.byID[l.Source]
		if !ok {
			return nil, fmt.Errorf("link %s -> %s: unknown source node", l.Source, l.Target)
		}
		dst, ok := r.byID[l.Target]
		if !ok {
			return nil, fmt.Errorf("link %s -> %s: unknown target node", l.Source, l.Target)
		}
		r.Links = append(r.Links, ResolvedLink{Source: src, Target: dst, Type: l.Type})
	}
	return r, nil
}
