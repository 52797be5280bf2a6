package common

// NodeType is the kind of entity a Node represents.
type NodeType string

const (
	NodeTypeFile    NodeType = "file"
	NodeTypeConcept NodeType = "concept"
	NodeTypeTag     NodeType = "tag"
	NodeTypeEvent   NodeType = "event"
)

// LinkType is the kind of relationship a Link represents.
type LinkType string

const (
	LinkTypeContains LinkType = "contains"
	LinkTypeTagged   LinkType = "tagged"
	LinkTypeHeader   LinkType = "header"
	LinkTypeTimeline LinkType = "timeline"
)

// Graph is the deduplicated set of nodes and links produced from a corpus
// of notes. Links refer to nodes by id, never by pointer, so a Graph is
// acyclic at rest and serializes as plain data.
//
// A graph contains:
//   - Nodes: files, concepts, tags and events (second-level headers)
//   - Links: directed relationships between node ids
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Links []Link  `json:"links"`
}

// Node represents one entity in the graph. Its ID has the form
// "<type>:<identifier>" and is unique across the graph.
//
// FX and FY are pinned coordinates. They are the only fields mutated after
// creation and nil means the simulation decides the position.
type Node struct {
	ID     string   `json:"id"`
	Type   NodeType `json:"type"`
	Label  string   `json:"label"`
	Path   string   `json:"path,omitempty"`
	Source string   `json:"source,omitempty"`
	FX     *float64 `json:"fx,omitempty"`
	FY     *float64 `json:"fy,omitempty"`
}

// Link represents a directed relationship between two node ids.
type Link struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   LinkType `json:"type"`
}

// Extraction holds the candidate nodes and links produced from a single
// file. The file node is always the first node.
type Extraction struct {
	Nodes []*Node `json:"nodes"`
	Links []Link  `json:"links"`
}

// Unpin clears both pinned coordinates.
func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
}

// Pinned reports whether either coordinate is pinned.
func (n *Node) Pinned() bool {
	return n.FX != nil || n.FY != nil
}

// Clone returns a deep copy of the graph. Layouts mutate pinned coordinates,
// so callers sharing a cached graph must clone before applying one.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		c := *n
		if n.FX != nil {
			fx := *n.FX
			c.FX = &fx
		}
		if n.FY != nil {
			fy := *n.FY
			c.FY = &fy
		}
		nodes = append(nodes, &c)
	}
	links := make([]Link, len(g.Links))
	copy(links, g.Links)
	return &Graph{Nodes: nodes, Links: links}
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
