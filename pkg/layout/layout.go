package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/signalgraph/signalgraph/pkg/common"
)

// Strategy identifies one of the fixed layout variants.
type Strategy string

const (
	StrategyForce    Strategy = "force"
	StrategyTimeline Strategy = "timeline"
	StrategyCluster  Strategy = "cluster"
	StrategyFlow     Strategy = "flow"
	StrategyMatrix   Strategy = "matrix"
)

// Strategies lists every supported strategy in menu order.
var Strategies = []Strategy{StrategyForce, StrategyTimeline, StrategyCluster, StrategyFlow, StrategyMatrix}

// Valid reports whether s names a supported strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyForce, StrategyTimeline, StrategyCluster, StrategyFlow, StrategyMatrix:
		return true
	}
	return false
}

// InvalidStrategyError is returned for an unknown strategy id. No node is
// touched when it is returned.
type InvalidStrategyError struct {
	Strategy string
}

func (e *InvalidStrategyError) Error() string {
	names := make([]string, len(Strategies))
	for i, s := range Strategies {
		names[i] = string(s)
	}
	return fmt.Sprintf("unknown layout strategy %q (want one of %s)", e.Strategy, strings.Join(names, ", "))
}

// ParseStrategy validates a strategy id.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(s)
	if !strategy.Valid() {
		return "", &InvalidStrategyError{Strategy: s}
	}
	return strategy, nil
}

// Viewport is the drawing area in simulation units.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (vp Viewport) validate() error {
	for _, v := range []float64{vp.Width, vp.Height} {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("layout: invalid viewport %gx%g", vp.Width, vp.Height)
		}
	}
	return nil
}

// ForceType names the kind of force a stepper should install.
type ForceType string

const (
	ForceLink     ForceType = "link"
	ForceManyBody ForceType = "manyBody"
	ForceCenter   ForceType = "center"
	ForceX        ForceType = "x"
	ForceY        ForceType = "y"
)

// Point is a position in the viewport.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Force configures one named force of the external stepper. Target applies
// to every node; Targets overrides it per node id.
type Force struct {
	Type     ForceType          `json:"type"`
	Strength float64            `json:"strength,omitempty"`
	Distance float64            `json:"distance,omitempty"`
	Center   *Point             `json:"center,omitempty"`
	Target   *float64           `json:"target,omitempty"`
	Targets  map[string]float64 `json:"targets,omitempty"`
}

// Pin is a pinned coordinate pair; a nil axis is left to the simulation.
type Pin struct {
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// Layout is the complete configuration one strategy produced for a graph
// and viewport.
type Layout struct {
	Strategy Strategy         `json:"strategy"`
	Viewport Viewport         `json:"viewport"`
	Pins     map[string]Pin   `json:"pins"`
	Forces   map[string]Force `json:"forces"`
}

// Apply clears every pinned coordinate in g and applies strategy for the
// viewport, pinning nodes in place where the strategy does so. The returned
// Layout describes the pins and the forces to install. An unknown strategy
// fails before any node is modified.
//
// Apply is deterministic: the same graph, viewport and strategy always
// produce the same Layout.
func Apply(g *common.Graph, vp Viewport, strategy Strategy) (*Layout, error) {
	if !strategy.Valid() {
		return nil, &InvalidStrategyError{Strategy: string(strategy)}
	}
	if g == nil {
		return nil, errors.New("layout: nil graph")
	}
	if err := vp.validate(); err != nil {
		return nil, err
	}

	for _, n := range g.Nodes {
		n.Unpin()
	}

	l := &Layout{
		Strategy: strategy,
		Viewport: vp,
		Pins:     make(map[string]Pin),
		Forces:   make(map[string]Force),
	}

	switch strategy {
	case StrategyForce:
		applyForce(g, vp, l)
	case StrategyTimeline:
		applyTimeline(g, vp, l)
	case StrategyCluster:
		applyCluster(g, vp, l)
	case StrategyFlow:
		applyFlow(g, vp, l)
	case StrategyMatrix:
		applyMatrix(g, vp, l)
	}

	return l, nil
}

func (l *Layout) pin(n *common.Node, fx, fy *float64) {
	n.FX, n.FY = fx, fy
	l.Pins[n.ID] = Pin{FX: fx, FY: fy}
}

func f64(v float64) *float64 {
	return &v
}

// spread returns the i-th of n evenly spaced positions between lo and hi
// inclusive. A single position sits at the midpoint.
func spread(i, n int, lo, hi float64) float64 {
	if n <= 1 {
		return (lo + hi) / 2
	}
	return lo + float64(i)*(hi-lo)/float64(n-1)
}

// cell returns the centre of the i-th of n equal cells between lo and hi.
func cell(i, n int, lo, hi float64) float64 {
	step := (hi - lo) / float64(n)
	return lo + step*(float64(i)+0.5)
}

func nodesOfType(g *common.Graph, types ...common.NodeType) []*common.Node {
	var out []*common.Node
	for _, n := range g.Nodes {
		for _, t := range types {
			if n.Type == t {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// sortByLabel orders nodes by label, then id.
func sortByLabel(nodes []*common.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Label != nodes[j].Label {
			return nodes[i].Label < nodes[j].Label
		}
		return nodes[i].ID < nodes[j].ID
	})
}

func linkForce() Force {
	return Force{Type: ForceLink, Distance: 100}
}

func chargeForce(strength float64) Force {
	return Force{Type: ForceManyBody, Strength: strength}
}
