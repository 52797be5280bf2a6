package layout

import (
	"sort"

	"github.com/signalgraph/signalgraph/pkg/common"
)

const (
	margin        = 50.0
	flowInset     = 100.0
	matrixTop     = 20.0
	matrixLeft    = 50.0
	matrixColumns = 100.0
	matrixRows    = 50.0
	weakStrength  = 0.05
	clusterPull   = 0.5
	timelinePull  = 1.0
	defaultCharge = -150.0
	clusterCharge = -50.0
)

func applyForce(_ *common.Graph, vp Viewport, l *Layout) {
	cx, cy := vp.Width/2, vp.Height/2
	l.Forces["link"] = linkForce()
	l.Forces["charge"] = chargeForce(defaultCharge)
	l.Forces["center"] = Force{Type: ForceCenter, Center: &Point{X: cx, Y: cy}}
	l.Forces["x"] = Force{Type: ForceX, Strength: weakStrength, Target: f64(cx)}
	l.Forces["y"] = Force{Type: ForceY, Strength: weakStrength, Target: f64(cy)}
}

// applyTimeline spreads file nodes along x in label order and pins their x.
// Every other node is pulled toward the x of the first file it is linked to.
func applyTimeline(g *common.Graph, vp Viewport, l *Layout) {
	files := nodesOfType(g, common.NodeTypeFile)
	sortByLabel(files)

	fileX := make(map[string]float64, len(files))
	for i, n := range files {
		x := spread(i, len(files), margin, vp.Width-margin)
		fileX[n.ID] = x
		l.pin(n, f64(x), nil)
	}

	targets := make(map[string]float64, len(g.Nodes))
	for id, x := range fileX {
		targets[id] = x
	}
	for _, link := range g.Links {
		if x, ok := fileX[link.Source]; ok {
			if _, set := targets[link.Target]; !set {
				targets[link.Target] = x
			}
		}
		if x, ok := fileX[link.Target]; ok {
			if _, set := targets[link.Source]; !set {
				targets[link.Source] = x
			}
		}
	}

	cx := vp.Width / 2
	for _, n := range g.Nodes {
		if _, ok := targets[n.ID]; !ok {
			targets[n.ID] = cx
		}
	}

	l.Forces["link"] = linkForce()
	l.Forces["charge"] = chargeForce(defaultCharge)
	l.Forces["x"] = Force{Type: ForceX, Strength: timelinePull, Target: f64(cx), Targets: targets}
	l.Forces["y"] = Force{Type: ForceY, Strength: weakStrength, Target: f64(vp.Height / 2)}
}

// Anchor returns the cluster anchor for a node type.
func Anchor(t common.NodeType, vp Viewport) Point {
	w, h := vp.Width, vp.Height
	switch t {
	case common.NodeTypeFile:
		return Point{X: w / 4, Y: h / 4}
	case common.NodeTypeConcept:
		return Point{X: 3 * w / 4, Y: h / 4}
	case common.NodeTypeTag:
		return Point{X: w / 4, Y: 3 * h / 4}
	case common.NodeTypeEvent:
		return Point{X: 3 * w / 4, Y: 3 * h / 4}
	}
	return Point{X: w / 2, Y: h / 2}
}

func applyCluster(g *common.Graph, vp Viewport, l *Layout) {
	xs := make(map[string]float64, len(g.Nodes))
	ys := make(map[string]float64, len(g.Nodes))
	for _, n := range g.Nodes {
		a := Anchor(n.Type, vp)
		xs[n.ID], ys[n.ID] = a.X, a.Y
	}

	l.Forces["link"] = linkForce()
	l.Forces["charge"] = chargeForce(clusterCharge)
	l.Forces["x"] = Force{Type: ForceX, Strength: clusterPull, Target: f64(vp.Width / 2), Targets: xs}
	l.Forces["y"] = Force{Type: ForceY, Strength: clusterPull, Target: f64(vp.Height / 2), Targets: ys}
}

// applyFlow pins three columns: files, events, then concepts and tags.
func applyFlow(g *common.Graph, vp Viewport, l *Layout) {
	columns := []struct {
		x     float64
		nodes []*common.Node
	}{
		{flowInset, nodesOfType(g, common.NodeTypeFile)},
		{vp.Width / 2, nodesOfType(g, common.NodeTypeEvent)},
		{vp.Width - flowInset, nodesOfType(g, common.NodeTypeConcept, common.NodeTypeTag)},
	}

	for _, col := range columns {
		sortByLabel(col.nodes)
		for i, n := range col.nodes {
			l.pin(n, f64(col.x), f64(spread(i, len(col.nodes), margin, vp.Height-margin)))
		}
	}

	l.Forces["link"] = linkForce()
}

// applyMatrix pins files along the top edge and everything else down the
// left edge, each in its own evenly divided band.
func applyMatrix(g *common.Graph, vp Viewport, l *Layout) {
	var files, others []*common.Node
	for _, n := range g.Nodes {
		if n.Type == common.NodeTypeFile {
			files = append(files, n)
		} else {
			others = append(others, n)
		}
	}

	sortByLabel(files)
	sortByLabel(others)
	sort.SliceStable(others, func(i, j int) bool {
		return others[i].Type < others[j].Type
	})

	for i, n := range files {
		l.pin(n, f64(cell(i, len(files), matrixColumns, vp.Width)), f64(matrixTop))
	}
	for i, n := range others {
		l.pin(n, f64(matrixLeft), f64(cell(i, len(others), matrixRows, vp.Height)))
	}

	l.Forces["link"] = linkForce()
}
