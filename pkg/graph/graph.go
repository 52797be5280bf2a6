package graph

import (
	"context"
	"sort"
	"time"

	"github.com/signalgraph/signalgraph/internal/util"
	"github.com/signalgraph/signalgraph/pkg/common"
	"github.com/signalgraph/signalgraph/pkg/loader"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("signalgraph.graph")

// Report describes one graph build for diagnostics.
type Report struct {
	BuildID     string                  `json:"buildId"`
	BuiltAt     time.Time               `json:"builtAt"`
	Root        string                  `json:"root"`
	Files       int                     `json:"files"`
	Nodes       int                     `json:"nodes"`
	Links       int                     `json:"links"`
	NodesByType map[common.NodeType]int `json:"nodesByType"`
	LinksByType map[common.LinkType]int `json:"linksByType"`
	Failures    []*ExtractionError      `json:"failures"`
	Skipped     []loader.SkippedPath    `json:"skipped"`
	Collisions  []IdentityCollision     `json:"collisions"`
	Duration    time.Duration           `json:"-"`
	DurationMS  int64                   `json:"durationMs"`
}

// Result is a built graph together with its build report.
type Result struct {
	Graph  *common.Graph
	Report Report
}

// ProcessGraph runs the full pipeline against a note source: discovery,
// concurrent extraction with per-file failure isolation, and the sequential
// merge. A *loader.DiscoveryError is returned unchanged; failures of single
// notes only show up in the report.
func (g *GraphClient) ProcessGraph(ctx context.Context, notes loader.NoteLoader) (*Result, error) {
	ctx, span := tracer.Start(ctx, "graph.ProcessGraph",
		trace.WithAttributes(attribute.String("graph.root", notes.Root())),
	)
	defer span.End()

	start := time.Now()
	report := Report{
		BuildID: util.NewBuildID(),
		BuiltAt: start.UTC(),
		Root:    notes.Root(),
	}

	discovery, err := notes.Discover(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	files := discovery.Files
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	report.Files = len(files)
	report.Skipped = discovery.Skipped

	logger.Info("[Graph] Processing", "build_id", report.BuildID, "root", report.Root, "total_files", len(files), "skipped", len(discovery.Skipped))

	extractCtx, extractSpan := tracer.Start(ctx, "graph.extract",
		trace.WithAttributes(attribute.Int("graph.files", len(files))),
	)
	results, failures, err := g.extractAll(extractCtx, files)
	extractSpan.SetAttributes(attribute.Int("graph.failures", len(failures)))
	extractSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	report.Failures = failures

	built, collisions := BuildGraph(results)
	report.Collisions = collisions
	report.Nodes = len(built.Nodes)
	report.Links = len(built.Links)
	report.NodesByType = make(map[common.NodeType]int)
	for _, n := range built.Nodes {
		report.NodesByType[n.Type]++
	}
	report.LinksByType = make(map[common.LinkType]int)
	for _, l := range built.Links {
		report.LinksByType[l.Type]++
	}
	report.Duration = time.Since(start)
	report.DurationMS = report.Duration.Milliseconds()

	span.SetAttributes(
		attribute.Int("graph.nodes", report.Nodes),
		attribute.Int("graph.links", report.Links),
	)
	logger.Info("[Graph] Built", "build_id", report.BuildID, "nodes", report.Nodes, "links", report.Links, "failures", len(failures), "duration", report.Duration)

	return &Result{Graph: built, Report: report}, nil
}
