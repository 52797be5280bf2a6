package graph

import "runtime"

// GraphClient builds note graphs. It controls how many notes are read and
// extracted in parallel.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	parallelFiles int
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// ParallelFiles controls how many notes are processed concurrently. Values
// <= 0 fall back to GOMAXPROCS.
type NewGraphClientParams struct {
	ParallelFiles int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		ParallelFiles: 8,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := client.ProcessGraph(ctx, notes)
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	parallel := params.ParallelFiles
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}
	return &GraphClient{parallelFiles: parallel}, nil
}
