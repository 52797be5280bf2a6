package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/signalgraph/signalgraph/pkg/common"
	"github.com/signalgraph/signalgraph/pkg/graph"
	"github.com/signalgraph/signalgraph/pkg/layout"
	ioloader "github.com/signalgraph/signalgraph/pkg/loader/io"
	"github.com/signalgraph/signalgraph/pkg/logger"
	"github.com/signalgraph/signalgraph/pkg/logger/console"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	root     string
	exts     []string
	parallel int
	debug    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "graphctl",
		Short:         "Build and inspect the graph of a notes directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  opts.debug,
				Output: cmd.ErrOrStderr(),
			}))
		},
	}
	root.PersistentFlags().StringVar(&opts.root, "root", ".", "notes root directory")
	root.PersistentFlags().StringSliceVar(&opts.exts, "ext", []string{".md"}, "note file extensions")
	root.PersistentFlags().IntVar(&opts.parallel, "parallel", 8, "files extracted concurrently")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug logging")

	root.AddCommand(newGraphCmd(opts))
	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newSourceCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	return root
}

func (o *options) notes() (*ioloader.IONoteLoader, error) {
	return ioloader.NewIONoteLoader(ioloader.NewIONoteLoaderParams{
		Root:       o.root,
		Extensions: o.exts,
	})
}

func (o *options) build(ctx context.Context) (*graph.Result, error) {
	notes, err := o.notes()
	if err != nil {
		return nil, err
	}
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{ParallelFiles: o.parallel})
	if err != nil {
		return nil, err
	}
	return client.ProcessGraph(ctx, notes)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the graph as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res.Graph)
		},
	}
}

func newLayoutCmd(opts *options) *cobra.Command {
	var strategy string
	var width, height float64

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print a layout and the pinned graph as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := layout.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			res, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			l, err := layout.Apply(res.Graph, layout.Viewport{Width: width, Height: height}, s)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Layout *layout.Layout `json:"layout"`
				Graph  *common.Graph  `json:"graph"`
			}{l, res.Graph})
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", string(layout.StrategyForce), "force|timeline|cluster|flow|matrix")
	cmd.Flags().Float64Var(&width, "width", 1200, "viewport width")
	cmd.Flags().Float64Var(&height, "height", 800, "viewport height")
	return cmd
}

func newSourceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "source <path>",
		Short: "Print the raw text of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := opts.notes()
			if err != nil {
				return err
			}
			text, err := notes.GetSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(text)
			return err
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderStats(res.Report))
			return err
		},
	}
}
