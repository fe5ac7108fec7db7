package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcpnet/lcpnet/internal/logger"
	"github.com/lcpnet/lcpnet/internal/tiling"
)

var tasksVerbose bool

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Print the tile partition and border node counts",
	Args:  cobra.NoArgs,
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().BoolVarP(&tasksVerbose, "verbose", "v", false, "List every task")
	rootCmd.AddCommand(tasksCmd)
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	in, err := openInputs(cfg, logger.Named("tasks"))
	if err != nil {
		return err
	}

	opts := tilingOptions(cfg)
	tiles, err := tiling.Partition(in.info.Height, in.info.Width, opts.TileSize)
	if err != nil {
		return err
	}
	tasks, err := tiling.BuildTasks(in.info.Height, in.info.Width, opts, in.admitter())
	if err != nil {
		return err
	}
	s := tiling.Summarize(len(tiles), tasks)

	printf(cmd, "grid:  %d x %d\n", in.info.Width, in.info.Height)
	printf(cmd, "tiles: %d (%d with tasks)\n", s.Tiles, s.Tasks)
	printf(cmd, "nodes: %d\n", s.Nodes)
	printf(cmd, "pairs: %d\n", s.Pairs)
	if !tasksVerbose {
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TILE\tROW\tCOL\tWIDTH\tHEIGHT\tNODES\tPAIRS")
	for _, t := range tasks {
		w := t.Tile.Window
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n", t.Tile.ID, w.Row, w.Col, w.Width, w.Height, len(t.Nodes), t.Pairs())
	}
	return tw.Flush()
}
