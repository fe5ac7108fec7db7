package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/logger"
	"github.com/lcpnet/lcpnet/internal/orchestrator"
	"github.com/lcpnet/lcpnet/internal/tiling"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Route between tile border nodes and merge the network",
	Long: `Split the cost raster into tiles, route between every pair of border
nodes of each tile in parallel and merge the paths into network.shp.

Each run writes into a session directory under the output directory. A
ledger records finished tiles so an interrupted run resumes where it
stopped; use --fresh to start over.`,
	Args: cobra.NoArgs,
	RunE: runNetwork,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.Named("run")

	in, err := openInputs(cfg, log)
	if err != nil {
		return err
	}
	tasks, err := tiling.BuildTasks(in.info.Height, in.info.Width, tilingOptions(cfg), in.admitter())
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return errors.New("no tile has enough border nodes to route")
	}

	runner := &orchestrator.Runner{
		Env:             in.env(cfg, logger.Named("worker")),
		OutputDir:       cfg.Execution.OutputDir,
		Workers:         cfg.WorkerCount(),
		Fresh:           cfg.Execution.Fresh,
		MonitorInterval: cfg.Execution.MonitorInterval,
	}

	ctx, stop := signalContext()
	defer stop()
	rep, err := runner.Run(ctx, tasks)
	if rep != nil {
		fields := []zap.Field{
			zap.String("dir", rep.Dir),
			zap.Bool("resumed", rep.Resumed),
			zap.Int("tasks", rep.Tasks),
			zap.Int("skipped", rep.Skipped),
			zap.Int("succeeded", rep.Succeeded),
			zap.Int("failed", rep.Failed),
			zap.Int("paths", rep.Paths),
			zap.Int("merged", rep.Merge.Segments),
		}
		log.Info("run finished", append(fields, rep.Resources.Fields()...)...)
		printf(cmd, "%s\n", rep.Dir)
	}
	if err != nil {
		return err
	}
	if rep.Failed > 0 {
		log.Warn("some tiles failed; rerun to retry them", zap.Int("failed", rep.Failed))
	}
	return nil
}
