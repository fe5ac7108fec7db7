package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ctessum/geom/proj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/config"
	"github.com/lcpnet/lcpnet/internal/logger"
	"github.com/lcpnet/lcpnet/internal/orchestrator"
	"github.com/lcpnet/lcpnet/internal/raster"
	"github.com/lcpnet/lcpnet/internal/routing"
	"github.com/lcpnet/lcpnet/internal/tiling"
	"github.com/lcpnet/lcpnet/internal/vector"
)

var (
	configPath string
	overrides  config.Overrides
)

var rootCmd = &cobra.Command{
	Use:   "lcpnet",
	Short: "Hierarchical least-cost path network builder",
	Long: `lcpnet connects points across a cost raster with least-cost paths.

Paths are found with a coarse-to-fine A* search: a route on a downsampled
grid bounds a corridor in which the full-resolution search runs. The run
command splits the raster into tiles, routes between border nodes of every
tile in parallel and merges the paths into one network. Interrupted runs
resume from the session ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./lcpnet.yaml, then the user config dir)")
	overrides.Register(rootCmd.PersistentFlags())
}

// setup loads the configuration and initialises logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath, &overrides)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// inputs are the opened run inputs.
type inputs struct {
	info   raster.Info
	opener raster.Opener
	mask   *vector.Polygons // nil without a mask
}

// openInputs opens the cost raster once for its description and loads the
// mask. A CRS mismatch between raster and mask is fatal; an unknown CRS
// only warns.
func openInputs(cfg *config.Config, log *zap.Logger) (*inputs, error) {
	if cfg.Input.CostRaster == "" {
		return nil, errors.New("input.cost_raster is not set")
	}
	opener := raster.FileOpener(cfg.Input.CostRaster, raster.OpenOptions{NoData: cfg.Input.NoData})
	src, err := opener()
	if err != nil {
		return nil, err
	}
	info := src.Info()
	src.Close()
	log.Info("cost raster",
		zap.String("path", cfg.Input.CostRaster),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("dx", info.Dx),
		zap.Float64("dy", info.Dy))

	in := &inputs{info: info, opener: opener}
	if cfg.Input.Mask != "" {
		polys, err := vector.LoadPolygons(cfg.Input.Mask)
		if err != nil {
			return nil, err
		}
		if err := checkCRS(info.CRS, polys.SR, "mask", log); err != nil {
			return nil, err
		}
		log.Info("mask loaded", zap.String("path", cfg.Input.Mask), zap.Int("polygons", polys.Len()))
		in.mask = polys
	}
	return in, nil
}

// checkCRS fails on a CRS mismatch and warns when either side is unknown.
func checkCRS(rasterCRS string, layer *proj.SR, name string, log *zap.Logger) error {
	err := vector.CheckCRS(rasterCRS, layer, name)
	if errors.Is(err, vector.ErrUnknownCRS) {
		log.Warn("cannot compare coordinate systems", zap.String("layer", name), zap.Error(err))
		return nil
	}
	return err
}

// admitter returns the tiling admitter for the mask, or nil.
func (in *inputs) admitter() tiling.Admitter {
	if in.mask == nil {
		return nil
	}
	return in.mask.Admitter(in.info.Transform)
}

// env builds the worker environment.
func (in *inputs) env(cfg *config.Config, log *zap.Logger) *orchestrator.Env {
	env := &orchestrator.Env{
		OpenGrid: in.opener,
		Strategy: newStrategy(cfg, logger.Named("routing")),
		Fallback: cfg.Fallback(false),
		CRS:      in.info.CRS,
		Log:      log,
	}
	if in.mask != nil {
		env.Mask = in.mask
	}
	return env
}

func newStrategy(cfg *config.Config, log *zap.Logger) *routing.Strategy {
	return &routing.Strategy{
		Factors:      cfg.Routing.DownsamplingFactors,
		BufferPixels: cfg.Routing.CorridorBufferPixels,
		Weight:       cfg.Routing.HeuristicWeight,
		Heuristic:    cfg.HeuristicKind(),
		Resampling:   cfg.ResamplingMethod(),
		Log:          log,
	}
}

func tilingOptions(cfg *config.Config) tiling.Options {
	return tiling.Options{
		TileSize:    cfg.Tiling.TileSize,
		NodeSpacing: cfg.Tiling.NodeSpacing,
		EdgeBuffer:  cfg.Tiling.EdgeBuffer,
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
