package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/config"
	"github.com/lcpnet/lcpnet/internal/logger"
	"github.com/lcpnet/lcpnet/internal/orchestrator"
	"github.com/lcpnet/lcpnet/internal/vector"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Route from the origin point to every other point",
	Long: `Compute a least-cost path from the origin point to each other point over
the whole cost raster. The coarse route of every destination is written
next to the refined one as coarse_<origin>_to_<id>.shp.

The full-mask fallback is on unless routing.full_mask_fallback or
--full-mask-fallback turns it off.`,
	Args: cobra.NoArgs,
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

// loadPoints reads the configured points and checks their CRS.
func loadPoints(cfg *config.Config, in *inputs, log *zap.Logger) (*vector.Points, error) {
	if cfg.Input.Points == "" {
		return nil, errors.New("input.points is not set")
	}
	pts, err := vector.LoadPoints(cfg.Input.Points, cfg.Input.IDField, log)
	if err != nil {
		return nil, err
	}
	if err := checkCRS(in.info.CRS, pts.SR, "points", log); err != nil {
		return nil, err
	}
	log.Info("points loaded", zap.String("path", cfg.Input.Points), zap.Int("points", len(pts.ByID)))
	return pts, nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.Named("route")

	in, err := openInputs(cfg, log)
	if err != nil {
		return err
	}
	pts, err := loadPoints(cfg, in, log)
	if err != nil {
		return err
	}

	env := in.env(cfg, logger.Named("worker"))
	env.Fallback = cfg.Fallback(true)

	dir := filepath.Join(cfg.Execution.OutputDir, fmt.Sprintf("routes_%d", cfg.Input.OriginID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	rep, err := orchestrator.Route(ctx, env, pts.ByID, cfg.Input.OriginID, &vector.Writer{Dir: dir, CRS: in.info.CRS})
	if rep != nil {
		log.Info("routing finished",
			zap.String("dir", dir),
			zap.Int("routed", rep.Routed),
			zap.Int("unreached", rep.Unreached),
			zap.Int("skipped", rep.Skipped),
			zap.Int("faults", rep.Faults),
			zap.Int("full_mask", rep.FullMask))
		printf(cmd, "%s\n", dir)
	}
	return err
}
