package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/logger"
	"github.com/lcpnet/lcpnet/internal/preview"
	"github.com/lcpnet/lcpnet/internal/raster"
	"github.com/lcpnet/lcpnet/internal/tiling"
)

var (
	previewOut  string
	previewSize int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the tile partition over the cost raster as a PNG",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewOut, "png", "", "Output PNG (default <output>/tiles_preview.png)")
	previewCmd.Flags().IntVar(&previewSize, "size", 1024, "Longest side of the image in pixels")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.Named("preview")

	in, err := openInputs(cfg, log)
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

	src, err := in.opener()
	if err != nil {
		return err
	}
	grid, err := raster.ReadAll(src)
	src.Close()
	if err != nil {
		return err
	}
	size := max(previewSize, 1)
	scale := max((max(grid.Width, grid.Height)+size-1)/size, 1)
	small := raster.Downsample(grid, scale, raster.Stride)

	img := preview.Render(small, scale, tiles, tasks, preview.Options{MaxSize: size})
	out := previewOut
	if out == "" {
		out = filepath.Join(cfg.Execution.OutputDir, "tiles_preview.png")
	}
	if err := preview.WritePNG(out, img); err != nil {
		return err
	}
	log.Info("preview written",
		zap.String("file", out),
		zap.Int("tiles", len(tiles)),
		zap.Int("tasks", len(tasks)),
		zap.Int("scale", scale))
	printf(cmd, "%s\n", out)
	return nil
}
