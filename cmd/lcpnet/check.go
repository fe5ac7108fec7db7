package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcpnet/lcpnet/internal/logger"
	"github.com/lcpnet/lcpnet/internal/orchestrator"
	"github.com/lcpnet/lcpnet/internal/raster"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report where each point falls on the grid and mask",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.Named("check")

	in, err := openInputs(cfg, log)
	if err != nil {
		return err
	}
	pts, err := loadPoints(cfg, in, log)
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

	var (
		polys orchestrator.Container
		mask  *raster.Mask
	)
	if in.mask != nil {
		polys = in.mask
		mask = in.mask.Rasterize(raster.Window{Width: grid.Width, Height: grid.Height}, grid.Transform)
	}
	checks := orchestrator.CheckPoints(pts.ByID, grid, polys, mask, log)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROW\tCOL\tIN GRID\tPASSABLE\tIN POLYGON\tIN MASK\tUSABLE")
	usable := 0
	for _, c := range checks {
		if c.Usable() {
			usable++
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%t\t%t\t%t\t%t\t%t\n",
			c.ID, c.Pixel.Row, c.Pixel.Col, c.InGrid, c.Passable, c.InPolygon, c.InMask, c.Usable())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printf(cmd, "%d of %d points usable\n", usable, len(checks))
	return nil
}
