package config

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/multierr"

	"github.com/lcpnet/lcpnet/internal/pathfinding"
	"github.com/lcpnet/lcpnet/internal/raster"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks value ranges and enum names. Input paths are checked by
// the commands that need them.
func (c *Config) Validate() error {
	var err error

	if len(c.Routing.DownsamplingFactors) == 0 {
		err = multierr.Append(err, invalid("routing.downsampling_factors is empty"))
	}
	for _, f := range c.Routing.DownsamplingFactors {
		if f < 1 {
			err = multierr.Append(err, invalid("downsampling factor %d must be >= 1", f))
		}
	}
	if c.Routing.CorridorBufferPixels < 0 {
		err = multierr.Append(err, invalid("routing.corridor_buffer_pixels must not be negative"))
	}
	if c.Routing.HeuristicWeight < 0 {
		err = multierr.Append(err, invalid("routing.heuristic_weight must not be negative"))
	}
	if _, e := pathfinding.ParseHeuristic(c.Routing.Heuristic); e != nil {
		err = multierr.Append(err, invalid("routing.heuristic: %v", e))
	}
	if _, e := raster.ParseResampling(c.Routing.Resampling); e != nil {
		err = multierr.Append(err, invalid("routing.resampling: %v", e))
	}

	if c.Tiling.TileSize <= 0 {
		err = multierr.Append(err, invalid("tiling.tile_size must be positive"))
	}
	if c.Tiling.NodeSpacing <= 0 {
		err = multierr.Append(err, invalid("tiling.node_spacing must be positive"))
	}
	if c.Tiling.EdgeBuffer < 0 {
		err = multierr.Append(err, invalid("tiling.edge_buffer must not be negative"))
	}

	if c.Execution.Workers < 0 {
		err = multierr.Append(err, invalid("execution.workers must not be negative"))
	}
	if c.Execution.OutputDir == "" {
		err = multierr.Append(err, invalid("execution.output_dir is empty"))
	}
	if c.Execution.MonitorInterval < 0 {
		err = multierr.Append(err, invalid("execution.monitor_interval must not be negative"))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		err = multierr.Append(err, invalid("logging.level %q", c.Logging.Level))
	}
	return err
}

// WorkerCount resolves execution.workers: 0 means NumCPU-1, at least 1.
func (c *Config) WorkerCount() int {
	if c.Execution.Workers > 0 {
		return c.Execution.Workers
	}
	return max(runtime.NumCPU()-1, 1)
}

// Fallback resolves routing.full_mask_fallback, returning def when neither
// the file nor the flags set it.
func (c *Config) Fallback(def bool) bool {
	if c.Routing.FullMaskFallback == nil {
		return def
	}
	return *c.Routing.FullMaskFallback
}

// HeuristicKind returns the parsed routing.heuristic.
func (c *Config) HeuristicKind() pathfinding.HeuristicKind {
	k, _ := pathfinding.ParseHeuristic(c.Routing.Heuristic)
	return k
}

// ResamplingMethod returns the parsed routing.resampling.
func (c *Config) ResamplingMethod() raster.Resampling {
	m, _ := raster.ParseResampling(c.Routing.Resampling)
	return m
}
