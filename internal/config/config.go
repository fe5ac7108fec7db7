// Package config handles lcpnet configuration loading and management.
package config

import "time"

// Config holds all run settings.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Routing   RoutingConfig   `yaml:"routing"`
	Tiling    TilingConfig    `yaml:"tiling"`
	Execution ExecutionConfig `yaml:"execution"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InputConfig holds input data locations.
type InputConfig struct {
	CostRaster string   `yaml:"cost_raster"` // .flt (+.hdr) or .asc
	Points     string   `yaml:"points"`      // point shapefile
	IDField    string   `yaml:"id_field"`
	Mask       string   `yaml:"mask"` // optional polygon shapefile
	OriginID   int      `yaml:"origin_id"`
	NoData     *float64 `yaml:"nodata"` // overrides the header NODATA value
}

// RoutingConfig holds hierarchical search settings.
type RoutingConfig struct {
	DownsamplingFactors  []int   `yaml:"downsampling_factors"`
	CorridorBufferPixels int     `yaml:"corridor_buffer_pixels"`
	HeuristicWeight      float64 `yaml:"heuristic_weight"`
	Heuristic            string  `yaml:"heuristic"`  // geometric | admissible
	Resampling           string  `yaml:"resampling"` // stride | average
	// FullMaskFallback is nil when unset; see Config.Fallback.
	FullMaskFallback     *bool   `yaml:"full_mask_fallback,omitempty"`
}

// TilingConfig holds tile partition settings.
type TilingConfig struct {
	TileSize    int `yaml:"tile_size"`
	NodeSpacing int `yaml:"node_spacing"`
	EdgeBuffer  int `yaml:"edge_buffer"`
}

// ExecutionConfig holds worker and output settings.
type ExecutionConfig struct {
	Workers         int           `yaml:"workers"` // 0 = NumCPU-1
	OutputDir       string        `yaml:"output_dir"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	Fresh           bool          `yaml:"fresh"` // ignore previous sessions
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			IDField: "id",
		},
		Routing: RoutingConfig{
			DownsamplingFactors:  []int{32, 20, 10},
			CorridorBufferPixels: 150,
			HeuristicWeight:      1.0,
			Heuristic:            "geometric",
			Resampling:           "stride",
		},
		Tiling: TilingConfig{
			TileSize:    2000,
			NodeSpacing: 200,
			EdgeBuffer:  0,
		},
		Execution: ExecutionConfig{
			Workers:         0,
			OutputDir:       "output",
			MonitorInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
