package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Overrides holds command-line values that take priority over the file.
// Only flags the user actually set are applied.
type Overrides struct {
	fs *pflag.FlagSet

	debug       bool
	costRaster  string
	points      string
	idField     string
	mask        string
	originID    int
	factors     []int
	buffer      int
	weight      float64
	heuristic   string
	resampling  string
	fallback    bool
	tileSize    int
	nodeSpacing int
	edgeBuffer  int
	workers     int
	outputDir   string
	interval    time.Duration
	fresh       bool
	logLevel    string
	logFile     string
}

// Register adds the override flags to fs.
func (o *Overrides) Register(fs *pflag.FlagSet) {
	o.fs = fs

	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&o.costRaster, "cost-raster", "", "Cost raster (.flt or .asc)")
	fs.StringVar(&o.points, "points", "", "Point shapefile")
	fs.StringVar(&o.idField, "id-field", "", "Point id attribute")
	fs.StringVar(&o.mask, "mask", "", "Mask polygon shapefile")
	fs.IntVar(&o.originID, "origin", 0, "Origin point id")
	fs.IntSliceVar(&o.factors, "factors", nil, "Downsampling factors, coarse to fine")
	fs.IntVar(&o.buffer, "buffer", 0, "Corridor buffer radius in pixels")
	fs.Float64Var(&o.weight, "weight", 0, "Heuristic weight")
	fs.StringVar(&o.heuristic, "heuristic", "", "Heuristic: geometric or admissible")
	fs.StringVar(&o.resampling, "resampling", "", "Coarse grid resampling: stride or average")
	fs.BoolVar(&o.fallback, "full-mask-fallback", false, "Search the full mask when the corridor search fails")
	fs.IntVar(&o.tileSize, "tile-size", 0, "Tile size in pixels")
	fs.IntVar(&o.nodeSpacing, "node-spacing", 0, "Border node spacing in pixels")
	fs.IntVar(&o.edgeBuffer, "edge-buffer", 0, "Tile edge buffer in pixels")
	fs.IntVarP(&o.workers, "workers", "j", 0, "Worker count (0 = NumCPU-1)")
	fs.StringVarP(&o.outputDir, "output", "o", "", "Output directory")
	fs.DurationVar(&o.interval, "monitor-interval", 0, "Resource sampling interval")
	fs.BoolVar(&o.fresh, "fresh", false, "Start a new session and ignore previous ledgers")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level")
	fs.StringVar(&o.logFile, "log-file", "", "Log file path")
}

// Changed reports whether the named flag was set on the command line.
func (o *Overrides) Changed(name string) bool {
	if o.fs == nil {
		return false
	}
	f := o.fs.Lookup(name)
	return f != nil && f.Changed
}

// Apply applies the flags set on the command line to cfg.
func (o *Overrides) Apply(cfg *Config) {
	if o.Changed("cost-raster") {
		cfg.Input.CostRaster = o.costRaster
	}
	if o.Changed("points") {
		cfg.Input.Points = o.points
	}
	if o.Changed("id-field") {
		cfg.Input.IDField = o.idField
	}
	if o.Changed("mask") {
		cfg.Input.Mask = o.mask
	}
	if o.Changed("origin") {
		cfg.Input.OriginID = o.originID
	}
	if o.Changed("factors") {
		cfg.Routing.DownsamplingFactors = o.factors
	}
	if o.Changed("buffer") {
		cfg.Routing.CorridorBufferPixels = o.buffer
	}
	if o.Changed("weight") {
		cfg.Routing.HeuristicWeight = o.weight
	}
	if o.Changed("heuristic") {
		cfg.Routing.Heuristic = o.heuristic
	}
	if o.Changed("resampling") {
		cfg.Routing.Resampling = o.resampling
	}
	if o.Changed("full-mask-fallback") {
		fallback := o.fallback
		cfg.Routing.FullMaskFallback = &fallback
	}
	if o.Changed("tile-size") {
		cfg.Tiling.TileSize = o.tileSize
	}
	if o.Changed("node-spacing") {
		cfg.Tiling.NodeSpacing = o.nodeSpacing
	}
	if o.Changed("edge-buffer") {
		cfg.Tiling.EdgeBuffer = o.edgeBuffer
	}
	if o.Changed("workers") {
		cfg.Execution.Workers = o.workers
	}
	if o.Changed("output") {
		cfg.Execution.OutputDir = o.outputDir
	}
	if o.Changed("monitor-interval") {
		cfg.Execution.MonitorInterval = o.interval
	}
	if o.Changed("fresh") {
		cfg.Execution.Fresh = o.fresh
	}
	if o.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if o.Changed("log-file") {
		cfg.Logging.LogFile = o.logFile
	}
	if o.debug {
		cfg.Logging.Level = "debug"
	}
}
