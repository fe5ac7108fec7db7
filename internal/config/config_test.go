package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/lcpnet/lcpnet/internal/pathfinding"
	"github.com/lcpnet/lcpnet/internal/raster"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if got := cfg.Routing.DownsamplingFactors; len(got) != 3 || got[0] != 32 || got[1] != 20 || got[2] != 10 {
		t.Errorf("expected factors [32 20 10], got %v", got)
	}
	if cfg.Routing.CorridorBufferPixels != 150 {
		t.Errorf("expected buffer 150, got %d", cfg.Routing.CorridorBufferPixels)
	}
	if cfg.Routing.HeuristicWeight != 1.0 {
		t.Errorf("expected weight 1.0, got %f", cfg.Routing.HeuristicWeight)
	}
	if cfg.Routing.FullMaskFallback != nil || cfg.Fallback(false) || !cfg.Fallback(true) {
		t.Error("expected full mask fallback to be unset by default")
	}
	if cfg.Tiling.TileSize != 2000 || cfg.Tiling.NodeSpacing != 200 || cfg.Tiling.EdgeBuffer != 0 {
		t.Errorf("unexpected tiling defaults %+v", cfg.Tiling)
	}
	if cfg.Execution.OutputDir != "output" {
		t.Errorf("expected output dir 'output', got %s", cfg.Execution.OutputDir)
	}
	if cfg.Execution.MonitorInterval != time.Second {
		t.Errorf("expected monitor interval 1s, got %v", cfg.Execution.MonitorInterval)
	}
	if cfg.Input.IDField != "id" {
		t.Errorf("expected id field 'id', got %s", cfg.Input.IDField)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lcpnet.yaml")

	yamlContent := `
input:
  cost_raster: data/cost.flt
  points: data/points.shp
  id_field: fid
  mask: data/mask.shp
  origin_id: 5
  nodata: -9999
routing:
  downsampling_factors: [16, 8]
  corridor_buffer_pixels: 40
  heuristic_weight: 1.5
  heuristic: admissible
  resampling: average
  full_mask_fallback: true
tiling:
  tile_size: 500
  node_spacing: 50
  edge_buffer: 5
execution:
  workers: 3
  output_dir: out
  monitor_interval: 250ms
  fresh: true
logging:
  level: debug
  log_file: run.log
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Input.CostRaster != "data/cost.flt" || cfg.Input.IDField != "fid" || cfg.Input.OriginID != 5 {
		t.Errorf("unexpected input %+v", cfg.Input)
	}
	if cfg.Input.NoData == nil || *cfg.Input.NoData != -9999 {
		t.Errorf("expected nodata override -9999, got %v", cfg.Input.NoData)
	}
	if got := cfg.Routing.DownsamplingFactors; len(got) != 2 || got[0] != 16 || got[1] != 8 {
		t.Errorf("expected factors [16 8], got %v", got)
	}
	if cfg.HeuristicKind() != pathfinding.HeuristicAdmissible {
		t.Errorf("expected admissible heuristic, got %v", cfg.HeuristicKind())
	}
	if cfg.ResamplingMethod() != raster.Average {
		t.Errorf("expected average resampling, got %v", cfg.ResamplingMethod())
	}
	if !cfg.Fallback(false) {
		t.Error("expected full mask fallback")
	}
	if cfg.Tiling != (TilingConfig{TileSize: 500, NodeSpacing: 50, EdgeBuffer: 5}) {
		t.Errorf("unexpected tiling %+v", cfg.Tiling)
	}
	if cfg.Execution.MonitorInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Execution.MonitorInterval)
	}
	if cfg.WorkerCount() != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.WorkerCount())
	}
	if cfg.Logging.LogFile != "run.log" {
		t.Errorf("expected log file 'run.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "routing:\n  corridor_buffer_pixels: not a number\n  invalid syntax here\n"},
		{"unknown key", "tiling:\n  tile_sise: 100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Tiling.TileSize != 2000 {
		t.Error("empty file should keep defaults")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(FileName, []byte("tiling:\n  tile_size: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find lcpnet.yaml in current directory")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no factors", func(c *Config) { c.Routing.DownsamplingFactors = nil }},
		{"zero factor", func(c *Config) { c.Routing.DownsamplingFactors = []int{4, 0} }},
		{"negative buffer", func(c *Config) { c.Routing.CorridorBufferPixels = -1 }},
		{"bad heuristic", func(c *Config) { c.Routing.Heuristic = "manhattan" }},
		{"bad resampling", func(c *Config) { c.Routing.Resampling = "bicubic" }},
		{"zero tile size", func(c *Config) { c.Tiling.TileSize = 0 }},
		{"zero spacing", func(c *Config) { c.Tiling.NodeSpacing = 0 }},
		{"negative edge buffer", func(c *Config) { c.Tiling.EdgeBuffer = -2 }},
		{"negative workers", func(c *Config) { c.Execution.Workers = -1 }},
		{"empty output", func(c *Config) { c.Execution.OutputDir = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestWorkerCount(t *testing.T) {
	cfg := Default()
	if cfg.WorkerCount() < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.WorkerCount())
	}
}

func TestOverrides(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "routing flags",
			args: []string{"--factors", "8,4", "--buffer", "12", "--heuristic", "admissible", "--full-mask-fallback"},
			verify: func(t *testing.T, cfg *Config) {
				if got := cfg.Routing.DownsamplingFactors; len(got) != 2 || got[0] != 8 || got[1] != 4 {
					t.Errorf("expected factors [8 4], got %v", got)
				}
				if cfg.Routing.CorridorBufferPixels != 12 {
					t.Errorf("expected buffer 12, got %d", cfg.Routing.CorridorBufferPixels)
				}
				if cfg.Routing.Heuristic != "admissible" || !cfg.Fallback(false) {
					t.Errorf("unexpected routing %+v", cfg.Routing)
				}
			},
		},
		{
			name: "execution shorthand",
			args: []string{"-j", "6", "-o", "/tmp/out", "--fresh"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Execution.Workers != 6 || cfg.Execution.OutputDir != "/tmp/out" || !cfg.Execution.Fresh {
					t.Errorf("unexpected execution %+v", cfg.Execution)
				}
			},
		},
		{
			name: "unset flags keep defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tiling.TileSize != 2000 || cfg.Routing.HeuristicWeight != 1.0 {
					t.Error("defaults were overwritten by zero flag values")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ov Overrides
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			ov.Register(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			cfg := Default()
			ov.Apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lcpnet.yaml")
	yamlContent := `
tiling:
  tile_size: 1600
  node_spacing: 90
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	var ov Overrides
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	ov.Register(fs)
	if err := fs.Parse([]string{"--tile-size", "1920"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath, &ov)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Tile size from the flag, spacing from the file.
	if cfg.Tiling.TileSize != 1920 {
		t.Errorf("expected tile size 1920 from flag, got %d", cfg.Tiling.TileSize)
	}
	if cfg.Tiling.NodeSpacing != 90 {
		t.Errorf("expected node spacing 90 from file, got %d", cfg.Tiling.NodeSpacing)
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		def     bool
		want    bool
	}{
		{name: "unset uses command default on", def: true, want: true},
		{name: "unset uses command default off", def: false, want: false},
		{name: "file off beats default on", content: "routing:\n  full_mask_fallback: false\n", def: true, want: false},
		{name: "file on beats default off", content: "routing:\n  full_mask_fallback: true\n", def: false, want: true},
		{name: "flag beats file", content: "routing:\n  full_mask_fallback: true\n", args: []string{"--full-mask-fallback=false"}, def: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "lcpnet.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			var ov Overrides
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			ov.Register(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(configPath, &ov)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if got := cfg.Fallback(tt.def); got != tt.want {
				t.Errorf("Fallback(%t) = %t, want %t", tt.def, got, tt.want)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lcpnet.yaml")
	if err := os.WriteFile(configPath, []byte("tiling:\n  tile_size: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lcpnet.yaml")
	cfg := Default()
	cfg.Input.OriginID = 42
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Input.OriginID != 42 || loaded.Execution.MonitorInterval != time.Second {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
