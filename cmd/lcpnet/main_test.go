package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeUniformASC writes an n x n grid of ones.
func writeUniformASC(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "ncols %d\nnrows %d\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n", n, n)
	row := strings.TrimSpace(strings.Repeat("1 ", n))
	for range n {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// Commands share the package-level flag state, so they run in sequence.
func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	writeUniformASC(t, "cost.asc", 20)

	common := []string{
		"--cost-raster", "cost.asc",
		"--tile-size", "10",
		"--node-spacing", "4",
		"--edge-buffer", "1",
		"--factors", "4,2",
		"--buffer", "4",
		"--workers", "2",
		"--output", "out",
		"--monitor-interval", "0s",
		"--log-level", "error",
	}

	t.Run("tasks", func(t *testing.T) {
		out, err := execute(t, append([]string{"tasks"}, common...)...)
		if err != nil {
			t.Fatalf("tasks: %v", err)
		}
		for _, want := range []string{"grid:  20 x 20", "tiles: 4 (4 with tasks)", "nodes: 16", "pairs: 24"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	var session string
	t.Run("run", func(t *testing.T) {
		out, err := execute(t, append([]string{"run"}, common...)...)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		session = strings.TrimSpace(out)
		if !strings.HasPrefix(filepath.Base(session), "session_") {
			t.Fatalf("unexpected session dir %q", session)
		}
		if _, err := os.Stat(filepath.Join(session, "network.shp")); err != nil {
			t.Errorf("network not merged: %v", err)
		}
		if _, err := os.Stat(filepath.Join(session, "ledger.jsonl")); err != nil {
			t.Errorf("ledger missing: %v", err)
		}
	})

	t.Run("rerun reuses completed session", func(t *testing.T) {
		out, err := execute(t, append([]string{"run"}, common...)...)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if got := strings.TrimSpace(out); got != session {
			t.Errorf("second run dir = %q, want %q", got, session)
		}
		entries, err := filepath.Glob(filepath.Join("out", "session_*"))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("session dirs = %v, want one", entries)
		}
	})

	t.Run("config init", func(t *testing.T) {
		if _, err := execute(t, "config", "init"); err != nil {
			t.Fatalf("config init: %v", err)
		}
		if _, err := os.Stat("lcpnet.yaml"); err != nil {
			t.Fatalf("config not written: %v", err)
		}
		if _, err := execute(t, "config", "init"); err == nil {
			t.Error("expected an error when the file exists")
		}
		if _, err := execute(t, "config", "init", "--force"); err != nil {
			t.Errorf("config init --force: %v", err)
		}
	})

	t.Run("config show", func(t *testing.T) {
		out, err := execute(t, "config", "show")
		if err != nil {
			t.Fatalf("config show: %v", err)
		}
		if !strings.Contains(out, "tile_size: 10") {
			t.Errorf("effective config missing tile size:\n%s", out)
		}
	})

	t.Run("run without raster", func(t *testing.T) {
		if _, err := execute(t, "run", "--cost-raster", ""); err == nil {
			t.Error("expected an error without a cost raster")
		}
	})
}
