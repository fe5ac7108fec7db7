package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/monitor"
	"github.com/lcpnet/lcpnet/internal/session"
	"github.com/lcpnet/lcpnet/internal/tiling"
	"github.com/lcpnet/lcpnet/internal/vector"
)

// NetworkFile is the merged network written into each session directory.
const NetworkFile = "network.shp"

// Runner executes tile tasks into a session directory.
type Runner struct {
	Env             *Env
	OutputDir       string
	Workers         int
	Fresh           bool
	MonitorInterval time.Duration

	// Sink returns the segment sink for a session directory. Defaults to a
	// shapefile writer.
	Sink func(dir string) Sink
	Now  func() time.Time
}

// Report summarises a run.
type Report struct {
	Dir       string
	Resumed   bool
	Tasks     int // tasks given to Run
	Skipped   int // already completed in the ledger
	Succeeded int
	Failed    int
	Paths     int
	Merge     vector.MergeResult
	Resources monitor.Summary
}

// Ran returns the number of tiles processed by this run.
func (r *Report) Ran() int { return r.Succeeded + r.Failed }

func (r *Runner) sinkFor(dir string) Sink {
	if r.Sink != nil {
		return r.Sink(dir)
	}
	return &vector.Writer{Dir: dir, CRS: r.Env.CRS}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run processes every task not yet completed in the latest session.
//
// Only this goroutine writes the ledger; workers hand their results back
// over a channel. Cancelling ctx stops dispatching further tiles while the
// running ones finish and are recorded. When every task is already
// completed nothing runs and the completed session is reported.
func (r *Runner) Run(ctx context.Context, tasks []tiling.Task) (rep *Report, err error) {
	log := r.Env.log()

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.Tile.ID
	}
	plan, err := session.NewPlan(r.OutputDir, ids, r.Fresh, r.now(), log)
	if err != nil {
		return nil, err
	}

	rep = &Report{Dir: plan.Dir, Resumed: plan.Resumed, Tasks: len(tasks), Skipped: len(tasks) - len(plan.Remaining)}
	if plan.Done() && plan.Previous != "" {
		log.Info("no tiles left to compute", zap.String("dir", plan.Previous))
		rep.Dir = plan.Previous
		return rep, nil
	}

	if err := plan.Create(); err != nil {
		return nil, err
	}
	ledger, err := session.OpenLedger(plan.Dir)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, ledger.Close()) }()

	remaining := make(map[string]bool, len(plan.Remaining))
	for _, id := range plan.Remaining {
		remaining[id] = true
	}
	var todo []tiling.Task
	for _, t := range tasks {
		if remaining[t.Tile.ID] {
			todo = append(todo, t)
		}
	}

	workers := max(r.Workers, 1)
	log.Info("processing tiles",
		zap.Int("tiles", len(todo)),
		zap.Int("skipped", rep.Skipped),
		zap.Int("workers", workers))

	mon := monitor.New(r.MonitorInterval, log)
	mon.Start()
	started := time.Now()

	sink := r.sinkFor(plan.Dir)
	results := make(chan TileResult)
	go func() {
		defer close(results)
		p := pool.New().WithMaxGoroutines(workers)
		for _, t := range todo {
			if ctx.Err() != nil {
				break
			}
			p.Go(func() {
				results <- ProcessTile(t, r.Env, sink)
			})
		}
		p.Wait()
	}()

	var ledgerErr error
	for res := range results {
		if res.Status == StatusSuccess {
			rep.Succeeded++
			rep.Paths += res.Paths
			ledgerErr = multierr.Append(ledgerErr, ledger.Completed(res.TileID, res.Paths,
				zap.Int("pairs", res.Pairs), zap.Int("faults", res.Faults), zap.Duration("elapsed", res.Duration)))
			log.Info("tile completed",
				zap.String("tile_id", res.TileID),
				zap.Int("paths", res.Paths),
				zap.Int("done", rep.Ran()),
				zap.Int("of", len(todo)))
			continue
		}
		rep.Failed++
		ledgerErr = multierr.Append(ledgerErr, ledger.Failed(res.TileID, res.Detail))
		log.Error("tile failed", zap.String("tile_id", res.TileID), zap.String("detail", res.Detail))
	}

	rep.Resources = mon.Stop()
	log.Info("parallel processing finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", rep.Failed))
	if rep.Resources.Samples > 0 {
		log.Info("resource summary", rep.Resources.Fields()...)
	}
	if ledgerErr != nil {
		return rep, fmt.Errorf("writing ledger: %w", ledgerErr)
	}

	var mergeErr error
	rep.Merge, mergeErr = vector.Merge(plan.Dir, "path_*.shp", filepath.Join(plan.Dir, NetworkFile), r.Env.CRS)
	switch {
	case errors.Is(mergeErr, vector.ErrNoSegments):
		log.Warn("no path segments to merge", zap.String("dir", plan.Dir))
	case mergeErr != nil:
		log.Warn("some segments could not be merged", zap.Error(mergeErr))
	default:
		log.Info("network merged",
			zap.String("file", filepath.Join(plan.Dir, NetworkFile)),
			zap.Int("segments", rep.Merge.Segments))
	}

	if ctx.Err() != nil {
		return rep, ctx.Err()
	}
	return rep, nil
}
