// Package session manages run directories and the completion ledger used
// to resume interrupted runs.
//
// Every run writes into a directory named session_<yyyymmdd_hhmmss> under
// the output directory. The ledger inside it has one JSON line per
// finished tile; only the orchestrator's coordinating goroutine writes it.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DirPrefix  = "session_"
	LedgerFile = "ledger.jsonl"

	timeLayout = "20060102_150405"
)

// Plan describes the session a run will write into.
type Plan struct {
	Dir       string          // session directory for this run
	Resumed   bool            // Dir is an existing, incomplete session
	Previous  string          // latest prior session with a ledger, if any
	Completed map[string]bool // tiles already completed in Previous
	Remaining []string        // task ids still to run, in input order
}

// Done reports whether every task is already completed.
func (p *Plan) Done() bool {
	return len(p.Remaining) == 0
}

// NewPlan inspects baseDir and decides where this run writes.
//
// The latest session with a ledger is resumed when any of taskIDs is not
// completed there. When all are completed, or there is no prior session, a
// new session name is allocated; completed tiles are still skipped. fresh
// ignores prior sessions entirely. The directory is not created here; see
// Create.
func NewPlan(baseDir string, taskIDs []string, fresh bool, now time.Time, log *zap.Logger) (*Plan, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Plan{Completed: make(map[string]bool)}

	if !fresh {
		prev, err := Latest(baseDir)
		if err != nil {
			return nil, err
		}
		if prev != "" {
			completed, err := ReadLedger(filepath.Join(prev, LedgerFile))
			if err != nil {
				return nil, err
			}
			p.Previous, p.Completed = prev, completed
		}
	}

	for _, id := range taskIDs {
		if !p.Completed[id] {
			p.Remaining = append(p.Remaining, id)
		}
	}

	switch {
	case p.Previous != "" && !p.Done():
		p.Dir, p.Resumed = p.Previous, true
		log.Info("resuming session",
			zap.String("dir", p.Dir),
			zap.Int("completed", len(taskIDs)-len(p.Remaining)),
			zap.Int("remaining", len(p.Remaining)))
	default:
		dir, err := newDirName(baseDir, now)
		if err != nil {
			return nil, err
		}
		p.Dir = dir
		if p.Previous != "" {
			log.Info("latest session is complete", zap.String("dir", p.Previous))
		}
		log.Info("new session", zap.String("dir", p.Dir), zap.Int("tasks", len(p.Remaining)))
	}
	return p, nil
}

// Create makes the session directory.
func (p *Plan) Create() error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	return nil
}

// Latest returns the lexicographically latest session directory under
// baseDir that holds a ledger, or "" when there is none.
func Latest(baseDir string) (string, error) {
	entries, err := os.ReadDir(baseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("listing sessions: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), DirPrefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for i := len(names) - 1; i >= 0; i-- {
		dir := filepath.Join(baseDir, names[i])
		if _, err := os.Stat(filepath.Join(dir, LedgerFile)); err == nil {
			return dir, nil
		}
	}
	return "", nil
}

// newDirName returns an unused session directory name for now.
func newDirName(baseDir string, now time.Time) (string, error) {
	base := filepath.Join(baseDir, DirPrefix+now.Format(timeLayout))
	dir := base
	for n := 2; ; n++ {
		_, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			return dir, nil
		}
		if err != nil {
			return "", err
		}
		dir = fmt.Sprintf("%s_%d", base, n)
	}
}
