package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Ledger record messages.
const (
	MsgCompleted = "tile completed"
	MsgFailed    = "tile failed"
)

// Ledger appends tile outcomes as JSON lines. It is not safe for
// concurrent use.
type Ledger struct {
	file *os.File
	core zapcore.Core
	log  *zap.Logger
}

// OpenLedger opens the ledger in dir for appending.
func OpenLedger(dir string) (*Ledger, error) {
	f, err := os.OpenFile(filepath.Join(dir, LedgerFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel)
	return &Ledger{file: f, core: core, log: zap.New(core)}, nil
}

// Completed records a successful tile. The line is flushed to disk before
// Completed returns.
func (l *Ledger) Completed(tileID string, paths int, fields ...zap.Field) error {
	l.log.Info(MsgCompleted, append([]zap.Field{zap.String("tile_id", tileID), zap.Int("paths", paths)}, fields...)...)
	return l.core.Sync()
}

// Failed records a tile that could not be processed.
func (l *Ledger) Failed(tileID, detail string, fields ...zap.Field) error {
	l.log.Error(MsgFailed, append([]zap.Field{zap.String("tile_id", tileID), zap.String("detail", detail)}, fields...)...)
	return l.core.Sync()
}

// Close flushes and closes the ledger file.
func (l *Ledger) Close() error {
	return multierr.Append(l.core.Sync(), l.file.Close())
}

type record struct {
	Msg    string `json:"msg"`
	TileID string `json:"tile_id"`
}

// ReadLedger returns the ids of completed tiles. A missing ledger is empty.
// Lines that do not parse, such as a line truncated by a crash, are ignored.
func ReadLedger(path string) (map[string]bool, error) {
	completed := make(map[string]bool)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return completed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var rec record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		if rec.Msg == MsgCompleted && rec.TileID != "" {
			completed[rec.TileID] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return completed, nil
}
