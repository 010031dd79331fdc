package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Warning is a non-fatal condition surfaced alongside a finished run
// (dropped clump-only columns, sigma-clip non-convergence, and similar).
// Unlike the typed errors in errors.go, a Warning never aborts Run.
type Warning struct {
	ObjectID int64
	Message  string
}

func (w Warning) String() string {
	if w.ObjectID == 0 {
		return w.Message
	}
	return fmt.Sprintf("object %d: %s", w.ObjectID, w.Message)
}

// WarningSink collects Warnings from concurrent workers behind a mutex,
// mirroring the teacher's mutex-guarded JobManager map.
type WarningSink struct {
	mu       sync.Mutex
	warnings []Warning
}

func (s *WarningSink) Add(objectID int64, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{ObjectID: objectID, Message: fmt.Sprintf(format, args...)})
}

func (s *WarningSink) All() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// DiagnosticsConfig controls optional rotating-file logging for a run,
// separate from the process-wide slog handler, for deployments that want
// one log file per catalog run.
type DiagnosticsConfig struct {
	Enabled    bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewDiagnosticsLogger returns a slog.Logger writing to a lumberjack
// rotating file when cfg.Enabled, or the default slog handler otherwise.
func NewDiagnosticsLogger(cfg DiagnosticsConfig) *slog.Logger {
	if !cfg.Enabled {
		return slog.Default()
	}
	writer := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return slog.New(slog.NewJSONHandler(writer, nil))
}
