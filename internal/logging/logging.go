// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the rotating log file inside the log directory.
const FileName = "ganbarometer.log"

var verbose atomic.Bool

// Init logs to stderr only, at debug level when verbose is set. Call
// AttachFile once the log directory is known.
func Init(isVerbose bool) {
	verbose.Store(isVerbose)
	SetDebug(false)
	log.Logger = newLogger(console(os.Stderr))
}

// AttachFile adds a rotating log file in dir next to stderr. The caller
// closes the returned logger on shutdown.
func AttachFile(dir string) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	// lumberjack opens lazily; fail now rather than on the first log line.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file %q is not writable: %w", path, err)
	}
	_ = f.Close()

	fileWriter := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    16, // megabytes
		MaxBackups: 8,
		MaxAge:     90, // days
		Compress:   true,
	}
	log.Logger = newLogger(zerolog.MultiLevelWriter(console(os.Stderr), fileWriter))
	log.Debug().Str("path", path).Msg("Logging to file")
	return fileWriter, nil
}

// SetDebug raises the global level to debug while on is true. The verbose
// flag given to Init keeps debug output on regardless.
func SetDebug(on bool) {
	level := zerolog.InfoLevel
	if on || verbose.Load() {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func console(out *os.File) zerolog.ConsoleWriter {
	isTerminal := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
