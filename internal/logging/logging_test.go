package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
		verbose.Store(false)
	})
}

func TestAttachFile_WritesToLogDir(t *testing.T) {
	restoreLogger(t)
	dir := filepath.Join(t.TempDir(), "logs")

	Init(false)
	closer, err := AttachFile(dir)
	if err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}
	log.Info().Msg("session segmented")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "session segmented") {
		t.Errorf("log file = %q, want the logged message", data)
	}
}

func TestAttachFile_UnwritableDir(t *testing.T) {
	restoreLogger(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := AttachFile(filepath.Join(blocker, "logs")); err == nil {
		t.Error("AttachFile() error = nil, want error when the directory cannot be created")
	}
}

func TestSetDebug(t *testing.T) {
	restoreLogger(t)

	Init(false)
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Errorf("level after Init(false) = %v, want info", got)
	}
	SetDebug(true)
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("level after SetDebug(true) = %v, want debug", got)
	}
	SetDebug(false)
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Errorf("level after SetDebug(false) = %v, want info", got)
	}

	Init(true)
	SetDebug(false)
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("verbose level after SetDebug(false) = %v, want debug", got)
	}
}
