package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"geotagger/internal/config"
)

func TestInitCreatesLogFileAndSetsDefault(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "geotagger.log")

	cleanup, err := Init(config.LogSettings{Path: logPath, Level: "DEBUG"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}

	slog.Info("test message", "k", "v")
	if GlobalLogCapture.LastLine() == "" {
		t.Error("expected GlobalLogCapture to have captured the info log line")
	}
}

func TestInitWithEmptyPathLogsToStdoutOnly(t *testing.T) {
	cleanup, err := Init(config.LogSettings{Path: "", Level: "INFO"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()
}

func TestRotatePathsPreservesPriorLogAsOld(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "geotagger.log")
	if err := os.WriteFile(logPath, []byte("run one\n"), 0o644); err != nil {
		t.Fatalf("failed to seed log file: %v", err)
	}

	cleanup, err := Init(config.LogSettings{Path: logPath, Level: "INFO"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	old, err := os.ReadFile(logPath + ".old")
	if err != nil {
		t.Fatalf("expected rotated .old file: %v", err)
	}
	if string(old) != "run one\n" {
		t.Errorf("expected rotated file to preserve prior contents, got %q", string(old))
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if parseLevel("bogus") != slog.LevelInfo {
		t.Error("expected unrecognized level string to default to INFO")
	}
	if parseLevel("error") != slog.LevelError {
		t.Error("expected lowercase level names to parse")
	}
}

func TestLoadReportAccumulatesWarnings(t *testing.T) {
	report := NewLoadReport()
	report.Warn(LoadWarning{Source: "article-data", Line: 12, Detail: "missing namespace field"})
	report.Warn(LoadWarning{Source: "word-counts", Line: 40, Detail: "unknown article title"})

	if report.Count() != 2 {
		t.Fatalf("expected 2 warnings, got %d", report.Count())
	}
	warnings := report.Warnings()
	if warnings[0].Source != "article-data" || warnings[1].Line != 40 {
		t.Errorf("unexpected warning contents: %+v", warnings)
	}
}

func TestLoadReportEmptyByDefault(t *testing.T) {
	report := NewLoadReport()
	if report.Count() != 0 {
		t.Errorf("expected new report to have 0 warnings, got %d", report.Count())
	}
	if report.Warnings() != nil {
		t.Errorf("expected new report to return nil warnings, got %+v", report.Warnings())
	}
}
