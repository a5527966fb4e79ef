package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid defaults",
			config:  *DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "invalid level",
			config:  Config{Level: "loud", Format: TextFormat, Output: StderrOutput},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: InfoLevel, Format: "xml", Output: StderrOutput},
			wantErr: true,
		},
		{
			name:    "invalid output",
			config:  Config{Level: InfoLevel, Format: TextFormat, Output: "network"},
			wantErr: true,
		},
		{
			name:    "file output without path",
			config:  Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput},
			wantErr: true,
		},
		{
			name:    "file output with path",
			config:  Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput, File: "/tmp/test.log"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		log, err := NewLogger(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if log == nil {
			t.Fatal("expected a logger")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		if _, err := NewLogger(&Config{Level: "loud"}); err == nil {
			t.Error("expected error for invalid config")
		}
	})
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "run.log")

	log, err := NewLogger(&Config{
		Level:  InfoLevel,
		Format: JSONFormat,
		Output: FileOutput,
		File:   logFile,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.WithComponent("test").Info("hello from the test")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "hello from the test") {
		t.Errorf("log message missing from file: %s", content)
	}
	if !strings.Contains(content, `"component":"test"`) {
		t.Errorf("component field missing from JSON output: %s", content)
	}
}

func TestWithFieldChaining(t *testing.T) {
	log, err := NewLogger(DefaultConfig())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	// Chained derivations must be independent loggers, not mutations
	a := log.WithField("key", "a")
	b := log.WithField("key", "b")
	if a == nil || b == nil {
		t.Fatal("WithField returned nil")
	}

	withMany := log.WithFields(Fields{"one": 1, "two": 2}).WithComponent("chained")
	if withMany == nil {
		t.Fatal("chained derivation returned nil")
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	if original == nil {
		t.Fatal("global logger should be initialized")
	}

	replacement, err := NewLogger(DefaultConfig())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	SetGlobalLogger(replacement)
	if GetGlobalLogger() != replacement {
		t.Error("SetGlobalLogger did not take effect")
	}
}

func TestRunLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	log, err := NewLogger(&Config{
		Level:  DebugLevel,
		Format: JSONFormat,
		Output: FileOutput,
		File:   logFile,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	rl := NewRunLogger("property p1", log)
	rl.WithField("window", "2015-2025")
	rl.Phase("load", 1, 5)
	rl.Skipped("contract", "c9", "payment day must be between 1 and 31, got 0")
	rl.Failure(1, "Reconstruction completed with errors")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"Starting reconstruction run",
		`"phase":"load"`,
		`"step":"1/5"`,
		"Entity skipped",
		`"id":"c9"`,
		`"status":"failed"`,
		`"window":"2015-2025"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log output missing %q:\n%s", want, content)
		}
	}
}

func TestRunLoggerNilLoggerFallsBack(t *testing.T) {
	rl := NewRunLogger("batch", nil)
	if rl == nil {
		t.Fatal("expected a RunLogger")
	}
	rl.Success("done")
}
