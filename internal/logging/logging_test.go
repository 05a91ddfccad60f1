package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		name    string
		opts    Options
		enabled zapcore.Level
		hidden  zapcore.Level
	}{
		{"default is info", Options{}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"explicit warn", Options{Level: "warn"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{"verbose wins", Options{Level: "error", Verbose: true}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tc.enabled) {
				t.Errorf("level %s disabled", tc.enabled)
			}
			if logger.Core().Enabled(tc.hidden) {
				t.Errorf("level %s enabled", tc.hidden)
			}
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatal("New() accepted an unknown level")
	}
}

func TestNew_OutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campusmap.log")
	logger, err := New(Options{OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("log file = %q", data)
	}
}
