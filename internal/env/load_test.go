package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadEnv_FileDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "CAMPUSMAP_TEST_FROM_FILE=file\nCAMPUSMAP_TEST_PRESET=file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAMPUSMAP_TEST_PRESET", "process")
	t.Cleanup(func() { os.Unsetenv("CAMPUSMAP_TEST_FROM_FILE") })

	LoadEnv(zap.NewNop(), path)

	if got := os.Getenv("CAMPUSMAP_TEST_FROM_FILE"); got != "file" {
		t.Errorf("CAMPUSMAP_TEST_FROM_FILE = %q; want %q", got, "file")
	}
	if got := os.Getenv("CAMPUSMAP_TEST_PRESET"); got != "process" {
		t.Errorf("CAMPUSMAP_TEST_PRESET = %q; want %q", got, "process")
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	LoadEnv(zap.NewNop(), filepath.Join(t.TempDir(), "missing.env"))
}

func TestGetters(t *testing.T) {
	t.Setenv("CAMPUSMAP_TEST_FLOAT", "33.5")
	t.Setenv("CAMPUSMAP_TEST_INT", "15")
	t.Setenv("CAMPUSMAP_TEST_BOOL", "true")
	t.Setenv("CAMPUSMAP_TEST_DUR", "900ms")
	t.Setenv("CAMPUSMAP_TEST_EMPTY", "")

	if got := GetEnv("CAMPUSMAP_TEST_EMPTY", "def"); got != "def" {
		t.Errorf("GetEnv(empty) = %q; want def", got)
	}
	if got, err := GetFloat("CAMPUSMAP_TEST_FLOAT", 0); err != nil || got != 33.5 {
		t.Errorf("GetFloat = %v, %v", got, err)
	}
	if got, err := GetInt("CAMPUSMAP_TEST_INT", 0); err != nil || got != 15 {
		t.Errorf("GetInt = %v, %v", got, err)
	}
	if got, err := GetBool("CAMPUSMAP_TEST_BOOL", false); err != nil || !got {
		t.Errorf("GetBool = %v, %v", got, err)
	}
	if got, err := GetDuration("CAMPUSMAP_TEST_DUR", 0); err != nil || got != 900*time.Millisecond {
		t.Errorf("GetDuration = %v, %v", got, err)
	}
	if got, err := GetInt("CAMPUSMAP_TEST_UNSET", 7); err != nil || got != 7 {
		t.Errorf("GetInt(unset) = %v, %v", got, err)
	}

	t.Setenv("CAMPUSMAP_TEST_INT", "fifteen")
	if _, err := GetInt("CAMPUSMAP_TEST_INT", 0); err == nil {
		t.Error("GetInt accepted a non-number")
	}
}
