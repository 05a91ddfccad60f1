package config

import (
	"testing"
	"time"

	"campusmap/internal/display"
	"campusmap/pkg/buildings"

	"github.com/google/go-cmp/cmp"
)

var allKeys = []string{
	"CAMPUSMAP_SOURCE", "CAMPUSMAP_USER_AGENT", "CAMPUSMAP_FETCH_TIMEOUT",
	"CAMPUSMAP_HIGHLIGHT", "CAMPUSMAP_ADDR", "CAMPUSMAP_METRICS_ADDR",
	"CAMPUSMAP_CENTER_LAT", "CAMPUSMAP_CENTER_LON", "CAMPUSMAP_ZOOM",
	"KAFKA_BROKER", "KAFKA_TOPIC", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY", "MINIO_REGION", "MINIO_USE_SSL", "LOG_LEVEL",
}

// clearEnv blanks every variable; GetEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	want := Config{
		Source:       buildings.DefaultEndpoint,
		UserAgent:    DefaultUserAgent,
		FetchTimeout: DefaultFetchTimeout,
		Highlight:    display.DefaultHighlight,
		Addr:         DefaultAddr,
		MetricsAddr:  DefaultMetricsAddr,
		Center:       DefaultCenter,
		Zoom:         DefaultZoom,
		KafkaTopic:   DefaultKafkaTopic,
		LogLevel:     "info",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CAMPUSMAP_SOURCE", "s3://campus/buildings.json")
	t.Setenv("CAMPUSMAP_HIGHLIGHT", "0s")
	t.Setenv("CAMPUSMAP_ZOOM", "17")
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("MINIO_USE_SSL", "true")

	got, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if got.Source != "s3://campus/buildings.json" || got.Highlight != 0 || got.Zoom != 17 {
		t.Errorf("unexpected config %+v", got)
	}
	if got.KafkaBroker != "localhost:9092" || !got.S3.UseSSL {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "CAMPUSMAP_HIGHLIGHT", "soon"},
		{"negative highlight", "CAMPUSMAP_HIGHLIGHT", "-1s"},
		{"zero timeout", "CAMPUSMAP_FETCH_TIMEOUT", "0s"},
		{"bad latitude", "CAMPUSMAP_CENTER_LAT", "north"},
		{"zoom out of range", "CAMPUSMAP_ZOOM", "40"},
		{"bad bool", "MINIO_USE_SSL", "maybe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("FromEnv() with %s=%q succeeded", tc.key, tc.value)
			}
		})
	}
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := Config{Source: "x", FetchTimeout: time.Second, Center: DefaultCenter, Zoom: 1}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}
