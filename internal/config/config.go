// Package config collects runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"campusmap/internal/display"
	"campusmap/internal/env"
	"campusmap/internal/models"
	"campusmap/internal/storage"
	"campusmap/pkg/buildings"
)

const (
	DefaultUserAgent    = "campusmap/1.0"
	DefaultFetchTimeout = 15 * time.Second
	DefaultAddr         = ":8080"
	DefaultMetricsAddr  = ":9090"
	DefaultZoom         = 15
	DefaultKafkaTopic   = "campusmap.sessions"
)

// DefaultCenter is the Georgia Tech campus.
var DefaultCenter = models.Coordinates{Lat: 33.7768205, Lon: -84.4002898}

type Config struct {
	Source       string
	UserAgent    string
	FetchTimeout time.Duration
	Highlight    time.Duration

	Addr        string
	MetricsAddr string
	Center      models.Coordinates
	Zoom        int

	KafkaBroker string
	KafkaTopic  string

	S3 storage.S3Config

	LogLevel string
}

// FromEnv reads the configuration, falling back to the defaults for anything
// unset. Malformed values are errors.
func FromEnv() (Config, error) {
	cfg := Config{
		Source:      env.GetEnv("CAMPUSMAP_SOURCE", buildings.DefaultEndpoint),
		UserAgent:   env.GetEnv("CAMPUSMAP_USER_AGENT", DefaultUserAgent),
		Addr:        env.GetEnv("CAMPUSMAP_ADDR", DefaultAddr),
		MetricsAddr: env.GetEnv("CAMPUSMAP_METRICS_ADDR", DefaultMetricsAddr),
		KafkaBroker: env.GetEnv("KAFKA_BROKER", ""),
		KafkaTopic:  env.GetEnv("KAFKA_TOPIC", DefaultKafkaTopic),
		LogLevel:    env.GetEnv("LOG_LEVEL", "info"),
		S3: storage.S3Config{
			Endpoint:  env.GetEnv("MINIO_ENDPOINT", ""),
			AccessKey: env.GetEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: env.GetEnv("MINIO_SECRET_KEY", ""),
			Region:    env.GetEnv("MINIO_REGION", ""),
		},
	}

	var err error
	if cfg.FetchTimeout, err = env.GetDuration("CAMPUSMAP_FETCH_TIMEOUT", DefaultFetchTimeout); err != nil {
		return Config{}, fmt.Errorf("CAMPUSMAP_FETCH_TIMEOUT: %w", err)
	}
	if cfg.Highlight, err = env.GetDuration("CAMPUSMAP_HIGHLIGHT", display.DefaultHighlight); err != nil {
		return Config{}, fmt.Errorf("CAMPUSMAP_HIGHLIGHT: %w", err)
	}
	if cfg.Center.Lat, err = env.GetFloat("CAMPUSMAP_CENTER_LAT", DefaultCenter.Lat); err != nil {
		return Config{}, fmt.Errorf("CAMPUSMAP_CENTER_LAT: %w", err)
	}
	if cfg.Center.Lon, err = env.GetFloat("CAMPUSMAP_CENTER_LON", DefaultCenter.Lon); err != nil {
		return Config{}, fmt.Errorf("CAMPUSMAP_CENTER_LON: %w", err)
	}
	if cfg.Zoom, err = env.GetInt("CAMPUSMAP_ZOOM", DefaultZoom); err != nil {
		return Config{}, fmt.Errorf("CAMPUSMAP_ZOOM: %w", err)
	}
	if cfg.S3.UseSSL, err = env.GetBool("MINIO_USE_SSL", false); err != nil {
		return Config{}, fmt.Errorf("MINIO_USE_SSL: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Source == "":
		return errors.New("source is empty")
	case c.FetchTimeout <= 0:
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	case c.Highlight < 0:
		return fmt.Errorf("highlight duration must not be negative, got %s", c.Highlight)
	case !c.Center.Valid():
		return fmt.Errorf("map center %v is not a valid coordinate", c.Center)
	case c.Zoom < 0 || c.Zoom > 22:
		return fmt.Errorf("zoom %d out of range", c.Zoom)
	}
	return nil
}
