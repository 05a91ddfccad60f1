package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"campusmap/internal/models"
	"campusmap/internal/storage"
	"campusmap/pkg/buildings"
)

// HTTPSource is the default source: the public buildings feed.
type HTTPSource struct {
	client *buildings.Client
}

func NewHTTPSource(client *buildings.Client) *HTTPSource {
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Name() string { return s.client.Endpoint() }

func (s *HTTPSource) Fetch(ctx context.Context) ([]models.Building, error) {
	return s.client.FetchBuildings(ctx)
}

// SourceConfig carries what OpenSource needs beyond the location itself.
type SourceConfig struct {
	HTTPClient *http.Client
	UserAgent  string
	S3         storage.S3Config
}

// OpenSource picks a Source by URL scheme:
//
//	http(s)://host/path        buildings feed
//	s3://bucket/key            JSON array stored in an S3-compatible bucket
//	postgres(ql)://...?table=t rows of a buildings table
func OpenSource(location string, cfg SourceConfig) (Source, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse source %q: %w", location, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		opts := []buildings.Option{buildings.WithUserAgent(cfg.UserAgent)}
		if cfg.HTTPClient != nil {
			opts = append(opts, buildings.WithHTTPClient(cfg.HTTPClient))
		}
		return NewHTTPSource(buildings.NewClient(location, opts...)), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 source needs s3://bucket/key, got %q", location)
		}
		svc, err := storage.NewS3Service(cfg.S3)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Source(svc, u.Host, key), nil
	case "postgres", "postgresql":
		q := u.Query()
		table := q.Get("table")
		q.Del("table")
		u.RawQuery = q.Encode()
		return storage.NewPostgresSource(u.String(), table)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}
