package storage

import (
	"context"
	"fmt"
	"regexp"

	"campusmap/internal/models"

	"github.com/jackc/pgx/v5"
)

const defaultTable = "buildings"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

// connectFunc is swapped in tests.
var connectFunc = func(ctx context.Context, dsn string) (querier, error) {
	return pgx.Connect(ctx, dsn)
}

// PostgresSource reads the building list from a table with the columns
// id, name, latitude, longitude, address and phone_num. Rows come back in id
// order, which is taken to be the feed order.
type PostgresSource struct {
	dsn   string
	table string
}

func NewPostgresSource(dsn, table string) (*PostgresSource, error) {
	if table == "" {
		table = defaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	return &PostgresSource{dsn: dsn, table: table}, nil
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

func (s *PostgresSource) query() string {
	return fmt.Sprintf(`SELECT name, latitude::text, longitude::text, coalesce(address, ''), coalesce(phone_num, '') FROM %s ORDER BY id`, s.table)
}

// Fetch opens one connection, runs one query and closes the connection.
func (s *PostgresSource) Fetch(ctx context.Context) ([]models.Building, error) {
	conn, err := connectFunc(ctx, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer func() { _ = conn.Close(context.WithoutCancel(ctx)) }()

	rows, err := conn.Query(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("select buildings: %w", err)
	}
	defer rows.Close()

	records := make([]models.Building, 0)
	for rows.Next() {
		var (
			b        models.Building
			lat, lon *string
		)
		if err := rows.Scan(&b.Name, &lat, &lon, &b.Address, &b.PhoneNum); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		if lat != nil {
			b.Latitude = models.Degree(*lat)
		}
		if lon != nil {
			b.Longitude = models.Degree(*lon)
		}
		records = append(records, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buildings: %w", err)
	}
	return records, nil
}
