// Package pgstore bulk-loads prepared map layers into a shared PostGIS
// table so field teams with a spatial database can query them directly.
package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	gj "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/emg-field-ops/fieldmap/internal/resilience"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Connect opens a pgx pool against databaseURL, retrying the initial
// ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "pgstore: connect")
	}
	ping := func(ctx context.Context) error { return pool.Ping(ctx) }
	if err := resilience.Do(ctx, resilience.DefaultPolicy(), "postgres ping", ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "pgstore: ping")
	}
	return pool, nil
}

var layerColumns = []string{"id", "market", "layer", "geoid", "name", "county_name", "properties", "geom"}

// Store writes layers into one schema-qualified table.
type Store struct {
	pool   Pool
	schema string
	table  string
}

// New builds a store for a "schema.table" target.
func New(pool Pool, qualified string) (*Store, error) {
	parts := strings.Split(qualified, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, eris.Errorf("pgstore: table %q must be schema-qualified", qualified)
	}
	return &Store{pool: pool, schema: parts[0], table: parts[1]}, nil
}

// EnsureSchema creates the layer table and its spatial index if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
    id          UUID PRIMARY KEY,
    market      TEXT NOT NULL,
    layer       TEXT NOT NULL,
    geoid       TEXT,
    name        TEXT,
    county_name TEXT,
    properties  JSONB,
    geom        geometry(Geometry, 4326) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[2]s_market_layer ON %[1]s.%[2]s (market, layer);
CREATE INDEX IF NOT EXISTS idx_%[2]s_geom ON %[1]s.%[2]s USING GIST (geom);
`, s.schema, s.table)

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return eris.Wrapf(err, "pgstore: ensure schema %s.%s", s.schema, s.table)
	}
	return nil
}

// ReplaceLayer swaps in the features of one market layer: delete the
// previous rows, then COPY the new ones.
func (s *Store) ReplaceLayer(ctx context.Context, market, layerName string, fc *gj.FeatureCollection) (int64, error) {
	del := fmt.Sprintf("DELETE FROM %s.%s WHERE market = $1 AND layer = $2", s.schema, s.table)
	if _, err := s.pool.Exec(ctx, del, market, layerName); err != nil {
		return 0, eris.Wrapf(err, "pgstore: delete %s/%s", market, layerName)
	}

	rows := make([][]any, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		g, err := geom.SetSRID(f.Geometry, 4326)
		if err != nil {
			return 0, eris.Wrap(err, "pgstore: set srid")
		}
		wkbData, err := ewkb.Marshal(g, ewkb.NDR)
		if err != nil {
			return 0, eris.Wrap(err, "pgstore: encode ewkb")
		}

		rows = append(rows, []any{
			uuid.New(),
			market,
			layerName,
			stringProp(f, "GEOID"),
			stringProp(f, "NAME"),
			stringProp(f, "COUNTY_NAME"),
			f.Properties,
			wkbData,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{s.schema, s.table}, layerColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "pgstore: COPY INTO %s.%s", s.schema, s.table)
	}
	return n, nil
}

func stringProp(f *gj.Feature, name string) any {
	if v, ok := f.Properties[name].(string); ok && v != "" {
		return v
	}
	return nil
}
