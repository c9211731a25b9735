package pgstore

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	gj "github.com/twpayne/go-geom/encoding/geojson"
)

func newStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := New(mock, "public.market_layers")
	require.NoError(t, err)
	return store, mock
}

func polygonFeature(geoid string) *gj.Feature {
	p := geom.NewPolygon(geom.XY)
	p.MustSetCoords([][]geom.Coord{{
		{-77.5, 37.5}, {-77.4, 37.5}, {-77.4, 37.6}, {-77.5, 37.5},
	}})
	return &gj.Feature{
		Geometry: p,
		Properties: map[string]interface{}{
			"GEOID": geoid, "NAME": "Tract", "COUNTY_NAME": "Richmond City",
		},
	}
}

func TestConnectInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pgstore: connect")
}

func TestNewRequiresQualifiedTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = New(mock, "market_layers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema-qualified")
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS public.market_layers").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLayer(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("DELETE FROM public.market_layers WHERE market").
		WithArgs("richmond", "qct").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCopyFrom(pgx.Identifier{"public", "market_layers"}, layerColumns).
		WillReturnResult(2)

	fc := &gj.FeatureCollection{Features: []*gj.Feature{
		polygonFeature("51760000101"),
		polygonFeature("51760000102"),
		{Properties: map[string]interface{}{"GEOID": "no-geom"}},
	}}

	n, err := store.ReplaceLayer(context.Background(), "richmond", "qct", fc)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLayerEmpty(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("DELETE FROM public.market_layers WHERE market").
		WithArgs("richmond", "streets").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	n, err := store.ReplaceLayer(context.Background(), "richmond", "streets", &gj.FeatureCollection{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
