package tigerweb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tractBody(geoid string) string {
	return fmt.Sprintf(`{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"GEOID": "%s", "NAME": "Census Tract 1"},
      "geometry": {"type": "Polygon", "coordinates": [[[-77.5,37.5],[-77.4,37.5],[-77.4,37.6],[-77.5,37.5]]]}
    }
  ]
}`, geoid)
}

func newTestClient(baseURL string) *Client {
	c := NewClient(Options{BaseURL: baseURL, Rate: 1000, Burst: 1000})
	c.retry.BaseDelay = time.Millisecond
	c.retry.MaxDelay = 2 * time.Millisecond
	return c
}

func TestQueryTracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8/query", r.URL.Path)
		assert.Equal(t, "STATE='51' AND COUNTY='760'", r.URL.Query().Get("where"))
		assert.Equal(t, "GEOID,NAME,STATE,COUNTY,CENTLAT,CENTLON,AREALAND", r.URL.Query().Get("outFields"))
		assert.Equal(t, "geojson", r.URL.Query().Get("f"))
		fmt.Fprint(w, tractBody("51760000101"))
	}))
	defer srv.Close()

	fc, err := newTestClient(srv.URL).QueryTracts(context.Background(), "51", "760")
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "51760000101", fc.Features[0].Properties["GEOID"])
}

func TestQueryTractsRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, tractBody("51760000101"))
	}))
	defer srv.Close()

	fc, err := newTestClient(srv.URL).QueryTracts(context.Background(), "51", "760")
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryTractsPermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).QueryTracts(context.Background(), "51", "760")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseResponseAPIError(t *testing.T) {
	body := `{"error": {"code": 400, "message": "Invalid query"}}`
	_, err := ParseResponse([]byte(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error 400")
	assert.Contains(t, err.Error(), "Invalid query")
}

type mapCache struct {
	data map[string][]byte
	gets int
	puts int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (m *mapCache) Get(key string) ([]byte, bool, error) {
	m.gets++
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *mapCache) Put(key string, data []byte) error {
	m.puts++
	m.data[key] = data
	return nil
}

func TestFetchCounties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		where := r.URL.Query().Get("where")
		switch {
		case where == "STATE='51' AND COUNTY='760'":
			fmt.Fprint(w, tractBody("51760000101"))
		case where == "STATE='51' AND COUNTY='710'":
			fmt.Fprint(w, tractBody("51710000100"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewFetcher(newTestClient(srv.URL), nil, 2)
	f.CountyName = func(fips string) (string, error) {
		if fips == "51760" {
			return "Richmond City", nil
		}
		return "Norfolk", nil
	}

	// The failing county ("999") is skipped, not fatal
	fc, err := f.FetchCounties(context.Background(), "51", []string{"710", "760", "999"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	// Merged in county order, tagged with county names
	assert.Equal(t, "51710000100", fc.Features[0].Properties["GEOID"])
	assert.Equal(t, "Norfolk", fc.Features[0].Properties["COUNTY_NAME"])
	assert.Equal(t, "Richmond City", fc.Features[1].Properties["COUNTY_NAME"])
}

func TestFetchCountiesAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(newTestClient(srv.URL), nil, 2)
	_, err := f.FetchCounties(context.Background(), "51", []string{"710", "760"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tract data fetched")
}

func TestFetchCountiesUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, tractBody("51760000101"))
	}))
	defer srv.Close()

	cache := newMapCache()
	f := NewFetcher(newTestClient(srv.URL), cache, 1)

	_, err := f.FetchCounties(context.Background(), "51", []string{"760"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, cache.puts)

	// Second run is served from cache
	_, err = f.FetchCounties(context.Background(), "51", []string{"760"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
