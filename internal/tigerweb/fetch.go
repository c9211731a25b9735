package tigerweb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ResponseCache stores raw per-county responses between runs.
type ResponseCache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
}

// Fetcher pulls tract boundaries for many counties concurrently,
// tagging each tract with its county name.
type Fetcher struct {
	client      *Client
	cache       ResponseCache
	concurrency int

	// CountyName resolves a 5-digit FIPS to a display name; tracts in
	// unresolvable counties go untagged.
	CountyName func(fips string) (string, error)
}

// NewFetcher builds a fetcher. cache may be nil to fetch uncached.
func NewFetcher(client *Client, cache ResponseCache, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Fetcher{client: client, cache: cache, concurrency: concurrency}
}

// FetchCounties fetches tracts for every county code under stateFIPS
// and merges them into one collection. Individual county failures are
// logged and skipped; fetching nothing at all is an error.
func (f *Fetcher) FetchCounties(ctx context.Context, stateFIPS string, counties []string) (*geojson.FeatureCollection, error) {
	log := zap.L().With(zap.String("state", stateFIPS))

	var (
		mu      sync.Mutex
		byCty   = map[string]*geojson.FeatureCollection{}
		fetched int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, county := range counties {
		g.Go(func() error {
			fc, err := f.fetchOne(ctx, stateFIPS, county)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				log.Warn("county fetch failed, skipping",
					zap.String("county", county), zap.Error(err))
				return nil
			}
			f.tagCounty(fc, stateFIPS+county)

			mu.Lock()
			byCty[county] = fc
			fetched++
			mu.Unlock()

			log.Debug("fetched county tracts",
				zap.String("county", county), zap.Int("tracts", len(fc.Features)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fetched == 0 {
		return nil, eris.Errorf("tigerweb: no tract data fetched for any of %d counties", len(counties))
	}

	// Merge in county order for stable output
	codes := make([]string, 0, len(byCty))
	for c := range byCty {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	merged := &geojson.FeatureCollection{}
	for _, c := range codes {
		merged.Features = append(merged.Features, byCty[c].Features...)
	}

	log.Info("tract fetch complete",
		zap.Int("counties", fetched), zap.Int("tracts", len(merged.Features)))
	return merged, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, stateFIPS, county string) (*geojson.FeatureCollection, error) {
	key := fmt.Sprintf("tracts:%s:%s", stateFIPS, county)

	if f.cache != nil {
		if body, ok, err := f.cache.Get(key); err != nil {
			zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return ParseResponse(body)
		}
	}

	body, err := f.client.FetchTractsRaw(ctx, stateFIPS, county)
	if err != nil {
		return nil, err
	}
	fc, err := ParseResponse(body)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(key, body); err != nil {
			zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return fc, nil
}

func (f *Fetcher) tagCounty(fc *geojson.FeatureCollection, fips string) {
	if f.CountyName == nil {
		return
	}
	name, err := f.CountyName(fips)
	if err != nil {
		return
	}
	for _, feat := range fc.Features {
		if feat.Properties == nil {
			feat.Properties = map[string]interface{}{}
		}
		feat.Properties["COUNTY_NAME"] = name
	}
}
