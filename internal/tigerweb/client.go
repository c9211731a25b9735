// Package tigerweb fetches census tract boundaries from the Census
// TIGERweb ArcGIS REST API.
package tigerweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/time/rate"

	"github.com/emg-field-ops/fieldmap/internal/resilience"
)

// Layer 8 of the current TIGERweb map service is census tracts.
const tractLayer = "8"

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Rate      float64
	Burst     int
}

// Client is a rate-limited TIGERweb API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	retry      resilience.Policy
}

// NewClient builds a client from opts, filling unset values with
// defaults that stay polite to the public API.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Rate <= 0 {
		opts.Rate = 4
	}
	if opts.Burst <= 0 {
		opts.Burst = int(opts.Rate)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "fieldmap/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst),
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		retry:      resilience.DefaultPolicy(),
	}
}

// FetchTractsRaw queries the tract layer for one county and returns
// the raw GeoJSON response body.
func (c *Client) FetchTractsRaw(ctx context.Context, stateFIPS, countyFIPS string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "tigerweb: rate limit wait")
	}

	q := url.Values{}
	q.Set("where", fmt.Sprintf("STATE='%s' AND COUNTY='%s'", stateFIPS, countyFIPS))
	q.Set("outFields", "GEOID,NAME,STATE,COUNTY,CENTLAT,CENTLON,AREALAND")
	q.Set("f", "geojson")
	endpoint := fmt.Sprintf("%s/%s/query?%s", c.baseURL, tractLayer, q.Encode())

	return resilience.DoVal(ctx, c.retry, "tigerweb query", func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, eris.Wrap(err, "tigerweb: build request")
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "tigerweb: request")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("tigerweb: query county %s: status %d", countyFIPS, resp.StatusCode)
			if resilience.RetryableStatus(resp.StatusCode) {
				return nil, resilience.MarkTransient(err, resp.StatusCode)
			}
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "tigerweb: read response")
		}
		return body, nil
	})
}

// QueryTracts fetches and parses the tract collection for one county.
func (c *Client) QueryTracts(ctx context.Context, stateFIPS, countyFIPS string) (*geojson.FeatureCollection, error) {
	body, err := c.FetchTractsRaw(ctx, stateFIPS, countyFIPS)
	if err != nil {
		return nil, err
	}
	return ParseResponse(body)
}

// ParseResponse decodes a TIGERweb GeoJSON body. ArcGIS reports errors
// inside a 200 response, so those are surfaced here.
func ParseResponse(body []byte) (*geojson.FeatureCollection, error) {
	var apiErr struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		return nil, eris.Errorf("tigerweb: api error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrap(err, "tigerweb: parse response")
	}
	return &fc, nil
}
