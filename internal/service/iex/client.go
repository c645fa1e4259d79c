package iex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
	xhttp "FinStudies/pkg/http"
	xutil "FinStudies/pkg/util"
)

// Client talks to an IEX Cloud compatible REST API. It serves as the default
// SeriesSource and as the RefDataProvider for ISIN lookups.
type Client struct {
	baseURL string
	version string
	token   string
	http    *xhttp.Client
}

var (
	_ domrepo.SeriesSource    = (*Client)(nil)
	_ domrepo.RefDataProvider = (*Client)(nil)
)

// New creates a client for baseURL (e.g. "https://cloud.iexapis.com").
func New(baseURL, version, token string, timeout time.Duration, opts ...xhttp.ClientOption) *Client {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		token:   token,
		http:    xhttp.NewClient(opts...),
	}
}

type chartBar struct {
	Date   string   `json:"date"`
	Minute string   `json:"minute"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

// Fetch returns the chart series for symbol over rng, ascending by time.
// Unknown symbols, empty charts and transport failures are reported as
// ErrDataUnavailable.
func (c *Client) Fetch(ctx context.Context, symbol, rng string) (*models.Series, error) {
	endpoint := fmt.Sprintf("stock/%s/chart/%s", url.PathEscape(strings.ToLower(symbol)), url.PathEscape(rng))

	var bars []chartBar
	if err := c.get(ctx, endpoint, nil, &bars); err != nil {
		return nil, fmt.Errorf("iex chart %s/%s: %w: %w", symbol, rng, domrepo.ErrDataUnavailable, err)
	}

	candles := make([]models.Candle, 0, len(bars))
	for _, b := range bars {
		ts, ok := xutil.ParseBarTime(b.Date, b.Minute)
		if !ok {
			continue
		}
		// intraday bars without trades carry null prices
		if b.Close == nil {
			continue
		}
		candles = append(candles, models.Candle{
			Bucket: ts,
			Symbol: symbol,
			Open:   value(b.Open, *b.Close),
			High:   value(b.High, *b.Close),
			Low:    value(b.Low, *b.Close),
			Close:  *b.Close,
			Volume: value(b.Volume, 0),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("iex chart %s/%s: %w: no bars", symbol, rng, domrepo.ErrDataUnavailable)
	}

	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Bucket.Before(candles[j].Bucket) })
	return models.NewSeriesFromCandles(symbol, candles), nil
}

// IsinLookup maps an ISIN to one or more symbol records.
func (c *Client) IsinLookup(ctx context.Context, isin, filter string) ([]models.IsinRecord, error) {
	q := map[string][]string{"isin": {isin}}
	if filter != "" {
		q["filter"] = []string{filter}
	}

	var records []models.IsinRecord
	if err := c.get(ctx, "ref-data/isin", q, &records); err != nil {
		return nil, fmt.Errorf("iex isin %s: %w", isin, err)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query map[string][]string, dest interface{}) error {
	if query == nil {
		query = make(map[string][]string)
	}
	if c.token != "" {
		query["token"] = []string{c.token}
	}
	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, endpoint),
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}, dest)
}

// IsNotFound reports whether err came from a 404 upstream reply.
func IsNotFound(err error) bool {
	var se *xhttp.StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

func value(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
