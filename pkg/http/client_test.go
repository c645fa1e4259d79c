package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func reply(status int, body string) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	}
}

func TestSendAndParseDecodesJSON(t *testing.T) {
	var seen *http.Request
	rt := reply(http.StatusOK, `{"symbol":"AAPL"}`)
	c := NewClient(WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return rt(r)
	})))

	var out struct {
		Symbol string `json:"symbol"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         "http://upstream/stable/ref-data/isin",
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: map[string][]string{"isin": {"US0378331005"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Symbol)

	require.NotNil(t, seen)
	assert.Equal(t, "US0378331005", seen.URL.Query().Get("isin"))
	assert.Equal(t, "application/json", seen.Header.Get("Accept"))
	assert.Empty(t, seen.Header.Get("Content-Type"))
}

func TestSendAndParseStatusError(t *testing.T) {
	c := NewClient(WithTransport(reply(http.StatusNotFound, "Unknown symbol")))

	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: "http://upstream/x"}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "Unknown symbol", se.Body)
}

func TestSendAndParseBadJSON(t *testing.T) {
	c := NewClient(WithTransport(reply(http.StatusOK, "<html>")))

	var out []string
	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: "http://upstream/x"}, &out)
	assert.ErrorContains(t, err, "decode json")
}
