package asrank_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgossip/pgossip/pkg/asrank"
	"github.com/pgossip/pgossip/pkg/fetch"
)

func testFetcher(t *testing.T) *fetch.Client {
	t.Helper()
	c, err := fetch.New(fetch.Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxRetries: 1,
	})
	require.NoError(t, err)
	return c
}

const caidaFixture = `{
	"data": {
		"asn": {
			"asnName": "EXAMPLE-NET",
			"rank": 4242,
			"source": "RIPE",
			"country": {"iso": "NL", "name": "Netherlands"}
		}
	}
}`

func TestCAIDALookup(t *testing.T) {
	t.Run("fills registry fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/asns/64500", r.URL.Path)
			_, _ = w.Write([]byte(caidaFixture))
		}))
		defer srv.Close()

		resolver := &asrank.CAIDAResolver{BaseURL: srv.URL, Fetch: testFetcher(t)}
		rec, err := resolver.Lookup(context.Background(), 64500)
		require.NoError(t, err)

		assert.Equal(t, asrank.Record{
			ASN:          64500,
			Name:         "EXAMPLE-NET",
			Rank:         "4242",
			Source:       "RIPE",
			Country:      "NL",
			PeeringDBURL: "https://www.peeringdb.com/asn/64500",
		}, rec)
	})

	t.Run("missing entry is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"asn": null}}`))
		}))
		defer srv.Close()

		resolver := &asrank.CAIDAResolver{BaseURL: srv.URL, Fetch: testFetcher(t)}
		_, err := resolver.Lookup(context.Background(), 64500)
		require.Error(t, err)
	})

	t.Run("partial entry keeps placeholders", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"asn": {"asnName": "", "rank": 7}}}`))
		}))
		defer srv.Close()

		resolver := &asrank.CAIDAResolver{BaseURL: srv.URL, Fetch: testFetcher(t)}
		rec, err := resolver.Lookup(context.Background(), 64500)
		require.NoError(t, err)

		assert.Equal(t, asrank.Unknown, rec.Name)
		assert.Equal(t, "7", rec.Rank)
		assert.Equal(t, asrank.Unknown, rec.Country)
	})
}
