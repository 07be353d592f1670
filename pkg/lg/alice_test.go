package lg_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgossip/pgossip/pkg/lg"
)

const aliceRouteServersFixture = `{
	"routeservers": [
		{"id": "rs1-example-v4", "name": "rs1.example-ix.net (IPv4)"},
		{"id": "rs1-example-v6", "name": "rs1.example-ix.net (IPv6)"}
	]
}`

const aliceFilteredFixture = `{
	"filtered": [
		{"network": "10.0.0.0/24", "bgp": {"as_path": [64496, 64500]}},
		{"network": "10.0.1.0/24", "bgp": {"as_path": [64500]}},
		{"network": "10.0.2.0/24", "bgp": {"as_path": []}},
		{"network": "", "bgp": {"as_path": [64501]}}
	],
	"imported": []
}`

func newAliceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/routeservers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aliceRouteServersFixture))
	})
	mux.HandleFunc("/api/v1/routeservers/rs1-example-v4/routes/filtered", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aliceFilteredFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAliceSessions(t *testing.T) {
	srv := newAliceServer(t)
	client, err := lg.New(lg.Endpoint{URL: srv.URL, Flavor: lg.FlavorAlice}, testFetcher(t))
	require.NoError(t, err)

	sessions, err := client.Sessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"rs1-example-v4", "rs1-example-v6"}, sessions)
}

func TestAliceSessionsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routeservers": []}`))
	}))
	defer srv.Close()

	client, err := lg.New(lg.Endpoint{URL: srv.URL, Flavor: lg.FlavorAlice}, testFetcher(t))
	require.NoError(t, err)

	sessions, err := client.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestAliceFilteredRoutes(t *testing.T) {
	srv := newAliceServer(t)
	client, err := lg.New(lg.Endpoint{URL: srv.URL, Flavor: lg.FlavorAlice}, testFetcher(t))
	require.NoError(t, err)

	routes, err := client.FilteredRoutes(context.Background(), "rs1-example-v4")
	require.NoError(t, err)

	// The empty-path and empty-network rows are skipped; origin is the
	// last AS on the path.
	assert.Equal(t, []lg.FilteredRoute{
		{Prefix: "10.0.0.0/24", ASN: 64500},
		{Prefix: "10.0.1.0/24", ASN: 64500},
	}, routes)
}

func TestAliceFilteredRoutesFetchError(t *testing.T) {
	srv := newAliceServer(t)
	client, err := lg.New(lg.Endpoint{URL: srv.URL, Flavor: lg.FlavorAlice}, testFetcher(t))
	require.NoError(t, err)

	_, err = client.FilteredRoutes(context.Background(), "rs-missing")
	require.Error(t, err)
}
