package report_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgossip/pgossip/pkg/asrank"
	"github.com/pgossip/pgossip/pkg/fetch"
	"github.com/pgossip/pgossip/pkg/gossip"
	"github.com/pgossip/pgossip/pkg/lg"
	"github.com/pgossip/pgossip/pkg/report"
)

func testReport() *report.Report {
	ep := lg.Endpoint{URL: "https://lg.example-ix.net", Flavor: lg.FlavorAlice}
	ranked := []asrank.Ranked{
		{
			Entry: gossip.Entry{ASN: 64500, FilteredRoutes: 12},
			Record: asrank.Record{
				ASN: 64500, Name: "EXAMPLE-NET", Rank: "4242", Source: "RIPE",
				Country: "NL", PeeringDBURL: asrank.PeeringDBURL(64500),
			},
		},
		{
			Entry:  gossip.Entry{ASN: 64496, FilteredRoutes: 3},
			Record: asrank.Placeholder(64496),
		},
	}
	generatedAt := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	return report.Build(ep, generatedAt, "run-1", ranked)
}

func TestBuild(t *testing.T) {
	rep := testReport()

	require.Len(t, rep.Rows, 2)
	// Tally order is preserved verbatim.
	assert.Equal(t, 12, rep.Rows[0].FilteredRoutes)
	assert.Equal(t, uint32(64500), rep.Rows[0].Record.ASN)
	assert.Equal(t, 3, rep.Rows[1].FilteredRoutes)
	assert.Equal(t, asrank.Unknown, rep.Rows[1].Record.Name)
	assert.Equal(t, "https://lg.example-ix.net", rep.EndpointURL)
}

func TestWriteText(t *testing.T) {
	text := testReport().Text()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t,
		"Filtered prefixes @ https://lg.example-ix.net | ASN | AS-NAME | AS Rank | Source | Country | PeeringDB link",
		lines[0])
	assert.Equal(t,
		"12 | 64500 | EXAMPLE-NET | 4242 | RIPE | NL | https://www.peeringdb.com/asn/64500",
		lines[1])
	assert.Equal(t,
		"3 | 64496 | NA | NA | NA | NA | https://www.peeringdb.com/asn/64496",
		lines[2])
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	rep := testReport()
	require.NoError(t, rep.Save(dir))

	txt, err := os.ReadFile(filepath.Join(dir, "lg.example-ix.net.txt"))
	require.NoError(t, err)
	assert.Equal(t, rep.Text(), string(txt))

	raw, err := os.ReadFile(filepath.Join(dir, "lg.example-ix.net.json"))
	require.NoError(t, err)

	var decoded report.Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, rep.EndpointURL, decoded.EndpointURL)
	assert.Equal(t, rep.RunID, decoded.RunID)
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, rep.Rows[0].Record, decoded.Rows[0].Record)
}

func TestPastePublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/snippets", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "plaintext", payload["language"])
		assert.Equal(t, true, payload["public"])
		_, _ = w.Write([]byte(`{"id": "abc123"}`))
	}))
	defer srv.Close()

	fetcher, err := fetch.New(fetch.Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxRetries: 1,
	})
	require.NoError(t, err)

	paste := &report.PasteClient{BaseURL: srv.URL, Fetch: fetcher}
	url, err := paste.Publish(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/snippets/abc123", url)
}
