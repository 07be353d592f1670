package lg

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/pgossip/pgossip/pkg/fetch"
	"github.com/pgossip/pgossip/pkg/metrics"
)

// cougarClient scrapes classic CGI looking glasses: a router selector on the
// index page and an HTML result table behind a form POST. Column order in the
// result table varies between deployments, so it is discovered from the
// header row rather than assumed.
type cougarClient struct {
	ep    Endpoint
	fetch *fetch.Client
}

func (c *cougarClient) Endpoint() Endpoint { return c.ep }

func (c *cougarClient) Sessions(ctx context.Context) ([]string, error) {
	body, err := c.fetch.Get(ctx, c.ep.URL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch router selector page: %w", err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router selector page: %w", err)
	}
	return selectOptions(root, "router"), nil
}

func (c *cougarClient) FilteredRoutes(ctx context.Context, session string) ([]FilteredRoute, error) {
	form := url.Values{
		"router": {session},
		"query":  {"filtered"},
	}
	body, err := c.fetch.PostForm(ctx, c.ep.URL+"/lg.cgi", form)
	if err != nil {
		return nil, fmt.Errorf("failed to query filtered routes for %s: %w", session, err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse result page for %s: %w", session, err)
	}

	var routes []FilteredRoute
	for _, table := range tables(root, "routes") {
		routes = append(routes, parseRouteTable(table)...)
	}
	return routes, nil
}

// parseRouteTable reads a result table whose header row names the columns.
// Rows without a parseable prefix or origin AS cell are skipped.
func parseRouteTable(table *html.Node) []FilteredRoute {
	rows := tableRows(table)
	if len(rows) < 2 {
		return nil
	}

	prefixCol, asnCol := -1, -1
	for i, name := range rows[0] {
		switch h := strings.ToLower(name); {
		case strings.Contains(h, "prefix") || strings.Contains(h, "network"):
			prefixCol = i
		case strings.Contains(h, "origin") || strings.Contains(h, "asn"):
			asnCol = i
		}
	}
	if prefixCol < 0 || asnCol < 0 {
		return nil
	}

	var routes []FilteredRoute
	for _, row := range rows[1:] {
		if prefixCol >= len(row) || asnCol >= len(row) {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorCougar)).Inc()
			continue
		}
		prefix := row[prefixCol]
		rawASN := strings.TrimPrefix(strings.TrimSpace(row[asnCol]), "AS")
		asn, err := strconv.ParseUint(rawASN, 10, 32)
		if prefix == "" || err != nil {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorCougar)).Inc()
			continue
		}
		routes = append(routes, FilteredRoute{Prefix: prefix, ASN: uint32(asn)})
	}
	return routes
}
