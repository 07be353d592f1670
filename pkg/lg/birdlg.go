package lg

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/pgossip/pgossip/pkg/fetch"
	"github.com/pgossip/pgossip/pkg/metrics"
)

// birdlgClient scrapes a bird-lg deployment: the landing page carries a
// server selector, and per-server pages render raw BIRD output in <pre>
// blocks.
type birdlgClient struct {
	ep    Endpoint
	fetch *fetch.Client
}

var (
	// "10.0.0.0/24   unreachable [rs1_peer 2024-08-30] * (100) [AS64500i]"
	birdPrefixRe = regexp.MustCompile(`^([0-9a-fA-F:.]+/\d{1,3})\s`)
	birdOriginRe = regexp.MustCompile(`\[AS(\d+)[ie?]?\]\s*$`)
)

func (c *birdlgClient) Endpoint() Endpoint { return c.ep }

func (c *birdlgClient) Sessions(ctx context.Context) ([]string, error) {
	body, err := c.fetch.Get(ctx, c.ep.URL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server selector page: %w", err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server selector page: %w", err)
	}
	return selectOptions(root, "servers"), nil
}

func (c *birdlgClient) FilteredRoutes(ctx context.Context, session string) ([]FilteredRoute, error) {
	url := fmt.Sprintf("%s/route_filtered/%s", c.ep.URL, session)
	body, err := c.fetch.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filtered routes for %s: %w", session, err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse filtered routes page for %s: %w", session, err)
	}

	var routes []FilteredRoute
	for _, block := range preBlocks(root) {
		routes = append(routes, parseBirdRoutes(block)...)
	}
	return routes, nil
}

// parseBirdRoutes extracts (prefix, origin ASN) pairs from BIRD
// "show route filtered" output. Continuation and status lines are ignored;
// a route line without a trailing origin tag is dropped as unparseable.
func parseBirdRoutes(block string) []FilteredRoute {
	var routes []FilteredRoute
	for _, line := range strings.Split(block, "\n") {
		m := birdPrefixRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		om := birdOriginRe.FindStringSubmatch(strings.TrimRight(line, " \t\r"))
		if om == nil {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorBirdLG)).Inc()
			continue
		}
		asn, err := strconv.ParseUint(om[1], 10, 32)
		if err != nil {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorBirdLG)).Inc()
			continue
		}
		routes = append(routes, FilteredRoute{Prefix: m[1], ASN: uint32(asn)})
	}
	return routes
}
