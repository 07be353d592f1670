package lg

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/pgossip/pgossip/pkg/fetch"
	"github.com/pgossip/pgossip/pkg/metrics"
)

// birdseyeClient speaks the Bird's Eye JSON API. Sessions are BGP protocol
// names; AS paths come back as strings.
type birdseyeClient struct {
	ep    Endpoint
	fetch *fetch.Client
}

type birdseyeProtocols struct {
	Protocols map[string]struct {
		State string `json:"state"`
	} `json:"protocols"`
}

type birdseyeRoutes struct {
	Routes []struct {
		Network string `json:"network"`
		BGP     struct {
			ASPath []string `json:"as_path"`
		} `json:"bgp"`
	} `json:"routes"`
}

func (c *birdseyeClient) Endpoint() Endpoint { return c.ep }

func (c *birdseyeClient) Sessions(ctx context.Context) ([]string, error) {
	body, err := c.fetch.Get(ctx, c.ep.URL+"/api/protocols/bgp", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list BGP protocols: %w", err)
	}
	var p birdseyeProtocols
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode protocol list: %w", err)
	}
	names := make([]string, 0, len(p.Protocols))
	for name := range p.Protocols {
		names = append(names, name)
	}
	// Map iteration order is random; keep discovery deterministic.
	sort.Strings(names)
	return names, nil
}

func (c *birdseyeClient) FilteredRoutes(ctx context.Context, session string) ([]FilteredRoute, error) {
	url := fmt.Sprintf("%s/api/routes/filtered/%s", c.ep.URL, session)
	body, err := c.fetch.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filtered routes for %s: %w", session, err)
	}
	var fr birdseyeRoutes
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("failed to decode filtered routes for %s: %w", session, err)
	}

	routes := make([]FilteredRoute, 0, len(fr.Routes))
	for _, r := range fr.Routes {
		if r.Network == "" || len(r.BGP.ASPath) == 0 {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorBirdseye)).Inc()
			continue
		}
		origin, err := strconv.ParseUint(r.BGP.ASPath[len(r.BGP.ASPath)-1], 10, 32)
		if err != nil {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorBirdseye)).Inc()
			continue
		}
		routes = append(routes, FilteredRoute{Prefix: r.Network, ASN: uint32(origin)})
	}
	return routes, nil
}
