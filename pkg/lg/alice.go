package lg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgossip/pgossip/pkg/fetch"
	"github.com/pgossip/pgossip/pkg/metrics"
)

// aliceClient speaks the Alice-LG REST API (api/v1).
type aliceClient struct {
	ep    Endpoint
	fetch *fetch.Client
}

type aliceRouteServers struct {
	RouteServers []struct {
		ID string `json:"id"`
	} `json:"routeservers"`
}

type aliceRoute struct {
	Network string `json:"network"`
	BGP     struct {
		ASPath []uint32 `json:"as_path"`
	} `json:"bgp"`
}

type aliceFilteredRoutes struct {
	Filtered []aliceRoute `json:"filtered"`
}

func (c *aliceClient) Endpoint() Endpoint { return c.ep }

func (c *aliceClient) Sessions(ctx context.Context) ([]string, error) {
	body, err := c.fetch.Get(ctx, c.ep.URL+"/api/v1/routeservers", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list route servers: %w", err)
	}
	var rs aliceRouteServers
	if err := json.Unmarshal(body, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode route server list: %w", err)
	}
	ids := make([]string, 0, len(rs.RouteServers))
	for _, r := range rs.RouteServers {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (c *aliceClient) FilteredRoutes(ctx context.Context, session string) ([]FilteredRoute, error) {
	url := fmt.Sprintf("%s/api/v1/routeservers/%s/routes/filtered", c.ep.URL, session)
	body, err := c.fetch.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filtered routes for %s: %w", session, err)
	}
	var fr aliceFilteredRoutes
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("failed to decode filtered routes for %s: %w", session, err)
	}

	routes := make([]FilteredRoute, 0, len(fr.Filtered))
	for _, r := range fr.Filtered {
		// Origin is the last AS on the path. Routes with an empty path
		// (e.g. locally originated) carry no usable origin.
		if r.Network == "" || len(r.BGP.ASPath) == 0 {
			metrics.ParseSkippedRows.WithLabelValues(string(FlavorAlice)).Inc()
			continue
		}
		routes = append(routes, FilteredRoute{
			Prefix: r.Network,
			ASN:    r.BGP.ASPath[len(r.BGP.ASPath)-1],
		})
	}
	return routes, nil
}
