// Package lg talks to public looking-glass web interfaces and extracts
// route-server sessions and their filtered routes. Each supported vendor
// ("flavor") has its own client behind a shared interface, so the fragile
// markup/JSON assumptions stay isolated per vendor.
package lg

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pgossip/pgossip/pkg/fetch"
)

// Flavor identifies the looking-glass software running at an endpoint.
type Flavor string

const (
	FlavorAlice    Flavor = "alice"    // Alice-LG JSON API
	FlavorBirdseye Flavor = "birdseye" // Bird's Eye JSON API
	FlavorBirdLG   Flavor = "birdlg"   // bird-lg HTML pages
	FlavorCougar   Flavor = "cougar"   // classic CGI looking glass, HTML tables
)

// ParseFlavor validates a flavor name from config or flags.
func ParseFlavor(s string) (Flavor, error) {
	switch f := Flavor(strings.ToLower(strings.TrimSpace(s))); f {
	case FlavorAlice, FlavorBirdseye, FlavorBirdLG, FlavorCougar:
		return f, nil
	default:
		return "", fmt.Errorf("unknown looking-glass flavor %q", s)
	}
}

// Endpoint is one configured looking glass.
type Endpoint struct {
	URL    string
	Flavor Flavor
}

// Name returns a filesystem- and label-safe identity for the endpoint,
// derived from its host.
func (e Endpoint) Name() string {
	u, err := url.Parse(e.URL)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(e.URL, "https://"), "http://")
	}
	return u.Host
}

// FilteredRoute is one route rejected by a route server's import policy.
type FilteredRoute struct {
	Prefix string
	ASN    uint32
}

// Client exposes the two operations every vendor supports.
type Client interface {
	// Endpoint returns the endpoint this client talks to.
	Endpoint() Endpoint

	// Sessions discovers the route-server sessions the endpoint exposes.
	// An endpoint with no sessions returns an empty slice, not an error.
	Sessions(ctx context.Context) ([]string, error)

	// FilteredRoutes fetches and parses one session's filtered-prefix
	// output. Unparseable rows are skipped, not fatal.
	FilteredRoutes(ctx context.Context, session string) ([]FilteredRoute, error)
}

// New builds the vendor client for an endpoint.
func New(ep Endpoint, f *fetch.Client) (Client, error) {
	if ep.URL == "" {
		return nil, fmt.Errorf("endpoint URL is required")
	}
	ep.URL = strings.TrimRight(ep.URL, "/")
	switch ep.Flavor {
	case FlavorAlice:
		return &aliceClient{ep: ep, fetch: f}, nil
	case FlavorBirdseye:
		return &birdseyeClient{ep: ep, fetch: f}, nil
	case FlavorBirdLG:
		return &birdlgClient{ep: ep, fetch: f}, nil
	case FlavorCougar:
		return &cougarClient{ep: ep, fetch: f}, nil
	default:
		return nil, fmt.Errorf("unknown looking-glass flavor %q", ep.Flavor)
	}
}
