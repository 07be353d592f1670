// Package gossip drives vendor looking-glass clients across all route-server
// sessions of an endpoint and merges their filtered routes into a single
// per-ASN tally.
package gossip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pgossip/pgossip/pkg/lg"
	"github.com/pgossip/pgossip/pkg/metrics"
)

const defaultMaxConcurrency = 4

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock

	// MaxConcurrency bounds parallel session fetches against one endpoint.
	MaxConcurrency int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

type Aggregator struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{log: cfg.Logger, cfg: cfg}, nil
}

// Aggregate discovers an endpoint's sessions and sums filtered-route counts
// by origin ASN. IPv4 and IPv6 sessions both feed the same ASN bucket; routes
// are not deduplicated by prefix across sessions.
//
// A session that fails to fetch or parse is recorded as a warning and
// skipped. Context cancellation abandons in-flight sessions and returns the
// tally built so far; partial data beats total failure.
func (a *Aggregator) Aggregate(ctx context.Context, client lg.Client) (*Tally, error) {
	ep := client.Endpoint()
	tally := NewTally(ep, a.cfg.Clock.Now().UTC())

	sessions, err := client.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sessions at %s: %w", ep.Name(), err)
	}
	if len(sessions) == 0 {
		a.log.Info("aggregate: endpoint exposes no sessions", "endpoint", ep.Name())
		return tally, nil
	}

	a.log.Info("aggregate: processing sessions",
		"endpoint", ep.Name(),
		"sessions", len(sessions),
		"max_concurrency", a.cfg.MaxConcurrency,
	)

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.MaxConcurrency)
	for _, session := range sessions {
		session := session
		g.Go(func() error {
			if ctx.Err() != nil {
				tally.Warn(session, ctx.Err())
				return nil
			}
			routes, err := client.FilteredRoutes(ctx, session)
			if err != nil {
				metrics.SessionFetchTotal.WithLabelValues(ep.Name(), "error").Inc()
				a.log.Warn("aggregate: skipping session",
					"endpoint", ep.Name(), "session", session, "error", err)
				tally.Warn(session, err)
				return nil
			}
			metrics.SessionFetchTotal.WithLabelValues(ep.Name(), "ok").Inc()
			for _, r := range routes {
				tally.Add(r.ASN, 1)
			}
			a.log.Debug("aggregate: session done",
				"endpoint", ep.Name(), "session", session, "filtered_routes", len(routes))
			return nil
		})
	}
	// Workers never return errors; failures become warnings on the tally.
	_ = g.Wait()

	a.log.Info("aggregate: endpoint done",
		"endpoint", ep.Name(),
		"asns", len(tally.Entries()),
		"filtered_routes", tally.Total(),
		"skipped_sessions", len(tally.Warnings()),
	)
	return tally, nil
}
