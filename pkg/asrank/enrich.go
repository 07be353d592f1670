package asrank

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pgossip/pgossip/pkg/gossip"
	"github.com/pgossip/pgossip/pkg/metrics"
)

const defaultMaxConcurrency = 4

// Resolver resolves one ASN to its registry record.
type Resolver interface {
	Name() string
	Lookup(ctx context.Context, asn uint32) (Record, error)
}

// Ranked pairs a tally entry with its registry record, in tally order.
type Ranked struct {
	Entry  gossip.Entry
	Record Record
}

type Config struct {
	Logger   *slog.Logger
	Resolver Resolver

	// MaxConcurrency bounds parallel lookups; RateLimit paces requests
	// toward the registry. Zero RateLimit disables pacing.
	MaxConcurrency int
	RateLimit      rate.Limit
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Resolver == nil {
		return errors.New("resolver is required")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	return nil
}

type Enricher struct {
	log     *slog.Logger
	cfg     Config
	limiter *rate.Limiter
}

func NewEnricher(cfg Config) (*Enricher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Enricher{log: cfg.Logger, cfg: cfg}
	if cfg.RateLimit > 0 {
		e.limiter = rate.NewLimiter(cfg.RateLimit, 1)
	}
	return e, nil
}

// Enrich resolves registry metadata for each tally entry, preserving the
// ranked order exactly. A failed lookup yields a placeholder record at the
// entry's position; it never drops the row or aborts the remaining lookups.
func (e *Enricher) Enrich(ctx context.Context, entries []gossip.Entry) []Ranked {
	ranked := make([]Ranked, len(entries))

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.MaxConcurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			ranked[i] = Ranked{Entry: entry, Record: e.lookup(ctx, entry.ASN)}
			return nil
		})
	}
	_ = g.Wait()

	return ranked
}

func (e *Enricher) lookup(ctx context.Context, asn uint32) Record {
	if PrivateASN(asn) {
		return privateRecord(asn)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			metrics.LookupTotal.WithLabelValues(e.cfg.Resolver.Name(), "cancelled").Inc()
			return Placeholder(asn)
		}
	}

	rec, err := e.cfg.Resolver.Lookup(ctx, asn)
	if err != nil {
		metrics.LookupTotal.WithLabelValues(e.cfg.Resolver.Name(), "error").Inc()
		e.log.Warn("enrich: lookup failed, using placeholder", "asn", asn, "error", err)
		return Placeholder(asn)
	}
	metrics.LookupTotal.WithLabelValues(e.cfg.Resolver.Name(), "ok").Inc()
	return rec
}
