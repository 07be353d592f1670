package asrank_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgossip/pgossip/pkg/asrank"
	"github.com/pgossip/pgossip/pkg/gossip"
)

// stubResolver resolves every ASN to a synthetic name, failing the ASNs
// listed in fail.
type stubResolver struct {
	fail    map[uint32]bool
	lookups atomic.Int32
}

func (s *stubResolver) Name() string { return "stub" }

func (s *stubResolver) Lookup(_ context.Context, asn uint32) (asrank.Record, error) {
	s.lookups.Add(1)
	if s.fail[asn] {
		return asrank.Record{}, fmt.Errorf("no data for AS%d", asn)
	}
	rec := asrank.Placeholder(asn)
	rec.Name = fmt.Sprintf("AS%d-NAME", asn)
	return rec, nil
}

func newEnricher(t *testing.T, resolver asrank.Resolver) *asrank.Enricher {
	t.Helper()
	e, err := asrank.NewEnricher(asrank.Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Resolver:       resolver,
		MaxConcurrency: 3,
	})
	require.NoError(t, err)
	return e
}

func TestEnrich(t *testing.T) {
	t.Run("preserves ranked order", func(t *testing.T) {
		entries := []gossip.Entry{
			{ASN: 333, FilteredRoutes: 9},
			{ASN: 111, FilteredRoutes: 5},
			{ASN: 222, FilteredRoutes: 5},
			{ASN: 444, FilteredRoutes: 1},
		}

		ranked := newEnricher(t, &stubResolver{}).Enrich(context.Background(), entries)
		require.Len(t, ranked, len(entries))
		for i, r := range ranked {
			assert.Equal(t, entries[i], r.Entry)
			assert.Equal(t, entries[i].ASN, r.Record.ASN)
			assert.Equal(t, fmt.Sprintf("AS%d-NAME", entries[i].ASN), r.Record.Name)
		}
	})

	t.Run("failed lookup yields placeholder at ranked position", func(t *testing.T) {
		entries := []gossip.Entry{
			{ASN: 111, FilteredRoutes: 7},
			{ASN: 222, FilteredRoutes: 3},
			{ASN: 333, FilteredRoutes: 1},
		}

		ranked := newEnricher(t, &stubResolver{fail: map[uint32]bool{222: true}}).
			Enrich(context.Background(), entries)
		require.Len(t, ranked, 3)

		assert.Equal(t, "AS111-NAME", ranked[0].Record.Name)
		assert.Equal(t, asrank.Placeholder(222), ranked[1].Record)
		assert.Equal(t, uint32(222), ranked[1].Entry.ASN)
		assert.Equal(t, "AS333-NAME", ranked[2].Record.Name)
	})

	t.Run("private ASNs skip the registry", func(t *testing.T) {
		resolver := &stubResolver{}
		entries := []gossip.Entry{
			{ASN: 64567, FilteredRoutes: 4},
			{ASN: 111, FilteredRoutes: 2},
		}

		ranked := newEnricher(t, resolver).Enrich(context.Background(), entries)
		require.Len(t, ranked, 2)
		assert.Equal(t, "Private ASN", ranked[0].Record.Name)
		assert.Equal(t, int32(1), resolver.lookups.Load())
	})

	t.Run("empty tally yields empty result", func(t *testing.T) {
		ranked := newEnricher(t, &stubResolver{}).Enrich(context.Background(), nil)
		assert.Empty(t, ranked)
	})
}

func TestPrivateASN(t *testing.T) {
	assert.True(t, asrank.PrivateASN(64512))
	assert.True(t, asrank.PrivateASN(64567))
	assert.True(t, asrank.PrivateASN(65534))
	assert.True(t, asrank.PrivateASN(4200000000))
	assert.False(t, asrank.PrivateASN(64511))
	assert.False(t, asrank.PrivateASN(65535))
	assert.False(t, asrank.PrivateASN(3356))
}
