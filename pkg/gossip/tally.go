package gossip

import (
	"sort"
	"sync"
	"time"

	"github.com/pgossip/pgossip/pkg/lg"
)

// Entry is one row of the final ranking.
type Entry struct {
	ASN            uint32
	FilteredRoutes int
}

// Warning records a session that was skipped without aborting the run.
type Warning struct {
	Session string
	Err     error
}

// Tally accumulates filtered-route counts by origin ASN across all sessions
// of one endpoint. Safe for concurrent use.
type Tally struct {
	Endpoint    lg.Endpoint
	GeneratedAt time.Time

	mu       sync.Mutex
	counts   map[uint32]int
	warnings []Warning
}

func NewTally(ep lg.Endpoint, generatedAt time.Time) *Tally {
	return &Tally{
		Endpoint:    ep,
		GeneratedAt: generatedAt,
		counts:      make(map[uint32]int),
	}
}

// Add increments an ASN's filtered-route count.
func (t *Tally) Add(asn uint32, n int) {
	t.mu.Lock()
	t.counts[asn] += n
	t.mu.Unlock()
}

// Count returns the accumulated count for one ASN.
func (t *Tally) Count(asn uint32) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[asn]
}

// Total returns the sum of all counts.
func (t *Tally) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	sum := 0
	for _, n := range t.counts {
		sum += n
	}
	return sum
}

// Warn records a skipped session.
func (t *Tally) Warn(session string, err error) {
	t.mu.Lock()
	t.warnings = append(t.warnings, Warning{Session: session, Err: err})
	t.mu.Unlock()
}

// Warnings returns the sessions skipped during aggregation.
func (t *Tally) Warnings() []Warning {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Warning, len(t.warnings))
	copy(out, t.warnings)
	return out
}

// Entries returns the ranking: descending by count, ties broken by ascending
// ASN so equal inputs always produce identical output. Zero-count ASNs are
// dropped.
func (t *Tally) Entries() []Entry {
	t.mu.Lock()
	entries := make([]Entry, 0, len(t.counts))
	for asn, n := range t.counts {
		if n == 0 {
			continue
		}
		entries = append(entries, Entry{ASN: asn, FilteredRoutes: n})
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FilteredRoutes != entries[j].FilteredRoutes {
			return entries[i].FilteredRoutes > entries[j].FilteredRoutes
		}
		return entries[i].ASN < entries[j].ASN
	})
	return entries
}
