package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pgossip_build_info",
		Help: "Build information",
	}, []string{"version", "commit", "date"})

	// SessionFetchTotal counts per-session filtered-route fetches by outcome.
	SessionFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgossip_session_fetch_total",
		Help: "Route-server session fetches by endpoint and status",
	}, []string{"endpoint", "status"})

	// ParseSkippedRows counts rows a vendor parser dropped as unparseable.
	ParseSkippedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgossip_parse_skipped_rows_total",
		Help: "Looking-glass rows skipped during parsing, by flavor",
	}, []string{"flavor"})

	// LookupTotal counts registry lookups by outcome.
	LookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgossip_asn_lookup_total",
		Help: "ASN registry lookups by resolver and status",
	}, []string{"resolver", "status"})

	// HTTPRetries counts retried outbound requests.
	HTTPRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pgossip_http_retries_total",
		Help: "Outbound HTTP requests that were retried",
	})

	// ReportRows tracks the size of the most recent report per endpoint.
	ReportRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pgossip_report_rows",
		Help: "Rows in the most recently generated report",
	}, []string{"endpoint"})
)
