// Command pgossip scrapes IXP looking glasses for filtered prefixes,
// aggregates them by origin ASN, enriches the ranking with registry data and
// writes a "Hall of Shame" report per IXP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/pgossip/pgossip/pkg/asrank"
	"github.com/pgossip/pgossip/pkg/config"
	"github.com/pgossip/pgossip/pkg/fetch"
	"github.com/pgossip/pgossip/pkg/gossip"
	"github.com/pgossip/pgossip/pkg/lg"
	"github.com/pgossip/pgossip/pkg/logger"
	"github.com/pgossip/pgossip/pkg/metrics"
	"github.com/pgossip/pgossip/pkg/notify"
	"github.com/pgossip/pgossip/pkg/report"
	"github.com/pgossip/pgossip/pkg/server"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultReportsDir      = "reports"
	defaultListenAddr      = "0.0.0.0:3010"
	defaultMaxConcurrency  = 4
	defaultEndpointTimeout = 15 * time.Minute
	defaultHTTPTimeout     = 10 * time.Second
	defaultLookupRate      = 2.0 // lookups per second toward the registry
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	lgFlag := flag.StringP("lg", "l", "", "looking-glass base URL to check")
	flavorFlag := flag.String("flavor", string(lg.FlavorAlice), "looking-glass flavor for -lg (alice, birdseye, birdlg, cougar)")
	allFlag := flag.BoolP("all", "a", false, "generate reports for all IXPs in the config file")
	configFlag := flag.String("config", defaultConfigPath, "path to the IXP config file")
	reportsDirFlag := flag.String("reports-dir", defaultReportsDir, "directory reports are written to")
	lookupFlag := flag.String("lookup", "caida", "ASN registry to enrich from (caida, bgpview)")
	maxConcurrencyFlag := flag.Int("max-concurrency", defaultMaxConcurrency, "maximum concurrent session fetches and ASN lookups")
	endpointTimeoutFlag := flag.Duration("timeout", defaultEndpointTimeout, "per-endpoint run timeout; partial results are kept")
	httpTimeoutFlag := flag.Duration("http-timeout", defaultHTTPTimeout, "timeout for individual HTTP requests")
	lookupRateFlag := flag.Float64("rate", defaultLookupRate, "registry lookups per second (0 disables pacing)")
	pasteFlag := flag.Bool("paste", false, "publish each report as a glot.io snippet")
	slackChannelFlag := flag.String("slack-channel", "", "Slack channel to post report summaries to (token from SLACK_TOKEN)")
	serveFlag := flag.Bool("serve", false, "serve generated reports over HTTP after the run")
	listenAddrFlag := flag.String("listen-addr", defaultListenAddr, "HTTP listen address for --serve")
	metricsAddrFlag := flag.String("metrics-addr", "", "address to expose prometheus metrics on (empty disables)")
	flag.Parse()

	// Load .env file. godotenv does not override existing env vars, so
	// process env and explicit exports take precedence.
	_ = godotenv.Load()

	log := logger.New(*verboseFlag)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Release: version}); err != nil {
			log.Warn("failed to initialize sentry", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	log.Info("pgossip starting", "version", version, "commit", commit, "date", date)
	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigCh
		log.Info("received signal", "signal", sig.String())
		cancel()
	}()

	if *metricsAddrFlag != "" {
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("failed to start prometheus metrics listener", "error", err)
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, mux); err != nil {
				log.Error("prometheus metrics server failed", "error", err)
			}
		}()
	}

	endpoints, err := collectEndpoints(*lgFlag, *flavorFlag, *allFlag, *configFlag)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 && !*serveFlag {
		flag.Usage()
		return nil
	}

	fetcher, err := fetch.New(fetch.Config{Logger: log, Timeout: *httpTimeoutFlag})
	if err != nil {
		return err
	}

	resolver, err := buildResolver(*lookupFlag, fetcher)
	if err != nil {
		return err
	}
	enricher, err := asrank.NewEnricher(asrank.Config{
		Logger:         log,
		Resolver:       resolver,
		MaxConcurrency: *maxConcurrencyFlag,
		RateLimit:      rate.Limit(*lookupRateFlag),
	})
	if err != nil {
		return err
	}
	aggregator, err := gossip.New(gossip.Config{
		Logger:         log,
		Clock:          clockwork.NewRealClock(),
		MaxConcurrency: *maxConcurrencyFlag,
	})
	if err != nil {
		return err
	}

	var notifier *notify.Slack
	if *slackChannelFlag != "" {
		notifier, err = notify.New(notify.Config{
			Logger:  log,
			Token:   os.Getenv("SLACK_TOKEN"),
			Channel: *slackChannelFlag,
		})
		if err != nil {
			return err
		}
	}

	runner := &runner{
		log:        log,
		fetch:      fetcher,
		aggregator: aggregator,
		enricher:   enricher,
		notifier:   notifier,
		reportsDir: *reportsDirFlag,
		timeout:    *endpointTimeoutFlag,
		paste:      *pasteFlag,
	}

	for _, ep := range endpoints {
		if ctx.Err() != nil {
			break
		}
		// One unreachable endpoint must not abort the others.
		if err := runner.processEndpoint(ctx, ep); err != nil {
			sentry.CaptureException(err)
			log.Error("endpoint failed", "endpoint", ep.Name(), "error", err)
		}
	}

	if *serveFlag {
		return serveReports(ctx, log, *reportsDirFlag, *listenAddrFlag)
	}
	return ctx.Err()
}

func collectEndpoints(lgURL, flavor string, all bool, configPath string) ([]lg.Endpoint, error) {
	var endpoints []lg.Endpoint
	if lgURL != "" {
		f, err := lg.ParseFlavor(flavor)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, lg.Endpoint{URL: lgURL, Flavor: f})
	}
	if all {
		configured, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, configured...)
	}
	return endpoints, nil
}

func buildResolver(name string, fetcher *fetch.Client) (asrank.Resolver, error) {
	switch name {
	case "caida":
		return &asrank.CAIDAResolver{Fetch: fetcher}, nil
	case "bgpview":
		return &asrank.BGPViewResolver{Fetch: fetcher}, nil
	default:
		return nil, fmt.Errorf("unknown lookup registry %q", name)
	}
}

type runner struct {
	log        *slog.Logger
	fetch      *fetch.Client
	aggregator *gossip.Aggregator
	enricher   *asrank.Enricher
	notifier   *notify.Slack
	reportsDir string
	timeout    time.Duration
	paste      bool
}

func (r *runner) processEndpoint(ctx context.Context, ep lg.Endpoint) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	client, err := lg.New(ep, r.fetch)
	if err != nil {
		return err
	}

	tally, err := r.aggregator.Aggregate(ctx, client)
	if err != nil {
		return err
	}

	ranked := r.enricher.Enrich(ctx, tally.Entries())
	rep := report.Build(ep, tally.GeneratedAt, uuid.NewString(), ranked)

	fmt.Print(rep.Text())
	if err := rep.Save(r.reportsDir); err != nil {
		return err
	}
	r.log.Info("report written",
		"endpoint", ep.Name(), "rows", len(rep.Rows), "dir", r.reportsDir, "run_id", rep.RunID)

	var pasteURL string
	if r.paste {
		paste := &report.PasteClient{Fetch: r.fetch}
		pasteURL, err = paste.Publish(ctx, rep)
		if err != nil {
			r.log.Warn("failed to publish paste", "endpoint", ep.Name(), "error", err)
		} else {
			fmt.Printf("We created a sharable report link, enjoy => %s\n", pasteURL)
		}
	}

	if r.notifier != nil {
		if err := r.notifier.PostReport(ctx, rep, pasteURL); err != nil {
			r.log.Warn("failed to post report to slack", "endpoint", ep.Name(), "error", err)
		}
	}
	return nil
}

func serveReports(ctx context.Context, log *slog.Logger, reportsDir, addr string) error {
	srv, err := server.New(server.Config{Logger: log, ReportsDir: reportsDir})
	if err != nil {
		return err
	}
	httpServer := &http.Server{Addr: addr, Handler: srv.Router()}

	errCh := make(chan error, 1)
	go func() {
		log.Info("report server listening", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
