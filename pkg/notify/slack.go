// Package notify posts finished reports to Slack.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/pgossip/pgossip/pkg/report"
)

// maxRows caps how many ranked entries a Slack message carries; the full
// report lives in the files and the paste link.
const maxRows = 10

type Config struct {
	Logger  *slog.Logger
	Token   string
	Channel string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Token == "" {
		return errors.New("slack token is required")
	}
	if cfg.Channel == "" {
		return errors.New("slack channel is required")
	}
	return nil
}

type Slack struct {
	log     *slog.Logger
	client  *slack.Client
	channel string
}

func New(cfg Config) (*Slack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Slack{
		log:     cfg.Logger,
		client:  slack.New(cfg.Token),
		channel: cfg.Channel,
	}, nil
}

// PostReport sends a summary of the report, with the paste link when one was
// created.
func (s *Slack) PostReport(ctx context.Context, r *report.Report, pasteURL string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Hall of Shame @ %s* (%d ASNs with filtered prefixes)\n",
		r.Endpoint.Name(), len(r.Rows))
	for i, row := range r.Rows {
		if i == maxRows {
			fmt.Fprintf(&sb, "… and %d more\n", len(r.Rows)-maxRows)
			break
		}
		fmt.Fprintf(&sb, "%d. AS%d %s: %d filtered prefixes (%s)\n",
			i+1, row.Record.ASN, row.Record.Name, row.FilteredRoutes, row.Record.Country)
	}
	if pasteURL != "" {
		fmt.Fprintf(&sb, "Full report: %s\n", pasteURL)
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(sb.String(), false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("failed to post report to %s: %w", s.channel, err)
	}
	s.log.Info("notify: posted report", "channel", s.channel, "endpoint", r.Endpoint.Name())
	return nil
}
