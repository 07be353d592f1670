// Package report assembles the ranked, enriched "Hall of Shame" for one
// endpoint and serializes it as a columnar text table and a JSON document.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pgossip/pgossip/pkg/asrank"
	"github.com/pgossip/pgossip/pkg/lg"
	"github.com/pgossip/pgossip/pkg/metrics"
)

// Row is one ranked entry of the report.
type Row struct {
	FilteredRoutes int           `json:"filtered_routes"`
	Record         asrank.Record `json:"record"`
}

// Report is the ordered, enriched result for one endpoint. It is plain data;
// ordering fidelity to the tally is its only contract.
type Report struct {
	Endpoint    lg.Endpoint `json:"-"`
	EndpointURL string      `json:"endpoint"`
	GeneratedAt time.Time   `json:"generated_at"`
	RunID       string      `json:"run_id"`
	Rows        []Row       `json:"rows"`
}

// Build zips ranked tally entries with their enrichment results, preserving
// tally order.
func Build(ep lg.Endpoint, generatedAt time.Time, runID string, ranked []asrank.Ranked) *Report {
	rows := make([]Row, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, Row{FilteredRoutes: r.Entry.FilteredRoutes, Record: r.Record})
	}
	metrics.ReportRows.WithLabelValues(ep.Name()).Set(float64(len(rows)))
	return &Report{
		Endpoint:    ep,
		EndpointURL: ep.URL,
		GeneratedAt: generatedAt,
		RunID:       runID,
		Rows:        rows,
	}
}

// WriteText renders the pipe-delimited table.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w,
		"Filtered prefixes @ %s | ASN | AS-NAME | AS Rank | Source | Country | PeeringDB link\n",
		r.EndpointURL); err != nil {
		return err
	}
	for _, row := range r.Rows {
		rec := row.Record
		if _, err := fmt.Fprintf(w, "%d | %d | %s | %s | %s | %s | %s\n",
			row.FilteredRoutes, rec.ASN, rec.Name, rec.Rank, rec.Source, rec.Country, rec.PeeringDBURL); err != nil {
			return err
		}
	}
	return nil
}

// Text renders the table to a string.
func (r *Report) Text() string {
	var sb strings.Builder
	_ = r.WriteText(&sb)
	return sb.String()
}

// WriteJSON renders the report as an indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(r)
}

// Save writes <dir>/<endpoint-name>.txt and .json, creating dir as needed.
func (r *Report) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	stem := filepath.Join(dir, r.Endpoint.Name())

	txt, err := os.Create(stem + ".txt")
	if err != nil {
		return fmt.Errorf("failed to create text report: %w", err)
	}
	defer txt.Close()
	if err := r.WriteText(txt); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	jsn, err := os.Create(stem + ".json")
	if err != nil {
		return fmt.Errorf("failed to create JSON report: %w", err)
	}
	defer jsn.Close()
	if err := r.WriteJSON(jsn); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
