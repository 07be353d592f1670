package asrank

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgossip/pgossip/pkg/fetch"
)

// DefaultCAIDABaseURL is the public CAIDA AS Rank REST API.
const DefaultCAIDABaseURL = "https://api.asrank.caida.org/v2/restful"

// CAIDAResolver looks ASNs up in the CAIDA AS Rank API.
type CAIDAResolver struct {
	BaseURL string
	Fetch   *fetch.Client
}

type caidaResponse struct {
	Data struct {
		ASN *struct {
			ASNName string      `json:"asnName"`
			Rank    json.Number `json:"rank"`
			Source  string      `json:"source"`
			Country struct {
				ISO string `json:"iso"`
			} `json:"country"`
		} `json:"asn"`
	} `json:"data"`
}

func (r *CAIDAResolver) Name() string { return "caida" }

func (r *CAIDAResolver) Lookup(ctx context.Context, asn uint32) (Record, error) {
	base := r.BaseURL
	if base == "" {
		base = DefaultCAIDABaseURL
	}
	body, err := r.Fetch.Get(ctx, fmt.Sprintf("%s/asns/%d", base, asn), nil)
	if err != nil {
		return Record{}, fmt.Errorf("failed to query AS Rank for AS%d: %w", asn, err)
	}

	var resp caidaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Record{}, fmt.Errorf("failed to decode AS Rank response for AS%d: %w", asn, err)
	}
	if resp.Data.ASN == nil {
		return Record{}, fmt.Errorf("AS%d has no AS Rank entry", asn)
	}

	rec := Placeholder(asn)
	if resp.Data.ASN.ASNName != "" {
		rec.Name = resp.Data.ASN.ASNName
	}
	if resp.Data.ASN.Rank.String() != "" {
		rec.Rank = resp.Data.ASN.Rank.String()
	}
	if resp.Data.ASN.Source != "" {
		rec.Source = resp.Data.ASN.Source
	}
	if resp.Data.ASN.Country.ISO != "" {
		rec.Country = resp.Data.ASN.Country.ISO
	}
	return rec, nil
}
