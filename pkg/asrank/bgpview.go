package asrank

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgossip/pgossip/pkg/fetch"
)

// DefaultBGPViewBaseURL is the public BGPView API.
const DefaultBGPViewBaseURL = "https://api.bgpview.io"

// BGPViewResolver looks ASNs up in the BGPView API. It has no rank data but
// carries contact emails, which CAIDA does not.
type BGPViewResolver struct {
	BaseURL string
	Fetch   *fetch.Client
}

type bgpviewResponse struct {
	Status string `json:"status"`
	Data   struct {
		Name             string   `json:"name"`
		DescriptionShort string   `json:"description_short"`
		CountryCode      string   `json:"country_code"`
		EmailContacts    []string `json:"email_contacts"`
		RIRAllocation    struct {
			RIRName string `json:"rir_name"`
		} `json:"rir_allocation"`
	} `json:"data"`
}

func (r *BGPViewResolver) Name() string { return "bgpview" }

func (r *BGPViewResolver) Lookup(ctx context.Context, asn uint32) (Record, error) {
	base := r.BaseURL
	if base == "" {
		base = DefaultBGPViewBaseURL
	}
	body, err := r.Fetch.Get(ctx, fmt.Sprintf("%s/asn/%d", base, asn), nil)
	if err != nil {
		return Record{}, fmt.Errorf("failed to query BGPView for AS%d: %w", asn, err)
	}

	var resp bgpviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Record{}, fmt.Errorf("failed to decode BGPView response for AS%d: %w", asn, err)
	}
	if resp.Status != "ok" {
		return Record{}, fmt.Errorf("AS%d has no BGPView entry (status %q)", asn, resp.Status)
	}

	rec := Placeholder(asn)
	switch {
	case resp.Data.Name != "":
		rec.Name = resp.Data.Name
	case resp.Data.DescriptionShort != "":
		rec.Name = resp.Data.DescriptionShort
	}
	if resp.Data.CountryCode != "" {
		rec.Country = resp.Data.CountryCode
	}
	if resp.Data.RIRAllocation.RIRName != "" {
		rec.Source = resp.Data.RIRAllocation.RIRName
	}
	rec.Emails = resp.Data.EmailContacts
	return rec, nil
}
