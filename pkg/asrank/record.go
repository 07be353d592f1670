// Package asrank resolves ASNs against public registry APIs (CAIDA AS Rank,
// BGPView) and enriches a ranked tally with the results. Lookups are
// best-effort: an ASN whose lookup fails keeps its ranked position with
// placeholder fields.
package asrank

import "fmt"

// Unknown is the placeholder for registry fields a lookup could not fill.
const Unknown = "NA"

// Record is the registry metadata for one ASN.
type Record struct {
	ASN          uint32   `json:"asn"`
	Name         string   `json:"name"`
	Rank         string   `json:"rank"`
	Source       string   `json:"source"`
	Country      string   `json:"country"`
	PeeringDBURL string   `json:"peeringdb_url"`
	Emails       []string `json:"emails,omitempty"`
}

// Placeholder returns the record used when a lookup fails: every registry
// field unknown, but the entry still usable in a report.
func Placeholder(asn uint32) Record {
	return Record{
		ASN:          asn,
		Name:         Unknown,
		Rank:         Unknown,
		Source:       Unknown,
		Country:      Unknown,
		PeeringDBURL: PeeringDBURL(asn),
	}
}

// PeeringDBURL returns the PeeringDB page for an ASN.
func PeeringDBURL(asn uint32) string {
	return fmt.Sprintf("https://www.peeringdb.com/asn/%d", asn)
}

// PrivateASN reports whether asn falls in an RFC 6996 private-use range.
// Route servers at some IXPs peer under private ASNs; those have no registry
// entry and are not worth a lookup.
func PrivateASN(asn uint32) bool {
	return (asn >= 64512 && asn <= 65534) || (asn >= 4200000000 && asn <= 4294967294)
}

func privateRecord(asn uint32) Record {
	return Record{
		ASN:          asn,
		Name:         "Private ASN",
		Rank:         Unknown,
		Source:       Unknown,
		Country:      Unknown,
		PeeringDBURL: PeeringDBURL(asn),
	}
}
