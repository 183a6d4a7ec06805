// Package harvest implements the founder-catalog harvesting pipeline: frontier
// discovery, per-profile extraction, identity merge, and checkpointed publish.
package harvest

import (
	"strings"
	"time"
)

// Batch identifies one listing partition of the catalog (a program intake
// cohort such as "W24" or "F25").
type Batch string

// ProfileRecord is one extracted founder. Every field except SourceURL is
// optional; absence is an empty string so all records share one shape.
type ProfileRecord struct {
	Name         string    `json:"name"`
	LinkedIn     string    `json:"linkedin"`
	CompanyName  string    `json:"companyName"`
	CompanyPage  string    `json:"companyPage"`
	Website      string    `json:"website"`
	Batch        string    `json:"batch"`
	Location     string    `json:"location"`
	SourceURL    string    `json:"sourceUrl"`
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// IdentityKey links records that describe the same real-world founder.
type IdentityKey string

// Key derives the record's identity. The LinkedIn handle is a globally unique
// signal and wins when present; otherwise the (name, company) pair is used.
// Two different people sharing a name and company fuse under the fallback key;
// that approximation is accepted.
func (r ProfileRecord) Key() IdentityKey {
	if handle := strings.ToLower(strings.TrimRight(strings.TrimSpace(r.LinkedIn), "/")); handle != "" {
		return IdentityKey("handle\x00" + handle)
	}
	return IdentityKey("pair\x00" + strings.ToLower(strings.TrimSpace(r.Name)) +
		"\x00" + strings.ToLower(strings.TrimSpace(r.CompanyName)))
}

// Identified reports whether the record carries enough identity to keep.
// A record with neither a person name nor a company name is unusable.
func (r ProfileRecord) Identified() bool {
	return r.Name != "" || r.CompanyName != ""
}

// Checkpoint is the durable snapshot pairing all merged records with the set
// of source URLs whose extraction has completed (successfully or not).
type Checkpoint struct {
	Data          []ProfileRecord `json:"data"`
	ProcessedURLs []string        `json:"processed_urls"`
}

// Counters tracks per-run success and failure totals.
type Counters struct {
	Discovered int `json:"discovered"`
	Skipped    int `json:"skipped"`
	Extracted  int `json:"extracted"`
	Failed     int `json:"failed"`
	Commits    int `json:"commits"`
}

// RecordHeader is the column order used for every tabular snapshot handed to
// sinks. Cell values are pre-stringified so sinks never coerce types.
var RecordHeader = []string{
	"name", "linkedin", "companyName", "companyPage",
	"website", "batch", "location", "sourceUrl", "discoveredAt",
}

// Row renders the record in RecordHeader order.
func (r ProfileRecord) Row() []string {
	discovered := ""
	if !r.DiscoveredAt.IsZero() {
		discovered = r.DiscoveredAt.UTC().Format(time.RFC3339)
	}
	return []string{
		r.Name, r.LinkedIn, r.CompanyName, r.CompanyPage,
		r.Website, r.Batch, r.Location, r.SourceURL, discovered,
	}
}
