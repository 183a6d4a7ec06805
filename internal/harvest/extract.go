package harvest

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInsufficientData reports that a page loaded but no usable identity
// (neither a person name nor a company name) could be extracted. The retry
// controller treats it as a soft failure.
var ErrInsufficientData = errors.New("insufficient data extracted")

const maxLocationLen = 50

// Headings that appear on profile pages but never name a person.
var placeholderHeadings = map[string]struct{}{
	"Active Founders": {},
	"Founders":        {},
	"Co-Founders":     {},
	"Former Founders": {},
}

var (
	batchSeasonRe = regexp.MustCompile(`(?i)\b(WINTER|SUMMER|SPRING|FALL)\s+20\d{2}\b`)
	batchCodeRe   = regexp.MustCompile(`\b[WSFX]\d{2}\b`)

	locationFullRe  = regexp.MustCompile(`[A-Z][a-z]+, [A-Z]{2}, [A-Z]{3}`)
	locationPairRe  = regexp.MustCompile(`[A-Z][a-z]+, [A-Z][a-z]+`)
	locationBasedRe = regexp.MustCompile(`Based in ([^\n.]+)`)
)

var socialDomains = []string{
	"linkedin.com", "twitter.com", "x.com", "facebook.com", "instagram.com", "github.com",
}

// ExtractProfile runs the ordered strategy chain over a profile page state.
// Each strategy fills only fields that are still empty, so the hydration
// payload takes precedence over DOM heuristics field by field. The company
// page backfill (which needs another navigation) is driven by the caller via
// CompanyBaseURL and ExtractCompany.
func ExtractProfile(state PageState, discoveredAt time.Time) (ProfileRecord, error) {
	rec := ProfileRecord{SourceURL: state.URL, DiscoveredAt: discoveredAt}

	fillFromHydration(&rec, state)
	fillFromDOM(&rec, state)

	if !rec.Identified() {
		return ProfileRecord{}, ErrInsufficientData
	}
	return rec, nil
}

func fillFromHydration(rec *ProfileRecord, state PageState) {
	company := state.Company
	if company == nil {
		return
	}
	rec.CompanyName = company.Name
	rec.Website = company.Website
	rec.Batch = company.BatchName
	rec.Location = company.Location
	if company.CompanyPath != "" {
		rec.CompanyPage = strings.TrimSuffix(baseOf(state.URL), "/") + company.CompanyPath
	}

	slug := SlugFromURL(state.URL)
	switch founder := matchFounder(slug, company.Founders); {
	case founder != nil:
		rec.Name = founder.FullName
		rec.LinkedIn = founder.LinkedIn
	case len(company.Founders) > 0:
		// Ambiguous slug: the first listed founder is the page's subject more
		// often than not.
		rec.Name = company.Founders[0].FullName
		rec.LinkedIn = company.Founders[0].LinkedIn
	case slug != "":
		rec.Name = titleCaseSlug(slug)
	}
}

func fillFromDOM(rec *ProfileRecord, state PageState) {
	if rec.Name == "" {
		if _, placeholder := placeholderHeadings[state.Heading]; !placeholder {
			rec.Name = state.Heading
		}
	}
	if rec.CompanyName == "" {
		if anchor := bestCompanyAnchor(state.Anchors); anchor != nil {
			rec.CompanyPage = anchor.Href
			rec.CompanyName = anchor.Text
		}
	}
	if rec.LinkedIn == "" {
		for _, a := range state.Anchors {
			if strings.Contains(a.Href, "linkedin.com/in/") {
				rec.LinkedIn = a.Href
				break
			}
		}
	}
	if rec.Website == "" {
		rec.Website = findWebsite(state.Anchors)
	}
	if rec.Batch == "" {
		rec.Batch = findBatchLabel(state.BodyText)
	}
	if rec.Location == "" {
		rec.Location = findLocation(state.BodyText)
	}
}

// bestCompanyAnchor picks the company link with the longest visible text, the
// heuristic for "most specific". Category, industry, location, and cohort
// index links are excluded, as are links merely labeled "Jobs".
func bestCompanyAnchor(anchors []Anchor) *Anchor {
	var best *Anchor
	for i := range anchors {
		a := &anchors[i]
		if !strings.Contains(a.Href, "/companies/") || a.Text == "" {
			continue
		}
		if strings.Contains(a.Href, "/industry/") ||
			strings.Contains(a.Href, "/location/") ||
			strings.Contains(a.Href, "/batch/") {
			continue
		}
		if strings.Contains(strings.ToLower(a.Text), "jobs") {
			continue
		}
		if best == nil || len(a.Text) > len(best.Text) {
			best = a
		}
	}
	return best
}

func findWebsite(anchors []Anchor) string {
	for _, a := range anchors {
		if a.Label == "Company website" {
			return a.Href
		}
	}
	for _, a := range anchors {
		if !strings.HasPrefix(a.Href, "http") || strings.Contains(a.Href, "ycombinator.com") {
			continue
		}
		if onSocialDomain(a.Href) {
			continue
		}
		return a.Href
	}
	return ""
}

func onSocialDomain(href string) bool {
	for _, domain := range socialDomains {
		if strings.Contains(href, domain) {
			return true
		}
	}
	return false
}

func findBatchLabel(bodyText string) string {
	if m := batchSeasonRe.FindString(bodyText); m != "" {
		return m
	}
	return batchCodeRe.FindString(bodyText)
}

func findLocation(bodyText string) string {
	location := locationFullRe.FindString(bodyText)
	if location == "" {
		location = locationPairRe.FindString(bodyText)
	}
	if location == "" {
		if m := locationBasedRe.FindStringSubmatch(bodyText); m != nil {
			location = m[1]
		}
	}
	if len(location) > maxLocationLen {
		cut := maxLocationLen
		// Back up to a rune boundary so the cap never splits a character.
		for cut > 0 && !utf8.RuneStart(location[cut]) {
			cut--
		}
		location = location[:cut]
	}
	return location
}

// CompanyDetails is the narrow result of the company-page backfill.
type CompanyDetails struct {
	Name    string
	Website string
}

// Headings on company pages that are navigation chrome, not the company name.
var companyChromeHeadings = map[string]struct{}{
	"jobs": {}, "news": {}, "company": {},
}

// ExtractCompany runs the narrower company-page extraction: official name and
// website only.
func ExtractCompany(state PageState) CompanyDetails {
	var details CompanyDetails
	if state.Company != nil {
		details.Name = state.Company.Name
		details.Website = state.Company.Website
	}
	if details.Name == "" {
		heading := state.Heading
		lower := strings.ToLower(heading)
		_, chrome := companyChromeHeadings[lower]
		if heading != "" && !chrome && !strings.Contains(lower, "jobs at") {
			details.Name = heading
		}
	}
	if details.Website == "" {
		for _, a := range state.Anchors {
			if a.Label == "Company website" {
				details.Website = a.Href
				break
			}
		}
	}
	return details
}

// Backfill merges company-page details into the record. Fields already
// populated from the profile page are kept.
func (r *ProfileRecord) Backfill(details CompanyDetails) {
	if r.CompanyName == "" && details.Name != "" {
		r.CompanyName = details.Name
	}
	if r.Website == "" && details.Website != "" {
		r.Website = details.Website
	}
}

// NeedsBackfill reports whether a company-page visit could still add value:
// a distinct company page is known and the website is missing.
func (r ProfileRecord) NeedsBackfill() bool {
	return r.CompanyPage != "" && r.Website == ""
}

// CompanyBaseURL strips job listings, fragments, and query strings from a
// company URL so the backfill lands on the company's root page.
func CompanyBaseURL(raw string) string {
	if i := strings.Index(raw, "/jobs"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexAny(raw, "#?"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func baseOf(rawURL string) string {
	rest := rawURL
	scheme := ""
	if i := strings.Index(rest, "://"); i >= 0 {
		scheme = rest[:i+3]
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return scheme + rest
}
