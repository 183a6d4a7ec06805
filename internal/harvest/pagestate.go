package harvest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is one link visible on a page.
type Anchor struct {
	Href  string
	Text  string
	Label string // aria-label, when present
}

// FounderProps is one founder entry inside the hydration payload.
type FounderProps struct {
	FullName string `json:"full_name"`
	LinkedIn string `json:"linkedin_url"`
}

// CompanyProps is the company object embedded in the page's client-side
// hydration payload.
type CompanyProps struct {
	Name        string         `json:"name"`
	Website     string         `json:"website"`
	CompanyPath string         `json:"ycdc_company_url"`
	BatchName   string         `json:"batch_name"`
	Location    string         `json:"location"`
	Founders    []FounderProps `json:"founders"`
}

// PageState is a host-language snapshot of one loaded page. Extraction
// strategies operate on it exclusively, so they can be exercised against
// fixtures without a browser.
type PageState struct {
	URL      string
	Company  *CompanyProps
	Heading  string
	Anchors  []Anchor
	BodyText string
}

type hydrationPayload struct {
	Props struct {
		Company *CompanyProps `json:"company"`
	} `json:"props"`
}

// ParsePage builds a PageState from rendered (or server-rendered) HTML.
// A malformed hydration payload degrades to the DOM-only state rather than
// failing the parse; the strategy chain handles the absence.
func ParsePage(pageURL, html string) (PageState, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PageState{}, fmt.Errorf("parse page html: %w", err)
	}

	state := PageState{
		URL:      pageURL,
		Heading:  strings.TrimSpace(doc.Find("h1").First().Text()),
		BodyText: doc.Find("body").Text(),
	}

	if raw, ok := doc.Find("[data-page]").First().Attr("data-page"); ok {
		var payload hydrationPayload
		if jsonErr := json.Unmarshal([]byte(raw), &payload); jsonErr == nil {
			state.Company = payload.Props.Company
		}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return PageState{}, fmt.Errorf("parse page url %q: %w", pageURL, err)
	}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := resolveHref(base, href)
		if resolved == "" {
			return
		}
		label, _ := sel.Attr("aria-label")
		state.Anchors = append(state.Anchors, Anchor{
			Href:  resolved,
			Text:  strings.TrimSpace(sel.Text()),
			Label: label,
		})
	})
	return state, nil
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
