package harvest

import (
	"strings"
	"unicode"
)

// SlugFromURL extracts the profile slug from a founder URL, e.g.
// ".../founders/jane-doe?x=1" -> "jane-doe".
func SlugFromURL(rawURL string) string {
	_, after, found := strings.Cut(rawURL, "/founders/")
	if !found {
		return ""
	}
	if i := strings.IndexAny(after, "?#"); i >= 0 {
		after = after[:i]
	}
	return strings.Trim(after, "/")
}

// nameVariants returns the normalized comparison forms of a display name:
// lowercased raw, alphanumeric-only, and hyphen-joined. Slug matching tries
// each because the catalog is inconsistent about how names become slugs.
func nameVariants(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}
	var alnum, hyphen strings.Builder
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			alnum.WriteRune(r)
			hyphen.WriteRune(r)
		case unicode.IsSpace(r):
			hyphen.WriteRune('-')
		}
	}
	return []string{lower, alnum.String(), hyphen.String()}
}

// matchFounder resolves which founder a profile slug refers to. A founder
// matches when any normalized variant of their name contains the normalized
// slug, or their LinkedIn URL contains the raw slug.
func matchFounder(slug string, founders []FounderProps) *FounderProps {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil
	}
	slugAlnum := stripNonAlnum(slug)
	for i := range founders {
		f := &founders[i]
		for _, variant := range nameVariants(f.FullName) {
			if strings.Contains(variant, slug) || (slugAlnum != "" && strings.Contains(stripNonAlnum(variant), slugAlnum)) {
				return f
			}
		}
		if f.LinkedIn != "" && strings.Contains(strings.ToLower(f.LinkedIn), slug) {
			return f
		}
	}
	return nil
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// titleCaseSlug fabricates a display name from a slug: "jane-doe" -> "Jane Doe".
func titleCaseSlug(slug string) string {
	parts := strings.Split(slug, "-")
	out := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		out = append(out, string(runes))
	}
	return strings.Join(out, " ")
}
