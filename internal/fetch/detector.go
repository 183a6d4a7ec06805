package fetch

import "strings"

// Heuristic decides when a statically fetched document needs a real browser
// render before extraction.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a detector with a sane default threshold.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

// ShouldPromote reports whether the static document is too thin to extract
// from. A document carrying a server-rendered hydration payload is always
// good enough; otherwise small script-heavy shells get promoted.
func (h *Heuristic) ShouldPromote(html string) bool {
	if len(html) == 0 {
		return true
	}
	if strings.Contains(html, "data-page") {
		return false
	}
	if len(html) < h.BodyLengthThreshold && scriptDensityHigh(html) {
		return true
	}
	// A profile or company page without hydration data still needs its
	// anchors present for the DOM fallbacks to work.
	return !strings.Contains(html, "</a>")
}

func scriptDensityHigh(html string) bool {
	lower := strings.ToLower(html)
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	scriptCoverage := 0
	searchPos := 0

	for {
		relativeStart := strings.Index(lower[searchPos:], openTag)
		if relativeStart == -1 {
			break
		}
		start := searchPos + relativeStart

		tagClose := strings.IndexByte(lower[start:], '>')
		if tagClose == -1 {
			// Treat the rest of the document as part of the malformed script.
			scriptCoverage += total - start
			break
		}
		contentStart := start + tagClose + 1

		relativeEnd := strings.Index(lower[contentStart:], closeTag)
		var nextSearch int
		if relativeEnd == -1 {
			// Script tag never closes; count the rest.
			nextSearch = total
		} else {
			nextSearch = contentStart + relativeEnd + len(closeTag)
		}

		scriptCoverage += nextSearch - start
		searchPos = nextSearch
	}

	if scriptCoverage == 0 {
		return false
	}
	return scriptCoverage*100/total >= 25
}
