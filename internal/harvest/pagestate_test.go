package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const hydratedProfileHTML = `<html><body>
<div data-page='{"props":{"company":{"name":"Acme","website":"https://acme.example.com","ycdc_company_url":"/companies/acme","batch_name":"W22","location":"San Francisco, CA, USA","founders":[{"full_name":"Jane Doe","linkedin_url":"https://linkedin.com/in/janedoe"}]}}}'></div>
<h1>Jane Doe</h1>
<a href="/companies/acme">Acme</a>
<a href="https://linkedin.com/in/janedoe">LinkedIn</a>
</body></html>`

func TestParsePage_HydrationPayload(t *testing.T) {
	t.Parallel()

	state, err := ParsePage("https://www.ycombinator.com/founders/jane-doe", hydratedProfileHTML)
	require.NoError(t, err)
	require.NotNil(t, state.Company)
	require.Equal(t, "Acme", state.Company.Name)
	require.Equal(t, "/companies/acme", state.Company.CompanyPath)
	require.Len(t, state.Company.Founders, 1)
	require.Equal(t, "Jane Doe", state.Company.Founders[0].FullName)
	require.Equal(t, "Jane Doe", state.Heading)
}

func TestParsePage_MalformedHydrationDegrades(t *testing.T) {
	t.Parallel()

	html := `<html><body><div data-page='{"props":'></div><h1>Jane Doe</h1></body></html>`
	state, err := ParsePage("https://www.ycombinator.com/founders/jane-doe", html)
	require.NoError(t, err)
	require.Nil(t, state.Company)
	require.Equal(t, "Jane Doe", state.Heading)
}

func TestParsePage_ResolvesRelativeAnchors(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<a href="/companies/acme">Acme</a>
<a href="https://acme.example.com" aria-label="Company website">acme.example.com</a>
<a href="javascript:void(0)">noise</a>
<a href="mailto:jane@acme.example.com">mail</a>
</body></html>`
	state, err := ParsePage("https://www.ycombinator.com/founders/jane-doe", html)
	require.NoError(t, err)
	require.Len(t, state.Anchors, 2)
	require.Equal(t, "https://www.ycombinator.com/companies/acme", state.Anchors[0].Href)
	require.Equal(t, "Acme", state.Anchors[0].Text)
	require.Equal(t, "Company website", state.Anchors[1].Label)
}

func TestParsePage_FirstHeadingWins(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Jane Doe</h1><h1>Active Founders</h1></body></html>`
	state, err := ParsePage("https://www.ycombinator.com/founders/jane-doe", html)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", state.Heading)
}

func TestParsePage_BadPageURL(t *testing.T) {
	t.Parallel()

	_, err := ParsePage("://not-a-url", "<html></html>")
	require.Error(t, err)
}
