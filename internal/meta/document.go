// Package meta writes the Open Graph and Twitter card document served to
// crawlers, and reads those tags back out of fetched pages.
package meta

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/iconidentify/farlinker/internal/domain"
)

const (
	// TwitterSite is the account credited as the card site.
	TwitterSite = "@farcaster"
	locale      = "en_US"
	ogType      = "article"
)

// Document is everything the crawler page needs.
type Document struct {
	Plan domain.PreviewPlan
	// PageURL is the rewritten link being previewed.
	PageURL string
	// CanonicalURL is the original post on the canonical host.
	CanonicalURL string
	Handle       string
	// Text is shown in the page body for crawlers that render it.
	Text string
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Plan.Title}}</title>
  {{- if .Plan.Description}}
  <meta name="description" content="{{.Plan.Description}}">
  {{- end}}
  <meta property="og:title" content="{{.Plan.Title}}">
  {{- if .Plan.Description}}
  <meta property="og:description" content="{{.Plan.Description}}">
  {{- end}}
  <meta property="og:url" content="{{.PageURL}}">
  {{- if .Plan.SiteName}}
  <meta property="og:site_name" content="{{.Plan.SiteName}}">
  {{- end}}
  <meta property="og:type" content="` + ogType + `">
  <meta property="og:locale" content="` + locale + `">
  {{- if .Plan.ImageURL}}
  <meta property="og:image" content="{{.Plan.ImageURL}}">
  {{- if .Plan.Width}}
  <meta property="og:image:width" content="{{.Plan.Width}}">
  {{- end}}
  {{- if .Plan.Height}}
  <meta property="og:image:height" content="{{.Plan.Height}}">
  {{- end}}
  {{- if .Plan.AltText}}
  <meta property="og:image:alt" content="{{.Plan.AltText}}">
  {{- end}}
  {{- end}}
  <meta name="twitter:card" content="{{.Plan.CardType}}">
  <meta name="twitter:title" content="{{.Plan.Title}}">
  {{- if .Plan.Description}}
  <meta name="twitter:description" content="{{.Plan.Description}}">
  {{- end}}
  <meta name="twitter:creator" content="@{{.Handle}}">
  <meta name="twitter:site" content="` + TwitterSite + `">
  {{- if .Plan.ImageURL}}
  <meta name="twitter:image" content="{{.Plan.ImageURL}}">
  {{- end}}
  <link rel="canonical" href="{{.CanonicalURL}}">
  <link rel="icon" href="/farlinker.png" type="image/png">
</head>
<body style="background-color:#17101f;color:#ffffff;font-family:sans-serif">
  <main style="max-width:640px;margin:0 auto;padding:16px">
    <p>@{{.Handle}}</p>
    {{- if .Text}}
    <p>{{.Text}}</p>
    {{- end}}
    <a href="{{.CanonicalURL}}">View on Farcaster</a>
  </main>
</body>
</html>
`))

// Write renders the document to w.
func Write(w io.Writer, doc Document) error {
	if doc.Plan.CardType == "" {
		doc.Plan.CardType = domain.CardSummary
	}
	if err := page.Execute(w, doc); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}

// Render returns the document as bytes.
func Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
