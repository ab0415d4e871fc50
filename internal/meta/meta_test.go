package meta

import (
	"strings"
	"testing"

	"github.com/iconidentify/farlinker/internal/domain"
)

func compositeDoc() Document {
	return Document{
		Plan: domain.PreviewPlan{
			ImageURL:  "https://farlinker.xyz/api/og-post.png?name=Dan&text=gm+%3Cb%3E",
			ImageKind: domain.ImageKindCompositeWithText,
			Width:     600,
			AltText:   "Dan on Farcaster",
			Title:     "Dan (@dwr)",
			CardType:  domain.CardSummaryLargeImage,
		},
		PageURL:      "https://farlinker.xyz/dwr/0xabc12345",
		CanonicalURL: "https://farcaster.xyz/dwr/0xabc12345",
		Handle:       "dwr",
		Text:         "gm <b>",
	}
}

func TestRender_CompositeRoundTrip(t *testing.T) {
	out, err := Render(compositeDoc())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	tags := ExtractTags(string(out))

	want := map[string]string{
		"title":           "Dan (@dwr)",
		"og:title":        "Dan (@dwr)",
		"og:url":          "https://farlinker.xyz/dwr/0xabc12345",
		"og:type":         "article",
		"og:locale":       "en_US",
		"og:image":        "https://farlinker.xyz/api/og-post.png?name=Dan&text=gm+%3Cb%3E",
		"og:image:width":  "600",
		"og:image:alt":    "Dan on Farcaster",
		"twitter:card":    "summary_large_image",
		"twitter:creator": "@dwr",
		"twitter:site":    "@farcaster",
		"twitter:image":   "https://farlinker.xyz/api/og-post.png?name=Dan&text=gm+%3Cb%3E",
	}
	for key, value := range want {
		if got := tags[key]; got != value {
			t.Errorf("%s = %q, want %q", key, got, value)
		}
	}

	// Composite plans leave height and site name to the crawler.
	for _, key := range []string{"og:image:height", "og:site_name", "og:description", "description"} {
		if _, ok := tags[key]; ok {
			t.Errorf("unexpected tag %s = %q", key, tags[key])
		}
	}
}

func TestRender_EscapesBody(t *testing.T) {
	out, err := Render(compositeDoc())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(string(out), "gm <b>") {
		t.Error("body text was not escaped")
	}
	if !strings.Contains(string(out), "gm &lt;b&gt;") {
		t.Error("escaped body text missing")
	}
}

func TestRender_NoImage(t *testing.T) {
	doc := Document{
		Plan: domain.PreviewPlan{
			ImageKind:   domain.ImageKindNone,
			Title:       "Loading cast content...",
			Description: "View on Farcaster",
			SiteName:    "Farcaster",
		},
		PageURL:      "https://farlinker.xyz/dwr/0xabc",
		CanonicalURL: "https://farcaster.xyz/dwr/0xabc",
		Handle:       "dwr",
	}

	out, err := Render(doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	tags := ExtractTags(string(out))

	if tags["twitter:card"] != domain.CardSummary {
		t.Errorf("twitter:card = %q, want summary", tags["twitter:card"])
	}
	if tags["og:description"] != "View on Farcaster" || tags["description"] != "View on Farcaster" {
		t.Errorf("description tags = %q / %q", tags["og:description"], tags["description"])
	}
	if tags["og:site_name"] != "Farcaster" {
		t.Errorf("og:site_name = %q", tags["og:site_name"])
	}
	for _, key := range []string{"og:image", "twitter:image", "og:image:width"} {
		if _, ok := tags[key]; ok {
			t.Errorf("unexpected tag %s", key)
		}
	}
}

func TestRender_EmbeddedImageDimensions(t *testing.T) {
	doc := compositeDoc()
	doc.Plan = domain.PreviewPlan{
		ImageURL:  "https://i.imgur.com/x.png",
		ImageKind: domain.ImageKindEmbeddedImage,
		Width:     1200,
		Height:    630,
		AltText:   "Post by Dan",
		Title:     "Dan",
		CardType:  domain.CardSummaryLargeImage,
	}

	out, err := Render(doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	tags := ExtractTags(string(out))
	if tags["og:image:width"] != "1200" || tags["og:image:height"] != "630" {
		t.Errorf("dimensions = %q x %q", tags["og:image:width"], tags["og:image:height"])
	}
}

func TestExtractTags(t *testing.T) {
	doc := `<html><head>
<title>Hello &amp; welcome</title>
<meta content="Reversed" property="og:title">
<meta property='og:title' content='Second'>
<meta name="twitter:card" content="summary" />
<meta name="viewport" content="width=device-width">
</head></html>`

	tags := ExtractTags(doc)
	if tags["title"] != "Hello & welcome" {
		t.Errorf("title = %q", tags["title"])
	}
	if tags["og:title"] != "Reversed" {
		t.Errorf("og:title = %q, want first occurrence", tags["og:title"])
	}
	if tags["twitter:card"] != "summary" {
		t.Errorf("twitter:card = %q", tags["twitter:card"])
	}
	if _, ok := tags["viewport"]; ok {
		t.Error("viewport should be ignored")
	}
}

func TestReadTags(t *testing.T) {
	tags, err := ReadTags(strings.NewReader(`<meta property="og:image" content="https://x.io/a.png">`))
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}
	if tags["og:image"] != "https://x.io/a.png" {
		t.Errorf("og:image = %q", tags["og:image"])
	}
}
