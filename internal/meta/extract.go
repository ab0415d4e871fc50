package meta

import (
	"html"
	"io"
	"regexp"
	"strings"
)

// maxHeadBytes bounds how much of a page is scanned for tags.
const maxHeadBytes = 64 * 1024

var (
	metaTagRegex  = regexp.MustCompile(`(?is)<meta\s+([^>]*?)/?>`)
	attrRegex     = regexp.MustCompile(`(?s)([a-zA-Z_:][-a-zA-Z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	titleTagRegex = regexp.MustCompile(`(?is)<title[^>]*>([^<]*)</title>`)
)

// Tags maps og:* and twitter:* keys to their content. The document title
// is stored under "title" and the plain description under "description".
type Tags map[string]string

// ReadTags scans the head of a page for preview tags.
func ReadTags(r io.Reader) (Tags, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxHeadBytes))
	if err != nil {
		return nil, err
	}
	return ExtractTags(string(body)), nil
}

// ExtractTags pulls preview tags out of an HTML document. The first
// occurrence of a key wins.
func ExtractTags(doc string) Tags {
	tags := Tags{}

	if m := titleTagRegex.FindStringSubmatch(doc); m != nil {
		tags["title"] = html.UnescapeString(strings.TrimSpace(m[1]))
	}

	for _, m := range metaTagRegex.FindAllStringSubmatch(doc, -1) {
		attrs := parseAttrs(m[1])
		key := attrs["property"]
		if key == "" {
			key = attrs["name"]
		}
		key = strings.ToLower(key)
		if !isPreviewKey(key) {
			continue
		}
		if _, seen := tags[key]; seen {
			continue
		}
		tags[key] = attrs["content"]
	}

	return tags
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRegex.FindAllStringSubmatch(s, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[strings.ToLower(m[1])] = html.UnescapeString(value)
	}
	return attrs
}

func isPreviewKey(key string) bool {
	return key == "description" || strings.HasPrefix(key, "og:") || strings.HasPrefix(key, "twitter:")
}
