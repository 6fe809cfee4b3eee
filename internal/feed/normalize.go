package feed

import (
	"regexp"
	"strings"
)

// Alert feed titles arrive with highlight markup escaped into entities, and
// sometimes double-escaped. The decode passes run in order: &amp; first, so a
// sequence like &amp;lt;b&amp;gt; resolves to a real tag before stripping.
var entityDecodePasses = []struct {
	entity string
	text   string
}{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&#x27;", "'"},
	{"&nbsp;", " "},
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// NormalizeTitle turns a raw feed title into human-readable plain text:
// decode the fixed entity set, strip remaining markup tags, trim. It is a
// pure, total function; any string in, a string out.
func NormalizeTitle(s string) string {
	for _, pass := range entityDecodePasses {
		s = strings.ReplaceAll(s, pass.entity, pass.text)
	}
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
