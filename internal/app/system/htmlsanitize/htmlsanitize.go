// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"
)

// strict removes every tag. Content of script/style elements is dropped
// entirely by bluemonday's defaults.
var strict = bluemonday.StrictPolicy()

// tagLike matches a complete start or end tag. Only matches whose name is a
// known HTML element are handed to the policy as markup.
var tagLike = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9-]*)[^<>]*>`)

// maxPasses bounds re-sanitizing when stripping one tag exposes another,
// as in "<<b>script>".
const maxPasses = 4

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// PlainText strips HTML elements from s and returns trimmed plain text.
// Everything that is not an element tag is kept verbatim: a stray "<", a
// word in angle brackets that is not an HTML element, and entity text such
// as "&lt;" all come back exactly as written.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxPasses && s != ""; i++ {
		next := strings.TrimSpace(sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// IsPlainText reports whether s contains no markup that PlainText would strip.
func IsPlainText(s string) bool {
	return PlainText(s) == strings.TrimSpace(s)
}

// sanitize escapes all text so the policy only sees real element tags, then
// unescapes the policy output once. That single unescape undoes exactly the
// escaping applied here, so entities in the input stay literal.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	last := 0
	for _, m := range tagLike.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(textEscaper.Replace(s[last:m[0]]))
		tag := s[m[0]:m[1]]
		if isElement(s[m[2]:m[3]]) {
			b.WriteString(tag)
		} else {
			b.WriteString(textEscaper.Replace(tag))
		}
		last = m[1]
	}
	b.WriteString(textEscaper.Replace(s[last:]))
	return html.UnescapeString(strict.Sanitize(b.String()))
}

func isElement(name string) bool {
	return atom.Lookup([]byte(strings.ToLower(name))) != 0
}
