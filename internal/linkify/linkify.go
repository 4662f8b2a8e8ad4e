// Package linkify turns a free-form contact block into HTML with clickable
// e-mail, phone and web links.
//
// Rules run once each, in a fixed order. Earlier rules claim the text they
// wrap, and later rules skip anything that already sits inside an attribute
// or an anchor, so the order below decides which label a URL receives.
package linkify

import (
	"html"
	"regexp"
	"strings"
)

// Anchor attributes for links that leave the document.
const externalAttrs = `target="_blank" rel="noopener noreferrer"`

// notLinked matches the position before a bare token that is not already
// part of an attribute value or anchor text. A preceding line break counts
// as free text because newlines are converted first.
const notLinked = `(^|<br>|[^"'>])`

// urlChars is the body of a URL in escaped text. Entities other than &amp;
// stand for quotes and angle brackets, so they end the URL.
const urlChars = `(?:[^\s<>"&]|&amp;)+`

// Hrefs written by earlier passes. The email and phone patterns list them
// as an alternative left context so a match on their own output is found
// there first and kept as is. Escaped input never holds a literal quote.
const (
	mailtoHref = `href="mailto:`
	telHref    = `href="tel:`
)

// Rule is one linkify substitution.
// Replace receives the submatches of Pattern, index 0 being the whole match.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace func(groups []string) string
}

// Rules is the ordered rule list applied by Apply.
var Rules = []Rule{
	{
		Name:    "newline",
		Pattern: regexp.MustCompile(`\r\n|\r|\n`),
		Replace: func([]string) string { return "<br>" },
	},
	{
		Name:    "linkedin-emoji",
		Pattern: regexp.MustCompile(`(?i)🔗\s*(https?://(?:www\.)?linkedin\.com/in/` + urlChars + `)`),
		Replace: func(g []string) string { return "🔗 " + anchor(g[1], "LinkedIn Profile") },
	},
	{
		Name:    "github-emoji",
		Pattern: regexp.MustCompile(`(?i)💻\s*(https?://(?:www\.)?github\.com/` + urlChars + `)`),
		Replace: func(g []string) string { return "💻 " + anchor(g[1], "GitHub Profile") },
	},
	{
		Name:    "email",
		Pattern: regexp.MustCompile(`(` + mailtoHref + `|^|<br>|[^"'>/=A-Za-z0-9._%+-])([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`),
		Replace: func(g []string) string {
			if g[1] == mailtoHref {
				return g[0]
			}
			return g[1] + `<a href="mailto:` + g[2] + `">` + g[2] + `</a>`
		},
	},
	{
		Name:    "phone-emoji",
		Pattern: regexp.MustCompile(`📞\s*(\+?[\d(][\d \t\-()]*\d)`),
		Replace: func(g []string) string { return "📞 " + telAnchor(g[1]) },
	},
	{
		Name:    "phone",
		Pattern: regexp.MustCompile(`(` + telHref + `|^|<br>|[^\w"'>+/=.-])(\+\d[\d \t\-().]{6,}\d)`),
		Replace: func(g []string) string {
			if g[1] == telHref {
				return g[0]
			}
			return g[1] + telAnchor(g[2])
		},
	},
	{
		Name:    "linkedin",
		Pattern: regexp.MustCompile(`(?i)` + notLinked + `(https?://(?:www\.)?linkedin\.com/in/` + urlChars + `)`),
		Replace: func(g []string) string { return g[1] + anchor(g[2], "LinkedIn Profile") },
	},
	{
		Name:    "github",
		Pattern: regexp.MustCompile(`(?i)` + notLinked + `(https?://(?:www\.)?github\.com/` + urlChars + `)`),
		Replace: func(g []string) string { return g[1] + anchor(g[2], "GitHub Profile") },
	},
	{
		Name:    "url",
		Pattern: regexp.MustCompile(notLinked + `(https?://` + urlChars + `)`),
		Replace: func(g []string) string { return g[1] + anchor(g[2], g[2]) },
	},
}

// Contact escapes raw contact text and linkifies it.
func Contact(raw string) string {
	return Apply(html.EscapeString(raw))
}

// Apply runs every rule over s in order. s must already be HTML-escaped.
// Apply is idempotent: running it on its own output changes nothing.
func Apply(s string) string {
	for _, r := range Rules {
		s = replace(r.Pattern, s, r.Replace)
	}
	return s
}

// replace is regexp.ReplaceAllStringFunc with access to submatches.
func replace(re *regexp.Regexp, s string, fn func([]string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + len(matches)*64)
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}
		sb.WriteString(s[last:m[0]])
		sb.WriteString(fn(groups))
		last = m[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

func anchor(href, label string) string {
	return `<a href="` + href + `" ` + externalAttrs + `>` + label + `</a>`
}

// telAnchor links a phone number, keeping the literal text as the label.
func telAnchor(number string) string {
	return `<a href="tel:` + dialable(number) + `">` + number + `</a>`
}

// dialable reduces a phone number to its leading plus and digits.
func dialable(number string) string {
	var sb strings.Builder
	for i, r := range number {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
