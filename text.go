package cvbuilder

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()

	photoBlock  = regexp.MustCompile(`(?is)<div class="cv-photo">.*?</div>`)
	listItem    = regexp.MustCompile(`(?i)<li\b[^>]*>`)
	lineBreak   = regexp.MustCompile(`(?i)<br\s*/?>|<hr\b[^>]*>`)
	blockEnd    = regexp.MustCompile(`(?i)</(?:p|div|section|h[1-6]|ul|ol|pre|table|tr)>`)
	headingEnd  = regexp.MustCompile(`(?i)</h[1-6]>`)
	spaceRun    = regexp.MustCompile(`[ \t]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	bodyContent = regexp.MustCompile(`(?is)<body\b[^>]*>(.*)</body>`)
)

// ToText strips a rendered CV down to plain text. Block elements end lines,
// list items become "- " bullets and headings are followed by a blank line.
// The photo frame is dropped.
func ToText(rendered string) string {
	s := rendered
	if m := bodyContent.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = photoBlock.ReplaceAllString(s, "")
	s = listItem.ReplaceAllString(s, "\n- ")
	s = lineBreak.ReplaceAllString(s, "\n")
	s = headingEnd.ReplaceAllString(s, "\n\n")
	s = blockEnd.ReplaceAllString(s, "\n")

	s = html.UnescapeString(textPolicy.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s) + "\n"
}
