package format

import (
	"html"
	"regexp"
	"strings"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
	bulletLine     = regexp.MustCompile(`^\s*[-*•]\s*(.*)$`)
)

// textToHTML converts plain text to HTML.
// Blank lines separate paragraphs; bullet lines (-, *, •) are grouped into
// one list per run. Everything is wrapped in a cv-text container.
func textToHTML(src string) string {
	src = crlfOrCR.ReplaceAllString(src, "\n")

	var buf strings.Builder
	buf.WriteString(`<div class="cv-text">`)

	for _, block := range paragraphBreak.Split(src, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		writeTextBlock(&buf, strings.Split(block, "\n"))
	}

	buf.WriteString(`</div>`)
	return buf.String()
}

// writeTextBlock emits one paragraph block, splitting out bullet runs.
func writeTextBlock(buf *strings.Builder, lines []string) {
	var (
		para  []string
		items []string
	)
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		buf.WriteString("<p>")
		buf.WriteString(strings.Join(para, "<br>"))
		buf.WriteString("</p>")
		para = nil
	}
	flushList := func() {
		if len(items) == 0 {
			return
		}
		buf.WriteString("<ul>")
		for _, it := range items {
			buf.WriteString("<li>")
			buf.WriteString(it)
			buf.WriteString("</li>")
		}
		buf.WriteString("</ul>")
		items = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := bulletLine.FindStringSubmatch(trimmed); m != nil {
			flushPara()
			items = append(items, html.EscapeString(m[1]))
			continue
		}
		flushList()
		para = append(para, html.EscapeString(trimmed))
	}
	flushPara()
	flushList()
}

