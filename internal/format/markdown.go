package format

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Placeholders use Unicode Private Use Area characters so they never
// collide with user text. Fenced blocks and inline spans are swapped out
// before line processing and restored afterwards, which keeps their
// contents from being read as Markdown.
const (
	blockStart  = "\uE000"
	blockEnd    = "\uE001"
	inlineStart = "\uE002"
	inlineEnd   = "\uE003"
)

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// privateUse strips placeholder characters smuggled in by the user.
	privateUse = regexp.MustCompile(`[\x{E000}-\x{E003}]`)

	fenceOpen     = regexp.MustCompile("^\\s*(```+|~~~+)\\s*([\\w+#.-]*)\\s*$")
	headingLine   = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	ruleLine      = regexp.MustCompile(`^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
	unorderedItem = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	orderedItem   = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	blockLine     = regexp.MustCompile("^" + blockStart + `(\d+)` + blockEnd + "$")

	inlineCode   = regexp.MustCompile("`([^`]+)`")
	inlineLink   = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)
	boldStars    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnders   = regexp.MustCompile(`__(.+?)__`)
	italicStar   = regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)
	italicUnder  = regexp.MustCompile(`\b_([^_]+)_\b`)
	inlineMarker = regexp.MustCompile(inlineStart + `(\d+)` + inlineEnd)
)

// codeBlock is a fenced block lifted out of the source.
type codeBlock struct {
	lang string
	body string
}

// LineConverter is the built-in line-oriented Markdown converter.
//
// It supports ATX headings, unordered and ordered lists, horizontal rules,
// fenced code blocks, inline code, bold, italic and http(s) links. A blank
// line closes any open list. The output is not sanitized; callers run it
// through Sanitize.
type LineConverter struct{}

// Convert renders Markdown source to an HTML fragment.
func (LineConverter) Convert(src string) string {
	src = crlfOrCR.ReplaceAllString(src, "\n")
	src = privateUse.ReplaceAllString(src, "")

	lines, blocks := extractFences(strings.Split(src, "\n"))

	var out []string
	openList := ""
	closeList := func() {
		if openList != "" {
			out = append(out, "</"+openList+">")
			openList = ""
		}
	}
	startList := func(tag string) {
		if openList == tag {
			return
		}
		closeList()
		out = append(out, "<"+tag+">")
		openList = tag
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			closeList()
		case blockLine.MatchString(trimmed):
			closeList()
			out = append(out, trimmed)
		case ruleLine.MatchString(line):
			closeList()
			out = append(out, "<hr>")
		case headingLine.MatchString(trimmed):
			closeList()
			m := headingLine.FindStringSubmatch(trimmed)
			level := strconv.Itoa(len(m[1]))
			out = append(out, "<h"+level+">"+renderInline(m[2])+"</h"+level+">")
		case unorderedItem.MatchString(line):
			startList("ul")
			m := unorderedItem.FindStringSubmatch(line)
			out = append(out, "<li>"+renderInline(m[1])+"</li>")
		case orderedItem.MatchString(line):
			startList("ol")
			m := orderedItem.FindStringSubmatch(line)
			out = append(out, "<li>"+renderInline(m[1])+"</li>")
		default:
			closeList()
			out = append(out, "<p>"+renderInline(trimmed)+"</p>")
		}
	}
	closeList()

	return restoreFences(strings.Join(out, "\n"), blocks)
}

// extractFences replaces every fenced block with a single placeholder line.
// An unterminated fence runs to the end of the input.
func extractFences(lines []string) ([]string, []codeBlock) {
	var (
		out    []string
		blocks []codeBlock
	)

	for i := 0; i < len(lines); i++ {
		m := fenceOpen.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			continue
		}

		fence := m[1]
		var body []string
		j := i + 1
		for ; j < len(lines); j++ {
			if strings.HasPrefix(strings.TrimSpace(lines[j]), fence[:3]) &&
				strings.Trim(strings.TrimSpace(lines[j]), fence[:1]) == "" {
				break
			}
			body = append(body, lines[j])
		}

		out = append(out, blockStart+strconv.Itoa(len(blocks))+blockEnd)
		blocks = append(blocks, codeBlock{lang: m[2], body: strings.Join(body, "\n")})
		i = j
	}
	return out, blocks
}

// restoreFences swaps block placeholders back for escaped <pre><code> blocks.
func restoreFences(rendered string, blocks []codeBlock) string {
	if len(blocks) == 0 {
		return rendered
	}
	pairs := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		var sb strings.Builder
		sb.WriteString("<pre><code")
		if b.lang != "" {
			sb.WriteString(` class="language-`)
			sb.WriteString(html.EscapeString(b.lang))
			sb.WriteString(`"`)
		}
		sb.WriteString(">")
		sb.WriteString(html.EscapeString(b.body))
		sb.WriteString("</code></pre>")
		pairs = append(pairs, blockStart+strconv.Itoa(i)+blockEnd, sb.String())
	}
	return strings.NewReplacer(pairs...).Replace(rendered)
}

// renderInline escapes text and applies inline Markdown.
// Code spans and links are parked behind placeholders so emphasis rules
// never reach inside them.
func renderInline(text string) string {
	text = html.EscapeString(text)

	var parked []string
	park := func(fragment string) string {
		parked = append(parked, fragment)
		return inlineStart + strconv.Itoa(len(parked)-1) + inlineEnd
	}

	text = inlineCode.ReplaceAllStringFunc(text, func(m string) string {
		inner := inlineCode.FindStringSubmatch(m)[1]
		return park("<code>" + inner + "</code>")
	})
	text = inlineLink.ReplaceAllStringFunc(text, func(m string) string {
		sub := inlineLink.FindStringSubmatch(m)
		return park(`<a href="` + sub[2] + `">` + emphasize(sub[1]) + "</a>")
	})
	text = emphasize(text)

	if len(parked) == 0 {
		return text
	}
	return inlineMarker.ReplaceAllStringFunc(text, func(m string) string {
		idx, err := strconv.Atoi(inlineMarker.FindStringSubmatch(m)[1])
		if err != nil || idx >= len(parked) {
			return ""
		}
		return parked[idx]
	})
}

// emphasize applies bold before italic so ** is never read as two *.
func emphasize(text string) string {
	text = boldStars.ReplaceAllString(text, "<strong>$1</strong>")
	text = boldUnders.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicStar.ReplaceAllString(text, "<em>$1</em>")
	text = italicUnder.ReplaceAllString(text, "<em>$1</em>")
	return text
}
