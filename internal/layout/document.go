package layout

import (
	"html"
	"strings"
)

// Document is a minimal HTML page shell around a rendered body.
type Document struct {
	Lang  string // defaults to "en"
	Title string
	Body  string // trusted HTML
}

// HTML serializes the document. The title is escaped, the body is not.
func (d Document) HTML() string {
	lang := d.Lang
	if lang == "" {
		lang = "en"
	}

	var sb strings.Builder
	sb.Grow(len(d.Body) + 256)
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"")
	sb.WriteString(html.EscapeString(lang))
	sb.WriteString("\">\n<head>\n<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n<title>")
	sb.WriteString(html.EscapeString(d.Title))
	sb.WriteString("</title>\n</head>\n<body>\n")
	sb.WriteString(d.Body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

// InjectCSS inserts a <style> block into an HTML document.
// Tries </head> first, then after <body>, then prepends.
func InjectCSS(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	block := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}

	if idx := strings.Index(lower, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			pos := idx + closeIdx + 1
			return htmlContent[:pos] + block + htmlContent[pos:]
		}
	}

	return block + htmlContent
}

// InjectScript inserts a <script> block just before </body>, or appends it.
func InjectScript(htmlContent, script string) string {
	if script == "" {
		return htmlContent
	}

	block := "<script>" + strings.ReplaceAll(script, "</", `<\/`) + "</script>"
	if idx := strings.LastIndex(strings.ToLower(htmlContent), "</body>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}
	return htmlContent + block
}

// sanitizeCSS escapes sequences that could close the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
