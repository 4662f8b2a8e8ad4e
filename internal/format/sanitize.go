package format

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags lists the elements that survive sanitization, mapped to the
// attributes each may keep. Any other element is flattened to its text.
var allowedTags = map[string]map[string]bool{
	"div":     {"class": true},
	"section": {"class": true},
	"h1":      {},
	"h2":      {},
	"h3":      {},
	"h4":      {},
	"h5":      {},
	"h6":      {},
	"p":       {"class": true},
	"ul":      {"class": true},
	"ol":      {},
	"li":      {"class": true},
	"strong":  {},
	"em":      {},
	"b":       {},
	"i":       {},
	"u":       {},
	"span":    {"class": true},
	"br":      {},
	"code":    {"class": true},
	"pre":     {"class": true},
	"a":       {"href": true, "target": true, "rel": true},
	"hr":      {},
}

// voidTags are allowed elements rendered without a closing tag.
var voidTags = map[string]bool{
	"br": true,
	"hr": true,
}

// allowedSchemes are the only link prefixes that keep their href.
var allowedSchemes = []string{"http://", "https://", "mailto:", "tel:"}

// AllowedTags returns the names of all elements Sanitize keeps.
func AllowedTags() []string {
	tags := make([]string, 0, len(allowedTags))
	for t := range allowedTags {
		tags = append(tags, t)
	}
	return tags
}

// IsAllowedTag reports whether Sanitize keeps elements named tag.
func IsAllowedTag(tag string) bool {
	_, ok := allowedTags[strings.ToLower(tag)]
	return ok
}

// Sanitize filters an HTML fragment against the tag and attribute allow-lists.
//
// Disallowed elements are replaced by their text content, disallowed
// attributes are dropped, and links keep their href only for http, https,
// mailto and tel targets. Kept links always open in a new tab without
// leaking the opener.
func Sanitize(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	body := &nethtml.Node{
		Type:     nethtml.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		// The tokenizer only fails on reader errors; degrade to escaped text.
		return html.EscapeString(fragment)
	}

	var buf strings.Builder
	buf.Grow(len(fragment))
	for _, n := range nodes {
		writeNode(&buf, n)
	}
	return buf.String()
}

// writeNode serializes n, applying the allow-lists recursively.
func writeNode(buf *strings.Builder, n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		buf.WriteString(html.EscapeString(n.Data))
	case nethtml.ElementNode:
		attrs, ok := allowedTags[n.Data]
		if !ok {
			buf.WriteString(html.EscapeString(textContent(n)))
			return
		}
		writeStartTag(buf, n, attrs)
		if voidTags[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	case nethtml.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(buf, c)
		}
	}
	// Comments, doctypes and raw nodes are dropped.
}

// writeStartTag writes the opening tag with its surviving attributes.
func writeStartTag(buf *strings.Builder, n *nethtml.Node, allowed map[string]bool) {
	buf.WriteByte('<')
	buf.WriteString(n.Data)

	if n.Data == "a" {
		if href, ok := safeHref(n); ok {
			writeAttr(buf, "href", href)
			writeAttr(buf, "target", "_blank")
			writeAttr(buf, "rel", "noopener noreferrer")
		}
		buf.WriteByte('>')
		return
	}

	for _, a := range n.Attr {
		if a.Namespace != "" || !allowed[a.Key] {
			continue
		}
		writeAttr(buf, a.Key, a.Val)
	}
	buf.WriteByte('>')
}

func writeAttr(buf *strings.Builder, key, val string) {
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteString(`="`)
	buf.WriteString(html.EscapeString(val))
	buf.WriteByte('"')
}

// safeHref returns the link target of an anchor if its scheme is allowed.
func safeHref(n *nethtml.Node) (string, bool) {
	for _, a := range n.Attr {
		if a.Key != "href" || a.Namespace != "" {
			continue
		}
		href := strings.TrimSpace(a.Val)
		if IsSafeURL(href) {
			return href, true
		}
		return "", false
	}
	return "", false
}

// IsSafeURL reports whether href uses one of the allowed link schemes.
func IsSafeURL(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(lower, scheme) && len(lower) > len(scheme) {
			return true
		}
	}
	return false
}

// textContent concatenates the text of n and all its descendants.
func textContent(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*nethtml.Node)
	walk = func(node *nethtml.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == nethtml.TextNode {
				sb.WriteString(c.Data)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
