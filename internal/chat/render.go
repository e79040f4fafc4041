package chat

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// RenderMarkdown converts an assistant reply from markdown to sanitized
// HTML for display. Model output is untrusted input; anything
// executable is stripped before the UI sees it.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return SanitizeHTML(buf.String())
}

// SanitizeHTML removes script/style subtrees, event-handler attributes
// and javascript: URLs from an HTML fragment.
func SanitizeHTML(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return "", nil
	}
	sanitize(body)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return buf.String(), nil
}

func sanitize(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "iframe", "object", "embed":
				n.RemoveChild(c)
				continue
			}
			kept := c.Attr[:0]
			for _, a := range c.Attr {
				if strings.HasPrefix(strings.ToLower(a.Key), "on") {
					continue
				}
				if (a.Key == "href" || a.Key == "src") &&
					strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
					continue
				}
				kept = append(kept, a)
			}
			c.Attr = kept
		}
		sanitize(c)
	}
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
