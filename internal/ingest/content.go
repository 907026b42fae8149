// Package ingest receives raw posts from scraper collaborators and inserts
// them into the post store. It makes no assumptions about feed freshness or
// completeness.
package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// NormalizedContent is scraped post content reduced to what the extractor
// needs: plain text plus any embedded media and link references.
type NormalizedContent struct {
	Text      string
	MediaURLs []string
	LinkURLs  []string
}

// Normalize strips markup from scraped post content. Plain text passes
// through untouched; HTML is walked for text nodes, image/video sources and
// anchor targets.
func Normalize(raw string) NormalizedContent {
	if !strings.Contains(raw, "<") {
		return NormalizedContent{Text: strings.TrimSpace(raw)}
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return NormalizedContent{Text: strings.TrimSpace(raw)}
	}

	var out NormalizedContent
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "img", "video", "source":
				if src := attr(n, "src"); src != "" {
					out.MediaURLs = append(out.MediaURLs, src)
				}
			case "a":
				if href := attr(n, "href"); href != "" {
					out.LinkURLs = append(out.LinkURLs, href)
				}
			case "br", "p", "div":
				sb.WriteString(" ")
			case "script", "style":
				return // skip children entirely
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out.Text = strings.Join(strings.Fields(sb.String()), " ")
	return out
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
