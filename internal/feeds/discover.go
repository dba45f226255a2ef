package feeds

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// feedTypes are the <link type> values advertised for RSS, Atom and JSON
// feeds.
var feedTypes = map[string]bool{
	"application/rss+xml":   true,
	"application/atom+xml":  true,
	"application/feed+json": true,
}

// discoverFeedURL looks for the first <link rel="alternate"> pointing at a
// feed in an HTML page and resolves it against base.
func discoverFeedURL(page []byte, base *url.URL) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", false
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "link" && isFeedLink(n) {
			ref, err := url.Parse(strings.TrimSpace(getAttr(n, "href")))
			if err == nil && ref.String() != "" {
				found = base.ResolveReference(ref).String()
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return found, found != ""
}

func isFeedLink(n *html.Node) bool {
	rels := strings.Fields(strings.ToLower(getAttr(n, "rel")))
	alternate := false
	for _, rel := range rels {
		if rel == "alternate" {
			alternate = true
			break
		}
	}
	typ := strings.ToLower(strings.TrimSpace(getAttr(n, "type")))
	return alternate && feedTypes[typ]
}

// getAttr returns the value of the named attribute on an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
