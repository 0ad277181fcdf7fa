package htmlutil

import (
	"bytes"
	"net/url"
	"strings"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/html"
)

// GetText concatenates every text node below node without adding spaces.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript":
			return
		case "br", "p", "div", "li":
			defer buffer.WriteByte(' ')
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

// Text returns the collapsed text of the first node in sel, or "" when sel is
// empty.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return textutil.Collapse(GetText(sel.Nodes[0]))
}

// FirstText returns the first non-empty Text among the matches of selector
// inside sel.
func FirstText(sel *goquery.Selection, selector string) string {
	var out string
	sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = Text(s)
		return out == ""
	})
	return out
}

// Href returns the href attribute of the first node in sel.
func Href(sel *goquery.Selection) string {
	href, _ := sel.First().Attr("href")
	return strings.TrimSpace(href)
}

// ResolveHref resolves href against the page it was found on and normalizes
// the result. Unparseable hrefs, javascript/mailto links and empty hrefs give
// "".
func ResolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return purell.NormalizeURL(
		resolved,
		purell.FlagsSafe|
			purell.FlagRemoveDotSegments|
			purell.FlagRemoveDuplicateSlashes,
	)
}
