package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements whose text never reaches the flattened output.
const skippedSelector = "script, style, noscript, template, svg, head"

// markupTag matches a complete opening, closing, comment or doctype tag.
// A stray "<" in plain text ("a<b") never closes, so it does not match.
var markupTag = regexp.MustCompile(`<(?:/?[a-zA-Z][^<>]*|![^<>]*)>`)

// Elements that separate words when rendered. Inline elements such as
// <span> or <b> are joined without a space so "<b>25</b>°C" stays "25°C".
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true, "option": true, "button": true,
}

// Flatten strips markup from page and collapses whitespace to single
// spaces. Input without a single complete tag is taken as plain text and
// only has its whitespace collapsed, so a bare "<" is kept literally.
func Flatten(page string) string {
	if !markupTag.MatchString(page) {
		return collapse(page)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return collapse(page)
	}

	doc.Find(skippedSelector).Remove()

	var sb strings.Builder
	for _, n := range doc.Nodes {
		writeText(&sb, n)
	}
	return collapse(sb.String())
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte(' ')
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
