package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	minParagraph = 50
	maxParagraph = 500
)

// contentSelectors are tried in order when a page has no meta description.
var contentSelectors = []string{
	"[class*=about] p",
	"[id*=about] p",
	".hero p",
	".intro p",
	"section p",
	"main p",
}

// PageText returns the <title> and the visible text of an HTML document
// with scripts, styles, navigation and footers removed.
func PageText(html string) (title, text string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}
	title = collapse(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, nav, footer, svg").Remove()

	var parts []string
	doc.Find("body").Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return title, collapse(doc.Find("body").Text())
	}
	return title, strings.Join(parts, "\n")
}

// Description extracts a one-paragraph company description from a page:
// the meta description, then og:description, then the first paragraph
// between 50 and 500 characters under a content selector. Text-only pages
// use their first paragraph of that length.
func Description(page *Page) string {
	if page == nil {
		return ""
	}
	if page.HTML == "" {
		return firstParagraph(strings.Split(page.Text, "\n"))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return ""
	}

	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = collapse(v); len(v) >= 20 {
				return v
			}
		}
	}

	for _, sel := range contentSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := collapse(s.Text())
			if len(t) >= minParagraph && len(t) <= maxParagraph {
				found = t
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func firstParagraph(lines []string) string {
	for _, l := range lines {
		l = strings.TrimSpace(strings.TrimLeft(l, "#>*- "))
		if strings.HasPrefix(l, "![") || strings.HasPrefix(l, "[") {
			continue
		}
		if len(l) >= minParagraph && len(l) <= maxParagraph {
			return l
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
