package web

import (
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/rhetorik/internal/util"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxCandidateChars caps the text handed to the model.
	MaxCandidateChars = 30000
	minHarvestChars   = 500
	minBlockChars     = 20
)

const junkSelector = `script, style, noscript, iframe, svg, nav, footer, header, aside, ` +
	`.cookie-banner, #onetrust-banner-sdk, [class*="cookie"], [id*="cookie"], ` +
	`[class*="ad-"], [id*="ad-"], .ad, .ads, #ads, .social-share, [class*="social-share"]`

// containerSelectors are tried in order; the first match wins.
var containerSelectors = []string{
	"article",
	`[class*="article-body"]`,
	`[id*="article-content"]`,
	".main-content",
	"main",
}

// Page is the result of cleaning fetched HTML.
type Page struct {
	Title string
	Text  string
}

// CleanHTML strips page furniture from rawHTML and returns the candidate
// article text: the headings and paragraphs of the best content container,
// or the whole body text when that harvest is short. The result is capped
// at MaxCandidateChars.
func CleanHTML(rawHTML string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Page{}, err
	}

	page := Page{Title: pageTitle(doc)}
	doc.Find(junkSelector).Remove()

	container := doc.Find("body")
	for _, sel := range containerSelectors {
		if match := doc.Find(sel).First(); match.Length() > 0 {
			container = match
			break
		}
	}

	var blocks []string
	container.Find("h1, h2, h3, p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) > minBlockChars {
			blocks = append(blocks, text)
		}
	})

	text := strings.Join(blocks, "\n\n")
	if utf8.RuneCountInString(text) < minHarvestChars {
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	page.Text = util.TruncateRunes(text, MaxCandidateChars)
	return page, nil
}

// pageTitle prefers og:title, then <title>, then the first h1.
func pageTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", "")); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return util.CollapseWhitespace(t)
	}
	return util.CollapseWhitespace(doc.Find("h1").First().Text())
}

// readableText runs readability over the page. It serves when the cleaned
// candidate is empty, e.g. for pages that render everything inside
// elements the junk filter removes.
func readableText(r io.Reader, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(r, u)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := article.RenderText(&b); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
