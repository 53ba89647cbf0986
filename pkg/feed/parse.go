package feed

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// ErrUnrecognizedPage reports markup with no recognizable listing container
// at all (an interstitial, consent or error page was returned instead of
// listings). Distinct from a valid page with zero results.
var ErrUnrecognizedPage = errors.New("no recognizable listing container in page markup")

// Page is the parsed form of one fetched listing page.
type Page struct {
	Listings []domain.RawListing
	// NextPageURL is the continuation link. Empty means the feed signalled
	// no further pages.
	NextPageURL string
}

// listingShape is one recognized item layout. The feed renders distinct
// layouts for different content types; shapes form a closed set tried in
// declaration order so a layout change bounds the failure surface.
type listingShape struct {
	name     string
	selector string
	extract  func(s *goquery.Selection, base *url.URL) (domain.RawListing, bool)
}

var listingShapes = []listingShape{
	{name: "article", selector: "article", extract: extractArticleShape},
	{name: "card", selector: "div[data-article-source-name]", extract: extractCardShape},
}

// ParsePage extracts raw listings and the continuation link from one page
// of markup. Each call re-parses from scratch; there is no shared state
// between calls. Listings keep fields exactly as found, absence included.
func ParsePage(markup []byte, baseURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if doc.Find("c-wiz, main").Length() == 0 {
		return nil, ErrUnrecognizedPage
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	page := &Page{}
	for _, shape := range listingShapes {
		doc.Find(shape.selector).Each(func(_ int, s *goquery.Selection) {
			raw, ok := shape.extract(s, base)
			if !ok {
				return
			}
			page.Listings = append(page.Listings, raw)
		})
	}

	page.NextPageURL = nextPageURL(doc, base)
	return page, nil
}

// extractArticleShape handles the classic layout: one <article> element per
// listing, token link, <time>, source span and up to two images.
func extractArticleShape(s *goquery.Selection, base *url.URL) (domain.RawListing, bool) {
	tokenHref := findTokenHref(s, base)
	if tokenHref == "" {
		return domain.RawListing{}, false
	}

	raw := domain.RawListing{
		TokenHref: tokenHref,
		Title:     extractTitle(s),
		ImageURL:  extractImage(s),
		Source:    extractSourceSpan(s),
		Author:    extractAuthor(s),
	}
	raw.DatetimeAttr, raw.TimeText = extractTime(s)
	raw.SourceIconURL = extractSourceIcon(s)

	return raw, true
}

// extractCardShape handles the compact card layout where the source name is
// carried as a data attribute on the wrapper div.
func extractCardShape(s *goquery.Selection, base *url.URL) (domain.RawListing, bool) {
	tokenHref := findTokenHref(s, base)
	if tokenHref == "" {
		return domain.RawListing{}, false
	}

	raw := domain.RawListing{
		TokenHref: tokenHref,
		Title:     extractTitle(s),
		ImageURL:  extractImage(s),
		Source:    strings.TrimSpace(s.AttrOr("data-article-source-name", "")),
		Author:    extractAuthor(s),
	}
	raw.DatetimeAttr, raw.TimeText = extractTime(s)
	raw.SourceIconURL = extractSourceIcon(s)

	return raw, true
}

// findTokenHref returns the absolutized obfuscated article link, or "" when
// the item carries none.
func findTokenHref(s *goquery.Selection, base *url.URL) string {
	var found string
	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		if !strings.Contains(href, "/articles/") && !strings.Contains(href, "/read/") {
			return true
		}
		found = resolveHref(base, href)
		return found == ""
	})
	return found
}

// extractTitle picks the longest anchor text in the item. The headline
// anchor dominates; image and icon anchors carry no text.
func extractTitle(s *goquery.Selection) string {
	var title string
	s.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if len(text) > len(title) {
			title = text
		}
	})
	return title
}

func extractTime(s *goquery.Selection) (datetimeAttr, timeText string) {
	node := s.Find("time").First()
	if node.Length() == 0 {
		return "", ""
	}
	return strings.TrimSpace(node.AttrOr("datetime", "")), strings.TrimSpace(node.Text())
}

// extractImage returns the first image that is not icon-sized.
func extractImage(s *goquery.Selection) string {
	var src string
	s.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if isIconSized(img) {
			return true
		}
		src = imageSrc(img)
		return src == ""
	})
	return src
}

// extractSourceIcon returns the smallest dimensioned image, the usual spot
// for the publisher favicon.
func extractSourceIcon(s *goquery.Selection) string {
	var (
		smallest     string
		smallestArea = -1
	)
	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		area, ok := imageArea(img)
		if !ok {
			return
		}
		if smallestArea < 0 || area < smallestArea {
			if src := imageSrc(img); src != "" {
				smallest = src
				smallestArea = area
			}
		}
	})
	return smallest
}

func imageSrc(img *goquery.Selection) string {
	if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(img.AttrOr("data-src", ""))
}

func imageArea(img *goquery.Selection) (int, bool) {
	w, errW := strconv.Atoi(strings.TrimSpace(img.AttrOr("width", "")))
	h, errH := strconv.Atoi(strings.TrimSpace(img.AttrOr("height", "")))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, false
	}
	return w * h, true
}

const iconAreaThreshold = 64 * 64

func isIconSized(img *goquery.Selection) bool {
	area, ok := imageArea(img)
	return ok && area <= iconAreaThreshold
}

// extractSourceSpan uses the short-text heuristic: source names render as
// brief spans near the time element.
func extractSourceSpan(s *goquery.Selection) string {
	var source string
	s.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if text == "" || len(strings.Fields(text)) > 5 {
			return true
		}
		source = text
		return false
	})
	return source
}

const maxAuthorLen = 80

// extractAuthor looks for a "By Name" fragment in the item metadata.
// Authors are uncommon in listing items, so absence is the norm.
func extractAuthor(s *goquery.Selection) string {
	text := strings.TrimSpace(s.Text())
	if text == "" {
		return ""
	}

	const marker = "By "
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}

	segment := text[idx+len(marker):]
	if cut := strings.Index(segment, "  "); cut >= 0 {
		segment = segment[:cut]
	}
	segment = strings.TrimSpace(segment)
	if segment == "" || len(segment) > maxAuthorLen {
		return ""
	}
	return marker + segment
}

var nextPageSelectors = []string{
	`a[rel="next"]`,
	`a[aria-label="Next page"]`,
}

func nextPageURL(doc *goquery.Document, base *url.URL) string {
	for _, sel := range nextPageSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if href := strings.TrimSpace(node.AttrOr("href", "")); href != "" {
			return resolveHref(base, href)
		}
	}
	return ""
}

func resolveHref(base *url.URL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
