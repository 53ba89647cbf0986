package feed

import (
	"errors"
	"testing"
)

const articlePageMarkup = `<html><body><c-wiz><main>
<article>
  <a href="./articles/CBMiT0FVtoken1?hl=en-US"></a>
  <a href="./articles/CBMiT0FVtoken1?hl=en-US">Banana prices surge after shipping delays</a>
  <span>Reuters</span>
  <time datetime="2025-07-25T10:12:44Z">3 hours ago</time>
  <img src="https://img.example.com/hero.jpg" width="300" height="200">
  <img src="https://icons.example.com/reuters.png" width="16" height="16">
  <span>By Jane Doe</span>
</article>
<article>
  <a href="./articles/CBMiT0FVtoken2">Second story headline</a>
</article>
<article>
  <a href="./topics/business">No token link here</a>
</article>
<div data-article-source-name="The Verge">
  <a href="./read/CBMiT0FVtoken3">Card layout headline</a>
  <time datetime="2025-07-24T09:00:00Z">Yesterday</time>
</div>
<a rel="next" href="/search?q=banana&page=2">More</a>
</main></c-wiz></body></html>`

func TestParsePageExtractsListings(t *testing.T) {
	page, err := ParsePage([]byte(articlePageMarkup), BaseURL+"/search?q=banana")
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}

	if len(page.Listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(page.Listings))
	}

	first := page.Listings[0]
	if first.TokenHref != BaseURL+"/articles/CBMiT0FVtoken1?hl=en-US" {
		t.Fatalf("token href = %q", first.TokenHref)
	}
	if first.Title != "Banana prices surge after shipping delays" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.DatetimeAttr != "2025-07-25T10:12:44Z" || first.TimeText != "3 hours ago" {
		t.Fatalf("time = (%q, %q)", first.DatetimeAttr, first.TimeText)
	}
	if first.ImageURL != "https://img.example.com/hero.jpg" {
		t.Fatalf("image = %q", first.ImageURL)
	}
	if first.SourceIconURL != "https://icons.example.com/reuters.png" {
		t.Fatalf("source icon = %q", first.SourceIconURL)
	}
	if first.Source != "Reuters" {
		t.Fatalf("source = %q", first.Source)
	}
	if first.Author != "By Jane Doe" {
		t.Fatalf("author = %q", first.Author)
	}

	second := page.Listings[1]
	if second.Title != "Second story headline" {
		t.Fatalf("second title = %q", second.Title)
	}
	if second.DatetimeAttr != "" || second.ImageURL != "" || second.Author != "" {
		t.Fatalf("absent fields must stay empty: %+v", second)
	}

	card := page.Listings[2]
	if card.Source != "The Verge" {
		t.Fatalf("card source = %q", card.Source)
	}
	if card.Title != "Card layout headline" {
		t.Fatalf("card title = %q", card.Title)
	}
}

func TestParsePageNextLink(t *testing.T) {
	page, err := ParsePage([]byte(articlePageMarkup), BaseURL+"/search?q=banana")
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	want := BaseURL + "/search?q=banana&page=2"
	if page.NextPageURL != want {
		t.Fatalf("next page url = %q, want %q", page.NextPageURL, want)
	}
}

func TestParsePageRecognizedButEmpty(t *testing.T) {
	page, err := ParsePage([]byte(`<html><body><main><h1>No results</h1></main></body></html>`), BaseURL)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if len(page.Listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(page.Listings))
	}
	if page.NextPageURL != "" {
		t.Fatalf("expected empty next link, got %q", page.NextPageURL)
	}
}

func TestParsePageUnrecognizedMarkup(t *testing.T) {
	_, err := ParsePage([]byte(`<html><body><div>Before you continue</div></body></html>`), BaseURL)
	if !errors.Is(err, ErrUnrecognizedPage) {
		t.Fatalf("expected ErrUnrecognizedPage, got %v", err)
	}
}

func TestParsePageSkipsItemsWithoutTokenLink(t *testing.T) {
	markup := `<html><body><main>
	<article><a href="./topics/world">Topic link only</a></article>
	</main></body></html>`

	page, err := ParsePage([]byte(markup), BaseURL)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if len(page.Listings) != 0 {
		t.Fatalf("expected token-less item skipped, got %d listings", len(page.Listings))
	}
}
