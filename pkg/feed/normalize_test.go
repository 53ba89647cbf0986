package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// stubCache records lookups and puts, optionally failing.
type stubCache struct {
	entries map[string]string
	puts    map[string]string
	getErr  error
	putErr  error
}

func (s *stubCache) GetURL(token string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	u, ok := s.entries[token]
	return u, ok, nil
}

func (s *stubCache) PutURL(token, resolved string) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.puts == nil {
		s.puts = make(map[string]string)
	}
	s.puts[token] = resolved
	return nil
}

const testFeedURL = BaseURL + "/search?q=banana"

func TestNormalizeMissingTitleSkips(t *testing.T) {
	norm := NewNormalizer(0, nil)

	_, skip := norm.Normalize(domain.RawListing{
		TokenHref: BaseURL + "/articles/abc",
		Title:     "   ",
	}, testFeedURL)
	if skip == nil {
		t.Fatalf("expected skip for missing title")
	}
	if skip.Reason != domain.SkipMissingTitle {
		t.Fatalf("skip reason = %q", skip.Reason)
	}
}

func TestNormalizeDecodesToken(t *testing.T) {
	want := "https://www.example.com/banana-story"
	raw := domain.RawListing{
		TokenHref:    BaseURL + "/articles/" + tokenWith(want),
		Title:        "Banana story",
		DatetimeAttr: "2025-07-25T10:12:44Z",
	}

	norm := NewNormalizer(0, nil)
	rec, skip := norm.Normalize(raw, testFeedURL)
	if skip != nil {
		t.Fatalf("unexpected skip %q", skip.Reason)
	}
	if rec.DecodedURL != want {
		t.Fatalf("decoded url = %q, want %q", rec.DecodedURL, want)
	}
	if rec.FeedURL != testFeedURL {
		t.Fatalf("feed url = %q", rec.FeedURL)
	}
	if rec.PublishedAt == nil || !rec.PublishedAt.Equal(time.Date(2025, 7, 25, 10, 12, 44, 0, time.UTC)) {
		t.Fatalf("published at = %v", rec.PublishedAt)
	}
}

func TestNormalizeDecodeFailureLeavesURLAbsent(t *testing.T) {
	raw := domain.RawListing{
		TokenHref: BaseURL + "/articles/%%%not-a-token%%%",
		Title:     "Story with opaque link",
	}

	rec, skip := NewNormalizer(0, nil).Normalize(raw, testFeedURL)
	if skip != nil {
		t.Fatalf("decode failure must not skip the record")
	}
	if rec.DecodedURL != "" {
		t.Fatalf("decoded url = %q, want empty", rec.DecodedURL)
	}
	if rec.Title != "Story with opaque link" {
		t.Fatalf("title = %q", rec.Title)
	}
}

func TestNormalizeUsesCacheBeforeDecoding(t *testing.T) {
	cache := &stubCache{entries: map[string]string{
		"garbledtoken": "https://cached.example.com/story",
	}}

	raw := domain.RawListing{
		TokenHref: BaseURL + "/articles/garbledtoken",
		Title:     "Cached story",
	}

	rec, _ := NewNormalizer(0, cache).Normalize(raw, testFeedURL)
	if rec.DecodedURL != "https://cached.example.com/story" {
		t.Fatalf("decoded url = %q, want cached value", rec.DecodedURL)
	}
}

func TestNormalizeStoresDecodedURLInCache(t *testing.T) {
	want := "https://www.example.com/fresh-story"
	token := tokenWith(want)
	cache := &stubCache{}

	raw := domain.RawListing{
		TokenHref: BaseURL + "/articles/" + token,
		Title:     "Fresh story",
	}

	rec, _ := NewNormalizer(0, cache).Normalize(raw, testFeedURL)
	if rec.DecodedURL != want {
		t.Fatalf("decoded url = %q, want %q", rec.DecodedURL, want)
	}
	if cache.puts[token] != want {
		t.Fatalf("cache put = %q, want %q", cache.puts[token], want)
	}
}

func TestNormalizeCacheErrorsAreBestEffort(t *testing.T) {
	want := "https://www.example.com/resilient"
	cache := &stubCache{
		getErr: errors.New("cache down"),
		putErr: errors.New("cache down"),
	}

	raw := domain.RawListing{
		TokenHref: BaseURL + "/articles/" + tokenWith(want),
		Title:     "Resilient story",
	}

	rec, skip := NewNormalizer(0, cache).Normalize(raw, testFeedURL)
	if skip != nil {
		t.Fatalf("cache errors must not skip")
	}
	if rec.DecodedURL != want {
		t.Fatalf("decoded url = %q, want %q", rec.DecodedURL, want)
	}
}

func TestParsePublishedAtRelativePhrases(t *testing.T) {
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		literal string
		want    time.Time
	}{
		{literal: "3 hours ago", want: now.Add(-3 * time.Hour)},
		{literal: "1 minute ago", want: now.Add(-time.Minute)},
		{literal: "2 days ago", want: now.Add(-48 * time.Hour)},
		{literal: "Yesterday", want: now.Add(-24 * time.Hour)},
		{literal: "1 week ago", want: now.Add(-7 * 24 * time.Hour)},
	}

	for _, tc := range cases {
		got, ok := parsePublishedAt("", tc.literal, now)
		if !ok {
			t.Fatalf("parsePublishedAt(%q) not ok", tc.literal)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parsePublishedAt(%q) = %v, want %v", tc.literal, got, tc.want)
		}
	}
}

func TestParsePublishedAtUnparseable(t *testing.T) {
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)
	for _, literal := range []string{"", "soon", "a while back", "ago hours 3"} {
		if _, ok := parsePublishedAt("", literal, now); ok {
			t.Fatalf("parsePublishedAt(%q) unexpectedly parsed", literal)
		}
	}
}

func TestParsePublishedAtPrefersDatetimeAttr(t *testing.T) {
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)
	got, ok := parsePublishedAt("2025-07-20T08:30:00Z", "3 hours ago", now)
	if !ok {
		t.Fatalf("expected parse")
	}
	want := time.Date(2025, 7, 20, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
