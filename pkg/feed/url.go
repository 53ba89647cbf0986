package feed

import (
	"net/url"
	"strings"
)

// BaseURL is the listing feed origin. Article links in markup are relative
// to it.
const BaseURL = "https://news.google.com"

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/126.0 Safari/537.36"

// SearchURL builds the search listing URL for a seed. `when` is a relative
// window like "1h", "7d" or "1y"; the seed's own When takes precedence, and
// an explicit when: clause already present in the query is never doubled.
func SearchURL(seed SeedQuery, when string) string {
	q := strings.TrimSpace(seed.Query)

	w := seed.When
	if w == "" {
		w = when
	}
	if w != "" && !strings.Contains(q, "when:") {
		q = q + " when:" + w
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("hl", seed.Language+"-"+seed.Region)
	params.Set("gl", seed.Region)
	params.Set("ceid", seed.Region+":"+seed.Language)

	return BaseURL + "/search?" + params.Encode()
}

// Headers builds browser-like request headers for a seed. Per-seed header
// overrides win over the defaults.
func Headers(seed SeedQuery) map[string]string {
	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": seed.Language + "-" + seed.Region + "," + seed.Language + ";q=0.9",
		"User-Agent":      defaultUserAgent,
	}

	for k, v := range seed.Headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		headers[key] = val
	}

	return headers
}
