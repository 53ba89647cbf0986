package crawler

import (
	"github.com/samvad-hq/gnews-scraper/pkg/httpclient"
)

// PageSource retrieves listing pages. It aliases the shared
// httpclient.Client interface so tests can inject stub transports.
type PageSource = httpclient.Client
