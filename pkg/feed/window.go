package feed

import (
	"fmt"
	"time"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// Window is a half-open UTC interval [Since, Until). A zero bound leaves
// that side open; a zero Window keeps everything.
type Window struct {
	Since time.Time
	Until time.Time
}

// IsZero reports whether the window has no bounds.
func (w Window) IsZero() bool {
	return w.Since.IsZero() && w.Until.IsZero()
}

// Keep reports whether the record falls inside the window. A record with no
// published time is kept, because an unknown date is not evidence of being
// out of window, unless strict is set.
func (w Window) Keep(rec domain.ArticleRecord, strict bool) bool {
	if w.IsZero() {
		return true
	}
	if rec.PublishedAt == nil {
		return !strict
	}

	t := rec.PublishedAt.UTC()
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && !t.Before(w.Until) {
		return false
	}
	return true
}

// RelativeWindow is the hours/days/years window from configuration. The
// smallest non-zero unit wins: hours over days over years.
type RelativeWindow struct {
	Hours int
	Days  int
	Years int
}

// WhenParam renders the feed's relative time clause, e.g. "1h", "7d" or
// "1y". Empty when no unit is set.
func (r RelativeWindow) WhenParam() string {
	if r.Hours > 0 {
		return fmt.Sprintf("%dh", r.Hours)
	}
	if r.Days > 0 {
		return fmt.Sprintf("%dd", r.Days)
	}
	if r.Years > 0 {
		return fmt.Sprintf("%dy", r.Years)
	}
	return ""
}

// SinceFrom turns the relative window into an absolute UTC lower bound,
// used as a second-level filter on top of the feed's own clause. Zero when
// no unit is set.
func (r RelativeWindow) SinceFrom(now time.Time) time.Time {
	now = now.UTC()
	if r.Hours > 0 {
		return now.Add(-time.Duration(r.Hours) * time.Hour)
	}
	if r.Days > 0 {
		return now.AddDate(0, 0, -r.Days)
	}
	if r.Years > 0 {
		return now.AddDate(0, 0, -r.Years*365)
	}
	return time.Time{}
}
