package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedCollector reads the wiki's RecentChanges RSS feed and reports which
// pages were recently edited. The incremental scrape mode uses it to restrict
// a run to episodes whose transcript pages changed.
type FeedCollector struct {
	feedParser *gofeed.Parser
}

// NewFeedCollector creates a new feed collector
func NewFeedCollector() *FeedCollector {
	return &FeedCollector{
		feedParser: gofeed.NewParser(),
	}
}

// RecentlyChanged fetches and parses the feed and returns the set of page
// URLs it mentions. RecentChanges item links carry diff/oldid query
// parameters, so links are normalized to the bare page URL before insertion.
func (f *FeedCollector) RecentlyChanged(ctx context.Context, feedURL string) (map[string]bool, error) {
	feed, err := f.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	changed := make(map[string]bool, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		page, err := normalizePageURL(item.Link)
		if err != nil {
			continue
		}
		changed[page] = true
	}

	if len(changed) == 0 {
		return nil, fmt.Errorf("no valid page URLs found in feed items")
	}

	return changed, nil
}

// normalizePageURL strips the query string and fragment from a feed item link
func normalizePageURL(link string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}
