package wiki

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"avatar-transcripts/pkg/domain"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBookSections are the heading ids of the three book sections on the
// Avatar: The Last Airbender index page, in airing order
var DefaultBookSections = []string{
	"Book_One:_Water",
	"Book_Two:_Earth",
	"Book_Three:_Fire",
}

var (
	ErrBookSectionNotFound = errors.New("book section not found in index page")
	ErrNoEpisodeLinks      = errors.New("no episode links found in index page")
)

// ParseIndex parses the wiki index page and returns one EpisodeReference per
// episode, in document order. Each book section heading is followed by a table
// whose rows carry the episode number in a th cell and the transcript link in
// an anchor. Relative hrefs are resolved against baseURL.
//
// Episodes aired in parts link to the same page; callers that need one fetch
// per page should group the result with GroupByURL.
func ParseIndex(html, baseURL string, bookSections []string) ([]domain.EpisodeReference, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}

	if len(bookSections) == 0 {
		bookSections = DefaultBookSections
	}

	var refs []domain.EpisodeReference

	for bookIdx, sectionID := range bookSections {
		bookNumber := bookIdx + 1

		table, err := findSectionTable(doc, sectionID)
		if err != nil {
			return nil, err
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			ref, ok := parseEpisodeRow(row, base, bookNumber)
			if ok {
				refs = append(refs, ref)
			}
		})
	}

	if len(refs) == 0 {
		return nil, ErrNoEpisodeLinks
	}

	return refs, nil
}

// findSectionTable locates the episode table for a book section heading.
// The section id sits on a span inside the heading element; the table is the
// heading's next element sibling.
func findSectionTable(doc *goquery.Document, sectionID string) (*goquery.Selection, error) {
	// The ids contain colons ("Book_One:_Water"), so match via an attribute
	// selector instead of a #id selector.
	span := doc.Find(fmt.Sprintf(`[id=%q]`, sectionID))
	if span.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBookSectionNotFound, sectionID)
	}

	table := span.First().Parent().NextAllFiltered("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table after heading %s", ErrBookSectionNotFound, sectionID)
	}

	return table, nil
}

// parseEpisodeRow extracts one episode reference from a table row.
// Rows without a numeric th cell (header rows) or without a link are skipped.
func parseEpisodeRow(row *goquery.Selection, base *url.URL, bookNumber int) (domain.EpisodeReference, bool) {
	th := row.Find("th").First()
	if th.Length() == 0 {
		return domain.EpisodeReference{}, false
	}

	episodeNumber, err := strconv.Atoi(strings.TrimSpace(th.Text()))
	if err != nil {
		return domain.EpisodeReference{}, false
	}

	link := row.Find("a").First()
	href, exists := link.Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return domain.EpisodeReference{}, false
	}

	absolute, err := resolveHref(base, href)
	if err != nil {
		return domain.EpisodeReference{}, false
	}

	return domain.EpisodeReference{
		URL:     absolute,
		Book:    bookNumber,
		Episode: episodeNumber,
		Title:   strings.TrimSpace(link.Text()),
	}, true
}

// resolveHref resolves a (possibly relative) href against the index URL
func resolveHref(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String(), nil
}

// PageGroup is the set of episodes published on a single transcript page
type PageGroup struct {
	URL      string
	Episodes []domain.EpisodeReference
}

// GroupByURL groups references by page URL, preserving first-seen order of
// pages and index order of episodes within a page. A group with more than one
// episode is a multi-part page.
func GroupByURL(refs []domain.EpisodeReference) []PageGroup {
	index := make(map[string]int)
	var groups []PageGroup

	for _, ref := range refs {
		i, seen := index[ref.URL]
		if !seen {
			index[ref.URL] = len(groups)
			groups = append(groups, PageGroup{URL: ref.URL})
			i = len(groups) - 1
		}
		groups[i].Episodes = append(groups[i].Episodes, ref)
	}

	return groups
}
