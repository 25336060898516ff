package wiki

import (
	"context"
	"fmt"
	"net/url"

	"avatar-transcripts/pkg/domain"
)

// Filter defines the interface for episode reference filtering
type Filter interface {
	ShouldKeep(ctx context.Context, ref domain.EpisodeReference) (bool, error)
}

// FilterReferences applies all filters to a list of episode references,
// preserving order
func FilterReferences(ctx context.Context, refs []domain.EpisodeReference, filters ...Filter) ([]domain.EpisodeReference, error) {
	filtered := make([]domain.EpisodeReference, 0, len(refs))

	for _, ref := range refs {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("filter error for URL %s: %w", ref.URL, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, ref)
		}
	}

	return filtered, nil
}

// HostFilter keeps only references that point at the configured wiki host
type HostFilter struct {
	host string
}

// NewHostFilter creates a filter that keeps URLs on the given host
func NewHostFilter(host string) *HostFilter {
	return &HostFilter{host: host}
}

// ShouldKeep returns true if the reference URL parses and is on the wiki host
func (f *HostFilter) ShouldKeep(ctx context.Context, ref domain.EpisodeReference) (bool, error) {
	parsed, err := url.Parse(ref.URL)
	if err != nil {
		// A URL we cannot parse is certainly not a transcript page
		return false, nil
	}
	return parsed.Host == f.host, nil
}

// AlreadyFetchedFilter filters out references whose URLs already exist in the
// provided set (typically loaded from the database sink)
type AlreadyFetchedFilter struct {
	fetchedURLs map[string]bool
}

// NewAlreadyFetchedFilter creates a new already-fetched filter
func NewAlreadyFetchedFilter(fetchedURLs map[string]bool) *AlreadyFetchedFilter {
	return &AlreadyFetchedFilter{
		fetchedURLs: fetchedURLs,
	}
}

// ShouldKeep returns false if the reference URL is already in the fetched set
func (f *AlreadyFetchedFilter) ShouldKeep(ctx context.Context, ref domain.EpisodeReference) (bool, error) {
	return !f.fetchedURLs[ref.URL], nil
}

// RecentlyChangedFilter keeps only references whose pages appear in the
// RecentChanges feed set
type RecentlyChangedFilter struct {
	changedURLs map[string]bool
}

// NewRecentlyChangedFilter creates a filter from a set of recently changed page URLs
func NewRecentlyChangedFilter(changedURLs map[string]bool) *RecentlyChangedFilter {
	return &RecentlyChangedFilter{
		changedURLs: changedURLs,
	}
}

// ShouldKeep returns true if the reference URL is in the recently changed set
func (f *RecentlyChangedFilter) ShouldKeep(ctx context.Context, ref domain.EpisodeReference) (bool, error) {
	return f.changedURLs[ref.URL], nil
}
