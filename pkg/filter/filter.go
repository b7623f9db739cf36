package filter

import (
	"context"
	"fmt"
	"strings"
)

// Filter defines the interface for URL filtering
type Filter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// FilterURLs applies all filters to a list of URLs, preserving order
func FilterURLs(ctx context.Context, urls []string, filters ...Filter) ([]string, error) {
	filtered := make([]string, 0, len(urls))

	for _, urlStr := range urls {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, urlStr)
			if err != nil {
				return nil, fmt.Errorf("filter error for URL %s: %w", urlStr, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, urlStr)
		}
	}

	return filtered, nil
}

// PrefixFilter keeps hrefs that begin with a fixed prefix (e.g. "?ep")
type PrefixFilter struct {
	prefix string
}

// NewPrefixFilter creates a new prefix filter
func NewPrefixFilter(prefix string) *PrefixFilter {
	return &PrefixFilter{prefix: prefix}
}

// ShouldKeep returns true if the href starts with the prefix
func (f *PrefixFilter) ShouldKeep(ctx context.Context, href string) (bool, error) {
	return strings.HasPrefix(href, f.prefix), nil
}

// DedupFilter drops repeats of a URL it has already kept
type DedupFilter struct {
	seen map[string]bool
}

// NewDedupFilter creates a new dedup filter
func NewDedupFilter() *DedupFilter {
	return &DedupFilter{seen: make(map[string]bool)}
}

// ShouldKeep returns false for the second and later occurrences of a URL
func (f *DedupFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	if f.seen[urlStr] {
		return false, nil
	}
	f.seen[urlStr] = true
	return true, nil
}

// AlreadyFetchedFilter filters out URLs that already exist in the provided set
type AlreadyFetchedFilter struct {
	fetchedURLs map[string]bool
}

// NewAlreadyFetchedFilter creates a new already-fetched filter
func NewAlreadyFetchedFilter(fetchedURLs map[string]bool) *AlreadyFetchedFilter {
	return &AlreadyFetchedFilter{
		fetchedURLs: fetchedURLs,
	}
}

// ShouldKeep returns false if URL is already in the fetched set
func (f *AlreadyFetchedFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	return !f.fetchedURLs[urlStr], nil
}
