// Package source implements the per-platform fallback chain: try each
// configured upstream in priority order until one yields data.
package source

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/feedmux/feedmux/internal/upstream"
)

// Source is one upstream acquisition method (official API, scraping
// proxy, page scrape) for a platform.
type Source interface {
	Name() string
	Fetch(ctx context.Context, handle string, count int) (*upstream.Feed, error)
}

// Selector walks an ordered source list. Priciest/most-reliable source
// first, cheapest scrape last.
type Selector struct {
	sources []Source
}

func NewSelector(sources ...Source) *Selector {
	return &Selector{sources: sources}
}

// Resolve returns the first usable feed along with the name of the
// source that produced it.
//
// A source is skipped when it errors or returns an empty feed with no
// explanation. A feed carrying items, or an empty feed with its Err
// marker set, ends the chain; the latter surfaces to clients as a
// partial result rather than a retry trigger. When every source is
// skipped the returned error joins each per-source reason.
func (s *Selector) Resolve(ctx context.Context, handle string, count int) (*upstream.Feed, string, error) {
	var reasons []string

	for _, src := range s.sources {
		feed, err := src.Fetch(ctx, handle, count)
		if err != nil {
			log.Printf("source %s failed: %v", src.Name(), err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		if len(feed.Items) == 0 && feed.Err == "" {
			log.Printf("source %s returned no items", src.Name())
			reasons = append(reasons, fmt.Sprintf("%s: returned no items", src.Name()))
			continue
		}
		if feed.Source == "" {
			feed.Source = src.Name()
		}
		return feed, src.Name(), nil
	}

	return nil, "", fmt.Errorf("all sources failed: %s", strings.Join(reasons, "; "))
}
