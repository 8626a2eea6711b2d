package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetMarkets fetches one page of markets. An empty cursor fetches the first page.
func (c *Client) GetMarkets(ctx context.Context, cursor string) (*MarketsPage, error) {
	query := url.Values{}
	query.Set("next_cursor", cursor)

	var resp MarketsPage
	if err := c.getJSON(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// Predicate selects markets during a search.
type Predicate func(Market) bool

// SlugContains matches markets whose slug contains sub, ignoring case.
func SlugContains(sub string) Predicate {
	sub = strings.ToLower(sub)
	return func(m Market) bool {
		return strings.Contains(strings.ToLower(m.MarketSlug), sub)
	}
}

// OpenOnly wraps p to skip closed and archived markets.
func OpenOnly(p Predicate) Predicate {
	return func(m Market) bool {
		return !m.Closed && !m.Archived && p(m)
	}
}

// SearchMarkets pages through the whole catalog and returns the markets
// matching p, in catalog order.
func (c *Client) SearchMarkets(ctx context.Context, p Predicate) ([]Market, error) {
	var found []Market
	cursor := ""
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if page > c.maxPages {
			return found, fmt.Errorf("search markets: stopped after %d pages", c.maxPages)
		}

		resp, err := c.GetMarkets(ctx, cursor)
		if err != nil {
			return found, fmt.Errorf("page %d: %w", page, err)
		}

		for _, m := range resp.Data {
			if p(m) {
				found = append(found, m)
			}
		}

		c.logger.Debug("catalog page",
			"page", page,
			"markets", len(resp.Data),
			"matched", len(found),
		)

		if lastPage(resp.NextCursor) {
			return found, nil
		}
		if _, dup := seen[resp.NextCursor]; dup {
			return found, fmt.Errorf("search markets: cursor %q repeated", resp.NextCursor)
		}
		seen[resp.NextCursor] = struct{}{}
		cursor = resp.NextCursor
	}
}
