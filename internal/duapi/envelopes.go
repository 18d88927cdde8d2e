package duapi

import (
	"context"
	"net/url"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// ListEnvelopes fetches every envelope modified since fromDate, paginating
// by start_position (spec §4.4). A partial result is returned alongside a
// non-nil error when a page fails mid-traversal, so the orchestrator can
// still process whatever was already collected before moving on.
func (c *Client) ListEnvelopes(ctx context.Context, accessToken, fromDate string) ([]Record, error) {
	q := url.Values{}
	q.Set("from_date", fromDate)

	envelopes, err := c.paginate(ctx, accessToken, "/envelopes", q, "envelopes")
	if err != nil {
		c.log.Severe("failed to fetch envelopes", ducontract.F("from_date", fromDate), ducontract.F("error", err.Error()))
		return envelopes, err
	}
	c.log.Info("fetched envelopes", ducontract.F("count", len(envelopes)))
	return envelopes, nil
}
