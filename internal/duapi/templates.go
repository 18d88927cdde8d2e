package duapi

import (
	"context"
	"net/url"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// ListTemplates fetches the full template list, paginated identically to
// ListEnvelopes. The template endpoint has no from_date parameter, so every
// sync re-lists all templates regardless of last_template_sync (spec §4.4,
// §4.6; see SPEC_FULL.md §9 on the watermark-not-a-filter decision).
func (c *Client) ListTemplates(ctx context.Context, accessToken string) ([]Record, error) {
	templates, err := c.paginate(ctx, accessToken, "/templates", url.Values{}, "envelopeTemplates")
	if err != nil {
		c.log.Severe("failed to fetch templates", ducontract.F("error", err.Error()))
		return templates, err
	}
	return templates, nil
}
