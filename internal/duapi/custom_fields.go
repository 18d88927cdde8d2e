package duapi

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// FetchCustomFields concatenates the text and list custom field arrays
// (spec §4.4).
func (c *Client) FetchCustomFields(ctx context.Context, accessToken, envelopeID string) []Record {
	url := fmt.Sprintf("%s/envelopes/%s/custom_fields", c.baseURL, envelopeID)

	var resp struct {
		TextCustomFields []Record `json:"textCustomFields"`
		ListCustomFields []Record `json:"listCustomFields"`
	}
	if err := c.http.GetJSON(ctx, url, accessToken, &resp); err != nil {
		c.log.Warning("could not fetch custom fields for envelope",
			ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
		return nil
	}
	return append(resp.TextCustomFields, resp.ListCustomFields...)
}
