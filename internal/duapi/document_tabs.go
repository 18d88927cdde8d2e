package duapi

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// FetchDocumentTabs unions every tab-type array in the /tabs response,
// tagging each tab with its originating tab_type (spec §4.4).
func (c *Client) FetchDocumentTabs(ctx context.Context, accessToken, envelopeID string) []Record {
	url := fmt.Sprintf("%s/envelopes/%s/tabs", c.baseURL, envelopeID)

	var resp map[string][]Record
	if err := c.http.GetJSON(ctx, url, accessToken, &resp); err != nil {
		c.log.Warning("could not fetch tabs for envelope",
			ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
		return nil
	}

	var out []Record
	for tabType, tabs := range resp {
		for _, tab := range tabs {
			tab["tab_type"] = tabType
			out = append(out, tab)
		}
	}
	return out
}
