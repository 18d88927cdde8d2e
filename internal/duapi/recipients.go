package duapi

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// recipientGroups lists the arrays a /recipients response may carry, in the
// order spec §4.4 enumerates them, along with the recipient_type tag each
// group's records are stamped with.
var recipientGroups = []string{"signers", "carbon_copies", "certified_deliveries", "in_person_signers"}

// FetchRecipients unions the up-to-four recipient arrays into one flat list,
// each record tagged with the originating array name as recipient_type.
// Used both for the basic and the enhanced recipients tables, which read the
// identical endpoint (spec §4.4).
func (c *Client) FetchRecipients(ctx context.Context, accessToken, envelopeID string) []Record {
	url := fmt.Sprintf("%s/envelopes/%s/recipients", c.baseURL, envelopeID)

	var resp map[string][]Record
	if err := c.http.GetJSON(ctx, url, accessToken, &resp); err != nil {
		c.log.Warning("could not fetch recipients for envelope",
			ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
		return nil
	}

	var out []Record
	for _, group := range recipientGroups {
		for _, r := range resp[group] {
			r["recipient_type"] = group
			out = append(out, r)
		}
	}
	return out
}
