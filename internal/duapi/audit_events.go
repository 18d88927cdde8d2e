package duapi

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// FetchAuditEvents returns the envelope's audit trail. Each event carries a
// dynamic eventFields array ({name, value} pairs) flattened downstream by
// internal/durecord (spec §4.4, §4.5).
func (c *Client) FetchAuditEvents(ctx context.Context, accessToken, envelopeID string) []Record {
	url := fmt.Sprintf("%s/envelopes/%s/audit_events", c.baseURL, envelopeID)

	var resp struct {
		AuditEvents []Record `json:"auditEvents"`
	}
	if err := c.http.GetJSON(ctx, url, accessToken, &resp); err != nil {
		c.log.Warning("could not fetch audit events for envelope",
			ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
		return nil
	}
	return resp.AuditEvents
}
