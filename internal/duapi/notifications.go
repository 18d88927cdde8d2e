package duapi

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// FetchNotifications returns the envelope's scheduled/sent notifications
// (reminders, expirations) (spec §4.4).
func (c *Client) FetchNotifications(ctx context.Context, accessToken, envelopeID string) []Record {
	url := fmt.Sprintf("%s/envelopes/%s/notification", c.baseURL, envelopeID)

	var resp struct {
		Notifications []Record `json:"notifications"`
	}
	if err := c.http.GetJSON(ctx, url, accessToken, &resp); err != nil {
		c.log.Warning("could not fetch notifications for envelope",
			ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
		return nil
	}
	return resp.Notifications
}
