package duapi

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/docusync/internal/ducontract"
)

// FetchDocuments lists the envelope's documents (metadata only; content is
// fetched separately via FetchDocumentContent) (spec §4.4).
func (c *Client) FetchDocuments(ctx context.Context, accessToken, envelopeID string) []Record {
	url := fmt.Sprintf("%s/envelopes/%s/documents", c.baseURL, envelopeID)

	var resp struct {
		EnvelopeDocuments []Record `json:"envelopeDocuments"`
	}
	if err := c.http.GetJSON(ctx, url, accessToken, &resp); err != nil {
		c.log.Warning("could not fetch documents for envelope",
			ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
		return nil
	}
	return resp.EnvelopeDocuments
}

// FetchDocumentContent downloads the raw bytes of one document. It never
// retries and returns nil on any failure (spec §4.3/§4.4); the caller logs
// nothing further since duhttp.Client.GetBinary already warned.
func (c *Client) FetchDocumentContent(ctx context.Context, accessToken, envelopeID, documentID string) []byte {
	url := fmt.Sprintf("%s/envelopes/%s/documents/%s", c.baseURL, envelopeID, documentID)
	return c.http.GetBinary(ctx, url, accessToken)
}
