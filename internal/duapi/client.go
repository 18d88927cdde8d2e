// Package duapi has one fetcher per DocuSign endpoint this connector reads
// (spec §4.4). Every fetcher but ListEnvelopes and ListTemplates degrades to
// an empty result with a logged warning on failure; those two return the
// error, along with any pages already fetched, and the caller decides
// whether the sync goes on.
package duapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duhttp"
)

// Record is one raw object returned by the DocuSign API, kept as a loosely
// typed map so dynamic-shape resources (audit events, tabs) pass through
// without a fixed struct.
type Record = map[string]any

const pageSize = 100

// Client composes the account-scoped base URL and fans requests out through
// a shared duhttp.Client.
type Client struct {
	http    *duhttp.Client
	baseURL string
	log     ducontract.Logger
}

// New builds a Client rooted at {apiBaseURL}/v2.1/accounts/{accountID}.
func New(httpClient *duhttp.Client, apiBaseURL, accountID string, log ducontract.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(apiBaseURL, "/") + "/v2.1/accounts/" + accountID,
		log:     log,
	}
}

// paginate drives the `count`/`start_position` pagination shared by the
// envelope and template listings (spec §4.4): fetch a page, stop once a page
// comes back empty or smaller than pageSize.
func (c *Client) paginate(ctx context.Context, accessToken, path string, extraQuery url.Values, pageKey string) ([]Record, error) {
	var all []Record
	start := 0

	for {
		q := url.Values{}
		for k, v := range extraQuery {
			q[k] = v
		}
		q.Set("count", fmt.Sprintf("%d", pageSize))
		q.Set("start_position", fmt.Sprintf("%d", start))

		u := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())

		var page map[string][]Record
		if err := c.http.GetJSON(ctx, u, accessToken, &page); err != nil {
			return all, err
		}

		batch := page[pageKey]
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		start += len(batch)
		if len(batch) < pageSize {
			break
		}
	}

	return all, nil
}
