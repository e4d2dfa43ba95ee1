package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

const (
	HostDefault = "query1.finance.yahoo.com"

	defaultTimeout    = 30 * time.Second
	defaultMaxResults = 10
)

// Quote is one candidate row from the market-data provider's name search.
type Quote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
}

// Name prefers the long name, which matches registered company names better
// than the abbreviated short one.
func (q Quote) Name() string {
	if q.LongName != "" {
		return q.LongName
	}
	return q.ShortName
}

type SearchClient struct {
	*Client
}

func GetSearchClient() SearchClient {
	return SearchClient{
		ClientFactory(HostDefault, defaultTimeout),
	}
}

// SearchQuotes queries the provider's symbol search endpoint for candidates
// matching a free-text name. No scoring happens here; ranking candidates is
// the resolver's job.
func (c SearchClient) SearchQuotes(ctx context.Context, query string) ([]Quote, error) {
	endpoint := &url.URL{
		Path: "/v1/finance/search",
		RawQuery: url.Values{
			"q":           {query},
			"quotesCount": {fmt.Sprint(defaultMaxResults)},
			"newsCount":   {"0"},
		}.Encode(),
	}

	response, err := c.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error searching quotes for %q: %w", query, err)
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, fmt.Errorf("quote search for %q returned status %d", query, response.StatusCode)
	}

	var body struct {
		Quotes []Quote `json:"quotes"`
	}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding quote search response for %q: %w", query, err)
	}

	return body.Quotes, nil
}
