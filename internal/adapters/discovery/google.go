package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	"whalegen/internal/core/domain"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// maxResults is the page size cap of the Custom Search JSON API.
const maxResults = 10

type Query struct {
	Terms        string
	ExcludeTerms string
	FileType     string
	Limit        int
}

// GoogleSearch discovers source images through the Google Custom Search JSON API.
type GoogleSearch struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	engineID string
	query    Query
}

func NewGoogleSearch(endpoint, apiKey, engineID string, query Query, timeout time.Duration) *GoogleSearch {
	return &GoogleSearch{
		client:   resty.New().SetTimeout(timeout),
		endpoint: endpoint,
		apiKey:   apiKey,
		engineID: engineID,
		query:    query,
	}
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

type searchError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Discover returns the image links of the search results in ranking order.
func (g *GoogleSearch) Discover(ctx context.Context) ([]string, error) {
	params := map[string]string{
		"key":        g.apiKey,
		"cx":         g.engineID,
		"q":          g.query.Terms,
		"searchType": "image",
		"c2coff":     "1",
		"filter":     "1",
	}
	if g.query.ExcludeTerms != "" {
		params["excludeTerms"] = g.query.ExcludeTerms
	}
	if g.query.FileType != "" {
		params["fileType"] = g.query.FileType
	}
	if g.query.Limit > 0 {
		params["num"] = strconv.Itoa(min(g.query.Limit, maxResults))
	}

	log.Debug().Str("query", g.query.Terms).Str("endpoint", g.endpoint).Msg("running image search")

	res, err := g.client.R().SetContext(ctx).SetQueryParams(params).Get(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: error executing search request: %w", domain.ErrDiscovery, err)
	}

	if res.IsError() {
		var apiErr searchError
		if json.Unmarshal(res.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: search returned %d: %s", domain.ErrDiscovery, res.StatusCode(),
				apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: search returned %d", domain.ErrDiscovery, res.StatusCode())
	}

	var result searchResponse
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling search response: %w", domain.ErrDiscovery, err)
	}

	links := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Link == "" {
			continue
		}
		links = append(links, item.Link)
	}

	log.Info().Int("results", len(links)).Msg("image search finished")

	return links, nil
}

// Static serves a fixed list of source URLs, bypassing search.
type Static struct {
	urls []string
}

func NewStatic(urls []string) *Static {
	return &Static{urls: urls}
}

func (s *Static) Discover(_ context.Context) ([]string, error) {
	return append([]string(nil), s.urls...), nil
}
