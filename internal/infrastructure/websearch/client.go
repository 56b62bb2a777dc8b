// Package websearch gathers source material for outline generation from a
// web search provider.
package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"deckgen-server/internal/utils/platformerrors"
)

const searchEndpoint = "https://google.serper.dev/search"

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

// Client queries the Serper API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	log        zerolog.Logger
}

// NewClient builds a Serper-backed web search client. An empty API key
// disables search; SourceMaterial then returns an empty string.
func NewClient(httpClient *resty.Client, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		log:        log.With().Str("component", "web-search").Logger(),
	}
}

// Enabled reports whether a search provider is configured.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// SourceMaterial searches the web for the query and renders the organic
// results as a plain-text digest usable as model context.
func (c *Client) SourceMaterial(ctx context.Context, query string) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	var result searchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"q": query, "num": 10}).
		SetResult(&result).
		Post(searchEndpoint)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "web search failed")
	}
	if resp.IsError() {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("web search returned %d", resp.StatusCode()), nil, "")
	}

	var sb strings.Builder
	for _, item := range result.Organic {
		if item.Snippet == "" {
			continue
		}
		sb.WriteString(item.Title)
		sb.WriteString("\n")
		sb.WriteString(item.Snippet)
		sb.WriteString("\nSource: ")
		sb.WriteString(item.Link)
		sb.WriteString("\n\n")
	}

	c.log.Debug().Str("query", query).Int("results", len(result.Organic)).Msg("web search completed")
	return strings.TrimSpace(sb.String()), nil
}
