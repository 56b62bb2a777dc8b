// Package assetfetch resolves image prompts and icon queries to URLs using
// external providers: Pexels for stock photos and Iconify for icons. Both
// providers sit behind a circuit breaker so a flapping upstream degrades to
// placeholder fallbacks instead of stalling every stream.
package assetfetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"resty.dev/v3"

	"deckgen-server/internal/utils/platformerrors"
)

const (
	pexelsSearchEndpoint  = "https://api.pexels.com/v1/search"
	iconifySearchEndpoint = "https://api.iconify.design/search"
	iconifyAssetBase      = "https://api.iconify.design"
)

type pexelsSearchResponse struct {
	Photos []struct {
		Src struct {
			Original string `json:"original"`
			Large    string `json:"large"`
			Medium   string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

type iconifySearchResponse struct {
	Icons []string `json:"icons"`
}

// Client implements assets.Fetcher against Pexels and Iconify.
type Client struct {
	httpClient   *resty.Client
	pexelsAPIKey string
	imageBreaker *gobreaker.CircuitBreaker
	iconBreaker  *gobreaker.CircuitBreaker
	log          zerolog.Logger
}

// NewClient builds an asset fetch client. An empty Pexels API key disables
// image resolution; fetches then fail fast and slides keep placeholders.
func NewClient(httpClient *resty.Client, pexelsAPIKey string, log zerolog.Logger) *Client {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}
	}
	return &Client{
		httpClient:   httpClient,
		pexelsAPIKey: pexelsAPIKey,
		imageBreaker: gobreaker.NewCircuitBreaker(settings("pexels")),
		iconBreaker:  gobreaker.NewCircuitBreaker(settings("iconify")),
		log:          log.With().Str("component", "asset-fetch").Logger(),
	}
}

// FetchImage searches Pexels for a stock photo matching the prompt.
func (c *Client) FetchImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.pexelsAPIKey) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypePrecondition,
			"image provider not configured", nil, "")
	}

	url, err := c.imageBreaker.Execute(func() (any, error) {
		var result pexelsSearchResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", c.pexelsAPIKey).
			SetQueryParams(map[string]string{
				"query":    prompt,
				"per_page": "1",
			}).
			SetResult(&result).
			Get(pexelsSearchEndpoint)
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			return "", fmt.Errorf("pexels search returned %d", resp.StatusCode())
		}
		if len(result.Photos) == 0 {
			return "", fmt.Errorf("no photo found for prompt %q", prompt)
		}
		src := result.Photos[0].Src
		if src.Large != "" {
			return src.Large, nil
		}
		return src.Original, nil
	})
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "image fetch failed")
	}
	return url.(string), nil
}

// FetchIcon searches Iconify and returns the SVG URL of the best match.
func (c *Client) FetchIcon(ctx context.Context, query string) (string, error) {
	url, err := c.iconBreaker.Execute(func() (any, error) {
		var result iconifySearchResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"query": query,
				"limit": "1",
			}).
			SetResult(&result).
			Get(iconifySearchEndpoint)
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			return "", fmt.Errorf("iconify search returned %d", resp.StatusCode())
		}
		if len(result.Icons) == 0 {
			return "", fmt.Errorf("no icon found for query %q", query)
		}

		prefix, name, found := strings.Cut(result.Icons[0], ":")
		if !found {
			return "", fmt.Errorf("malformed icon identifier %q", result.Icons[0])
		}
		return fmt.Sprintf("%s/%s/%s.svg", iconifyAssetBase, prefix, name), nil
	})
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "icon fetch failed")
	}
	return url.(string), nil
}
