package llmclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/infrastructure/metrics"
	"deckgen-server/internal/interfaces/httpserver/responses"
	"deckgen-server/internal/utils/platformerrors"
)

const (
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

// Client talks to an OpenAI-compatible chat completions endpoint. It backs
// both structured single-shot generation and SSE passthrough streaming.
type Client struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
	retry   RetryConfig
	log     zerolog.Logger
}

// NewClient builds a Client for the given endpoint and default model.
func NewClient(client *resty.Client, baseURL, apiKey, model string, log zerolog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: normalizeBaseURL(baseURL),
		apiKey:  apiKey,
		model:   model,
		retry:   DefaultRetryConfig(),
		log:     log.With().Str("component", "llm-client").Logger(),
	}
}

// Model returns the configured default model name.
func (c *Client) Model() string { return c.model }

// CompleteStructured runs a single chat completion constrained to the given
// response schema and returns the decoded JSON object. The raw content is
// repaired before decoding when the model emits slightly malformed JSON.
func (c *Client) CompleteStructured(ctx context.Context, name, system, user string, responseSchema schema.Schema) (map[string]any, error) {
	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: responseSchema,
				Strict: true,
			},
		},
	}

	start := time.Now()
	respBody, err := WithRetry(ctx, c.retry, name, func() (*openai.ChatCompletionResponse, error) {
		return c.createChatCompletion(ctx, request)
	})
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err,
			fmt.Sprintf("%s completion failed", name))
	}

	if len(respBody.Choices) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("%s completion returned no choices", name), nil, "")
	}

	content := respBody.Choices[0].Message.Content
	result, err := decodeStructured(content)
	if err != nil {
		c.log.Error().Err(err).Str("operation", name).Msg("structured response is not valid JSON")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("%s completion returned malformed JSON", name), err, "")
	}
	return result, nil
}

func (c *Client) createChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	var respBody openai.ChatCompletionResponse
	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetResult(&respBody).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "request failed")
	}
	return &respBody, nil
}

// decodeStructured parses model output into a JSON object, running it
// through jsonrepair when the first decode fails.
func decodeStructured(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	var result map[string]any
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return nil, fmt.Errorf("repair model output: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return nil, fmt.Errorf("decode repaired model output: %w", err)
	}
	return result, nil
}

// StreamToContext proxies a streaming chat completion to the caller as SSE,
// stopping at the upstream [DONE] marker.
func (c *Client) StreamToContext(reqCtx *gin.Context, request openai.ChatCompletionRequest) error {
	ctx := reqCtx.Request.Context()

	if request.Model == "" {
		request.Model = c.model
	}
	request.Stream = true

	req := c.prepareRequest(ctx).
		SetBody(request).
		SetDoNotParseResponse(true)
	if req.Header.Get("Accept-Encoding") == "" {
		req.SetHeader("Accept-Encoding", "identity")
	}

	resp, err := req.Post(c.endpoint("/chat/completions"))
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "streaming request failed")
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "streaming request failed")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"streaming request failed: empty response body", nil, "")
	}
	defer func() {
		if closeErr := resp.RawResponse.Body.Close(); closeErr != nil {
			c.log.Error().Err(closeErr).Msg("unable to close response body")
		}
	}()

	responses.SetupSSEHeaders(reqCtx)

	scanner := bufio.NewScanner(resp.RawResponse.Body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, ctx.Err(), "client request cancelled")
		default:
		}

		line := scanner.Text()
		if err := writeSSELine(reqCtx, line); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "unable to write SSE line")
		}

		if data, found := strings.CutPrefix(line, dataPrefix); found && data == doneMarker {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "streaming read failed")
	}
	return nil
}

func writeSSELine(reqCtx *gin.Context, line string) error {
	if _, err := reqCtx.Writer.Write([]byte(line + "\n")); err != nil {
		return err
	}
	reqCtx.Writer.Flush()
	return nil
}

func (c *Client) prepareRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	return req
}

func (c *Client) endpoint(path string) string {
	if path == "" {
		return c.baseURL
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "")
	}
	defer resp.RawResponse.Body.Close()
	body, err := io.ReadAll(resp.RawResponse.Body)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "")
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
		fmt.Sprintf("%s: %d %s", message, resp.StatusCode(), trimmed), nil, "")
}

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
