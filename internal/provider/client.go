package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/planwright/planwright/internal/format"
	"github.com/planwright/planwright/internal/tracing"
)

// maxResponseBytes caps how much of an upstream response body is read.
const maxResponseBytes = 10 << 20 // 10 MB

// Client issues requests to upstream backends. It uses a shared http.Client
// with connection pooling and a 60-second default timeout.
type Client struct {
	client *http.Client
}

// NewClient creates a Client with sensible defaults for connection pooling
// and timeouts.
func NewClient() *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
	}
}

// Call performs one POST to the configured backend and classifies the result.
// It issues no retries and returns a total Outcome: every failure mode maps
// to one of the six reasons rather than an error.
func (c *Client) Call(ctx context.Context, prompt, contextText string, cfg Config) Outcome {
	body, err := format.BuildRequest(cfg.Format, prompt, contextText, cfg.Params())
	if err != nil {
		return Failure(ReasonOther, 0, "building request: "+err.Error())
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ctx, span := tracing.StartAttemptSpan(ctx, cfg.Label, cfg.URL())
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL(), bytes.NewReader(body))
	if err != nil {
		return Failure(ReasonOther, 0, "creating request: "+err.Error())
	}

	httpReq.Header.Set("Content-Type", "application/json")
	name, value := format.AuthHeader(cfg.AuthStyle, cfg.Credential)
	httpReq.Header.Set(name, value)
	if cfg.Kind == KindAnthropic {
		httpReq.Header.Set("anthropic-version", anthropicVersion)
	}

	tracing.InjectHeaders(ctx, httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		tracing.RecordError(ctx, err)
		return Failure(ReasonUnreachable, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		tracing.RecordError(ctx, err)
		return Failure(ReasonUnreachable, 0, "reading response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, respBody)
	}

	text, err := format.ParseResponse(cfg.Format, respBody)
	if err != nil {
		tracing.RecordError(ctx, err)
		return Failure(ReasonMalformed, resp.StatusCode, err.Error())
	}

	tracing.SetAttemptSuccess(ctx, resp.StatusCode)
	return Success(text)
}

// classifyStatus maps a non-2xx upstream status to a failure reason, carrying
// any error message found in the body for diagnostics.
func classifyStatus(status int, body []byte) Outcome {
	detail := extractErrorMessage(body)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return Failure(ReasonAuthorization, status, detail)
	case http.StatusTooManyRequests:
		return Failure(ReasonRateLimited, status, detail)
	case http.StatusNotFound:
		return Failure(ReasonNotFound, status, detail)
	default:
		return Failure(ReasonOther, status, detail)
	}
}

// extractErrorMessage pulls a human-readable message out of an upstream error
// body. It understands the common {"error": {"message": ...}} and
// {"error": "..."} shapes and falls back to a truncated raw body.
func extractErrorMessage(body []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	const maxDetail = 200
	if len(body) > maxDetail {
		return string(body[:maxDetail])
	}
	return string(body)
}
