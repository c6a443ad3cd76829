// Package httptts synthesizes speech through a plain HTTP endpoint:
// POST {baseURL}/tts/stream with a JSON body, audio bytes back.
package httptts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voxloop/voxloop-core/core/synthesis"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const streamPath = "/tts/stream"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The otelhttp transport
// is not re-applied to the replacement.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Synthesize sends one segment to the endpoint and returns the audio bytes.
// The caller owns the timeout through ctx; any non-2xx response is an error.
func (c *Client) Synthesize(ctx context.Context, request synthesis.Request) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "synthesize segment")
	defer span.End()
	span.SetAttributes(
		attribute.Int("synthesis.sequence", request.Sequence),
		attribute.Int("synthesis.text_length", len(request.Text)),
	)

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+streamPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		err = fmt.Errorf("synthesis request failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		err = fmt.Errorf("synthesis endpoint returned status %d", response.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	audio, err := io.ReadAll(response.Body)
	if err != nil {
		err = fmt.Errorf("failed to read synthesis response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return audio, nil
}
