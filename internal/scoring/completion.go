// Package scoring holds the dependency scorers the workflow engine fans out
// to: completion-backed scorers behind the Client interface and the
// deterministic rule-based assessor.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Result is a successful completion response.
type Result struct {
	Data      json.RawMessage `json:"data"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	LatencyMs int64           `json:"latency_ms"`
}

// Client is the AI-completion collaborator. Implementations return structured
// JSON matching the requested schema.
type Client interface {
	CompleteJSON(ctx context.Context, prompt string, schema map[string]string) (*Result, error)
}

// ErrSchemaValidation marks completion output that does not match the
// expected shape.
var ErrSchemaValidation = errors.New("scoring: completion result does not match schema")

// decodeChecked unmarshals completion data into v after verifying the
// required top-level fields are present.
func decodeChecked(data json.RawMessage, v any, required ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: not a JSON object: %v", ErrSchemaValidation, err)
	}
	for _, f := range required {
		if _, ok := fields[f]; !ok {
			return fmt.Errorf("%w: missing field %q", ErrSchemaValidation, f)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return nil
}

// HTTPClient talks to a completion provider over HTTP. The provider contract
// is a single POST endpoint taking {prompt, schema} and answering
// {ok, data, provider, model, latency_ms} or {ok: false, error}.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient creates a client for the provider at endpoint.
func NewHTTPClient(endpoint string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type completionRequest struct {
	Prompt string            `json:"prompt"`
	Schema map[string]string `json:"schema"`
}

type completionResponse struct {
	OK        bool            `json:"ok"`
	Data      json.RawMessage `json:"data"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	LatencyMs int64           `json:"latency_ms"`
	Error     string          `json:"error"`
}

func (c *HTTPClient) CompleteJSON(ctx context.Context, prompt string, schema map[string]string) (*Result, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt, Schema: schema})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion provider returned status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("completion provider error: %s", parsed.Error)
	}

	c.logger.Debug("Completion call succeeded",
		zap.String("provider", parsed.Provider),
		zap.String("model", parsed.Model),
		zap.Duration("elapsed", time.Since(start)),
	)

	latency := parsed.LatencyMs
	if latency == 0 {
		latency = time.Since(start).Milliseconds()
	}
	return &Result{
		Data:      parsed.Data,
		Provider:  parsed.Provider,
		Model:     parsed.Model,
		LatencyMs: latency,
	}, nil
}

// Ping reports whether the completion provider is reachable. Any HTTP
// response counts as reachable; only transport failures are errors.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("completion provider unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
