package responder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Timeouts for outbound calls. Generation is slow by nature; the health
// probe must answer fast or not at all.
const (
	DefaultGenerateTimeout = 60 * time.Second
	DefaultProbeTimeout    = 5 * time.Second
)

// GenerateOptions mirror the generation knobs of the service's wire format.
type GenerateOptions struct {
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	NumPredict    int      `json:"num_predict"`
	RepeatPenalty float64  `json:"repeat_penalty"`
	Stop          []string `json:"stop,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options GenerateOptions `json:"options"`
}

type generateChunk struct {
	Response string `json:"response"`
}

type versionResponse struct {
	Version string `json:"version"`
}

// Client talks to the generative text service over HTTP: POST /generate for
// completions, GET /version as a lightweight health probe.
type Client struct {
	baseURL         string
	model           string
	stream          bool
	options         GenerateOptions
	httpClient      *http.Client
	generateTimeout time.Duration
	probeTimeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithStream enables the newline-delimited streaming response format; chunks
// are concatenated before returning.
func WithStream(stream bool) ClientOption {
	return func(c *Client) { c.stream = stream }
}

// WithGenerateOptions overrides the generation knobs.
func WithGenerateOptions(opts GenerateOptions) ClientOption {
	return func(c *Client) { c.options = opts }
}

// WithTimeouts overrides the per-call timeouts.
func WithTimeouts(generate, probe time.Duration) ClientOption {
	return func(c *Client) {
		c.generateTimeout = generate
		c.probeTimeout = probe
	}
}

// WithHTTPClient injects the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the service at baseURL using the given model.
func NewClient(baseURL, model string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		options: GenerateOptions{
			Temperature:   0.7,
			TopP:          0.9,
			NumPredict:    512,
			RepeatPenalty: 1.1,
		},
		httpClient:      &http.Client{},
		generateTimeout: DefaultGenerateTimeout,
		probeTimeout:    DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate requests a completion for prompt. The call carries its own
// timeout; on expiry it is abandoned and the error surfaces to the breaker.
// An empty response body with a 200 status yields ("", nil): that is a
// content problem for the caller to phrase, not a connectivity failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  c.stream,
		Options: c.options,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate returned status %d", resp.StatusCode)
	}

	if c.stream {
		return c.readStream(resp)
	}

	var chunk generateChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		if errors.Is(err, io.EOF) {
			// 200 with no body at all counts as an empty answer.
			return "", nil
		}
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return strings.TrimSpace(chunk.Response), nil
}

// readStream concatenates newline-delimited JSON chunks.
func (c *Client) readStream(resp *http.Response) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		sb.WriteString(chunk.Response)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Health probes GET /version. Any non-200 answer or transport error means
// the service is down.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return fmt.Errorf("build version request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("version returned status %d", resp.StatusCode)
	}
	var v versionResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return fmt.Errorf("decode version response: %w", err)
	}
	return nil
}
