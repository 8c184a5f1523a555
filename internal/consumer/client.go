// Package consumer drives completion requests against the proxy and
// assembles the streamed frames into text.
package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
	"github.com/davidbz/workshopai/internal/sse"
)

const eventStreamType = "text/event-stream"

// Config locates the proxy.
type Config struct {
	BaseURL        string `env:"WORKSHOP_SERVER"           envDefault:"http://localhost:8080"`
	CompletionPath string `env:"WORKSHOP_COMPLETIONS_PATH" envDefault:"/v1/completions"`
	EmailPath      string `env:"WORKSHOP_EMAIL_PATH"       envDefault:"/api/email"`
}

// UpdateFunc observes the accumulated text after every applied frame.
type UpdateFunc func(text string)

// Client posts completion requests and report emails to the proxy.
type Client struct {
	url        string
	emailURL   string
	httpClient *http.Client
}

// NewClient creates a client. A nil httpClient uses one without a timeout,
// since streams may run for as long as the model writes.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		url:        joinURL(cfg.BaseURL, cfg.CompletionPath, "/v1/completions"),
		emailURL:   joinURL(cfg.BaseURL, cfg.EmailPath, "/api/email"),
		httpClient: httpClient,
	}
}

func joinURL(base, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// payload is the non-stream response body.
type payload struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

// Stream sends req and returns the final text. onUpdate, when set, runs
// after each applied frame and before the next read. Failures outside the
// stream are returned as *TransportError together with the text
// accumulated so far.
func (c *Client) Stream(ctx context.Context, req *domain.CompletionRequest, onUpdate UpdateFunc) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", eventStreamType)
	if requestID := observability.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError(resp)
	}

	if !isEventStream(resp.Header.Get("Content-Type")) {
		return readSingle(resp.Body, onUpdate)
	}

	return readStream(ctx, resp.Body, onUpdate)
}

// readStream applies every data line until EOF. Unparseable lines are
// logged and skipped.
func readStream(ctx context.Context, body io.Reader, onUpdate UpdateFunc) (string, error) {
	logger := observability.FromContext(ctx)
	reader := sse.NewLineReader(body)

	var acc Accumulator
	for {
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return acc.Freeze(), nil
		}
		if err != nil {
			return acc.Text(), &TransportError{Err: fmt.Errorf("stream interrupted: %w", err)}
		}

		frame, ok, parseErr := sse.ParseLine(line)
		if parseErr != nil {
			logger.Warn("skipping malformed frame", observability.Error(parseErr))
			continue
		}
		if !ok {
			continue
		}

		text := acc.Apply(frame)
		if onUpdate != nil {
			onUpdate(text)
		}
	}
}

// readSingle handles a proxy that answered with one JSON object.
func readSingle(body io.Reader, onUpdate UpdateFunc) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var decoded payload
	if err = json.Unmarshal(raw, &decoded); err != nil {
		return "", &TransportError{Err: fmt.Errorf("invalid response body: %w", err)}
	}

	if decoded.Error != "" {
		return "", &TransportError{Message: decoded.Error}
	}

	text := decoded.Content
	if text == "" {
		text = string(bytes.TrimSpace(raw))
	}

	if onUpdate != nil {
		onUpdate(text)
	}
	return text, nil
}

// Send posts msg to the proxy's email endpoint.
func (c *Client) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.EmailReceipt, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.emailURL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(resp)
	}

	var receipt domain.EmailReceipt
	if err = json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("invalid email response: %w", err)}
	}
	return &receipt, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var decoded payload
	if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
		return &TransportError{StatusCode: resp.StatusCode, Message: decoded.Error}
	}

	return &TransportError{StatusCode: resp.StatusCode}
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == eventStreamType
}
