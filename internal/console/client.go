package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yoockh/isthissoup/internal/models"
)

// Asker opens one gateway stream for query.
type Asker interface {
	Ask(ctx context.Context, query string) (Events, error)
}

// Events yields decoded gateway events. Next returns io.EOF when the body
// ends, whether or not a terminal event was seen.
type Events interface {
	Next() (models.StreamEvent, error)
	Close() error
}

// StatusError is a non-2xx gateway response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the gateway over HTTP, always asking for NDJSON framing.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *Client) Ask(ctx context.Context, query string) (Events, error) {
	body, err := json.Marshal(models.AskRequest{Prompt: query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask-soup", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&apiErr)
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	return &ndjsonEvents{body: resp.Body, dec: json.NewDecoder(resp.Body)}, nil
}

type ndjsonEvents struct {
	body io.ReadCloser
	dec  *json.Decoder
}

func (e *ndjsonEvents) Next() (models.StreamEvent, error) {
	var ev models.StreamEvent
	err := e.dec.Decode(&ev)
	return ev, err
}

func (e *ndjsonEvents) Close() error { return e.body.Close() }
