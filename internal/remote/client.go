// Package remote holds the thin HTTP clients for the two external
// services: the identity API issuing session tokens and the document
// store persisting products and orders. Responses are decoded into typed
// payloads at this boundary before any state container sees them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// APIError is a failure reported by a remote API. Message carries the
// human-readable text from the response body, or a per-operation default
// when the body has none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// send issues one JSON request tagged with a generated request id and
// logs the outcome. The caller owns the response body.
func send(ctx context.Context, client *http.Client, method, url string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s %s failed: %w", requestID, method, req.URL.Path, err)
	}
	log.Printf("remote %s %s -> %d (request %s)", method, req.URL.Path, resp.StatusCode, requestID)
	return resp, nil
}

// decodeInto drains and closes the body, decoding it into v when v is
// non-nil. An empty body is not an error.
func decodeInto(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if v == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
