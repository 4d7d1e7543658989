package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/u1f408/accord/clients"
	"github.com/u1f408/accord/core"
	"github.com/u1f408/accord/core/log"
	"github.com/u1f408/accord/models"
)

const (
	DeliveryHeader = "X-Accord-Delivery"
	userAgent      = "accord"

	// maxErrorBodyBytes bounds how much of a failed response ends up in the error.
	maxErrorBodyBytes = 512
)

// TargetClient implements the clients.TargetClient interface.
// It holds no mutable state and is shared by every dispatch task.
type TargetClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTargetClient creates a client posting to baseURL. A trailing slash on baseURL is
// dropped since every payload path starts with one.
func NewTargetClient(httpClient *http.Client, baseURL string) *TargetClient {
	return &TargetClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

var _ clients.TargetClient = (*TargetClient)(nil)

// BaseURL returns the address prefix every payload path is appended to.
func (c *TargetClient) BaseURL() string {
	return c.baseURL
}

// Send POSTs the JSON encoding of payload to the base URL joined with payload.URL().
// Encoding and header failures wrap core.ErrInvalidPayload; transport failures and
// non-2xx responses wrap core.ErrDispatchFailed.
func (c *TargetClient) Send(ctx context.Context, payload models.Payload) error {
	log.Info("📤 Sending %s", payload.PayloadType())

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w: %w", payload.PayloadType(), core.ErrInvalidPayload, err)
	}

	url := c.baseURL + payload.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w: %w", url, core.ErrInvalidPayload, err)
	}

	deliveryID := core.NewDeliveryID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(DeliveryHeader, deliveryID)
	if err := addHeaders(req, payload.Headers()); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post %s to %s: %w: %w", payload.PayloadType(), url, core.ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("target returned status %d for %s (delivery %s): %s: %w",
			resp.StatusCode, url, deliveryID, strings.TrimSpace(string(excerpt)), core.ErrDispatchFailed)
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	log.Debug("✅ Delivered %s to %s (delivery %s, status %d)", payload.PayloadType(), url, deliveryID, resp.StatusCode)
	return nil
}

// addHeaders attaches payload-declared headers, replacing any default of the same name.
func addHeaders(req *http.Request, headers []models.Header) error {
	for _, h := range headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return fmt.Errorf("invalid header name %q: %w", h.Name, core.ErrInvalidPayload)
		}
		req.Header.Del(h.Name)
		for _, v := range h.Values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf("invalid value for header %s: %w", h.Name, core.ErrInvalidPayload)
			}
			req.Header.Add(h.Name, v)
		}
	}
	return nil
}
