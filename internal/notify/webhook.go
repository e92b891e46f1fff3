package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/seating-service/internal/store"
)

// Client posts outbox events to a webhook endpoint.
type Client struct {
	hc  *http.Client
	url string
}

func NewClient(url string) *Client {
	return &Client{
		hc:  &http.Client{Timeout: 5 * time.Second},
		url: url,
	}
}

func (c *Client) Send(ctx context.Context, ev store.OutboxEvent) error {
	body, err := json.Marshal(map[string]any{
		"event_id":   ev.EventID,
		"event_type": ev.Type,
		"payload":    ev.Payload,
		"created_at": ev.CreatedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var r struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(b, &r)
		if r.Message != "" {
			return fmt.Errorf("webhook rejected event %s: %s (status=%d)", ev.EventID, r.Message, resp.StatusCode)
		}
		return fmt.Errorf("webhook rejected event %s (status=%d)", ev.EventID, resp.StatusCode)
	}
	return nil
}
