package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
)

const (
	healthEndpoint = "/health"
	sortEndpoint   = "/api/sort"
)

// Client talks to a running extsortd instance.
type Client struct {
	client  *resty.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		client:  resty.New(),
		baseURL: baseURL,
	}
}

// Health reports whether the service is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + healthEndpoint)
	if err != nil {
		return fmt.Errorf("failed to reach sort service: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sort service unhealthy: %s", resp.Status())
	}
	return nil
}

// Sort streams the newline-delimited values from r to the service and
// writes the sorted stream to w.
func (c *Client) Sort(ctx context.Context, r io.Reader, w io.Writer) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Content-Type", "text/plain").
		SetBody(r).
		Post(c.baseURL + sortEndpoint)
	if err != nil {
		return fmt.Errorf("failed to call sort service: %w", err)
	}

	body := resp.RawBody()
	defer func() {
		_ = body.Close()
	}()

	if resp.IsError() {
		var apiErr struct {
			Error string `json:"error"`
		}
		if derr := json.NewDecoder(body).Decode(&apiErr); derr == nil && apiErr.Error != "" {
			return fmt.Errorf("sort rejected: %s", apiErr.Error)
		}
		return fmt.Errorf("sort rejected: %s", resp.Status())
	}

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("failed to read sorted stream: %w", err)
	}
	return nil
}
