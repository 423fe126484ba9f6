package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/config"
	"github.com/carebridge-health/dme-orders/pkg/common/httpclient"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client submits extracted orders to the external ordering API. When a
// token URL is configured the client authenticates with OAuth2 client
// credentials; otherwise requests go out unauthenticated.
type Client struct {
	baseURL   string
	http      *http.Client
	attempts  int
	baseDelay time.Duration
}

func New(cfg *config.Config) *Client {
	base := httpclient.New(cfg.OrderingAPITimeout)

	hc := base
	if cfg.OrderingAPITokenURL != "" && cfg.OrderingAPIClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.OrderingAPIClientID,
			ClientSecret: cfg.OrderingAPIClientSecret,
			TokenURL:     cfg.OrderingAPITokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = cc.Client(ctx)
	}

	return &Client{
		baseURL:   cfg.OrderingAPIBaseURL,
		http:      hc,
		attempts:  cfg.SubmitRetryAttempts,
		baseDelay: cfg.SubmitRetryBaseDelay,
	}
}

// Submit posts the order payload with exponential-backoff retries.
// 4xx responses are permanent and stop the retry loop.
func (c *Client) Submit(ctx context.Context, payload models.OrderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling order payload: %w", err)
	}

	return httpclient.Retry(ctx, c.attempts, c.baseDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", httpclient.ErrPermanent, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return fmt.Errorf("ordering api rejected order with status %d: %w", resp.StatusCode, httpclient.ErrPermanent)
		default:
			return fmt.Errorf("ordering api returned status %d", resp.StatusCode)
		}
	})
}
