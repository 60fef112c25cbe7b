package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type CustomerIOConfig struct {
	SiteID string
	APIKey string
	AppKey string // transactional API; optional
	Region string // "eu" or "us"
}

// CustomerIO talks to the Track API (events, profiles) and the App API (transactional email).
type CustomerIO struct {
	cfg      CustomerIOConfig
	trackURL string
	appURL   string
	client   *http.Client
}

func NewCustomerIO(cfg CustomerIOConfig) *CustomerIO {
	c := &CustomerIO{
		cfg:      cfg,
		trackURL: "https://track.customer.io",
		appURL:   "https://api.customer.io",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	if strings.EqualFold(cfg.Region, "eu") {
		c.trackURL = "https://track-eu.customer.io"
		c.appURL = "https://api-eu.customer.io"
	}
	return c
}

// WithBaseURLs overrides both endpoints, used against test servers.
func (c *CustomerIO) WithBaseURLs(track, app string) *CustomerIO {
	c.trackURL = strings.TrimRight(track, "/")
	c.appURL = strings.TrimRight(app, "/")
	return c
}

func (c *CustomerIO) SendEvent(ctx context.Context, identity, name string, data map[string]any) error {
	return c.track(ctx, http.MethodPost, "/api/v1/customers/"+url.PathEscape(identity)+"/events",
		map[string]any{"name": name, "data": data})
}

func (c *CustomerIO) Identify(ctx context.Context, identity string, attrs map[string]any) error {
	body := map[string]any{"email": identity, "updated_at": time.Now().Unix()}
	for k, v := range attrs {
		body[k] = v
	}
	return c.track(ctx, http.MethodPut, "/api/v1/customers/"+url.PathEscape(identity), body)
}

func (c *CustomerIO) SendTransactional(ctx context.Context, identity, templateID string, data map[string]any) error {
	if c.cfg.AppKey == "" {
		return fmt.Errorf("customerio: app key not configured")
	}
	payload := map[string]any{
		"to":                       identity,
		"transactional_message_id": templateID,
		"message_data":             data,
		"identifiers":              map[string]string{"email": identity},
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.appURL+"/v1/send/email", payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AppKey)
	return c.do(req)
}

func (c *CustomerIO) track(ctx context.Context, method, path string, body any) error {
	if c.cfg.SiteID == "" || c.cfg.APIKey == "" {
		return fmt.Errorf("customerio: site id and api key required")
	}
	req, err := c.newRequest(ctx, method, c.trackURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.SiteID, c.cfg.APIKey)
	return c.do(req)
}

func (c *CustomerIO) newRequest(ctx context.Context, method, full string, body any) (*http.Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, full, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *CustomerIO) do(req *http.Request) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("customerio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("customerio: %s %s: %d %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
