// Package ovation provides a client for the Ovation partner services API
package ovation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/logger"
)

const (
	baseURLDefault = "https://partner.ovationup.com/partner-services/v2"
	defaultTimeout = 15 * time.Second
	defaultUA      = "surveysync"
	maxBodyBytes   = 4 << 20
)

// Options configures the Client
type Options struct {
	BaseURL      string `validate:"required,url"`
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	PartnerID    string `validate:"required"`
	UserAgent    string

	// Timeout bounds every request when the caller's context has no tighter deadline
	Timeout time.Duration
}

// Client is a minimal Ovation partner API client
// it holds no token state; callers own the session lifecycle
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		// no client-level timeout: every call carries its own context deadline
		http: &http.Client{},
		opts: o,
		log:  *logger.Named("ovation"),
		now:  time.Now,
	}
}

// WithHTTPClient swaps the underlying transport client (tests, custom proxies)
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// post sends in as JSON to path and decodes the response body into out
// non-2xx responses become *StatusError; transport failures are Unavailable
func (c *Client) post(ctx context.Context, path string, hdr http.Header, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "ovation %s encode request", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "ovation new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("X-Ovation-Id", c.opts.PartnerID)
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Set(k, v)
		}
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ovation %s failed", path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("ovation close body failed")
		}
	}()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("ovation http response")

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ovation %s read body", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(path, resp.StatusCode, b)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "ovation %s decode response", path)
	}
	return nil
}
