// Package xrpc is the thin wire client for the session lifecycle
// operations. It assembles endpoint URLs, attaches bearer tokens, encodes
// and decodes JSON bodies, and maps failure responses onto the closed Error
// taxonomy. Everything above it (retry, persistence, session state) belongs
// to the auth package.
package xrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client issues XRPC calls against one service base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a client for the service at serviceURL, which must be
// an absolute http(s) URL.
func NewClient(serviceURL string, options ...ClientOption) (*Client, error) {
	base, err := parseServiceURL(serviceURL)
	if err != nil {
		return nil, err
	}

	client := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// WithService returns a copy of the client aimed at a different base URL,
// keeping the HTTP client and headers. Used when an operation targets an
// account's own PDS rather than the configured entry-point service.
func (c *Client) WithService(serviceURL string) (*Client, error) {
	base, err := parseServiceURL(serviceURL)
	if err != nil {
		return nil, err
	}
	clone := *c
	clone.baseURL = base
	return &clone, nil
}

func parseServiceURL(serviceURL string) (*url.URL, error) {
	base, err := url.Parse(serviceURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[xrpc] parsing service URL %q", serviceURL)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, errors.Errorf("[xrpc] service URL %q is not an absolute http(s) URL", serviceURL)
	}
	return base, nil
}

// Procedure POSTs the JSON-encoded body to the named procedure and decodes
// the response into out. bearer, body, and out may each be empty/nil.
func (c *Client) Procedure(ctx context.Context, nsid, bearer string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.Procedure] encoding %s request", nsid)
		}
	}
	return c.do(ctx, http.MethodPost, nsid, bearer, payload, out)
}

// Query GETs the named query and decodes the response into out.
func (c *Client) Query(ctx context.Context, nsid, bearer string, out any) error {
	return c.do(ctx, http.MethodGet, nsid, bearer, nil, out)
}

func (c *Client) do(ctx context.Context, method, nsid, bearer string, payload []byte, out any) error {
	endpoint := c.baseURL.JoinPath("xrpc", nsid)

	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] building %s request", nsid)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s", nsid)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.do] decoding %s response", nsid)
	}
	return nil
}

// errorBody is the wire shape of an XRPC failure response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorFromResponse(resp *http.Response) error {
	var body errorBody
	// A body that does not decode leaves Code and Message empty; the
	// status code still classifies the failure.
	_ = json.NewDecoder(resp.Body).Decode(&body)

	return &Error{
		Kind:       kindFromStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Code:       body.Error,
		Message:    body.Message,
	}
}
