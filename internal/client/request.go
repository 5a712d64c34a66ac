package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// requestOptions carries per-call overrides for the request pipeline.
type requestOptions struct {
	endpoint   string
	format     string
	apiVersion int
	headers    map[string]string
}

// RequestOption adjusts one API call without touching client config.
type RequestOption func(*requestOptions)

// WithEndpoint targets the request at a different base URL, such as the
// push endpoint for uploads.
func WithEndpoint(endpoint string) RequestOption {
	return func(o *requestOptions) { o.endpoint = endpoint }
}

// WithFormat overrides the Accept format ("json" or "text"). Text
// responses stream to the client's output sink instead of buffering.
func WithFormat(format string) RequestOption {
	return func(o *requestOptions) { o.format = format }
}

// WithAPIVersion overrides the API version for one call.
func WithAPIVersion(version int) RequestOption {
	return func(o *requestOptions) { o.apiVersion = version }
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// do builds, dispatches, and classifies one API request. It returns the
// decoded response on 2xx and exactly one typed error otherwise.
// Network-level failures that never produced an HTTP status come back as
// ErrTransport, never as a status-mapped kind.
func (c *Client) do(ctx context.Context, method, path string, params map[string]interface{}, opts ...RequestOption) (*Response, error) {
	o := requestOptions{
		endpoint:   c.cfg.Endpoint,
		format:     "json",
		apiVersion: c.cfg.APIVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}

	req, accept, err := c.buildRequest(ctx, method, path, params, o)
	if err != nil {
		return nil, err
	}

	if c.verbose {
		fmt.Printf("-> %s %s\n", method, req.URL)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewAPIError(ErrTransport, 0, ctx.Err().Error())
		}
		return nil, NewAPIError(ErrTransport, 0, err.Error())
	}

	resp, err := decodeResponse(httpResp, accept, c.stream)
	if err != nil {
		return nil, err
	}

	if c.verbose {
		fmt.Printf("<- %d %s\n", resp.Status, http.StatusText(resp.Status))
	}

	if !resp.Success() {
		return resp, classify(resp.Status, resp.Body)
	}
	return resp, nil
}

// buildRequest assembles the outbound request: versioned Accept header,
// auth and identification headers, impersonation query parameter, and the
// encoded body. GET and DELETE carry params in the query string; other
// verbs carry them in the body.
func (c *Client) buildRequest(ctx context.Context, method, path string, params map[string]interface{}, o requestOptions) (*http.Request, string, error) {
	base := strings.TrimRight(o.endpoint, "/")
	fullURL := base + "/" + strings.TrimLeft(path, "/")

	var body io.Reader
	var contentType string
	query := url.Values{}

	switch method {
	case http.MethodGet, http.MethodDelete:
		fields, files := normalizeParams(params)
		if len(files) > 0 {
			return nil, "", fmt.Errorf("%s request cannot carry file uploads", method)
		}
		query = fields
	default:
		var err error
		body, contentType, err = encodeBody(params)
		if err != nil {
			return nil, "", err
		}
	}

	if c.cfg.Account != "" {
		query.Set("as", c.cfg.Account)
	}
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	accept := fmt.Sprintf("application/vnd.fury.v%d+%s", o.apiVersion, o.format)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Gem-Version", c.clientVersion)
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", c.cfg.APIToken)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range o.headers {
		req.Header.Set(key, value)
	}

	return req, accept, nil
}

// DecodeInto unmarshals the JSON response body into v. An empty or
// whitespace-only body decodes to nothing, not an error.
func (r *Response) DecodeInto(v interface{}) error {
	if len(strings.TrimSpace(string(r.Body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
