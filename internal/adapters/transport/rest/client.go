// Package rest is the JSON transport for the Anypoint platform APIs.
// Every request carries the session bearer token and passes through a
// shared client-side rate limiter before it reaches the wire.
package rest

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/anypoint-reconciler/internal/errors"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 8
	minRPS         = 1
	maxRPS         = 50

	maxErrorSnippet = 300
)

// ErrNotFound reports a 404 from the platform. Resource readers treat
// it as "absent"; dependency resolvers surface it as a user error.
var ErrNotFound = stderrors.New("the platform returned 404 Not Found")

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

type Client struct {
	baseURL string
	bearer  string
	http    *http.Client
	limiter *rate.Limiter
	logger  ports.Logger
	json    jsoniter.API
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRequestsPerSecond clamps rps into [1, 50]. Zero or negative
// values keep the default.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if rps < minRPS {
			rps = minRPS
		}
		if rps > maxRPS {
			rps = maxRPS
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewClient(baseURL, bearer string, logger ports.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bearer:  bearer,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultRPS),
		logger:  logger,
		json:    jsoniter.ConfigCompatibleWithStandardLibrary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one platform API call. Body, when non-nil, is
// encoded as JSON. RawBody bypasses the JSON encoding for binary
// sub-resources and is sent with ContentType.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// Upload PUTs raw bytes with the given content type.
func (c *Client) Upload(ctx context.Context, path, contentType string, data []byte) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, RawBody: data, ContentType: contentType}, nil)
}

// Do sends the request and decodes the JSON response into out when out
// is non-nil. Empty response bodies leave out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.CodeTransport, "waiting for the platform API rate limiter")
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
		contentType = req.ContentType
	case req.Body != nil:
		payload, err := c.json.Marshal(req.Body)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.CodeInternal, "encoding %s %s request body", req.Method, req.Path)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeInternal, "building %s %s request", req.Method, req.Path)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.bearer)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	c.logger.Debugf(ctx, "Platform API call: %s %s", req.Method, req.Path)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeTransport, "calling %s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return apperrors.Wrapf(ErrNotFound, apperrors.CodeDependencyNotFound, "%s %s", req.Method, req.Path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return apperrors.NewUserFacing(apperrors.CodePlatformAuthError,
			fmt.Sprintf("the platform rejected %s %s with HTTP %d", req.Method, req.Path, resp.StatusCode),
			"Check that ANYPOINT_BEARER holds a valid token with access to this organization.")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return apperrors.Newf(apperrors.CodeTransport, "%s %s returned HTTP %d: %s",
			req.Method, req.Path, resp.StatusCode, bodySnippet(resp.Body))
	}

	if out == nil {
		drain(resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeTransport, "reading %s %s response", req.Method, req.Path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := c.json.Unmarshal(data, out); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeTransport, "decoding %s %s response", req.Method, req.Path)
	}
	return nil
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, r)
}

func bodySnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorSnippet+1))
	if err != nil {
		return "(unreadable body)"
	}
	snippet := strings.TrimSpace(string(data))
	if len(snippet) > maxErrorSnippet {
		snippet = snippet[:maxErrorSnippet] + "..."
	}
	if snippet == "" {
		return "(empty body)"
	}
	return snippet
}
