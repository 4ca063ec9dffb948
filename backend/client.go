// Package backend is the HTTP client for the workforce-attendance backend.
// It owns nothing but the wire: JSON POST bodies, cookie-style session
// credentials on the way out, and explicit token extraction on the way
// back. Interpretation of responses belongs to the outcome package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oneit/go-attendance-client/session"
	"github.com/oneit/go-attendance-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 30 * time.Second

// Responses are small JSON documents; anything larger is not ours.
const maxResponseBytes = 1 << 20

// Reply is a raw backend response: status plus body, untouched. Callers
// feed it to outcome.Classify.
type Reply struct {
	Status int
	Body   []byte
}

// Client talks to one backend instance. Every request attaches the current
// session token, if any; every response is inspected for a fresh token
// which transparently replaces the stored one. This is how the backend's
// session renewal is honoured.
type Client struct {
	baseURL string
	store   session.Store
	httpc   *http.Client
}

// Option modifies a Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpc = hc
	}
}

// WithTimeout bounds every network round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpc.Timeout = d
	}
}

// New initialises a backend client for the given server URL. The session
// store is required: token propagation is not optional behaviour.
func New(baseURL string, store session.Store, options ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("[backend.New] session store is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[backend.New] invalid server URL %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		store:   store,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// post sends a JSON POST to path. A transport-level failure (no usable
// response) is returned as the error; any HTTP response, whatever its
// status, is returned as a Reply after its Set-Cookie headers have been
// scanned for a renewed session token.
func (c *Client) post(ctx context.Context, path string, payload any) (*Reply, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "[Client.post] encoding %s request", path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.post] building %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)

	if tok, ok := c.store.Current(); ok {
		tok.Attach(req)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Debug().Str("path", path).Str("request_id", requestID).Err(err).Msg("backend request failed")
		return nil, errors.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s: reading response", path)
	}

	// Token renewal is honoured regardless of the response status. On a
	// 401 the caller clears the store afterwards; adoption order matches
	// the backend contract.
	if fresh, ok := token.FromResponse(resp); ok {
		if err := c.store.Adopt(fresh); err != nil {
			log.Warn().Err(err).Msg("failed to persist renewed session token")
		}
	}

	log.Debug().
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("backend response")

	return &Reply{Status: resp.StatusCode, Body: data}, nil
}
