// Package ragclient talks to the local retrieval service over HTTP.
package ragclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielpatrickdp/rag-gateway/internal/router"
)

// #region wire-types

// askReply is the retrieval service's /ask response. The answer field is null
// when the service abstains.
type askReply struct {
	Route      string               `json:"route"`
	Answer     *string              `json:"answer"`
	ContextMap []router.ContextItem `json:"contextMap"`
}

// #endregion

// #region client-struct

// Client is an HTTP client for the retrieval service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL (e.g. "http://127.0.0.1:8001").
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// #endregion

// #region ask

// Ask queries the retrieval service. The reply's route tag distinguishes an
// answer from an abstention; the caller decides what to do with either.
func (c *Client) Ask(ctx context.Context, query string) (router.LocalAnswer, error) {
	u := c.baseURL + "/ask?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return router.LocalAnswer{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return router.LocalAnswer{}, fmt.Errorf("rag ask: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return router.LocalAnswer{}, fmt.Errorf("rag ask: status %d", resp.StatusCode)
	}

	var reply askReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return router.LocalAnswer{}, fmt.Errorf("decode reply: %w", err)
	}

	ans := router.LocalAnswer{
		Route:      reply.Route,
		ContextMap: reply.ContextMap,
	}
	if reply.Answer != nil {
		ans.Answer = *reply.Answer
	}
	return ans, nil
}

// #endregion

// #region ping

// Ping checks the service's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rag ping: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rag ping: status %d", resp.StatusCode)
	}
	return nil
}

// #endregion

var _ router.LocalService = (*Client)(nil)
