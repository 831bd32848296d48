package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"presto/internal/domain/models"
	"presto/internal/store"
)

var ErrUnauthorized = errors.New("unauthorized")

var _ store.Remote = (*Client)(nil)

// TokenSource supplies the bearer credential for every request. The
// authentication layer owns the token's lifecycle; the client just asks for
// the current value.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a credential that never rotates.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the persistence service: GET /store fetches the caller's
// whole store, PUT /store replaces it. There is no patch form.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client
}

// New builds a client for the given base origin. Pass a nil httpClient to
// use http.DefaultClient; any timeout policy belongs to the transport.
func New(baseURL string, token TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

type storeEnvelope struct {
	Store models.Store `json:"store"`
}

func (c *Client) FetchStore(ctx context.Context) (models.Store, error) {
	const op = "client.FetchStore"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/store", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var envelope storeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	if envelope.Store == nil {
		envelope.Store = models.Store{}
	}

	return envelope.Store, nil
}

func (c *Client) ReplaceStore(ctx context.Context, store models.Store) error {
	const op = "client.ReplaceStore"

	body, err := json.Marshal(storeEnvelope{Store: store})
	if err != nil {
		return fmt.Errorf("%s: encode store: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/store", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.token.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
