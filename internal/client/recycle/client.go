package recycle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	categoriesPath   = "/category/query-product-demo"
	transactionsPath = "/Stock/query-transaction-demo"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://apirecycle.unii.co.th"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetCategoriesRaw fetches the category feed body. Decoding is left to
// the caller so schema failures can be handled separately from fetch
// failures.
func (c *Client) GetCategoriesRaw(ctx context.Context) ([]byte, error) {
	return c.doRequest(ctx, categoriesPath)
}

// GetTransactionsRaw fetches the combined buy/sell transaction feed body.
func (c *Client) GetTransactionsRaw(ctx context.Context) ([]byte, error) {
	return c.doRequest(ctx, transactionsPath)
}
