package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/stake-plus/df-blogs/src/metrics"
)

const (
	addPath           = "/ipfs/add"
	getPath           = "/ipfs/get/{hash}"
	removePath        = "/ipfs/remove/{hash}"
	feedPath          = "/offchain/feed/{address}"
	notificationsPath = "/offchain/notifications/{address}"
)

// Client talks to the off-chain content API (base path /v1).
type Client struct {
	client *resty.Client
}

// NewClient builds a client for baseURL, e.g. "http://localhost:3001/v1". Reads are retried on
// 429, 5xx and network errors; uploads are not.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

func checkResponse(res *resty.Response) error {
	if res.IsError() {
		return &HTTPError{StatusCode: res.StatusCode(), Body: res.Bytes()}
	}
	return nil
}

// Add uploads a document and returns its hash.
func (c *Client) Add(ctx context.Context, doc any) (string, error) {
	raw, err := Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	res, err := c.r(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(raw).
		Post(addPath)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	if err := checkResponse(res); err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}

	metrics.ContentUploads.Inc()
	return parseHash(res.Bytes())
}

// parseHash accepts a JSON string body or a bare hash.
func parseHash(body []byte) (string, error) {
	var hash string
	if err := json.Unmarshal(body, &hash); err != nil {
		hash = strings.TrimSpace(string(body))
	}
	if hash == "" {
		return "", fmt.Errorf("ipfs add: empty hash in response")
	}
	return hash, nil
}

func (c *Client) GetRaw(ctx context.Context, hash string) ([]byte, error) {
	res, err := c.r(ctx).
		SetPathParam("hash", hash).
		Get(getPath)
	if err != nil {
		metrics.ContentFetchFailures.Inc()
		return nil, fmt.Errorf("ipfs get %s: %w", hash, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		metrics.ContentFetchFailures.Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err := checkResponse(res); err != nil {
		metrics.ContentFetchFailures.Inc()
		return nil, fmt.Errorf("ipfs get %s: %w", hash, err)
	}

	metrics.ContentFetches.WithLabelValues("remote").Inc()
	return res.Bytes(), nil
}

func (c *Client) Remove(ctx context.Context, hash string) error {
	res, err := c.r(ctx).
		SetPathParam("hash", hash).
		Post(removePath)
	if err != nil {
		return fmt.Errorf("ipfs remove %s: %w", hash, err)
	}
	if err := checkResponse(res); err != nil {
		return fmt.Errorf("ipfs remove %s: %w", hash, err)
	}
	return nil
}

// Feed returns the news feed of an account, newest first.
func (c *Client) Feed(ctx context.Context, address string, offset, count int) ([]Activity, error) {
	return c.activities(ctx, feedPath, address, offset, count)
}

// Notifications returns activity by others that concerns the account.
func (c *Client) Notifications(ctx context.Context, address string, offset, count int) ([]Activity, error) {
	return c.activities(ctx, notificationsPath, address, offset, count)
}

func (c *Client) activities(ctx context.Context, path, address string, offset, count int) ([]Activity, error) {
	var out []Activity
	req := c.r(ctx).
		SetPathParam("address", address).
		SetQueryParam("count", strconv.Itoa(count)).
		SetResult(&out)
	if offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(offset))
	}

	res, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", address, err)
	}
	if err := checkResponse(res); err != nil {
		return nil, fmt.Errorf("activity %s: %w", address, err)
	}
	return out, nil
}
