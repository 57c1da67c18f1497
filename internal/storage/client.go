// Package storage is the REST client for the avatar object store. Buckets and
// access policies live on the provider side; this client only uploads bytes
// and derives public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	serviceKey string
	httpc      *http.Client
}

func New(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpc:      &http.Client{Timeout: defaultTimeout},
	}
}

// Upload stores an object under bucket/path. The path already carries the
// collision-avoiding name chosen by the caller.
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, r io.Reader) error {
	u := c.baseURL + "/object/" + url.PathEscape(bucket) + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, r)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("storage: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("storage: upload failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

// PublicURL returns the browser-facing URL for a public object.
func (c *Client) PublicURL(bucket, path string) string {
	return c.baseURL + "/object/public/" + url.PathEscape(bucket) + "/" + escapePath(path)
}

// escapePath escapes each segment but keeps the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
