// Package images talks to the hosted-image service: upload of
// base64/data-URL encoded images, deletion by derived public id.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload sends each encoded image and returns the hosted URLs in order.
func (c *Client) Upload(ctx context.Context, encoded []string, folder string) ([]string, error) {
	urls := make([]string, 0, len(encoded))
	for i, img := range encoded {
		var out struct {
			SecureURL string `json:"secure_url"`
		}
		err := c.post(ctx, "/image/upload", map[string]string{
			"file":   img,
			"folder": folder,
		}, &out)
		if err != nil {
			return nil, fmt.Errorf("upload image %d: %w", i, err)
		}
		urls = append(urls, out.SecureURL)
	}
	return urls, nil
}

// Destroy removes a hosted image by public id.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	return c.post(ctx, "/image/destroy", map[string]string{"public_id": publicID}, nil)
}

var versionPrefix = regexp.MustCompile(`^v[0-9]+/`)

// PublicIDFromURL derives the public id from a hosted URL:
// .../upload/v12345/products/abc123.jpg -> products/abc123.
// Returns "" when the URL does not look like a hosted image.
func PublicIDFromURL(url string) string {
	_, after, found := strings.Cut(url, "/upload/")
	if !found {
		return ""
	}
	id := versionPrefix.ReplaceAllString(after, "")
	if dot := strings.LastIndex(id, "."); dot > strings.LastIndex(id, "/") {
		id = id[:dot]
	}
	return id
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("image service %s: status %d: %s", path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
