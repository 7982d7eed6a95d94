// Package imagesearch finds a picture for a product name by scraping an image
// search results page. Every outcome yields a usable URL: callers fall back to
// a placeholder image when nothing is found.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
	maxPageBytes = 4 << 20
)

type Client struct {
	searchURL      string
	placeholderURL string
	httpClient     *http.Client
}

func NewClient(searchURL, placeholderURL string, httpClient *http.Client) *Client {
	return &Client{
		searchURL:      searchURL,
		placeholderURL: placeholderURL,
		httpClient:     httpClient,
	}
}

// Lookup returns the first full-size image URL on the results page for query,
// or "" when the page has none. A non-2xx response also yields "". Only
// transport failures are returned as errors.
func (c *Client) Lookup(ctx context.Context, query string) (string, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}

	return extractImageURL(io.LimitReader(resp.Body, maxPageBytes))
}

// Placeholder returns the placeholder image labelled with text.
func (c *Client) Placeholder(text string) string {
	return c.placeholderURL + "?text=" + url.QueryEscape(text)
}

type resultMetadata struct {
	MediaURL string `json:"murl"`
}

// extractImageURL scans result anchors (<a class="iusc" m="{json}">) in
// document order and returns the first murl that is an http(s) URL.
func extractImageURL(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse results page: %w", err)
	}

	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" || !hasClass(n, "iusc") {
			continue
		}

		raw, ok := attr(n, "m")
		if !ok || raw == "" {
			continue
		}

		var meta resultMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			continue
		}
		if strings.HasPrefix(meta.MediaURL, "http") {
			return meta.MediaURL, nil
		}
	}

	return "", nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	return ok && slices.Contains(strings.Fields(v), class)
}
