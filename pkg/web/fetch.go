package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Municipal pages sometimes sit behind aggressive bot filters; a browser-like
// User-Agent keeps fetches from being rejected outright.
const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxFetchBody caps how much HTML is read from an untrusted URL.
const maxFetchBody = 10 * 1024 * 1024

var fetchClient = &http.Client{Timeout: 30 * time.Second}

// FetchPostText downloads a post page and extracts its readable text.
func FetchPostText(ctx context.Context, rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,fil;q=0.8")

	resp, err := fetchClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch url: status %d", resp.StatusCode)
	}
	if resp.ContentLength > int64(maxFetchBody) {
		return "", fmt.Errorf("content length %d exceeds limit of %d bytes", resp.ContentLength, maxFetchBody)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) >= maxFetchBody {
		return "", fmt.Errorf("response body exceeded maximum size of %d bytes", maxFetchBody)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}
	return article.TextContent, nil
}
