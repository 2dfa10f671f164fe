// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes is the largest response body read.
	DefaultMaxBytes = 10 * 1024 * 1024

	userAgent = "Mozilla/5.0 (compatible; curator/1.0; +https://github.com/poiesic/curator)"
)

// Page is the text extracted from a web page.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// URLExtractor fetches web pages and extracts their readable text.
type URLExtractor struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// URLOption configures a URLExtractor.
type URLOption func(*URLExtractor)

// WithHTTPClient replaces the default client, which times out after DefaultTimeout.
func WithHTTPClient(client *http.Client) URLOption {
	return func(e *URLExtractor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithMaxBytes sets the response size limit.
func WithMaxBytes(n int64) URLOption {
	return func(e *URLExtractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// NewURLExtractor creates a URLExtractor.
func NewURLExtractor(opts ...URLOption) *URLExtractor {
	e := &URLExtractor{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default().With("component", "extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NormalizeURL trims the URL and defaults a missing scheme to https.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	return rawURL
}

// Extract fetches rawURL and returns its title and readable text. A page
// without a title is labelled with its URL.
func (e *URLExtractor) Extract(ctx context.Context, rawURL string) (*Page, error) {
	target := NormalizeURL(rawURL)
	if target == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", target, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("failed to fetch page", "url", target, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: HTTP error %d", ErrFetchFailed, target, resp.StatusCode)
	}
	if resp.ContentLength > e.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrContentTooLarge, resp.ContentLength)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFetchFailed, target, err)
	}
	if int64(len(body)) > e.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrContentTooLarge, e.maxBytes)
	}

	parsed, err := parseHTML(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", target, err)
	}
	if parsed.text == "" {
		return nil, ErrNoContent
	}

	title := parsed.title
	if title == "" {
		title = target
	}
	e.logger.Debug("extracted page", "url", target, "title", title, "chars", len(parsed.text))
	return &Page{URL: target, Title: title, Text: parsed.text}, nil
}
