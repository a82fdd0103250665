// Package httputil provides a security-hardened HTTP client and input sanitization utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

	// MaxBodySize caps every upstream response body.
	MaxBodySize = 5 * 1024 * 1024
)

// NewClient creates a hardened HTTP client with secure defaults. When
// fingerprint is "chrome", TLS handshakes mimic a Chrome browser.
func NewClient(timeout time.Duration, fingerprint string) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var transport http.RoundTripper = &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  false,
		MaxIdleConnsPerHost: 5,
	}
	if strings.EqualFold(fingerprint, "chrome") {
		transport = newFingerprintTransport(timeout)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Get performs a GET request with standard browser-like headers.
// The caller owns the response body.
func Get(ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, error) {
	if err := ValidateURL(url); err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return client.Do(req)
}

// GetJSON performs an XHR-style GET request and returns the raw body.
func GetJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	resp, err := Get(ctx, client, url, map[string]string{
		"Accept":           "application/json",
		"X-Requested-With": "XMLHttpRequest",
	})
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	return body, nil
}
