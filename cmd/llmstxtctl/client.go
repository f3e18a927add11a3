package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxDocumentSize bounds the documents fetch will read.
const maxDocumentSize = 4 << 20

type llmsClient struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *llmsClient {
	return &llmsClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getText performs a GET request and returns the plain text body.
func (c *llmsClient) getText(path string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
	}
	if len(body) > maxDocumentSize {
		return "", fmt.Errorf("document exceeds %d bytes", maxDocumentSize)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "text/") {
		return "", fmt.Errorf("unexpected content type %q", ct)
	}
	return string(body), nil
}
