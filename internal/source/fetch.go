package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const fetchTimeout = 30 * time.Second

// TransformShareURL converts a Dropbox share link into a direct download URL.
// Non-Dropbox URLs pass through unchanged.
func TransformShareURL(rawURL string) string {
	if strings.Contains(rawURL, "?dl=0") {
		return strings.Replace(rawURL, "?dl=0", "?dl=1", 1)
	}
	if strings.Contains(rawURL, "dl=0") {
		return strings.Replace(rawURL, "dl=0", "dl=1", 1)
	}
	return rawURL
}

// Fetch downloads the CSV body from the given URL.
func Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("source url must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, TransformShareURL(rawURL), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch source csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch source csv: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read source csv: %w", err)
	}
	return string(body), nil
}

// ReadFile loads the CSV body from a local path.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}
	return string(data), nil
}
