package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxResponseBytes = 10 << 20 // 10MB, scraped pages can be large

// pickString reads the first present, non-empty string among the given
// alternate key names. Upstream payloads rename fields between schema
// versions, so every lookup goes through an ordered key list.
func pickString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// pickInt reads the first present numeric value among the alternate key
// names. Accepts JSON numbers and numeric strings.
func pickInt(m map[string]any, keys []string) int64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int64:
			return n
		case int:
			return int64(n)
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i
			}
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i
			}
		}
	}
	return 0
}

func pickMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

var countSuffixRe = regexp.MustCompile(`[^0-9KMB.]`)

// parseCount turns display counts like "1,234", "5.2K" or "1.1M" into a
// number.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	clean := countSuffixRe.ReplaceAllString(strings.ToUpper(strings.ReplaceAll(s, ",", "")), "")
	if clean == "" {
		return 0
	}
	mult := float64(1)
	switch {
	case strings.Contains(clean, "B"):
		mult = 1e9
	case strings.Contains(clean, "M"):
		mult = 1e6
	case strings.Contains(clean, "K"):
		mult = 1e3
	}
	f, err := strconv.ParseFloat(strings.Trim(clean, "KMB"), 64)
	if err != nil {
		return 0
	}
	return int64(f * mult)
}

// getJSON issues a GET with the browser UA plus any extra headers and
// decodes the body into out. Non-2xx statuses become errors so callers
// can fall through to their next source.
func getJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out)
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// getHTML fetches a page as a browser would and returns the body.
func getHTML(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
