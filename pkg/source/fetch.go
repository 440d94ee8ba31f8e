package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultUserAgent = "corpusgraph/1.0"

// Fetcher downloads raw text documents over HTTP.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewFetcher creates a fetcher with the given timeout. A zero timeout
// defaults to 30 seconds.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  defaultUserAgent,
	}
}

// Fetch retrieves the URL and returns the decoded body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	return string(body), nil
}

// FetchAndClean retrieves the URL and strips Project Gutenberg boilerplate.
func (f *Fetcher) FetchAndClean(ctx context.Context, url string) (string, error) {
	raw, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return StripGutenberg(raw), nil
}

var (
	gutenbergStartRe = regexp.MustCompile(`(?is)\*\*\* *START OF (THIS|THE) PROJECT GUTENBERG EBOOK.*?\*\*\*`)
	gutenbergEndRe   = regexp.MustCompile(`(?is)\*\*\* *END OF (THIS|THE) PROJECT GUTENBERG EBOOK.*?\*\*\*`)
	chapterHeadingRe = regexp.MustCompile(`(?i)(?:^|\n)(chapter|i\.)\s+[A-Z0-9.\- ]{2,}`)
	trailingEndRe    = regexp.MustCompile(`(?is)\*\*\* *END OF .{0,80}$`)
)

// StripGutenberg removes Project Gutenberg header and footer text.
// When the standard markers are missing it falls back to the first chapter
// heading and a trailing end marker.
func StripGutenberg(text string) string {
	startIdx := 0
	if loc := gutenbergStartRe.FindStringIndex(text); loc != nil {
		startIdx = loc[1]
	} else if loc := chapterHeadingRe.FindStringIndex(text); loc != nil {
		startIdx = loc[0]
	}

	endIdx := len(text)
	if loc := gutenbergEndRe.FindStringIndex(text); loc != nil {
		endIdx = loc[0]
	} else if loc := trailingEndRe.FindStringIndex(text); loc != nil && loc[0] > startIdx {
		endIdx = loc[0]
	}

	if startIdx > endIdx {
		startIdx = 0
	}

	return strings.TrimSpace(text[startIdx:endIdx])
}
