package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"

	"golang.org/x/net/html/charset"
)

// MinBodyChars is the smallest proxy body accepted as a page.
const MinBodyChars = 200

// Proxy maps a target URL onto the URL to fetch it through.
type Proxy struct {
	Name string
	URL  func(target string) string
}

// DefaultProxies returns the public CORS proxies in the order they are
// tried.
func DefaultProxies() []Proxy {
	return []Proxy{
		{
			Name: "allorigins",
			URL: func(target string) string {
				return "https://api.allorigins.win/get?url=" + url.QueryEscape(target) + "&disableCache=true"
			},
		},
		{
			Name: "corsproxy",
			URL: func(target string) string {
				return "https://corsproxy.io/?" + url.QueryEscape(target)
			},
		},
		{
			Name: "codetabs",
			URL: func(target string) string {
				return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
			},
		},
	}
}

// jsonBodyFields are the envelope fields a JSON proxy may carry the page in.
var jsonBodyFields = []string{"contents", "data", "content"}

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL trims raw and prefixes https:// when no http(s) scheme is
// present. Input without a usable host fails with URL_MALFORMED.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", analysis.NewError(analysis.CodeURLMalformed, "empty url", nil)
	}
	if !schemeRe.MatchString(s) {
		if strings.Contains(s, "://") {
			return "", analysis.NewError(analysis.CodeURLMalformed, fmt.Sprintf("unsupported scheme in %q", raw), nil)
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", analysis.NewError(analysis.CodeURLMalformed, "unparsable url", err)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Host, " \t") {
		return "", analysis.NewError(analysis.CodeURLMalformed, fmt.Sprintf("no host in %q", raw), nil)
	}
	return s, nil
}

// Fetch loads target through the configured proxies and returns the page
// HTML of the first acceptable response.
func (e *Extractor) Fetch(ctx context.Context, target string) (string, error) {
	for i, p := range e.proxies {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("proxy rate limit: %w", err)
		}
		body, err := e.fetchVia(ctx, p, target)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.Debug("[Extractor] Proxy failed", "proxy", p.Name, "index", i, "err", err)
			continue
		}
		logger.Debug("[Extractor] Fetched page", "proxy", p.Name, "chars", utf8.RuneCountInString(body))
		return body, nil
	}
	return "", analysis.NewError(analysis.CodeFetchUnavailable, "all proxies failed for "+target, nil)
}

func (e *Extractor) fetchVia(ctx context.Context, p Proxy, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(target), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.sizeCap))
	if err != nil {
		return "", err
	}
	text := decodeBody(data, resp.Header.Get("Content-Type"))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty body")
	}

	if body, isJSON := fromEnvelope(text); isJSON {
		if utf8.RuneCountInString(body) < MinBodyChars {
			return "", fmt.Errorf("json envelope without usable body")
		}
		return body, nil
	}
	if utf8.RuneCountInString(text) < MinBodyChars {
		return "", fmt.Errorf("body too short")
	}
	return text, nil
}

// decodeBody converts data to UTF-8 using the declared or sniffed charset.
func decodeBody(data []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

// fromEnvelope reports whether text is a JSON object and, if so, returns
// the first non-empty string among the known body fields.
func fromEnvelope(text string) (string, bool) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var envelope map[string]any
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", false
	}
	for _, field := range jsonBodyFields {
		if s, ok := envelope[field].(string); ok && s != "" {
			return s, true
		}
	}
	return "", true
}
