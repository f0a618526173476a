// Package web turns a news URL into clean article text: proxy fetch,
// HTML cleanup, and a final model pass that keeps only the article.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/OFFIS-RIT/rhetorik/pkg/ai"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/cache"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// MinArticleChars is the shortest model answer accepted as an article.
const MinArticleChars = 150

const cachePrefix = "extract"

// Article is the extracted content of a page.
type Article struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Extractor fetches pages and extracts their article text.
type Extractor struct {
	ai         ai.Client
	model      string
	proxies    []Proxy
	httpClient *http.Client
	sizeCap    int64
	cache      cache.Cache
	limiter    *rate.Limiter

	memo   map[string]Article
	memoMu sync.RWMutex
	group  singleflight.Group
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithProxies replaces the default proxy list.
func WithProxies(proxies ...Proxy) Option {
	return func(e *Extractor) {
		e.proxies = proxies
	}
}

// WithHTTPClient sets the client used for proxy requests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.httpClient = c
	}
}

// WithModel sets the model for the cleanup call.
func WithModel(model string) Option {
	return func(e *Extractor) {
		e.model = model
	}
}

// WithCache persists extracted articles across runs.
func WithCache(c cache.Cache) Option {
	return func(e *Extractor) {
		e.cache = c
	}
}

// WithSizeCap bounds the number of bytes read from a proxy response.
func WithSizeCap(n int64) Option {
	return func(e *Extractor) {
		e.sizeCap = n
	}
}

// WithRateLimit paces requests to the proxies. The public proxies throttle
// bursts, so the default allows one request every 200ms.
func WithRateLimit(l *rate.Limiter) Option {
	return func(e *Extractor) {
		e.limiter = l
	}
}

// NewExtractor creates an extractor that uses client for the cleanup call.
func NewExtractor(client ai.Client, opts ...Option) *Extractor {
	e := &Extractor{
		ai:         client,
		proxies:    DefaultProxies(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sizeCap:    8 << 20,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		memo:       make(map[string]Article),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract normalizes rawURL, fetches the page and returns its article.
// Concurrent calls for the same URL share one extraction.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Article, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return Article{}, err
	}

	e.memoMu.RLock()
	if a, ok := e.memo[target]; ok {
		e.memoMu.RUnlock()
		return a, nil
	}
	e.memoMu.RUnlock()

	key := cache.Key(cache.Version, cachePrefix, target)
	var cached Article
	if cache.GetJSON(ctx, e.cache, key, &cached) && cached.Text != "" {
		logger.Debug("[Extractor] Cache hit", "url", target)
		e.remember(target, cached)
		return cached, nil
	}

	result, err, _ := e.group.Do(target, func() (any, error) {
		return e.extract(ctx, target)
	})
	if err != nil {
		return Article{}, err
	}

	article := result.(Article)
	e.remember(target, article)
	cache.SetJSON(ctx, e.cache, key, article)
	return article, nil
}

func (e *Extractor) remember(target string, a Article) {
	e.memoMu.Lock()
	e.memo[target] = a
	e.memoMu.Unlock()
}

func (e *Extractor) extract(ctx context.Context, target string) (Article, error) {
	html, err := e.Fetch(ctx, target)
	if err != nil {
		return Article{}, err
	}

	page, err := CleanHTML(html)
	if err != nil {
		return Article{}, analysis.NewError(analysis.CodeExtractionEmpty, "unparsable html", err)
	}
	if page.Text == "" {
		if text, err := readableText(strings.NewReader(html), target); err == nil {
			page.Text = text
		}
	}
	if page.Text == "" {
		return Article{}, analysis.NewError(analysis.CodeExtractionEmpty, "page has no text", nil)
	}

	text, err := e.cleanup(ctx, page.Text)
	if err != nil {
		return Article{}, err
	}

	logger.Info("[Extractor] Extracted article", "url", target, "chars", utf8.RuneCountInString(text))
	return Article{URL: target, Title: page.Title, Text: text}, nil
}

// cleanup asks the model to keep only the article and rejects answers
// shorter than MinArticleChars.
func (e *Extractor) cleanup(ctx context.Context, candidate string) (string, error) {
	var opts []ai.GenerateOption
	if e.model != "" {
		opts = append(opts, ai.WithModel(e.model))
	}

	answer, err := e.ai.GenerateCompletion(ctx, fmt.Sprintf(ai.ExtractArticlePrompt, candidate), opts...)
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		return "", analysis.NewError(analysis.CodeLLMQuota, "", err)
	case errors.Is(err, ai.ErrEmptyResponse):
		return "", analysis.NewError(analysis.CodeExtractionEmpty, "", err)
	case err != nil:
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", analysis.NewError(analysis.CodeLLMNoResponse, "extraction call failed", err)
	}

	answer = strings.TrimSpace(answer)
	if utf8.RuneCountInString(answer) < MinArticleChars {
		return "", analysis.NewError(analysis.CodeExtractionEmpty, fmt.Sprintf("model returned %d chars", utf8.RuneCountInString(answer)), nil)
	}
	return answer, nil
}
