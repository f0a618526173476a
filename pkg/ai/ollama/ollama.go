package ollama

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/rhetorik/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// OllamaClient implements ai.Client against an Ollama server.
type OllamaClient struct {
	model string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	countTokens func(string) int

	Client *api.Client
}

// NewOllamaClientParams contains configuration options for NewOllamaClient.
type NewOllamaClientParams struct {
	Model string

	BaseURL string
	ApiKey  string

	// MaxConcurrentRequests bounds parallel requests; values < 1 mean 1.
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaClient connects to the Ollama server at BaseURL, or the
// default local server when it is empty.
func NewOllamaClient(params NewOllamaClientParams) (*OllamaClient, error) {
	var u *url.URL
	if params.BaseURL != "" {
		parsed, err := url.Parse(params.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("ollama: invalid base url: %w", err)
		}
		u = parsed
	} else {
		u = &url.URL{Scheme: "http", Host: "127.0.0.1:11434"}
	}

	var rt http.RoundTripper = http.DefaultTransport
	if params.ApiKey != "" {
		rt = &headerTransport{
			headers: map[string]string{"Authorization": "Bearer " + params.ApiKey},
			rt:      rt,
		}
	}

	n := params.MaxConcurrentRequests
	if n < 1 {
		n = 1
	}

	return &OllamaClient{
		model:       params.Model,
		reqLock:     semaphore.NewWeighted(n),
		countTokens: countTokens,
		Client:      api.NewClient(u, &http.Client{Transport: rt}),
	}, nil
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *OllamaClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *OllamaClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *OllamaClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.Add(m)
}

func mapError(err error) error {
	var status api.StatusError
	if errors.As(err, &status) && status.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
	}
	return err
}
