package openai

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/OFFIS-RIT/rhetorik/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient implements ai.Client against the OpenAI chat completions
// API or any compatible endpoint.
//
// An OpenAIClient should be created using NewOpenAIClient.
type OpenAIClient struct {
	model   string
	chatURL string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewOpenAIClientParams defines the configuration for NewOpenAIClient.
//
// Model is the default model; callers override it per request with
// ai.WithModel. ChatURL may be empty for the public API. MaxRetries < 0
// keeps the SDK default.
type NewOpenAIClientParams struct {
	Model      string
	ChatURL    string
	ChatKey    string
	MaxRetries int
}

// NewOpenAIClient creates a client for the given endpoint.
//
// Example:
//
//	client, err := openai.NewOpenAIClient(openai.NewOpenAIClientParams{
//		Model:      "gpt-4.1",
//		ChatKey:    os.Getenv("AI_CHAT_KEY"),
//		MaxRetries: -1,
//	})
func NewOpenAIClient(params NewOpenAIClientParams) (*OpenAIClient, error) {
	if params.ChatKey == "" {
		return nil, errors.New("openai: api key is required")
	}

	options := []option.RequestOption{
		option.WithAPIKey(params.ChatKey),
	}
	if params.ChatURL != "" {
		options = append(options, option.WithBaseURL(params.ChatURL))
	}
	if params.MaxRetries >= 0 {
		options = append(options, option.WithMaxRetries(params.MaxRetries))
	}
	client := openai.NewClient(options...)

	return &OpenAIClient{
		model:      params.Model,
		chatURL:    params.ChatURL,
		ChatClient: &client,
	}, nil
}

// ResetMetrics clears the accumulated usage.
func (c *OpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the usage accumulated since the last reset.
func (c *OpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *OpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.Add(m)
}

// mapError turns rate-limit and quota failures into ai.ErrQuotaExceeded.
func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Code == "insufficient_quota" {
			return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
	}
	return err
}
