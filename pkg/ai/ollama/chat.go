package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/OFFIS-RIT/rhetorik/pkg/ai"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

const (
	baseContext   = 4096
	answerReserve = 2048
	tokenEncoding = "o200k_base"
	charsPerToken = 3
)

// countTokens estimates the prompt size. The BPE tables are fetched on
// first use; without them a character heuristic is used.
func countTokens(text string) int {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		logger.Debug("[AI] Token encoding unavailable, estimating", "err", err)
		return len([]rune(text))/charsPerToken + 1
	}
	return len(enc.Encode(text, nil, nil))
}

// contextSize returns the num_ctx needed for the messages, or 0 when the
// model default is enough.
func (c *OllamaClient) contextSize(msgs []api.Message) int {
	tokens := answerReserve
	for _, m := range msgs {
		tokens += c.countTokens(m.Content)
	}
	if tokens <= baseContext {
		return 0
	}
	return tokens
}

func (c *OllamaClient) newRequest(prompt string, options ai.GenerateOptions) *api.ChatRequest {
	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}
	if options.Thinking != "" {
		req.Think = &api.ThinkValue{Value: options.Thinking}
	}
	if n := c.contextSize(msgs); n > 0 {
		req.Options["num_ctx"] = n
	}
	return req
}

func (c *OllamaClient) chat(ctx context.Context, req *api.ChatRequest) (string, error) {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", mapError(err)
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	if final.Message.Content == "" {
		return "", ai.ErrEmptyResponse
	}
	return final.Message.Content, nil
}

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *OllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.model,
		Temperature: 0.3,
	}, opts...)

	return c.chat(ctx, c.newRequest(prompt, options))
}

// GenerateCompletionWithFormat enforces a JSON schema and unmarshals into out.
// Ollama always treats the format as binding, so StrictSchema is ignored.
func (c *OllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	rv := reflect.ValueOf(out)
	if out == nil || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	format, err := json.Marshal(ai.GenerateSchema(out))
	if err != nil {
		return fmt.Errorf("marshal schema %s: %w", name, err)
	}

	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.model,
		Temperature: 0.1,
	}, opts...)

	req := c.newRequest(prompt, options)
	req.Format = json.RawMessage(format)

	content, err := c.chat(ctx, req)
	if err != nil {
		return err
	}
	return ai.UnmarshalFlexible(content, out)
}
