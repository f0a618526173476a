// Package analyzer runs the rhetoric analysis of an article: cache lookup,
// the structured model call with JSON recovery, normalization and
// persistence of the result.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/OFFIS-RIT/rhetorik/internal/util"
	"github.com/OFFIS-RIT/rhetorik/pkg/ai"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/cache"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// CachePrefix namespaces analysis results in the cache.
const CachePrefix = "full_analysis_v16"

const (
	schemaName        = "rhetorik_analysis"
	schemaDescription = "Satzweise Emotions- und Rhetorikanalyse eines deutschen Nachrichtenartikels"
)

// Analyzer produces artifacts for article texts.
type Analyzer struct {
	ai       ai.Client
	cache    cache.Cache
	model    string
	thinking string
	maxTries int
	backoff  time.Duration
	hint     bool
	now      func() time.Time

	group singleflight.Group
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache stores and reuses artifacts.
func WithCache(c cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithModel selects the analysis model. It is also recorded as the
// artifact's model_version when the model does not report one.
func WithModel(model string) Option {
	return func(a *Analyzer) {
		a.model = model
	}
}

// WithThinking sets the reasoning effort of the analysis call.
func WithThinking(effort string) Option {
	return func(a *Analyzer) {
		a.thinking = effort
	}
}

// WithRetry sets how often a failed model call is attempted and the
// initial pause between attempts.
func WithRetry(maxTries int, backoff time.Duration) Option {
	return func(a *Analyzer) {
		a.maxTries = maxTries
		a.backoff = backoff
	}
}

// WithSentenceHint toggles the pre-split sentence count in the prompt.
func WithSentenceHint(enabled bool) Option {
	return func(a *Analyzer) {
		a.hint = enabled
	}
}

// WithClock replaces time.Now for analyzed_at.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// New creates an analyzer backed by client.
func New(client ai.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		ai:       client,
		maxTries: 2,
		backoff:  time.Second,
		hint:     true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the cache key for an analysis of text from sourceURL.
func Key(text, sourceURL string) string {
	return cache.Key(cache.Version, CachePrefix, text, sourceURL)
}

// Analyze returns the normalized artifact for text. sourceURL may be
// empty for pasted text. Identical concurrent requests share one model
// call. A canceled caller stops waiting at once; the shared call runs on
// for the other callers and its result is still cached.
func (a *Analyzer) Analyze(ctx context.Context, text, sourceURL string) (*analysis.Artifact, error) {
	text = strings.TrimSpace(text)
	sourceURL = strings.TrimSpace(sourceURL)
	if text == "" {
		return nil, analysis.NewError(analysis.CodeExtractionEmpty, "no article text", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := Key(text, sourceURL)
	if artifact, ok := a.fromCache(ctx, key); ok {
		logger.Info("[Analyzer] Cache hit", "key", key)
		return artifact, nil
	}

	flight := context.WithoutCancel(ctx)
	ch := a.group.DoChan(key, func() (any, error) {
		return a.analyze(flight, key, text, sourceURL)
	})

	select {
	case <-ctx.Done():
		logger.Debug("[Analyzer] Caller left in-flight analysis", "key", key, "err", ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("[Analyzer] Shared in-flight analysis", "key", key)
		}
		return res.Val.(*analysis.Artifact), nil
	}
}

func (a *Analyzer) fromCache(ctx context.Context, key string) (*analysis.Artifact, bool) {
	var artifact analysis.Artifact
	if !cache.GetJSON(ctx, a.cache, key, &artifact) {
		return nil, false
	}
	analysis.Normalize(&artifact)
	if err := analysis.Validate(&artifact); err != nil {
		logger.Warn("[Analyzer] Ignoring invalid cached artifact", "key", key, "err", err)
		return nil, false
	}
	return &artifact, true
}

func (a *Analyzer) analyze(ctx context.Context, key, text, sourceURL string) (*analysis.Artifact, error) {
	start := time.Now()
	prompt := a.prompt(text, sourceURL)

	artifact, err := util.RetryWithContext(ctx, a.maxTries, a.backoff, func(ctx context.Context) (*analysis.Artifact, error) {
		var out modelOutput
		if err := a.ai.GenerateCompletionWithFormat(ctx, schemaName, schemaDescription, prompt, &out, a.options()...); err != nil {
			logger.Warn("[Analyzer] Model call failed", "err", err)
			return nil, classify(ctx, err)
		}
		return &out.Artifact, nil
	})
	if err != nil {
		return nil, err
	}

	a.fillMeta(artifact, sourceURL)
	if report := analysis.Normalize(artifact); report.Changed() {
		logger.Debug("[Analyzer] Normalized model output",
			"labels", report.CoercedLabels,
			"scores", report.ClampedScores,
			"renamed", len(report.RenamedIDs),
			"dropped", report.DroppedReferences,
		)
	}
	if err := analysis.Validate(artifact); err != nil {
		return nil, analysis.NewError(analysis.CodeLLMSchemaInvalid, "artifact failed validation", err)
	}

	cache.SetJSON(ctx, a.cache, key, artifact)
	logger.Info("[Analyzer] Analysis complete",
		"sentences", len(artifact.Sentences),
		"level", artifact.Summary.EmotionalizationLevel,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return artifact, nil
}

// modelOutput is the decode target of the analysis call. It has the
// schema of an artifact but fails to decode when a required key is
// missing, so an incomplete answer is retried and never cached.
type modelOutput struct {
	analysis.Artifact
}

func (m *modelOutput) UnmarshalJSON(data []byte) error {
	if err := analysis.CheckRequiredKeys(data); err != nil {
		return err
	}
	return json.Unmarshal(data, &m.Artifact)
}

func (a *Analyzer) options() []ai.GenerateOption {
	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(ai.AnalysisSystemPrompt),
		ai.WithStrictSchema(false),
	}
	if a.model != "" {
		opts = append(opts, ai.WithModel(a.model))
	}
	if a.thinking != "" {
		opts = append(opts, ai.WithThinking(a.thinking))
	}
	return opts
}

func (a *Analyzer) prompt(text, sourceURL string) string {
	p := fmt.Sprintf(ai.AnalysisPrompt, sourceURL, text)
	if a.hint {
		if n := len(util.SplitSentences(text)); n > 0 {
			p += fmt.Sprintf(ai.SentenceHintPrompt, n)
		}
	}
	return p
}

// classify maps client errors onto the error taxonomy. Quota errors are
// not retried.
func classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ai.ErrQuotaExceeded):
		return util.Permanent(analysis.NewError(analysis.CodeLLMQuota, "", err))
	case errors.Is(err, ai.ErrInvalidJSON):
		return analysis.NewError(analysis.CodeLLMSchemaInvalid, "", err)
	default:
		return analysis.NewError(analysis.CodeLLMNoResponse, "", err)
	}
}

func (a *Analyzer) fillMeta(artifact *analysis.Artifact, sourceURL string) {
	meta := &artifact.ArticleMeta
	if meta.URL == "" {
		meta.URL = sourceURL
	}
	if meta.Domain == "" {
		meta.Domain = domainOf(meta.URL)
	}
	if meta.Language == "" {
		meta.Language = "de"
	}
	if meta.AnalyzedAt == "" {
		meta.AnalyzedAt = a.now().UTC().Format(time.RFC3339)
	}
	if meta.ModelVersion == "" {
		meta.ModelVersion = a.model
	}
}

func domainOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
