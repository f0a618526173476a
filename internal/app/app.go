// Package app wires the extractor and the analyzer into the one pipeline
// the command line and the explorer share.
package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/interaction"
	"github.com/OFFIS-RIT/rhetorik/pkg/loader/web"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
)

// MinTextChars is the shortest pasted text accepted for analysis.
const MinTextChars = 100

// Mode selects where the article text comes from.
type Mode string

const (
	ModeURL  Mode = "url"
	ModeText Mode = "text"
)

// Input is what the user submitted.
type Input struct {
	Mode Mode
	URL  string
	Text string
}

// URLInput submits a link.
func URLInput(rawURL string) Input {
	return Input{Mode: ModeURL, URL: rawURL}
}

// TextInput submits pasted article text.
func TextInput(text string) Input {
	return Input{Mode: ModeText, Text: text}
}

// ExampleInput is the demo article. It is analyzed as text, attributed to
// the demo URL.
func ExampleInput() Input {
	return Input{Mode: ModeText, URL: analysis.ExampleURL, Text: analysis.ExampleText}
}

// Ready reports whether the input may be submitted at all.
func (in Input) Ready() bool {
	return in.Validate() == nil
}

// Validate checks the input before any network work.
func (in Input) Validate() error {
	switch in.Mode {
	case ModeURL:
		if strings.TrimSpace(in.URL) == "" {
			return analysis.NewError(analysis.CodeURLMalformed, "empty url", nil)
		}
	case ModeText:
		if utf8.RuneCountInString(strings.TrimSpace(in.Text)) < MinTextChars {
			return analysis.NewError(analysis.CodeExtractionEmpty, "text shorter than minimum", nil)
		}
	default:
		return analysis.NewError(analysis.CodeUnexpected, "unknown input mode "+string(in.Mode), nil)
	}
	return nil
}

// Extractor turns a link into article text.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (web.Article, error)
}

// Analyzer turns article text into an artifact.
type Analyzer interface {
	Analyze(ctx context.Context, text, sourceURL string) (*analysis.Artifact, error)
}

// Result is a finished pipeline run.
type Result struct {
	Artifact *analysis.Artifact
	// Text is the analyzed article text, the extracted one in URL mode.
	Text string
}

// Pipeline runs extraction and analysis for an input.
type Pipeline struct {
	extractor Extractor
	analyzer  Analyzer
}

// NewPipeline creates a pipeline. The extractor may be nil when only text
// input is used.
func NewPipeline(extractor Extractor, analyzer Analyzer) *Pipeline {
	return &Pipeline{extractor: extractor, analyzer: analyzer}
}

// Run validates the input, extracts the article in URL mode and analyzes
// it. Text input is analyzed with its own URL attribution only when one
// was given, pasted text alone carries no source.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	text := strings.TrimSpace(in.Text)
	source := strings.TrimSpace(in.URL)
	title := ""

	if in.Mode == ModeURL {
		if p.extractor == nil {
			return Result{}, analysis.NewError(analysis.CodeFetchUnavailable, "no extractor configured", nil)
		}
		article, err := p.extractor.Extract(ctx, source)
		if err != nil {
			logger.Warn("[Pipeline] Extraction failed", "url", source, "code", analysis.CodeOf(err), "err", err)
			return Result{}, err
		}
		text = article.Text
		source = article.URL
		title = article.Title
	}

	artifact, err := p.analyzer.Analyze(ctx, text, source)
	if err != nil {
		logger.Warn("[Pipeline] Analysis failed", "mode", in.Mode, "code", analysis.CodeOf(err), "err", err)
		return Result{}, err
	}

	if title != "" && artifact.ArticleMeta.Title == "" {
		// the analyzer may hand out a shared cached artifact
		copied := *artifact
		copied.ArticleMeta.Title = title
		artifact = &copied
	}
	return Result{Artifact: artifact, Text: text}, nil
}

// Submit runs the input against a session: Begin before the run and
// Complete or Fail with the same token afterwards, so a slower earlier
// run can never overwrite a newer one. It reports whether the result was
// applied.
func (p *Pipeline) Submit(ctx context.Context, s *interaction.Session, in Input) (Result, bool, error) {
	token := s.Begin()
	res, err := p.Run(ctx, in)
	if err != nil {
		return Result{}, s.Fail(token, err), err
	}
	return res, s.Complete(token, res.Artifact), nil
}
