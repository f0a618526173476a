package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/OFFIS-RIT/rhetorik/internal/app"
	"github.com/OFFIS-RIT/rhetorik/pkg/aggregate"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
)

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	src := registerInputFlags(fs)
	compact := fs.Bool("compact", false, "Print the artifact on one line")
	distribution := fs.Bool("distribution", false, "Print the emotion distribution instead of the artifact")
	fs.Parse(os.Args[1:])

	initLogger()

	in, err := src.input()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signalContext()
	defer stop()

	res := analyze(ctx, in)

	if *distribution {
		agg := aggregate.Build(res.Artifact.Sentences)
		fmt.Printf("Emotionalisierung: %s\n\n", res.Artifact.Summary.EmotionalizationLevel)
		for _, s := range agg.Distribution() {
			fmt.Printf("  %-10s %3d  %5.1f%%\n", s.Emotion, s.Count, s.Percent)
		}
		return
	}

	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res.Artifact); err != nil {
		logger.Fatal("Failed to write artifact", "err", err)
	}
}

// analyze runs the pipeline once and exits with the user message on
// failure.
func analyze(ctx context.Context, in app.Input) app.Result {
	pipeline, c, err := newPipeline(ctx)
	if err != nil {
		logger.Fatal("Could not set up the pipeline", "err", err)
	}
	defer c.Close()

	res, err := pipeline.Run(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s (%s)\n", analysis.UserMessage(err), analysis.CodeOf(err))
		logger.Debug("Analysis failed", "err", err)
		c.Close()
		os.Exit(1)
	}
	return res
}
