// Command rhetorik analyzes German news articles for emotion and rhetoric.
//
// Usage:
//
//	rhetorik                      Show help
//	rhetorik analyze -url <url>   Extract and analyze an article, print the artifact
//	rhetorik graph -mode topic    Project the graph of an analysis for one view
//	rhetorik explore              Interactive terminal explorer
package main

import (
	"fmt"
	"os"
)

const usage = `rhetorik - emotion and rhetoric analysis of news articles

Usage:
  rhetorik <command> [flags]

Commands:
  analyze     Analyze an article and print the artifact as JSON
  graph       Print layout, positions and visible nodes of one graph view
  explore     Interactive terminal explorer

Input flags (analyze, graph):
  -url        Article URL, extracted through the proxy chain
  -text       Article text
  -file       Read the article text from a file ("-" for stdin)
  -example    Use the built-in demo article

Environment:
  AI_ADAPTER             openai (default) or ollama
  AI_CHAT_KEY            API key of the model provider (required for openai)
  AI_CHAT_URL            Custom endpoint of the model provider
  AI_ANALYSIS_MODEL      Model for the analysis (default: gpt-4.1)
  AI_EXTRACT_MODEL       Model for the article cleanup (default: gpt-4.1-mini)
  AI_THINKING            Reasoning effort passed to the analysis model
  CACHE_BACKEND          memory, sqlite (default) or postgres
  CACHE_PATH             SQLite file (default: ~/.rhetorik/cache.db)
  DATABASE_URL           Postgres connection string for CACHE_BACKEND=postgres
  CACHE_MAX_ENTRY_BYTES  Largest cached entry (default: 5 MiB)
  RHETORIK_LOG_FILE      Log file of the explorer (default: ~/.rhetorik/rhetorik.log)
  DEBUG                  Enable debug logging

Run 'rhetorik <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// flag sets parse os.Args[1:] after this
	os.Args = os.Args[1:]

	switch cmd {
	case "analyze":
		runAnalyze()
	case "graph":
		runGraph()
	case "explore":
		runExplore()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "rhetorik: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
