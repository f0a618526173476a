package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/rhetorik/internal/app"
	"github.com/OFFIS-RIT/rhetorik/pkg/aggregate"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/cache"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph"
)

func parseInput(t *testing.T, args ...string) (app.Input, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	src := registerInputFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return src.input()
}

func TestInputFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "artikel.txt")
	if err := os.WriteFile(file, []byte("Text aus Datei"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want app.Input
	}{
		{name: "example wins", args: []string{"-example", "-url", "https://x.de"}, want: app.ExampleInput()},
		{name: "url", args: []string{"-url", "https://x.de"}, want: app.URLInput("https://x.de")},
		{name: "text", args: []string{"-text", "Hallo"}, want: app.TextInput("Hallo")},
		{name: "file", args: []string{"-file", file}, want: app.TextInput("Text aus Datei")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseInput(t, tc.args...)
			if err != nil {
				t.Fatalf("input() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("input() = %+v, want %+v", got, tc.want)
			}
		})
	}

	if _, err := parseInput(t); err == nil {
		t.Fatalf("missing source should be rejected")
	}
	if _, err := parseInput(t, "-file", filepath.Join(t.TempDir(), "fehlt.txt")); err == nil {
		t.Fatalf("missing file should be rejected")
	}
}

func TestOpenCacheBackends(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	c, err := openCache(context.Background())
	if err != nil {
		t.Fatalf("openCache(memory) error = %v", err)
	}
	if _, ok := c.(*cache.Memory); !ok {
		t.Fatalf("memory backend returned %T", c)
	}

	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("CACHE_PATH", filepath.Join(t.TempDir(), "cache.db"))
	c, err = openCache(context.Background())
	if err != nil {
		t.Fatalf("openCache(sqlite) error = %v", err)
	}
	defer c.Close()
	if _, ok := c.(*cache.SQLite); !ok {
		t.Fatalf("sqlite backend returned %T", c)
	}

	t.Setenv("CACHE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := openCache(context.Background()); err == nil {
		t.Fatalf("postgres without DATABASE_URL should fail")
	}

	t.Setenv("CACHE_BACKEND", "redis")
	if _, err := openCache(context.Background()); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestNewAIClient(t *testing.T) {
	t.Setenv("AI_ADAPTER", "openai")
	t.Setenv("AI_CHAT_KEY", "")
	if c, err := newAIClient(); err == nil || c != nil {
		t.Fatalf("openai without key: client=%v err=%v", c, err)
	}

	t.Setenv("AI_CHAT_KEY", "sk-test")
	if _, err := newAIClient(); err != nil {
		t.Fatalf("openai client error = %v", err)
	}

	t.Setenv("AI_ADAPTER", "ollama")
	if _, err := newAIClient(); err != nil {
		t.Fatalf("ollama client error = %v", err)
	}

	t.Setenv("AI_ADAPTER", "unknown")
	if _, err := newAIClient(); err == nil {
		t.Fatalf("unknown adapter should fail")
	}
}

func testGraph() *graph.Graph {
	a := &analysis.Artifact{
		Sentences: []analysis.Sentence{
			{ID: "s0", Text: "Eins.", Emotion: analysis.Emotion{Label: analysis.Wut, Intensity: 0.5}, PathosScore: 0.5, TopicMain: "Politik"},
			{ID: "s1", Text: "Zwei.", Position: 1, Emotion: analysis.Emotion{Label: analysis.Angst, Intensity: 0.5}, PathosScore: 0.5, TopicMain: "Politik"},
		},
	}
	analysis.Normalize(a)
	return graph.Project(a, aggregate.Build(a.Sentences))
}

func TestSelectView(t *testing.T) {
	g := testGraph()

	tests := []struct {
		name    string
		mode    graph.Mode
		sel     selection
		want    graph.View
		wantErr bool
	}{
		{name: "overview", mode: graph.ModeOverview, want: graph.View{Mode: graph.ModeOverview}},
		{name: "emotion", mode: graph.ModeEmotion, sel: selection{emotion: "wut"}, want: graph.View{Mode: graph.ModeEmotion, Emotion: analysis.Wut}},
		{name: "emotion missing", mode: graph.ModeEmotion, wantErr: true},
		{name: "topic", mode: graph.ModeTopic, sel: selection{topic: "WUT_topic_politik"}, want: graph.View{Mode: graph.ModeTopic, TopicID: "WUT_topic_politik"}},
		{
			name: "topic under emotion",
			mode: graph.ModeTopic,
			sel:  selection{emotion: "WUT", topic: "WUT_topic_politik"},
			want: graph.View{Mode: graph.ModeTopic, Emotion: analysis.Wut, TopicID: "WUT_topic_politik"},
		},
		{name: "unknown topic", mode: graph.ModeTopic, sel: selection{topic: "nope"}, wantErr: true},
		{name: "sentence", mode: graph.ModeSentence, sel: selection{sentence: "s1"}, want: graph.View{Mode: graph.ModeSentence, SentenceID: "s1"}},
		{name: "unknown sentence", mode: graph.ModeSentence, sel: selection{sentence: "s9"}, wantErr: true},
		{name: "topic is not an actor", mode: graph.ModeActor, sel: selection{actor: "WUT_topic_politik"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state, err := selectView(g, tc.mode, tc.sel)
			if (err != nil) != tc.wantErr {
				t.Fatalf("selectView() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && state.View() != tc.want {
				t.Fatalf("selectView() view = %+v, want %+v", state.View(), tc.want)
			}
		})
	}
}

func TestVisibleIDs(t *testing.T) {
	g := testGraph()
	all := visibleIDs(g, nil)
	if len(all) != len(g.Nodes) {
		t.Fatalf("empty visible set should list all %d nodes, got %d", len(g.Nodes), len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] > all[i] {
			t.Fatalf("ids not sorted: %v", all)
		}
	}

	topic := visibleIDs(g, g.Visible(graph.View{Mode: graph.ModeTopic, TopicID: "ANGST_topic_politik"}))
	for _, id := range topic {
		if id == "WUT_topic_politik" {
			t.Fatalf("other topic visible in topic view")
		}
	}
}
