package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/OFFIS-RIT/rhetorik/pkg/aggregate"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph/force"
	"github.com/OFFIS-RIT/rhetorik/pkg/interaction"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
)

type graphOutput struct {
	State     interaction.State      `json:"state"`
	Layout    graph.Layout           `json:"layout"`
	Visible   []string               `json:"visible"`
	Positions map[string]force.Point `json:"positions"`
	Graph     *graph.Graph           `json:"graph,omitempty"`
}

func runGraph() {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	src := registerInputFlags(fs)
	mode := fs.String("mode", string(graph.ModeOverview), "View mode: overview, emotion, topic, sentence or actor")
	emotion := fs.String("emotion", "", "Selected emotion (emotion mode, optional in topic mode)")
	topic := fs.String("topic", "", "Topic node id (topic mode)")
	sentence := fs.String("sentence", "", "Sentence id (sentence mode)")
	actor := fs.String("actor", "", "Actor node id (actor mode)")
	ticks := fs.Int("ticks", 300, "Simulation steps before positions are reported")
	withGraph := fs.Bool("nodes", false, "Include all nodes and edges in the output")
	fs.Parse(os.Args[1:])

	initLogger()

	in, err := src.input()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		fs.Usage()
		os.Exit(2)
	}
	m, ok := graph.ParseMode(*mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unknown mode %q\n", *mode)
		os.Exit(2)
	}

	ctx, stop := signalContext()
	defer stop()

	res := analyze(ctx, in)
	g := graph.Project(res.Artifact, aggregate.Build(res.Artifact.Sentences))

	state, err := selectView(g, m, selection{
		emotion:  *emotion,
		topic:    *topic,
		sentence: *sentence,
		actor:    *actor,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	view := state.View()
	layout := g.Layout(view)
	sim := graph.NewSimulation(g)
	graph.Settle(sim, layout, *ticks)
	defer sim.Stop()

	out := graphOutput{
		State:     state,
		Layout:    layout,
		Visible:   visibleIDs(g, g.Visible(view)),
		Positions: sim.Positions(),
	}
	if *withGraph {
		out.Graph = g
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("Failed to write graph", "err", err)
	}
}

type selection struct {
	emotion  string
	topic    string
	sentence string
	actor    string
}

// selectView replays the clicks that lead to a mode, so the state is the
// one the explorer would reach.
func selectView(g *graph.Graph, m graph.Mode, sel selection) (interaction.State, error) {
	state := interaction.Overview()

	if sel.emotion != "" && (m == graph.ModeEmotion || m == graph.ModeTopic) {
		state = interaction.Reduce(state, interaction.Event{Kind: interaction.ClickWheel, Emotion: analysis.CoerceEmotion(sel.emotion)})
	}

	switch m {
	case graph.ModeEmotion:
		if sel.emotion == "" {
			return state, errors.New("-emotion is required in emotion mode")
		}
	case graph.ModeTopic:
		n, ok := g.Node(sel.topic)
		if !ok || n.Type != graph.TypeTopic {
			return state, fmt.Errorf("unknown topic %q, available: %v", sel.topic, g.TopicIDs())
		}
		state = interaction.Reduce(state, interaction.EventForNode(n))
	case graph.ModeSentence:
		if _, ok := g.SentenceNode(sel.sentence); !ok {
			return state, fmt.Errorf("unknown sentence %q", sel.sentence)
		}
		state = interaction.Reduce(state, interaction.Event{Kind: interaction.ClickSentence, ID: sel.sentence})
	case graph.ModeActor:
		n, ok := g.Node(sel.actor)
		if !ok || !n.Type.IsActor() {
			return state, fmt.Errorf("unknown actor %q", sel.actor)
		}
		state = interaction.Reduce(state, interaction.EventForNode(n))
	}
	return state, nil
}

func visibleIDs(g *graph.Graph, v graph.VisibleSet) []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if v.Contains(n.ID) {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
