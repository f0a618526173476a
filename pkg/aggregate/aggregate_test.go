package aggregate

import (
	"math"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
)

func sentence(id string, pos int, label string, pathos float64, topic string, groups ...analysis.Group) analysis.Sentence {
	return analysis.Sentence{
		ID:          id,
		Position:    pos,
		Emotion:     analysis.Emotion{Label: analysis.EmotionLabel(label), Intensity: 0.5},
		PathosScore: pathos,
		TopicMain:   topic,
		Groups:      groups,
	}
}

func normalized(sentences ...analysis.Sentence) []analysis.Sentence {
	a := &analysis.Artifact{Sentences: sentences}
	analysis.Normalize(a)
	return a.Sentences
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuild_SingleSentence(t *testing.T) {
	agg := Build(normalized(sentence("s0", 0, "wut", 0.7, "Regierung")))

	if len(agg.Emotions) != 1 {
		t.Fatalf("got %d emotions, want 1", len(agg.Emotions))
	}
	e := agg.Emotions[0]
	if e.Label != analysis.Wut || e.TotalSentenceCount != 1 || !approx(e.AvgPathos, 0.7) {
		t.Fatalf("emotion = %+v, want WUT/1/0.7", e)
	}
	if len(e.Topics) != 1 || e.Topics[0].ID != "WUT_topic_regierung" {
		t.Fatalf("topics = %+v, want WUT_topic_regierung", e.Topics)
	}
	if e.Topics[0].Label != "Regierung" {
		t.Fatalf("topic label = %q", e.Topics[0].Label)
	}
}

func TestBuild_LabelCoercion(t *testing.T) {
	agg := Build(normalized(sentence("s0", 0, "Sorge", 0.4, "Klima")))

	if _, ok := agg.Emotion(analysis.Angst); !ok {
		t.Fatalf("expected an ANGST branch, got %+v", agg.Emotions)
	}
	if _, ok := agg.Topic("ANGST_topic_klima"); !ok {
		t.Fatalf("expected topic ANGST_topic_klima")
	}
}

func TestBuild_MissingTopic(t *testing.T) {
	agg := Build(normalized(
		sentence("s0", 0, "WUT", 0.2, ""),
		sentence("s1", 1, "WUT", 0.4, ""),
		sentence("s2", 2, "ANGST", 0.6, ""),
	))

	topics := agg.Topics()
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	for _, tp := range topics {
		if tp.Label != analysis.DefaultTopic || tp.Slug != "allgemein" {
			t.Fatalf("topic = %+v, want Allgemein/allgemein", tp)
		}
	}
	wut, _ := agg.Topic("WUT_topic_allgemein")
	if !reflect.DeepEqual(wut.SentenceIDs, []string{"s0", "s1"}) {
		t.Fatalf("WUT sentences = %v", wut.SentenceIDs)
	}
	if !approx(wut.AvgPathos, 0.3) {
		t.Fatalf("WUT avg pathos = %v, want 0.3", wut.AvgPathos)
	}
	if agg.Emotions[0].Label != analysis.Wut {
		t.Fatalf("emotions not ordered by count: %+v", agg.Emotions)
	}
}

func TestBuild_CrossEmotionTopicIsolation(t *testing.T) {
	agg := Build(normalized(
		sentence("s0", 0, "ANGST", 0.5, "Wahlen"),
		sentence("s1", 1, "HOFFNUNG", 0.5, "Wahlen"),
	))

	for _, id := range []string{"ANGST_topic_wahlen", "HOFFNUNG_topic_wahlen"} {
		tp, ok := agg.Topic(id)
		if !ok || len(tp.SentenceIDs) != 1 {
			t.Fatalf("topic %s missing or wrong: %+v", id, tp)
		}
	}
	if len(agg.Topics()) != 2 {
		t.Fatalf("got %d topics, want 2", len(agg.Topics()))
	}
}

func TestBuild_TopicOrdering(t *testing.T) {
	agg := Build(normalized(
		sentence("s0", 0, "WUT", 0.5, "Zoll"),
		sentence("s1", 1, "WUT", 0.5, "Zoll"),
		sentence("s2", 2, "WUT", 0.5, "Zoll"),
		sentence("s3", 3, "WUT", 0.5, "Miete"),
		sentence("s4", 4, "WUT", 0.5, "Bahn"),
		sentence("s5", 5, "WUT", 0.5, "Bahn"),
		sentence("s6", 6, "WUT", 0.5, "Bahn"),
	))

	var got []string
	for _, tp := range agg.Emotions[0].Topics {
		got = append(got, tp.ID)
	}
	want := []string{"WUT_topic_bahn", "WUT_topic_zoll", "WUT_topic_miete"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("topic order = %v, want %v", got, want)
	}
}

func TestBuild_Groups(t *testing.T) {
	agg := Build(normalized(
		sentence("s0", 0, "WUT", 0.8, "Steuern",
			analysis.Group{Label: "Bürger", Role: "Opfer"},
			analysis.Group{Label: "Eliten", Role: "Täter"},
			analysis.Group{Label: "Bürger", Role: "Opfer"}),
		sentence("s1", 1, "WUT", 0.4, "Steuern",
			analysis.Group{Label: "Bürger", Role: "Opfer"},
			analysis.Group{Label: "Regierung"},
			analysis.Group{Label: "", Role: "Retter"}),
	))

	tp, ok := agg.Topic("WUT_topic_steuern")
	if !ok {
		t.Fatalf("topic missing")
	}
	if len(tp.Groups) != 3 {
		t.Fatalf("got %d groups, want 3: %+v", len(tp.Groups), tp.Groups)
	}
	first := tp.Groups[0]
	if first.GroupLabel != "Bürger" || first.Role != "Opfer" || len(first.SentenceIDs) != 2 || !approx(first.AvgPathos, 0.6) {
		t.Fatalf("first group = %+v", first)
	}
	for _, g := range tp.Groups {
		if g.GroupLabel == "Regierung" && g.Role != DefaultRole {
			t.Fatalf("missing role should default to %q, got %q", DefaultRole, g.Role)
		}
	}
}

func TestBuild_Laws(t *testing.T) {
	labels := []string{"WUT", "ANGST", "HOFFNUNG", "NEUTRAL", "EKEL"}
	topics := []string{"Wahlen", "Klima", "", "Migration"}
	var in []analysis.Sentence
	for i := 0; i < 40; i++ {
		in = append(in, sentence(
			"s"+string(rune('a'+i%26))+string(rune('a'+i/26)),
			i,
			labels[i%len(labels)],
			float64(i%10)/10,
			topics[(i*7)%len(topics)],
		))
	}
	in = normalized(in...)
	agg := Build(in)

	seen := make(map[string]int)
	total := 0
	for _, e := range agg.Emotions {
		for _, tp := range e.Topics {
			if len(tp.SentenceIDs) == 0 {
				t.Fatalf("topic %s has no sentences", tp.ID)
			}
			total += len(tp.SentenceIDs)
			for _, id := range tp.SentenceIDs {
				seen[id]++
			}
			if tp.Emotion != e.Label {
				t.Fatalf("topic %s emotion %s under %s", tp.ID, tp.Emotion, e.Label)
			}
		}
	}
	if total != len(in) || agg.SentenceCount() != len(in) {
		t.Fatalf("sentence count %d, want %d", total, len(in))
	}
	for _, s := range in {
		if seen[s.ID] != 1 {
			t.Fatalf("sentence %s appears %d times", s.ID, seen[s.ID])
		}
	}

	shuffled := make([]analysis.Sentence, len(in))
	copy(shuffled, in)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	again := Build(shuffled)
	if !sameAggregate(agg, again) {
		t.Fatalf("Build() depends on input order")
	}
}

func sameAggregate(a, b Aggregate) bool {
	if len(a.Emotions) != len(b.Emotions) {
		return false
	}
	for i := range a.Emotions {
		ea, eb := a.Emotions[i], b.Emotions[i]
		if ea.Label != eb.Label || ea.TotalSentenceCount != eb.TotalSentenceCount || len(ea.Topics) != len(eb.Topics) {
			return false
		}
		for j := range ea.Topics {
			ta, tb := ea.Topics[j], eb.Topics[j]
			if ta.ID != tb.ID || ta.Label != tb.Label || !approx(ta.AvgPathos, tb.AvgPathos) {
				return false
			}
			ia := append([]string(nil), ta.SentenceIDs...)
			ib := append([]string(nil), tb.SentenceIDs...)
			sort.Strings(ia)
			sort.Strings(ib)
			if !reflect.DeepEqual(ia, ib) {
				return false
			}
		}
	}
	return true
}

func TestDistribution(t *testing.T) {
	agg := Build(normalized(
		sentence("s0", 0, "WUT", 0.5, "A"),
		sentence("s1", 1, "WUT", 0.5, "B"),
		sentence("s2", 2, "ANGST", 0.5, "A"),
		sentence("s3", 3, "NEUTRAL", 0.5, "A"),
	))

	dist := agg.Distribution()
	if len(dist) != 7 {
		t.Fatalf("got %d shares, want 7", len(dist))
	}
	if dist[0].Emotion != analysis.Angst || dist[0].Count != 1 || !approx(dist[0].Percent, 25) {
		t.Fatalf("ANGST share = %+v", dist[0])
	}
	if dist[1].Emotion != analysis.Wut || !approx(dist[1].Percent, 50) {
		t.Fatalf("WUT share = %+v", dist[1])
	}
	if dist[2].Count != 0 || dist[2].Percent != 0 {
		t.Fatalf("TRAUER share = %+v", dist[2])
	}

	if empty := (Aggregate{}).Distribution(); empty[0].Percent != 0 {
		t.Fatalf("empty distribution = %+v", empty)
	}
}
