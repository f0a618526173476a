// Package aggregate groups the sentences of an analysis into an
// emotion → topic → actor hierarchy.
package aggregate

import (
	"sort"

	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
)

// DefaultRole is assigned to groups the model named without a role.
const DefaultRole = "Akteur"

// GroupRole aggregates the sentences in which one actor group appears
// with one role.
type GroupRole struct {
	GroupLabel  string   `json:"groupLabel"`
	Role        string   `json:"role"`
	SentenceIDs []string `json:"sentenceIds"`
	AvgPathos   float64  `json:"avgPathos"`
}

// Topic is the (emotion, topic) grouping of sentences.
// ID has the form "{EMOTION}_topic_{slug}".
type Topic struct {
	ID          string                `json:"id"`
	Label       string                `json:"label"`
	Slug        string                `json:"slug"`
	Emotion     analysis.EmotionLabel `json:"emotion"`
	SentenceIDs []string              `json:"sentenceIds"`
	AvgPathos   float64               `json:"avgPathos"`
	Groups      []GroupRole           `json:"groups"`
}

// Emotion holds every topic observed for one emotion label.
type Emotion struct {
	Label              analysis.EmotionLabel `json:"label"`
	Topics             []Topic               `json:"topics"`
	TotalSentenceCount int                   `json:"totalSentenceCount"`
	AvgPathos          float64               `json:"avgPathos"`
}

// Aggregate is the emotion → topic → actor view of an artifact.
type Aggregate struct {
	Emotions []Emotion `json:"emotions"`
}

// TopicID builds the aggregate id of a topic label under an emotion.
func TopicID(e analysis.EmotionLabel, topic string) string {
	return string(e) + "_topic_" + analysis.Slug(topic)
}

type topicAcc struct {
	topic  Topic
	pathos float64
	groups map[[2]string]*groupAcc
}

type groupAcc struct {
	group  GroupRole
	pathos float64
	seen   map[string]struct{}
}

// Build aggregates normalized sentences. It is a pure function: the
// result does not depend on the order of the input.
//
// Sentences are partitioned by emotion label, then by the slug of their
// topic. Topics within an emotion are ordered by sentence count
// (descending) and id; emotions by total count (descending) and the
// canonical wheel order.
func Build(sentences []analysis.Sentence) Aggregate {
	ordered := make([]analysis.Sentence, len(sentences))
	copy(ordered, sentences)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].ID < ordered[j].ID
	})

	topics := make(map[string]*topicAcc)
	for _, s := range ordered {
		label := analysis.TopicLabel(s)
		id := TopicID(s.Emotion.Label, label)

		acc, ok := topics[id]
		if !ok {
			acc = &topicAcc{
				topic: Topic{
					ID:      id,
					Label:   label,
					Slug:    analysis.Slug(label),
					Emotion: s.Emotion.Label,
				},
				groups: make(map[[2]string]*groupAcc),
			}
			topics[id] = acc
		} else if label < acc.topic.Label {
			// labels sharing a slug collapse onto the smallest one
			acc.topic.Label = label
		}
		acc.topic.SentenceIDs = append(acc.topic.SentenceIDs, s.ID)
		acc.pathos += s.PathosScore

		for _, g := range s.Groups {
			if g.Label == "" {
				continue
			}
			role := g.Role
			if role == "" {
				role = DefaultRole
			}
			key := [2]string{g.Label, role}
			ga, ok := acc.groups[key]
			if !ok {
				ga = &groupAcc{
					group: GroupRole{GroupLabel: g.Label, Role: role},
					seen:  make(map[string]struct{}),
				}
				acc.groups[key] = ga
			}
			if _, dup := ga.seen[s.ID]; dup {
				continue
			}
			ga.seen[s.ID] = struct{}{}
			ga.group.SentenceIDs = append(ga.group.SentenceIDs, s.ID)
			ga.pathos += s.PathosScore
		}
	}

	byEmotion := make(map[analysis.EmotionLabel]*Emotion)
	pathosByEmotion := make(map[analysis.EmotionLabel]float64)
	for _, acc := range topics {
		t := acc.topic
		t.AvgPathos = acc.pathos / float64(len(t.SentenceIDs))
		t.Groups = make([]GroupRole, 0, len(acc.groups))
		for _, ga := range acc.groups {
			g := ga.group
			g.AvgPathos = ga.pathos / float64(len(g.SentenceIDs))
			t.Groups = append(t.Groups, g)
		}
		sortGroups(t.Groups)

		em, ok := byEmotion[t.Emotion]
		if !ok {
			em = &Emotion{Label: t.Emotion}
			byEmotion[t.Emotion] = em
		}
		em.Topics = append(em.Topics, t)
		em.TotalSentenceCount += len(t.SentenceIDs)
		pathosByEmotion[t.Emotion] += acc.pathos
	}

	agg := Aggregate{Emotions: make([]Emotion, 0, len(byEmotion))}
	for label, em := range byEmotion {
		em.AvgPathos = pathosByEmotion[label] / float64(em.TotalSentenceCount)
		sortTopics(em.Topics)
		agg.Emotions = append(agg.Emotions, *em)
	}
	sort.Slice(agg.Emotions, func(i, j int) bool {
		a, b := agg.Emotions[i], agg.Emotions[j]
		if a.TotalSentenceCount != b.TotalSentenceCount {
			return a.TotalSentenceCount > b.TotalSentenceCount
		}
		return analysis.WheelIndex(a.Label) < analysis.WheelIndex(b.Label)
	})

	return agg
}

func sortTopics(topics []Topic) {
	sort.Slice(topics, func(i, j int) bool {
		if len(topics[i].SentenceIDs) != len(topics[j].SentenceIDs) {
			return len(topics[i].SentenceIDs) > len(topics[j].SentenceIDs)
		}
		return topics[i].ID < topics[j].ID
	})
}

func sortGroups(groups []GroupRole) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if len(a.SentenceIDs) != len(b.SentenceIDs) {
			return len(a.SentenceIDs) > len(b.SentenceIDs)
		}
		if a.GroupLabel != b.GroupLabel {
			return a.GroupLabel < b.GroupLabel
		}
		return a.Role < b.Role
	})
}

// Topics returns every topic aggregate, emotions first in aggregate order.
func (a Aggregate) Topics() []Topic {
	var out []Topic
	for _, e := range a.Emotions {
		out = append(out, e.Topics...)
	}
	return out
}

// Topic looks up a topic aggregate by id.
func (a Aggregate) Topic(id string) (Topic, bool) {
	for _, e := range a.Emotions {
		for _, t := range e.Topics {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Topic{}, false
}

// Emotion looks up the aggregate of one emotion label.
func (a Aggregate) Emotion(label analysis.EmotionLabel) (Emotion, bool) {
	for _, e := range a.Emotions {
		if e.Label == label {
			return e, true
		}
	}
	return Emotion{}, false
}

// SentenceCount returns the number of sentences covered by the aggregate.
func (a Aggregate) SentenceCount() int {
	n := 0
	for _, e := range a.Emotions {
		n += e.TotalSentenceCount
	}
	return n
}

// Share is the portion of sentences carrying one emotion.
type Share struct {
	Emotion analysis.EmotionLabel `json:"emotion"`
	Count   int                   `json:"count"`
	Percent float64               `json:"percent"`
}

// Distribution returns the sentiment distribution of the article in
// canonical wheel order, including emotions without sentences.
func (a Aggregate) Distribution() []Share {
	total := a.SentenceCount()
	out := make([]Share, 0, len(analysis.WheelOrder))
	for _, label := range analysis.WheelOrder {
		s := Share{Emotion: label}
		if e, ok := a.Emotion(label); ok {
			s.Count = e.TotalSentenceCount
		}
		if total > 0 {
			s.Percent = float64(s.Count) * 100 / float64(total)
		}
		out = append(out, s)
	}
	return out
}
