package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Report lists what Normalize had to repair. A zero Report means the
// artifact already satisfied every invariant.
type Report struct {
	CoercedLabels     int
	ClampedScores     int
	Repositioned      bool
	RenamedIDs        map[string]string
	DroppedReferences int
	DroppedFilters    int
	CoercedEnums      int
}

// Changed reports whether Normalize modified anything.
func (r Report) Changed() bool {
	return r.CoercedLabels > 0 || r.ClampedScores > 0 || r.Repositioned ||
		len(r.RenamedIDs) > 0 || r.DroppedReferences > 0 || r.DroppedFilters > 0 ||
		r.CoercedEnums > 0
}

var filterSynonyms = map[string]FilterName{
	"OWNERSHIP":   FilterOwnership,
	"BESITZ":      FilterOwnership,
	"EIGENTÜMER":  FilterOwnership,
	"ADVERTISING": FilterAdvertising,
	"ANZEIGEN":    FilterAdvertising,
	"WERBEKUNDEN": FilterAdvertising,
	"SOURCES":     FilterSourcing,
	"QUELLEN":     FilterSourcing,
	"QUELLENWAHL": FilterSourcing,
	"KRITIK":      FilterFlak,
	"GEGENWIND":   FilterFlak,
	"IDEOLOGY":    FilterIdeology,
	"FEINDBILD":   FilterIdeology,
}

// Normalize repairs an artifact returned by the model in place so that it
// satisfies the data model invariants:
//   - sentences ordered by position with dense positions from 0
//   - unique, non-empty sentence ids (collisions get a _2, _3, ... suffix)
//   - emotion labels inside the closed set
//   - every score finite and within [0,1]
//   - no nil lists, no references to unknown sentences
//
// Normalize is idempotent.
func Normalize(a *Artifact) Report {
	var r Report
	if a == nil {
		return r
	}

	normalizeMeta(&a.ArticleMeta)
	ids := normalizeSentences(a, &r)
	normalizeSummary(a, &r)
	normalizeInfluence(&a.Influence, ids, &r)
	normalizeEvidence(a, &r)
	normalizeSeed(&a.Graph)

	return r
}

func normalizeMeta(m *ArticleMeta) {
	m.URL = strings.TrimSpace(m.URL)
	m.Domain = strings.TrimSpace(m.Domain)
	m.Title = strings.TrimSpace(m.Title)
	m.Language = strings.TrimSpace(m.Language)
}

func normalizeSentences(a *Artifact, r *Report) map[string]struct{} {
	if a.Sentences == nil {
		a.Sentences = []Sentence{}
	}

	sort.SliceStable(a.Sentences, func(i, j int) bool {
		return a.Sentences[i].Position < a.Sentences[j].Position
	})

	ids := make(map[string]struct{}, len(a.Sentences))
	for i := range a.Sentences {
		s := &a.Sentences[i]
		if s.Position != i {
			s.Position = i
			r.Repositioned = true
		}

		orig := s.ID
		id := strings.TrimSpace(s.ID)
		if id == "" {
			id = fmt.Sprintf("s%d", i)
		}
		if _, taken := ids[id]; taken {
			base := id
			for n := 2; ; n++ {
				id = fmt.Sprintf("%s_%d", base, n)
				if _, taken := ids[id]; !taken {
					break
				}
			}
		}
		if id != orig {
			if r.RenamedIDs == nil {
				r.RenamedIDs = make(map[string]string)
			}
			r.RenamedIDs[id] = orig
		}
		s.ID = id
		ids[id] = struct{}{}

		label := CoerceEmotion(string(s.Emotion.Label))
		if label != s.Emotion.Label {
			if !EmotionLabel(strings.ToUpper(strings.TrimSpace(string(s.Emotion.Label)))).Valid() {
				r.CoercedLabels++
			}
			s.Emotion.Label = label
		}

		s.Emotion.Intensity = clamp(s.Emotion.Intensity, r)
		s.PathosScore = clamp(s.PathosScore, r)
		s.Text = strings.TrimSpace(s.Text)
		s.TopicMain = strings.TrimSpace(s.TopicMain)

		if s.Devices == nil {
			s.Devices = []Device{}
		}
		if s.Fallacies == nil {
			s.Fallacies = []Finding{}
		}
		if s.Frames == nil {
			s.Frames = []Finding{}
		}
		if s.Groups == nil {
			s.Groups = []Group{}
		}
		for j := range s.Devices {
			s.Devices[j].Confidence = clamp(s.Devices[j].Confidence, r)
		}
		for j := range s.Fallacies {
			s.Fallacies[j].Confidence = clamp(s.Fallacies[j].Confidence, r)
		}
		for j := range s.Frames {
			s.Frames[j].Confidence = clamp(s.Frames[j].Confidence, r)
		}
		for j := range s.Groups {
			s.Groups[j].Label = strings.TrimSpace(s.Groups[j].Label)
			s.Groups[j].Role = strings.TrimSpace(s.Groups[j].Role)
		}
	}

	return ids
}

func normalizeSummary(a *Artifact, r *Report) {
	sum := &a.Summary
	sum.MainEmotions = nonNil(sum.MainEmotions)
	sum.MainDevices = nonNil(sum.MainDevices)
	sum.MainFrames = nonNil(sum.MainFrames)
	sum.MainFallacies = nonNil(sum.MainFallacies)

	level := EmotionalizationLevel(strings.ToLower(strings.TrimSpace(string(sum.EmotionalizationLevel))))
	switch level {
	case LevelLow, LevelMedium, LevelHigh:
	default:
		level = levelFromPathos(a.Sentences)
	}
	if level != sum.EmotionalizationLevel {
		r.CoercedEnums++
		sum.EmotionalizationLevel = level
	}
}

// levelFromPathos grades an article by its mean pathos score when the
// model did not return a usable level.
func levelFromPathos(sentences []Sentence) EmotionalizationLevel {
	if len(sentences) == 0 {
		return LevelLow
	}
	var total float64
	for _, s := range sentences {
		total += s.PathosScore
	}
	mean := total / float64(len(sentences))
	switch {
	case mean < 0.34:
		return LevelLow
	case mean < 0.67:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func normalizeInfluence(inf *Influence, ids map[string]struct{}, r *Report) {
	if inf.OwnershipChain == nil {
		inf.OwnershipChain = []OwnershipLink{}
	}
	for i := range inf.OwnershipChain {
		l := &inf.OwnershipChain[i]
		if l.Level < 0 {
			l.Level = 0
			r.ClampedScores++
		}
		et := EntityType(strings.ToUpper(strings.TrimSpace(string(l.EntityType))))
		switch et {
		case EntityOwner, EntityHolding, EntityFoundation, EntityOther:
		default:
			et = EntityOther
		}
		if et != l.EntityType {
			r.CoercedEnums++
			l.EntityType = et
		}
		l.EvidenceIDs = nonNil(l.EvidenceIDs)
	}

	filters := make([]Filter, 0, len(inf.Filters))
	for _, f := range inf.Filters {
		name, ok := coerceFilter(string(f.Name))
		if !ok {
			r.DroppedFilters++
			continue
		}
		if name != f.Name {
			r.CoercedEnums++
			f.Name = name
		}
		f.Score = clamp(f.Score, r)
		f.EvidenceIDs = nonNil(f.EvidenceIDs)

		related := make([]string, 0, len(f.RelatedSentenceIDs))
		for _, id := range f.RelatedSentenceIDs {
			if _, ok := ids[id]; !ok {
				r.DroppedReferences++
				continue
			}
			related = append(related, id)
		}
		f.RelatedSentenceIDs = related
		filters = append(filters, f)
	}
	inf.Filters = filters

	if inf.SourcesCitedInArticle == nil {
		inf.SourcesCitedInArticle = []CitedSource{}
	}
	for i := range inf.SourcesCitedInArticle {
		c := &inf.SourcesCitedInArticle[i]
		ct := CitedSourceType(strings.ToUpper(strings.TrimSpace(string(c.Type))))
		switch ct {
		case CitedPerson, CitedInstitution, CitedMedium, CitedUnspecified:
		default:
			ct = CitedUnspecified
		}
		if ct != c.Type {
			r.CoercedEnums++
			c.Type = ct
		}
	}
}

func coerceFilter(raw string) (FilterName, bool) {
	name := FilterName(strings.ToUpper(strings.TrimSpace(raw)))
	switch name {
	case FilterOwnership, FilterAdvertising, FilterSourcing, FilterFlak, FilterIdeology:
		return name, true
	}
	if f, ok := filterSynonyms[string(name)]; ok {
		return f, true
	}
	return "", false
}

func normalizeEvidence(a *Artifact, r *Report) {
	if a.Evidence == nil {
		a.Evidence = []Evidence{}
	}
	for i := range a.Evidence {
		e := &a.Evidence[i]
		if strings.TrimSpace(e.ID) == "" {
			e.ID = fmt.Sprintf("ev%d", i)
		}
		et := EvidenceType(strings.ToUpper(strings.TrimSpace(string(e.Type))))
		switch et {
		case EvidenceOwnership, EvidenceSourcing, EvidenceContext, EvidenceOther:
		default:
			et = EvidenceOther
		}
		if et != e.Type {
			r.CoercedEnums++
			e.Type = et
		}
	}
}

func normalizeSeed(g *GraphSeed) {
	if g.Nodes == nil {
		g.Nodes = []SeedNode{}
	}
	if g.Edges == nil {
		g.Edges = []SeedEdge{}
	}
	for i := range g.Nodes {
		if g.Nodes[i].Properties == nil {
			g.Nodes[i].Properties = map[string]any{}
		}
	}
	for i := range g.Edges {
		if g.Edges[i].Properties == nil {
			g.Edges[i].Properties = map[string]any{}
		}
	}
}

func clamp(v float64, r *Report) float64 {
	switch {
	case math.IsNaN(v):
		r.ClampedScores++
		return 0
	case v < 0:
		r.ClampedScores++
		return 0
	case v > 1:
		r.ClampedScores++
		return 1
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
