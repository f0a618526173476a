package analysis

// Artifact is the root object produced by one analysis of an article.
// It is created by the analyzer from the language model response and is
// treated as read-only by everything downstream once Normalize has run.
//
// An artifact contains:
//   - ArticleMeta: where the text came from and which model analyzed it
//   - Summary: the article-level verdict on emotionalization
//   - Sentences: the ordered per-sentence classification
//   - Influence: outlet, ownership and filter context
//   - Evidence: sources backing the influence block
//   - Graph: the model's own node/edge draft (see GraphSeed)
type Artifact struct {
	ArticleMeta ArticleMeta `json:"article_meta"`
	Summary     Summary     `json:"summary"`
	Sentences   []Sentence  `json:"sentences" validate:"dive"`
	Influence   Influence   `json:"influence"`
	Evidence    []Evidence  `json:"evidence" validate:"dive"`
	Graph       GraphSeed   `json:"graph"`
}

// ArticleMeta describes the analyzed article and the analysis run.
type ArticleMeta struct {
	URL          string `json:"url"`
	Domain       string `json:"domain"`
	Title        string `json:"title"`
	Language     string `json:"language"`
	AnalyzedAt   string `json:"analyzed_at"`
	ModelVersion string `json:"model_version"`
}

// EmotionalizationLevel grades the article as a whole.
type EmotionalizationLevel string

const (
	LevelLow    EmotionalizationLevel = "gering"
	LevelMedium EmotionalizationLevel = "mittel"
	LevelHigh   EmotionalizationLevel = "hoch"
)

// Summary is the article-level digest of the sentence analysis.
// MainTopics is optional and purely informational.
type Summary struct {
	EmotionalizationLevel EmotionalizationLevel `json:"emotionalization_level" jsonschema:"enum=gering,enum=mittel,enum=hoch" validate:"oneof=gering mittel hoch"`
	MainEmotions          []string              `json:"main_emotions"`
	MainDevices           []string              `json:"main_devices"`
	MainFrames            []string              `json:"main_frames"`
	MainFallacies         []string              `json:"main_fallacies"`
	MainTopics            []string              `json:"main_topics,omitempty"`
	ShortNarrative        string                `json:"short_narrative"`
}

// Emotion is the single dominant emotion of a sentence.
type Emotion struct {
	Label     EmotionLabel `json:"label" jsonschema:"enum=ANGST,enum=WUT,enum=TRAUER,enum=EKEL,enum=FREUDE,enum=HOFFNUNG,enum=NEUTRAL" validate:"oneof=ANGST WUT TRAUER EKEL FREUDE HOFFNUNG NEUTRAL"`
	Intensity float64      `json:"intensity" validate:"gte=0,lte=1"`
}

// Device is a rhetorical device found in a sentence. Span quotes the
// part of the sentence carrying the device.
type Device struct {
	Name        string  `json:"name"`
	Span        string  `json:"span"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Finding is a fallacy or frame attached to a sentence.
type Finding struct {
	Name        string  `json:"name"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Group is an actor group named in a sentence together with the role
// the sentence assigns to it (e.g. "Bürger" as "Opfer").
type Group struct {
	Label string `json:"label"`
	Role  string `json:"role"`
}

// Sentence is one classified sentence of the article. IDs are unique
// within an artifact and Position is dense and zero-based after
// normalization.
type Sentence struct {
	ID          string    `json:"id" validate:"required"`
	Text        string    `json:"text"`
	Position    int       `json:"position" validate:"gte=0"`
	Emotion     Emotion   `json:"emotion"`
	PathosScore float64   `json:"pathos_score" validate:"gte=0,lte=1"`
	TopicMain   string    `json:"topic_main,omitempty"`
	Devices     []Device  `json:"devices" validate:"dive"`
	Fallacies   []Finding `json:"fallacies" validate:"dive"`
	Frames      []Finding `json:"frames" validate:"dive"`
	Groups      []Group   `json:"groups,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Outlet describes the publishing medium.
type Outlet struct {
	Name            string `json:"name"`
	Domain          string `json:"domain"`
	Country         string `json:"country"`
	OrientationHint string `json:"orientation_hint"`
	Notes           string `json:"notes"`
}

// EntityType classifies a link of the ownership chain.
type EntityType string

const (
	EntityOwner      EntityType = "OWNER"
	EntityHolding    EntityType = "HOLDING"
	EntityFoundation EntityType = "FOUNDATION"
	EntityOther      EntityType = "OTHER"
)

// OwnershipLink is one level of the outlet's ownership chain, level 0
// being the outlet's direct owner.
type OwnershipLink struct {
	Level       int        `json:"level" validate:"gte=0"`
	EntityName  string     `json:"entity_name"`
	EntityType  EntityType `json:"entity_type" jsonschema:"enum=OWNER,enum=HOLDING,enum=FOUNDATION,enum=OTHER" validate:"oneof=OWNER HOLDING FOUNDATION OTHER"`
	Role        string     `json:"role"`
	EvidenceIDs []string   `json:"evidence_ids"`
}

// FilterName is one of the five propaganda-model filters.
type FilterName string

const (
	FilterOwnership   FilterName = "EIGENTUM"
	FilterAdvertising FilterName = "WERBUNG"
	FilterSourcing    FilterName = "SOURCING"
	FilterFlak        FilterName = "FLAK"
	FilterIdeology    FilterName = "IDEOLOGIE"
)

// Filter scores how strongly one propaganda-model filter shapes the
// article and which sentences show it.
type Filter struct {
	Name               FilterName `json:"name" jsonschema:"enum=EIGENTUM,enum=WERBUNG,enum=SOURCING,enum=FLAK,enum=IDEOLOGIE" validate:"oneof=EIGENTUM WERBUNG SOURCING FLAK IDEOLOGIE"`
	Score              float64    `json:"score" validate:"gte=0,lte=1"`
	Summary            string     `json:"summary"`
	RelatedSentenceIDs []string   `json:"related_sentence_ids"`
	EvidenceIDs        []string   `json:"evidence_ids"`
}

// CitedSourceType classifies a source quoted inside the article.
type CitedSourceType string

const (
	CitedPerson      CitedSourceType = "PERSON"
	CitedInstitution CitedSourceType = "INSTITUTION"
	CitedMedium      CitedSourceType = "MEDIUM"
	CitedUnspecified CitedSourceType = "UNSPECIFIED"
)

// CitedSource is a source the article itself relies on.
type CitedSource struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Type        CitedSourceType `json:"type" jsonschema:"enum=PERSON,enum=INSTITUTION,enum=MEDIUM,enum=UNSPECIFIED" validate:"oneof=PERSON INSTITUTION MEDIUM UNSPECIFIED"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
}

// Influence bundles the outlet context of an article.
type Influence struct {
	Outlet                Outlet          `json:"outlet"`
	OwnershipChain        []OwnershipLink `json:"ownership_chain" validate:"dive"`
	Filters               []Filter        `json:"filters" validate:"dive"`
	SourcesCitedInArticle []CitedSource   `json:"sources_cited_in_article" validate:"dive"`
}

// EvidenceType classifies an evidence record.
type EvidenceType string

const (
	EvidenceOwnership EvidenceType = "OWNERSHIP"
	EvidenceSourcing  EvidenceType = "SOURCING"
	EvidenceContext   EvidenceType = "CONTEXT"
	EvidenceOther     EvidenceType = "OTHER"
)

// Evidence is an external source referenced by ownership links and filters.
type Evidence struct {
	ID        string       `json:"id" validate:"required"`
	Type      EvidenceType `json:"type" jsonschema:"enum=OWNERSHIP,enum=SOURCING,enum=CONTEXT,enum=OTHER" validate:"oneof=OWNERSHIP SOURCING CONTEXT OTHER"`
	URL       string       `json:"url"`
	Title     string       `json:"title"`
	Publisher string       `json:"publisher"`
	Snippet   string       `json:"snippet"`
}

// GraphSeed is the model's own graph draft. Only nodes that cannot be
// derived from the sentences (outlets, filters, groups, devices, ...)
// are used by the projector.
type GraphSeed struct {
	Nodes []SeedNode `json:"nodes"`
	Edges []SeedEdge `json:"edges"`
}

// SeedNode is a node of the model's graph draft.
type SeedNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// SeedEdge is an edge of the model's graph draft.
type SeedEdge struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}
