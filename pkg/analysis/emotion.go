package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// EmotionLabel is the closed set of dominant sentence emotions.
type EmotionLabel string

const (
	Angst    EmotionLabel = "ANGST"
	Wut      EmotionLabel = "WUT"
	Trauer   EmotionLabel = "TRAUER"
	Freude   EmotionLabel = "FREUDE"
	Ekel     EmotionLabel = "EKEL"
	Hoffnung EmotionLabel = "HOFFNUNG"
	Neutral  EmotionLabel = "NEUTRAL"
)

// WheelOrder is the canonical spoke order of an emotion wheel, starting
// at the top and going clockwise.
var WheelOrder = [7]EmotionLabel{Angst, Wut, Trauer, Freude, Ekel, Hoffnung, Neutral}

// WheelIndex returns the spoke index of e, or -1 for labels outside the set.
func WheelIndex(e EmotionLabel) int {
	for i, w := range WheelOrder {
		if w == e {
			return i
		}
	}
	return -1
}

// Valid reports whether e is one of the seven labels.
func (e EmotionLabel) Valid() bool {
	return WheelIndex(e) >= 0
}

var emotionSynonyms = map[string]EmotionLabel{
	"FURCHT":        Angst,
	"SORGE":         Angst,
	"BESORGNIS":     Angst,
	"PANIK":         Angst,
	"BEDROHUNG":     Angst,
	"UNSICHERHEIT":  Angst,
	"FEAR":          Angst,
	"ANXIETY":       Angst,
	"WORRY":         Angst,
	"ÄRGER":         Wut,
	"AERGER":        Wut,
	"ZORN":          Wut,
	"EMPÖRUNG":      Wut,
	"EMPOERUNG":     Wut,
	"ENTRÜSTUNG":    Wut,
	"FRUST":         Wut,
	"FRUSTRATION":   Wut,
	"ANGER":         Wut,
	"RAGE":          Wut,
	"OUTRAGE":       Wut,
	"TRAURIGKEIT":   Trauer,
	"KUMMER":        Trauer,
	"VERZWEIFLUNG":  Trauer,
	"MITLEID":       Trauer,
	"BEDAUERN":      Trauer,
	"SADNESS":       Trauer,
	"GRIEF":         Trauer,
	"GLÜCK":         Freude,
	"GLUECK":        Freude,
	"STOLZ":         Freude,
	"BEGEISTERUNG":  Freude,
	"JUBEL":         Freude,
	"ERLEICHTERUNG": Freude,
	"JOY":           Freude,
	"PRIDE":         Freude,
	"HAPPINESS":     Freude,
	"ABSCHEU":       Ekel,
	"WIDERWILLE":    Ekel,
	"VERACHTUNG":    Ekel,
	"ABNEIGUNG":     Ekel,
	"DISGUST":       Ekel,
	"CONTEMPT":      Ekel,
	"ZUVERSICHT":    Hoffnung,
	"OPTIMISMUS":    Hoffnung,
	"VERTRAUEN":     Hoffnung,
	"ERWARTUNG":     Hoffnung,
	"HOPE":          Hoffnung,
	"TRUST":         Hoffnung,
	"NEUTRALITÄT":   Neutral,
	"SACHLICH":      Neutral,
	"NONE":          Neutral,
}

// CoerceEmotion maps a free-form label from the model onto the closed set.
// Known synonyms are translated, everything else becomes NEUTRAL.
func CoerceEmotion(raw string) EmotionLabel {
	label := EmotionLabel(strings.ToUpper(strings.TrimSpace(raw)))
	if label.Valid() {
		return label
	}
	if e, ok := emotionSynonyms[string(label)]; ok {
		return e
	}
	return Neutral
}

// EmotionColor returns the presentation color of an emotion as a CSS rgba
// string with the given alpha.
func EmotionColor(e EmotionLabel, alpha float64) string {
	rgb, ok := emotionRGB[e]
	if !ok {
		rgb = emotionRGB[Neutral]
	}
	return "rgba(" + rgb + ", " + strconv.FormatFloat(alpha, 'f', -1, 64) + ")"
}

// EmotionHex returns the color of an emotion as a #rrggbb string, used by
// terminal renderers.
func EmotionHex(e EmotionLabel) string {
	if h, ok := emotionHex[e]; ok {
		return h
	}
	return emotionHex[Neutral]
}

var emotionRGB = map[EmotionLabel]string{
	Angst:    "76, 148, 246",
	Wut:      "195, 68, 61",
	Freude:   "255, 244, 79",
	Ekel:     "255, 159, 67",
	Trauer:   "34, 34, 34",
	Neutral:  "113, 113, 122",
	Hoffnung: "59, 211, 155",
}

var emotionHex = map[EmotionLabel]string{
	Angst:    "#4c94f6",
	Wut:      "#c3443d",
	Freude:   "#fff44f",
	Ekel:     "#ff9f43",
	Trauer:   "#222222",
	Neutral:  "#71717a",
	Hoffnung: "#3bd39b",
}

// DefaultTopic is the topic label used for sentences without topic_main.
const DefaultTopic = "Allgemein"

var slugReplacer = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a topic label into an identifier fragment: lowercase, runs of
// anything outside [a-z0-9] collapsed to "_", at most 30 characters.
func Slug(topic string) string {
	s := slugReplacer.ReplaceAllString(strings.ToLower(topic), "_")
	if len(s) > 30 {
		s = s[:30]
	}
	return s
}

// TopicLabel returns the topic of a sentence, falling back to DefaultTopic.
func TopicLabel(s Sentence) string {
	t := strings.TrimSpace(s.TopicMain)
	if t == "" {
		return DefaultTopic
	}
	return t
}
