package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-playground/validator"
)

// ErrInvalidArtifact is returned by Validate for any invariant violation.
var ErrInvalidArtifact = errors.New("invalid analysis artifact")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks a normalized artifact against the data model
// invariants. It does not repair anything; run Normalize first.
func Validate(a *Artifact) error {
	if a == nil {
		return fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if err := structValidator().Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	ids := make(map[string]struct{}, len(a.Sentences))
	for i, s := range a.Sentences {
		if s.Position != i {
			return fmt.Errorf("%w: sentence %q has position %d, want %d", ErrInvalidArtifact, s.ID, s.Position, i)
		}
		if _, dup := ids[s.ID]; dup {
			return fmt.Errorf("%w: duplicate sentence id %q", ErrInvalidArtifact, s.ID)
		}
		ids[s.ID] = struct{}{}
		if !s.Emotion.Label.Valid() {
			return fmt.Errorf("%w: sentence %q has emotion %q", ErrInvalidArtifact, s.ID, s.Emotion.Label)
		}
		for _, v := range []float64{s.Emotion.Intensity, s.PathosScore} {
			if !finite(v) {
				return fmt.Errorf("%w: sentence %q has a non-finite score", ErrInvalidArtifact, s.ID)
			}
		}
	}

	for _, f := range a.Influence.Filters {
		if !finite(f.Score) {
			return fmt.Errorf("%w: filter %s has a non-finite score", ErrInvalidArtifact, f.Name)
		}
		for _, id := range f.RelatedSentenceIDs {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("%w: filter %s references unknown sentence %q", ErrInvalidArtifact, f.Name, id)
			}
		}
	}

	return nil
}

// ErrMissingKey is returned by CheckRequiredKeys.
var ErrMissingKey = errors.New("required key missing")

var (
	requiredKeys         = []string{"article_meta", "summary", "sentences", "influence", "evidence", "graph"}
	requiredSentenceKeys = []string{"id", "text", "position", "emotion", "pathos_score", "devices", "fallacies", "frames"}
)

// CheckRequiredKeys checks a raw model answer for the top-level keys of
// an artifact and the keys every sentence must carry. The sentence list
// must be non-empty.
func CheckRequiredKeys(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if top == nil {
		return fmt.Errorf("%w: artifact is null", ErrMissingKey)
	}
	for _, k := range requiredKeys {
		if _, ok := top[k]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingKey, k)
		}
	}

	var sentences []map[string]json.RawMessage
	if err := json.Unmarshal(top["sentences"], &sentences); err != nil {
		return fmt.Errorf("%w: sentences: %v", ErrMissingKey, err)
	}
	if len(sentences) == 0 {
		return fmt.Errorf("%w: sentences is empty", ErrMissingKey)
	}
	for i, s := range sentences {
		if s == nil {
			return fmt.Errorf("%w: sentence %d is null", ErrMissingKey, i)
		}
		for _, k := range requiredSentenceKeys {
			if _, ok := s[k]; !ok {
				return fmt.Errorf("%w: sentence %d: %s", ErrMissingKey, i, k)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
