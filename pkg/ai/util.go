package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// StripCodeFence removes a leading ```json (or bare ```) line and a
// trailing ``` from model output.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
		s = strings.TrimLeft(s, " \t\r\n")
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimRight(strings.TrimSuffix(s, "```"), " \t\r\n")
	}
	return s
}

// TrimToObject cuts s down to the span between its first '{' and its
// last '}'. Input without such a span is returned unchanged.
func TrimToObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// CleanJSON strips code fences and surrounding prose from a model answer.
// Top-level arrays are left intact.
func CleanJSON(s string) string {
	s = StripCodeFence(s)
	if strings.HasPrefix(s, "[") {
		return s
	}
	return TrimToObject(s)
}

// GenerateSchema creates a JSON Schema from the given Go type, inlining
// all definitions so providers can consume it directly.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// UnmarshalFlexible decodes model output into out. It tries, in order:
// plain JSON, a double-encoded JSON string, the answer with code fences
// and surrounding prose removed, and finally a jsonrepair pass. Failures
// wrap ErrInvalidJSON.
//
//	UnmarshalFlexible(`{"name": "test"}`, &result)
//	UnmarshalFlexible("```json\n{\"name\": \"test\"}\n```", &result)
//	UnmarshalFlexible(`Hier das Ergebnis: {name: "test"}`, &result)
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	cleaned := CleanJSON(input)
	if cleaned != input {
		if err := json.Unmarshal([]byte(cleaned), out); err == nil {
			return nil
		}
		input = cleaned
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("%w: repair failed: %v", ErrInvalidJSON, err)
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: unmarshal after repair: %v", ErrInvalidJSON, err)
	}
	return nil
}
