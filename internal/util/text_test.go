package util

import (
	"reflect"
	"testing"
)

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "Die Zukunft unserer Kinder",
			want:  "Die Zukunft unserer Kinder",
		},
		{
			name:  "contains null byte",
			input: "Skan\x00dal",
			want:  "Skandal",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "Bürger", n: 3, want: "Bür"},
		{in: "Bürger", n: 6, want: "Bürger"},
		{in: "Bürger", n: 10, want: "Bürger"},
		{in: "Bürger", n: 0, want: ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.n); got != tt.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple",
			input: "Die Regierung handelt. Kritiker warnen! Wer zahlt?",
			want:  []string{"Die Regierung handelt.", "Kritiker warnen!", "Wer zahlt?"},
		},
		{
			name:  "date ordinal",
			input: "Am 3. Oktober wurde gefeiert. Danach nicht.",
			want:  []string{"Am 3. Oktober wurde gefeiert.", "Danach nicht."},
		},
		{
			name:  "quotes and repeated terminators",
			input: "Er rief „Skandal!“ Wirklich?! Ja.",
			want:  []string{"Er rief „Skandal!“", "Wirklich?!", "Ja."},
		},
		{
			name:  "paragraphs without terminator",
			input: "Überschrift ohne Punkt\n\nDer Text beginnt hier.",
			want:  []string{"Überschrift ohne Punkt", "Der Text beginnt hier."},
		},
		{
			name:  "empty",
			input: " \n\n ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SplitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}
