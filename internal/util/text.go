package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizePostgresText drops invalid UTF-8 and NUL bytes, which text
// columns reject.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// TruncateRunes cuts s to at most n characters without splitting a rune.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// CollapseWhitespace replaces every run of whitespace with one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitSentences splits running text into sentences at '.', '!' and '?'.
// Runs of terminators and trailing quotes or brackets stay with their
// sentence; a period after a digit followed by a space ("3. Oktober") does
// not end a sentence. Blank lines always end a sentence.
func SplitSentences(text string) []string {
	var sentences []string
	for _, para := range strings.Split(text, "\n\n") {
		para = CollapseWhitespace(para)
		if para == "" {
			continue
		}
		sentences = append(sentences, splitLine(para)...)
	}
	return sentences
}

func splitLine(line string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if r == '.' && i > 0 && unicode.IsDigit(runes[i-1]) && i+1 < len(runes) && runes[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
			current.WriteRune(runes[j])
			j++
		}
		for j < len(runes) && strings.ContainsRune("\"'“”„«»)]}", runes[j]) {
			current.WriteRune(runes[j])
			j++
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
		i = j - 1
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
