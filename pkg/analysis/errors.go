package analysis

import (
	"errors"
	"fmt"
)

// Code classifies failures surfaced to the user.
type Code string

const (
	CodeURLMalformed     Code = "URL_MALFORMED"
	CodeFetchUnavailable Code = "FETCH_UNAVAILABLE"
	CodeExtractionEmpty  Code = "EXTRACTION_EMPTY"
	CodeLLMNoResponse    Code = "LLM_NO_RESPONSE"
	CodeLLMSchemaInvalid Code = "LLM_SCHEMA_INVALID"
	CodeLLMQuota         Code = "LLM_QUOTA"
	CodeUnexpected       Code = "UNEXPECTED"
)

var userMessages = map[Code]string{
	CodeURLMalformed:     "Die URL ist ungültig.",
	CodeFetchUnavailable: "Inhalt der Webseite konnte nicht geladen werden.",
	CodeExtractionEmpty:  "Inhalt konnte nicht extrahiert werden.",
	CodeLLMNoResponse:    "Keine Antwort von der KI erhalten.",
	CodeLLMSchemaInvalid: "Die KI-Antwort war ungültig. Bitte versuchen Sie es erneut.",
	CodeLLMQuota:         "Das Kontingent der KI ist erschöpft. Bitte später erneut versuchen.",
	CodeUnexpected:       "Ein unerwarteter Fehler ist aufgetreten.",
}

// Error is a classified failure of the extraction or analysis pipeline.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// NewError creates a classified error. Message is for logs, the user
// facing text is derived from the code.
func NewError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or
// UNEXPECTED for anything unclassified.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnexpected
}

// UserMessage returns the German banner text for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return userMessages[CodeOf(err)]
}
