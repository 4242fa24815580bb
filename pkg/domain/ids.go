package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "scaffold/pkg/domain-errors"
)

// ParseUUID parses an identifier at a trust boundary. Empty, malformed and nil
// UUIDs are rejected with CodeInvalidInput; label names the field in messages.
func ParseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}

// ParseText validates a free-text value object: trimmed, non-empty and at
// most maxLen runes.
func ParseText(s, label string, maxLen int) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if !utf8.ValidString(v) {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" must be valid UTF-8")
	}
	if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	return v, nil
}
