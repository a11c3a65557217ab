// Package tag canonicalizes player and clan tags. A canonical tag is
// upper-case alphanumeric with no leading '#'; the marker is purely a
// display convention.
package tag

import (
	"strings"

	"clash-hub/internal/constants"
)

type Reason string

const (
	ReasonTooShort     Reason = "too_short"
	ReasonTooLong      Reason = "too_long"
	ReasonInvalidChars Reason = "invalid_characters"
)

type ValidationError struct {
	Reason Reason
	Tag    string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonTooShort:
		return "tag too short - need at least 3 characters"
	case ReasonTooLong:
		return "tag too long - most tags are 8-10 characters"
	default:
		return "invalid tag format - use only letters and numbers (e.g. #9Q2YJ0U)"
	}
}

// Normalize trims the input, strips one leading '#' and upper-cases the
// rest. Normalizing an already canonical tag returns it unchanged.
func Normalize(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "#")
	t = strings.ToUpper(t)

	for _, r := range t {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", &ValidationError{Reason: ReasonInvalidChars, Tag: t}
		}
	}
	if len(t) < constants.TagMinLen {
		return "", &ValidationError{Reason: ReasonTooShort, Tag: t}
	}
	if len(t) > constants.TagMaxLen {
		return "", &ValidationError{Reason: ReasonTooLong, Tag: t}
	}
	return t, nil
}

// Display re-attaches the '#' marker for rendering.
func Display(canonical string) string {
	return "#" + canonical
}

// IsTagLike reports whether a search query should be treated as a tag
// lookup rather than a name search: it starts with '#' or is a plain
// alphanumeric run of at least three characters.
func IsTagLike(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	if strings.HasPrefix(q, "#") {
		return true
	}
	if len(q) < constants.TagMinLen {
		return false
	}
	for _, r := range q {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
