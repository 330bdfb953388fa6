package nlu

import (
	"regexp"
	"strings"
)

// namePatterns are evaluated in order; the first match wins and its capture
// group becomes the detected name. The last two are the Tanglish
// equivalents of "I am X" and "my name is X".
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is (\w+)`),
	regexp.MustCompile(`(?i)i am (\w+)`),
	regexp.MustCompile(`(?i)i'm (\w+)`),
	regexp.MustCompile(`(?i)call me (\w+)`),
	regexp.MustCompile(`(?i)naan (\w+)`),
	regexp.MustCompile(`(?i)en peru (\w+)`),
}

var bareNamePattern = regexp.MustCompile(`^[a-zA-Z]+$`)

// CaptureName matches the message against the naming patterns and returns
// the captured name, or "" and false when no pattern matches.
func CaptureName(message string) (string, bool) {
	for _, pattern := range namePatterns {
		if m := pattern.FindStringSubmatch(message); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// FallbackName accepts a bare one-word reply as a name when the preceding
// assistant message asked for one. It applies only when no name is known
// yet: the assistant message must contain a name cue ("name" or "peru") and
// the current message must be exactly one alphabetic token.
func FallbackName(message, prevAssistant string) (string, bool) {
	if prevAssistant == "" {
		return "", false
	}
	if !strings.Contains(prevAssistant, "name") && !strings.Contains(prevAssistant, "peru") {
		return "", false
	}

	trimmed := strings.TrimSpace(message)
	if len(strings.Fields(trimmed)) != 1 || !bareNamePattern.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

// DetectName runs both capture paths for one turn. knownName is the name
// already stored for the session ("" if none); prevAssistant is the
// assistant message immediately preceding this one ("" if none). It returns
// the name in effect after this turn and whether it was shared just now.
func DetectName(message, prevAssistant, knownName string) (name string, justShared bool) {
	if captured, ok := CaptureName(message); ok {
		return captured, true
	}
	if knownName == "" {
		if fallback, ok := FallbackName(message, prevAssistant); ok {
			return fallback, true
		}
	}
	return knownName, false
}
