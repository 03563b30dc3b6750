package features

import (
	"regexp"
	"strings"
)

// Detected maps a feature label to the raw number found next to it, or "".
type Detected map[string]string

var whitespaceRun = regexp.MustCompile(`\s+`)

var labelPatterns = buildLabelPatterns()

func buildLabelPatterns() [Count]*regexp.Regexp {
	var patterns [Count]*regexp.Regexp
	for index, feature := range ordered {
		patterns[index] = regexp.MustCompile(regexp.QuoteMeta(feature.Label) + `\s*:*\s*([-+]?\d*\.\d+|\d+)`)
	}
	return patterns
}

// NormalizeText joins page text into one line with single spaces.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Scan finds, for every label, the first number that directly follows it in text.
// Labels without a match map to "". The result is a prefill, not a validated parse.
func Scan(text string) Detected {
	normalized := NormalizeText(text)
	detected := make(Detected, Count)
	for index, feature := range ordered {
		detected[feature.Label] = ""
		match := labelPatterns[index].FindStringSubmatch(normalized)
		if len(match) == 2 {
			detected[feature.Label] = match[1]
		}
	}
	return detected
}

// Prefill lists the detected values in classifier order for form rendering.
func (detected Detected) Prefill() []Prefilled {
	out := make([]Prefilled, 0, Count)
	for _, feature := range ordered {
		out = append(out, Prefilled{Label: feature.Label, Field: feature.Field, Value: detected[feature.Label]})
	}
	return out
}

type Prefilled struct {
	Label string
	Field string
	Value string
}
