package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/model"
)

// boilerplatePatterns are removed from a reply in order, each applied once.
// They cover settlement labels the models like to echo ("已收"/"應收",
// received/receivable) and explanation or answer prefixes.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^已收\s*`),
	regexp.MustCompile(`(?m)^應收\s*`),
	regexp.MustCompile(`(?m)^說明：.*?\n`),
	regexp.MustCompile(`(?m)^解釋：.*?\n`),
	regexp.MustCompile(`(?m)^答案：\s*`),
	regexp.MustCompile(`(?m)\n已收$`),
	regexp.MustCompile(`(?m)\n應收$`),
	regexp.MustCompile(`(?mi)^received:?[ \t]*`),
	regexp.MustCompile(`(?mi)^receivable:?[ \t]*`),
	regexp.MustCompile(`(?mi)^explanation:.*?\n`),
	regexp.MustCompile(`(?mi)^answer:\s*`),
}

var errTrailingData = errors.New("unexpected data after top-level object")

// jsonSpan is greedy: first { through last }, across lines.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

// StripBoilerplate removes known label and commentary lines from a reply.
func StripBoilerplate(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for _, pattern := range boilerplatePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// ExtractJSON returns the span from the first { to the last } in text.
func ExtractJSON(text string) (string, bool) {
	match := jsonSpan.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimSpace(match), true
}

// Normalize converts a raw model reply into a parsed JSON object or a typed failure.
// Numbers are kept as json.Number so amounts survive without float rounding.
func Normalize(raw string) model.NormalizedOutput {
	fragment, ok := ExtractJSON(StripBoilerplate(raw))
	if !ok {
		return model.NormalizedOutput{Err: ErrNoJSON}
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(fragment)))
	decoder.UseNumber()

	var data map[string]any
	if err := decoder.Decode(&data); err != nil {
		return model.NormalizedOutput{
			Err:      &MalformedJSONError{Fragment: fragment, Err: err},
			Fragment: fragment,
		}
	}
	if rest := strings.TrimSpace(fragment[decoder.InputOffset():]); rest != "" {
		return model.NormalizedOutput{
			Err:      &MalformedJSONError{Fragment: fragment, Err: errTrailingData},
			Fragment: fragment,
		}
	}

	return model.NormalizedOutput{Data: data}
}
