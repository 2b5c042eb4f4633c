package translate

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	outputPolicyOnce sync.Once
	outputPolicy     *bluemonday.Policy
)

// cleanOutput strips markup a backend added to a plain-text translation.
// Output is returned unchanged when the source already contained '<', since
// the markup then belongs to the user's text.
func cleanOutput(source, translated string) string {
	if !strings.ContainsRune(translated, '<') || strings.ContainsRune(source, '<') {
		return translated
	}
	cleaned := outputSanitizer().Sanitize(translated)
	// The strict policy escapes text for HTML; field values are plain text.
	return html.UnescapeString(cleaned)
}

func outputSanitizer() *bluemonday.Policy {
	outputPolicyOnce.Do(func() {
		outputPolicy = bluemonday.StrictPolicy()
	})
	return outputPolicy
}
