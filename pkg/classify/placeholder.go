package classify

import (
	"regexp"
	"strings"
)

// placeholderMarkers trigger the downgrade heuristic when they appear in
// the matched text or its surrounding line.
var placeholderMarkers = []string{
	"your-", "your_", "example", "changeme", "todo", "xxx", "replace",
}

// placeholderValues are well-known non-secret values seen verbatim in
// sample configs.
var placeholderValues = map[string]bool{
	"password":     true,
	"changeme":     true,
	"changeit":     true,
	"placeholder":  true,
	"dummy":        true,
	"sample":       true,
	"fake":         true,
	"replace_me":   true,
	"not-a-secret": true,
}

// placeholderPatterns match templated or obviously fabricated values.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(your|my|sample|dummy|fake|example)[-_]`),
	regexp.MustCompile(`^<[^>]+>$`),
	regexp.MustCompile(`^\$\{[^}]+\}$`),
	regexp.MustCompile(`(?i)^(todo|fixme|changeme|replace)`),
	regexp.MustCompile(`\.{3,}`),
	regexp.MustCompile(`^[*]{3,}$`),
}

// isPlaceholder applies the placeholder heuristic to a matched value and
// the line it was found on.
func isPlaceholder(matchedText, lineText string) bool {
	lowerValue := strings.ToLower(strings.TrimSpace(matchedText))
	lowerLine := strings.ToLower(lineText)

	if placeholderValues[lowerValue] {
		return true
	}
	for _, m := range placeholderMarkers {
		if strings.Contains(lowerValue, m) || strings.Contains(lowerLine, m) {
			return true
		}
	}
	for _, p := range placeholderPatterns {
		if p.MatchString(matchedText) {
			return true
		}
	}
	return false
}
