package detect

import "strings"

const (
	contextWindow    = 100
	boostPerKeyword  = 0.05
	reducePerKeyword = -0.15
)

// boostKeywords suggest the surrounding text is handling a real secret.
var boostKeywords = []string{
	"api_key", "api-key", "apikey", "secret", "token", "password",
	"credential", "bearer", "oauth", "jwt", "connection_string",
	"private", "auth",
}

// reduceKeywords suggest documentation or placeholder material.
var reduceKeywords = []string{
	"example", "sample", "test", "demo", "fake", "dummy", "placeholder",
	"documentation", "redacted", "mock", "lorem", "tutorial",
}

// adjustConfidence rescores every finding based on keywords within
// ±contextWindow characters of its span, clamping the result to [0,1].
// The adjustment applies to all findings regardless of detector origin.
func adjustConfidence(text string, findings []Finding) {
	for i := range findings {
		f := &findings[i]
		window := strings.ToLower(contextSnippet(text, f.Start, f.End, contextWindow))

		delta := 0.0
		for _, kw := range boostKeywords {
			if strings.Contains(window, kw) {
				delta += boostPerKeyword
			}
		}
		for _, kw := range reduceKeywords {
			if strings.Contains(window, kw) {
				delta += reducePerKeyword
			}
		}

		f.Confidence = clamp01(f.Confidence + delta)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
