package detect

import (
	"regexp"
	"strings"
)

// cardPattern matches 13-19 digit runs allowing single space or dash
// separators between digit groups.
var cardPattern = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)

const cardBaseConfidence = 0.95

// scanCreditCards extracts card-shaped digit runs, strips separators and
// keeps only Luhn-valid sequences. The issuer, when inferable from the
// prefix, is attached as metadata.
func scanCreditCards(text string, cfg scanConfig) []Finding {
	var findings []Finding

	for _, loc := range cardPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)

		if len(digits) < 13 || len(digits) > 19 {
			continue
		}
		if allSameByte(digits) {
			continue
		}
		if !luhnValid(digits) {
			continue
		}

		finding := Finding{
			Type:       TypeCreditCard,
			Value:      raw,
			Start:      loc[0],
			End:        loc[1],
			Confidence: cardBaseConfidence,
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
		}
		if issuer := cardIssuer(digits); issuer != "" {
			finding.Metadata = map[string]string{"issuer": issuer}
		}
		findings = append(findings, finding)
	}

	return findings
}

// allSameByte reports whether every byte of s is identical. Runs of a
// single repeated digit pass Luhn but are never real card numbers.
func allSameByte(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
