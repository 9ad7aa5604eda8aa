package detect

import (
	"fmt"
	"math"
	"regexp"
)

const (
	entropyMinLength = 16
	entropyMaxLength = 128
)

// entropyTokenPattern bounds the candidate window: contiguous runs of
// token-ish characters between the minimum and maximum secret lengths.
var entropyTokenPattern = regexp.MustCompile(`[A-Za-z0-9+/=_-]{16,128}`)

// uuidPattern recognizes the canonical 8-4-4-4-12 form. UUIDs are random
// but they are identifiers, not secrets, and flood the entropy detector
// if not suppressed.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// shannonEntropy computes H = -Σ p(c)·log2(p(c)) over the byte frequency
// of s. A run of one repeated character scores exactly zero.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}

	n := float64(len(s))
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}

	return h
}

// entropyConfidence maps a measured entropy to the finding's confidence.
func entropyConfidence(h float64) float64 {
	switch {
	case h >= 4.5:
		return 0.9
	case h >= 4.0:
		return 0.75
	case h >= 3.5:
		return 0.6
	default:
		return 0.4
	}
}

// scanEntropy emits high_entropy findings for random-looking tokens not
// already claimed by an earlier detector. Claimed spans are skipped so
// the same secret is never reported twice as a named key and a generic
// high-entropy blob.
func scanEntropy(text string, cfg scanConfig, claimed []Finding) []Finding {
	threshold := entropyThresholdFor(cfg.sensitivity)
	var findings []Finding

	for _, loc := range entropyTokenPattern.FindAllStringIndex(text, -1) {
		candidate := Finding{Start: loc[0], End: loc[1]}
		if coveredByAny(candidate, claimed) {
			continue
		}

		value := text[loc[0]:loc[1]]
		if uuidPattern.MatchString(value) {
			continue
		}

		h := shannonEntropy(value)
		if h < threshold {
			continue
		}

		findings = append(findings, Finding{
			Type:       TypeHighEntropy,
			Value:      value,
			Start:      loc[0],
			End:        loc[1],
			Confidence: entropyConfidence(h),
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
			Metadata:   map[string]string{"entropy": fmt.Sprintf("%.2f", h)},
		})
	}

	return findings
}

// coveredByAny reports whether f overlaps any finding in claimed.
func coveredByAny(f Finding, claimed []Finding) bool {
	for _, c := range claimed {
		if overlaps(f, c) {
			return true
		}
	}
	return false
}
