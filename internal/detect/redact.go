package detect

import (
	"sort"
	"strings"
)

// RedactionStyle selects how masked values are rendered.
type RedactionStyle string

const (
	// RedactionPartial keeps a small fixed prefix and suffix of the value
	// and replaces the rest with a fixed-length mask run.
	RedactionPartial RedactionStyle = "partial"
	// RedactionLabeled replaces the whole value with a bracketed type marker.
	RedactionLabeled RedactionStyle = "labeled"
)

const (
	maskKeepPrefix = 4
	maskKeepSuffix = 2
	// The mask run length is fixed so output length never leaks the
	// original value length.
	maskRunLength = 8
)

// Mask renders a single raw value as a non-reversible display string.
// Values too short to safely expose any characters are fully masked.
func Mask(value string, t DetectorType) string {
	return MaskStyled(value, t, RedactionPartial)
}

// MaskStyled renders value using the given redaction style.
func MaskStyled(value string, t DetectorType, style RedactionStyle) string {
	if style == RedactionLabeled {
		return "[REDACTED_" + strings.ToUpper(string(t)) + "]"
	}

	run := strings.Repeat("*", maskRunLength)
	if len(value) < maskKeepPrefix+maskKeepSuffix+maskRunLength {
		return run
	}
	return value[:maskKeepPrefix] + run + value[len(value)-maskKeepSuffix:]
}

// Redact applies the masker to every finding's span within text and
// returns the sanitized copy. Text outside the given spans is unchanged.
// Spans are replaced back-to-front so earlier offsets stay valid.
func Redact(text string, findings []Finding) string {
	return RedactStyled(text, findings, RedactionPartial)
}

// RedactStyled is Redact with an explicit redaction style.
func RedactStyled(text string, findings []Finding, style RedactionStyle) string {
	ordered := make([]Finding, len(findings))
	copy(ordered, findings)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	out := text
	for _, f := range ordered {
		if f.Start < 0 || f.End > len(out) || f.Start >= f.End {
			continue
		}
		masked := MaskStyled(out[f.Start:f.End], f.Type, style)
		out = out[:f.Start] + masked + out[f.End:]
	}

	return out
}
