package detect

import (
	"strings"
	"testing"
)

// TestMask tests single-value redaction
func TestMask(t *testing.T) {
	t.Run("PartialKeepsBoundedEnds", func(t *testing.T) {
		value := "sk-" + strings.Repeat("a", 40)
		masked := Mask(value, TypeAPIKeyOpenAI)
		if masked == value {
			t.Fatal("Value not masked")
		}
		if !strings.HasPrefix(masked, "sk-a") {
			t.Errorf("Prefix not preserved: %q", masked)
		}
		if !strings.Contains(masked, "********") {
			t.Errorf("Mask run missing: %q", masked)
		}
		if strings.Contains(masked, strings.Repeat("a", 10)) {
			t.Errorf("Too much of the original survives: %q", masked)
		}
	})

	t.Run("FixedRunHidesLength", func(t *testing.T) {
		a := Mask("sk-"+strings.Repeat("a", 40), TypeAPIKeyOpenAI)
		b := Mask("sk-"+strings.Repeat("b", 80), TypeAPIKeyOpenAI)
		if len(a) != len(b) {
			t.Errorf("Mask output leaks value length: %d vs %d", len(a), len(b))
		}
	})

	t.Run("ShortValueFullyMasked", func(t *testing.T) {
		masked := Mask("hunter2", TypePassword)
		if strings.Contains(masked, "h") || strings.Contains(masked, "2") {
			t.Errorf("Short value partially exposed: %q", masked)
		}
	})

	t.Run("LabeledStyle", func(t *testing.T) {
		masked := MaskStyled("4532015112830366", TypeCreditCard, RedactionLabeled)
		if masked != "[REDACTED_CREDIT_CARD]" {
			t.Errorf("Labeled mask = %q", masked)
		}
	})
}

// TestRedact tests whole-text span substitution
func TestRedact(t *testing.T) {
	t.Run("OriginalValueNeverSurvives", func(t *testing.T) {
		text := "key sk-proj-" + strings.Repeat("a", 49) + " and card 4532015112830366 end"
		result := Scan(text, nil)
		redacted := Redact(text, result.Findings)
		for _, f := range result.Findings {
			if strings.Contains(redacted, f.Value) {
				t.Errorf("Raw value of %s survives redaction", f.Type)
			}
		}
	})

	t.Run("TextOutsideSpansUnchanged", func(t *testing.T) {
		text := "before 4532015112830366 after"
		findings := Scan(text, nil).Findings
		redacted := Redact(text, findings)
		if !strings.HasPrefix(redacted, "before ") || !strings.HasSuffix(redacted, " after") {
			t.Errorf("Surrounding text altered: %q", redacted)
		}
	})

	t.Run("LabeledMarkers", func(t *testing.T) {
		text := "card 4532015112830366 here"
		findings := Scan(text, nil).Findings
		redacted := RedactStyled(text, findings, RedactionLabeled)
		if !strings.Contains(redacted, "[REDACTED_CREDIT_CARD]") {
			t.Errorf("Labeled marker missing: %q", redacted)
		}
	})

	t.Run("NoFindingsNoChange", func(t *testing.T) {
		text := "nothing sensitive here"
		if got := Redact(text, nil); got != text {
			t.Errorf("Text changed with no findings: %q", got)
		}
	})
}
