package detect

import (
	"reflect"
	"strings"
	"testing"
)

// TestScanOpenAIKey reproduces the canonical end-to-end case: a project
// key pasted after a short introduction.
func TestScanOpenAIKey(t *testing.T) {
	text := "My key is sk-proj-" + strings.Repeat("a", 49)
	result := Scan(text, nil)

	if !result.HasSensitiveData {
		t.Fatal("HasSensitiveData = false")
	}
	if len(result.Findings) != 1 {
		t.Fatalf("Expected exactly 1 finding, got %d: %+v", len(result.Findings), result.Findings)
	}
	f := result.Findings[0]
	if f.Type != TypeAPIKeyOpenAI {
		t.Errorf("Type = %s, want %s", f.Type, TypeAPIKeyOpenAI)
	}
	if f.Confidence < 0.9 {
		t.Errorf("Confidence = %f, want >= 0.9", f.Confidence)
	}
	if result.TextLength != len(text) {
		t.Errorf("TextLength = %d, want %d", result.TextLength, len(text))
	}
}

// TestScanRoleEmailIgnored: generic role-account addresses are not PII.
func TestScanRoleEmailIgnored(t *testing.T) {
	result := Scan("Contact us at support@somecorp.io", nil)
	if result.HasSensitiveData {
		t.Errorf("Role email reported: %+v", result.Findings)
	}
}

// TestScanHexColorIgnored: short hex runs are not secrets at any level.
func TestScanHexColorIgnored(t *testing.T) {
	for _, level := range []Sensitivity{SensitivityLow, SensitivityMedium, SensitivityHigh} {
		result := Scan("color: #fda4af", &ScanOptions{SensitivityLevel: level})
		if result.HasSensitiveData {
			t.Errorf("Hex color reported at %s sensitivity: %+v", level, result.Findings)
		}
	}
}

// TestScanCardWithUUID: the card is reported, the UUID is not.
func TestScanCardWithUUID(t *testing.T) {
	text := "charge 4532015112830366 ref f47ac10b-58cc-4372-a567-0e02b2c3d479 done"
	result := Scan(text, nil)

	if result.Summary.ByType[TypeCreditCard] != 1 {
		t.Errorf("Expected exactly one credit_card finding, got %d", result.Summary.ByType[TypeCreditCard])
	}
	if result.Summary.ByType[TypeHighEntropy] != 0 {
		t.Errorf("UUID reported as high_entropy")
	}
}

// TestScanEmptyInput: empty and whitespace-only input short-circuits.
func TestScanEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		result := Scan(text, nil)
		if result.HasSensitiveData || len(result.Findings) != 0 {
			t.Errorf("Scan(%q) reported findings", text)
		}
		if result.Summary.Total != 0 {
			t.Errorf("Scan(%q) summary total = %d", text, result.Summary.Total)
		}
	}
}

// TestScanInvariants checks the structural properties every result must
// hold: confidence range, span ordering, non-overlap.
func TestScanInvariants(t *testing.T) {
	text := "key sk-proj-" + strings.Repeat("a", 49) +
		" mail jane.doe81@gmail.com card 4532015112830366" +
		" iban GB82WEST12345698765432 token kJ8vQ2mXz5tR9wLc4nH7bG3fY6dP1sA0eU8oI5rT2yW9qE4xK7jM3vB6hN1gZ5uQ"
	result := Scan(text, &ScanOptions{SensitivityLevel: SensitivityHigh})

	if len(result.Findings) < 4 {
		t.Fatalf("Expected at least 4 findings, got %d", len(result.Findings))
	}

	for i, f := range result.Findings {
		if f.Confidence < 0 || f.Confidence > 1 {
			t.Errorf("Finding %d confidence out of range: %f", i, f.Confidence)
		}
		if f.Start >= f.End || f.End > len(text) {
			t.Errorf("Finding %d has invalid span [%d,%d)", i, f.Start, f.End)
		}
		if i > 0 && result.Findings[i-1].Start > f.Start {
			t.Errorf("Findings not sorted by start at index %d", i)
		}
	}

	for i := range result.Findings {
		for j := i + 1; j < len(result.Findings); j++ {
			if overlaps(result.Findings[i], result.Findings[j]) {
				t.Errorf("Findings %d and %d overlap", i, j)
			}
		}
	}

	if result.Summary.Total != len(result.Findings) {
		t.Errorf("Summary total = %d, want %d", result.Summary.Total, len(result.Findings))
	}
}

// TestScanIdempotent: identical input yields identical findings.
func TestScanIdempotent(t *testing.T) {
	text := "key sk-proj-" + strings.Repeat("a", 49) + " card 4532015112830366"
	a := Scan(text, nil)
	b := Scan(text, nil)
	if !reflect.DeepEqual(a.Findings, b.Findings) {
		t.Error("Repeated scans of identical input differ")
	}
}

// TestScanSensitivityThresholds: the sensitivity level gates low-confidence
// findings in and out.
func TestScanSensitivityThresholds(t *testing.T) {
	// SSN base confidence 0.75 sits between the low (0.8) and medium (0.6)
	// thresholds.
	text := "number 545-12-0089 on record"

	if result := Scan(text, &ScanOptions{SensitivityLevel: SensitivityLow}); result.HasSensitiveData {
		t.Errorf("SSN reported at low sensitivity: %+v", result.Findings)
	}
	if result := Scan(text, &ScanOptions{SensitivityLevel: SensitivityMedium}); !result.HasSensitiveData {
		t.Error("SSN not reported at medium sensitivity")
	}
}

// TestScanMinConfidenceOverride: an explicit threshold beats the table.
func TestScanMinConfidenceOverride(t *testing.T) {
	text := "number 545-12-0089 on record"
	result := Scan(text, &ScanOptions{MinConfidence: 0.9})
	if result.HasSensitiveData {
		t.Errorf("Finding below explicit threshold reported: %+v", result.Findings)
	}
}

// TestScanUnknownSensitivityFallsBack: malformed options degrade to
// medium defaults instead of failing.
func TestScanUnknownSensitivityFallsBack(t *testing.T) {
	text := "number 545-12-0089 on record"
	result := Scan(text, &ScanOptions{SensitivityLevel: Sensitivity("paranoid")})
	if !result.HasSensitiveData {
		t.Error("Unknown sensitivity should fall back to medium")
	}
}

// TestScanEnabledDetectors: excluded detectors never run.
func TestScanEnabledDetectors(t *testing.T) {
	text := "card 4532015112830366 mail jane.doe81@gmail.com"
	result := Scan(text, &ScanOptions{EnabledDetectors: []DetectorType{TypeEmail}})

	if result.Summary.ByType[TypeCreditCard] != 0 {
		t.Error("Disabled card detector produced findings")
	}
	if result.Summary.ByType[TypeEmail] != 1 {
		t.Errorf("Enabled email detector found %d, want 1", result.Summary.ByType[TypeEmail])
	}
}

// TestScanMaxResults: the findings list is truncated after sorting.
func TestScanMaxResults(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteString("card 4532015112830366 then ")
	}
	result := Scan(sb.String(), &ScanOptions{MaxResults: 2})
	if len(result.Findings) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(result.Findings))
	}
	if result.Findings[0].Start > result.Findings[1].Start {
		t.Error("Truncated findings are not the earliest")
	}
}

// TestScanIncludeContext: context snippets can be stripped.
func TestScanIncludeContext(t *testing.T) {
	off := false
	text := "card 4532015112830366 here"
	result := Scan(text, &ScanOptions{IncludeContext: &off})
	for _, f := range result.Findings {
		if f.Context != "" {
			t.Errorf("Context present with IncludeContext=false: %q", f.Context)
		}
	}
}

// TestScanReduceKeywordsSuppress: documentation context drops findings
// below the default threshold.
func TestScanReduceKeywordsSuppress(t *testing.T) {
	text := "example sample dummy card 4532015112830366 placeholder"
	result := Scan(text, nil)
	if result.Summary.ByType[TypeCreditCard] != 0 {
		t.Errorf("Documentation card still reported: %+v", result.Findings)
	}
}

// TestDescribeFinding: every known type has a display label.
func TestDescribeFinding(t *testing.T) {
	for _, dt := range AllDetectorTypes() {
		label := DescribeFinding(Finding{Type: dt})
		if label == "" || label == string(dt) {
			t.Errorf("Missing display label for %s", dt)
		}
	}
}
