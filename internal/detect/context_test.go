package detect

import "testing"

// TestAdjustConfidence tests keyword-based confidence perturbation
func TestAdjustConfidence(t *testing.T) {
	t.Run("BoostKeyword", func(t *testing.T) {
		text := "api_key value abcdefgh somewhere"
		findings := []Finding{{Start: 14, End: 22, Confidence: 0.5}}
		adjustConfidence(text, findings)
		if findings[0].Confidence != 0.55 {
			t.Errorf("Confidence = %f, want 0.55", findings[0].Confidence)
		}
	})

	t.Run("ReduceKeyword", func(t *testing.T) {
		text := "an example value abcdefgh somewhere"
		findings := []Finding{{Start: 17, End: 25, Confidence: 0.5}}
		adjustConfidence(text, findings)
		if findings[0].Confidence != 0.35 {
			t.Errorf("Confidence = %f, want 0.35", findings[0].Confidence)
		}
	})

	t.Run("ClampedAtZero", func(t *testing.T) {
		text := "example sample demo fake dummy value abcdefgh"
		findings := []Finding{{Start: 37, End: 45, Confidence: 0.2}}
		adjustConfidence(text, findings)
		if findings[0].Confidence != 0 {
			t.Errorf("Confidence = %f, want 0", findings[0].Confidence)
		}
	})

	t.Run("ClampedAtOne", func(t *testing.T) {
		text := "api_key secret token password value abcdefgh"
		findings := []Finding{{Start: 36, End: 44, Confidence: 0.95}}
		adjustConfidence(text, findings)
		if findings[0].Confidence != 1 {
			t.Errorf("Confidence = %f, want 1", findings[0].Confidence)
		}
	})

	t.Run("NeutralContextUnchanged", func(t *testing.T) {
		text := "the value abcdefgh sits here"
		findings := []Finding{{Start: 10, End: 18, Confidence: 0.5}}
		adjustConfidence(text, findings)
		if findings[0].Confidence != 0.5 {
			t.Errorf("Confidence = %f, want 0.5", findings[0].Confidence)
		}
	})
}
