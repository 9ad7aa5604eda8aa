// Package detect implements the sensitive-data detection engine: a pure,
// synchronous scan over user-authored text that reports credential and PII
// spans with confidence scores. All shared tables are immutable, so every
// exported function is safe for concurrent use without locking.
package detect

import (
	"sort"
	"strings"
	"time"
)

// Scan is the primary entry point. It runs every enabled detector over
// text, rescores each raw finding from its surrounding context, applies
// the sensitivity threshold, resolves overlapping spans in favor of the
// highest-confidence candidate, and returns the ranked finding list with
// summary statistics. A nil opts scans with defaults.
func Scan(text string, opts *ScanOptions) *DetectionResult {
	start := time.Now()
	cfg := opts.resolve()

	result := &DetectionResult{
		Findings:   []Finding{},
		Summary:    DetectionSummary{ByType: map[DetectorType]int{}},
		TextLength: len(text),
	}

	// Empty or whitespace-only input short-circuits before any detector.
	if strings.TrimSpace(text) == "" {
		result.ScanTime = float64(time.Since(start).Microseconds()) / 1000.0
		return result
	}

	// Detector execution order is part of the contract: earlier detectors
	// claim spans that the entropy analyzer must not re-report.
	raw := scanPatterns(text, cfg)
	if cfg.enabled[TypeEmail] {
		raw = append(raw, scanEmails(text, cfg)...)
	}
	if cfg.enabled[TypePhoneUK] {
		raw = append(raw, scanUKPhones(text, cfg)...)
	}
	if cfg.enabled[TypeUKNINumber] {
		raw = append(raw, scanUKNINumbers(text, cfg)...)
	}
	if cfg.enabled[TypeUSSSN] {
		raw = append(raw, scanUSSSNs(text, cfg)...)
	}
	if cfg.enabled[TypeIBAN] {
		raw = append(raw, scanIBANs(text, cfg)...)
	}
	if cfg.enabled[TypeCreditCard] {
		raw = append(raw, scanCreditCards(text, cfg)...)
	}
	if cfg.enabled[TypeHighEntropy] {
		raw = append(raw, scanEntropy(text, cfg, raw)...)
	}

	adjustConfidence(text, raw)

	kept := raw[:0]
	for _, f := range raw {
		if f.Confidence >= cfg.minConfidence {
			kept = append(kept, f)
		}
	}

	kept = dedupeOverlapping(kept)

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	if len(kept) > cfg.maxResults {
		kept = kept[:cfg.maxResults]
	}

	if !cfg.includeContext {
		for i := range kept {
			kept[i].Context = ""
		}
	}

	result.Findings = kept
	result.HasSensitiveData = len(kept) > 0
	result.Summary = Summarize(kept)
	result.ScanTime = float64(time.Since(start).Microseconds()) / 1000.0

	return result
}

// dedupeOverlapping sorts by start position then confidence descending and
// greedily keeps a finding only if it overlaps nothing already kept. The
// survivors are guaranteed non-overlapping, favoring the earliest,
// highest-confidence candidate at each position.
func dedupeOverlapping(findings []Finding) []Finding {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Start != findings[j].Start {
			return findings[i].Start < findings[j].Start
		}
		return findings[i].Confidence > findings[j].Confidence
	})

	kept := make([]Finding, 0, len(findings))
	for _, f := range findings {
		conflict := false
		for _, k := range kept {
			if overlaps(f, k) {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, f)
		}
	}

	return kept
}

// Summarize derives the aggregate view purely from a findings list.
func Summarize(findings []Finding) DetectionSummary {
	summary := DetectionSummary{
		Total:  len(findings),
		ByType: make(map[DetectorType]int),
	}
	for _, f := range findings {
		summary.ByType[f.Type]++
		if f.Confidence > summary.HighestConfidence {
			summary.HighestConfidence = f.Confidence
		}
	}
	return summary
}
