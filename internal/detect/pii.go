package detect

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9](?:[A-Za-z0-9.-]*[A-Za-z0-9])?\.[A-Za-z]{2,}\b`)

	// Three shapes: international +44, mobile 07…, geographic 01/02…
	ukPhonePattern = regexp.MustCompile(`(?:\+44[ -]?\d{2,4}[ -]?\d{3,4}[ -]?\d{3,4})|(?:\b07\d{3}[ -]?\d{6}\b)|(?:\b0[12]\d{1,3}[ -]?\d{3,4}[ -]?\d{3,4}\b)`)

	// First letter excludes D, F, I, Q, U, V; second additionally excludes O.
	ukNIPattern = regexp.MustCompile(`\b[A-CEGHJ-PR-TW-Z][A-CEGHJ-NPR-TW-Z] ?\d{2} ?\d{2} ?\d{2} ?[A-D]\b`)

	usSSNPattern = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	ibanPattern = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)
)

// Webmail providers score highest: an address there is almost always a
// person, not an organization.
var webmailDomains = map[string]bool{
	"gmail.com": true, "googlemail.com": true, "yahoo.com": true,
	"yahoo.co.uk": true, "hotmail.com": true, "hotmail.co.uk": true,
	"outlook.com": true, "live.com": true, "icloud.com": true,
	"me.com": true, "protonmail.com": true, "proton.me": true,
	"aol.com": true,
}

// Role accounts are organizational mailboxes, not personal data.
var roleLocalParts = map[string]bool{
	"info": true, "admin": true, "administrator": true, "contact": true,
	"support": true, "help": true, "sales": true, "hello": true,
	"noreply": true, "no-reply": true, "donotreply": true,
	"webmaster": true, "postmaster": true, "abuse": true, "security": true,
	"team": true, "office": true, "mail": true, "enquiries": true,
}

// scanEmails emits email findings with domain-class tiered confidence.
// Role-account local parts and caller-filtered domains are skipped.
func scanEmails(text string, cfg scanConfig) []Finding {
	var findings []Finding

	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		at := strings.LastIndexByte(value, '@')
		local := strings.ToLower(value[:at])
		domain := normalizeDomain(value[at+1:])

		if roleLocalParts[local] {
			continue
		}
		if cfg.filterDomains[domain] {
			continue
		}

		confidence := 0.7
		switch {
		case webmailDomains[domain]:
			confidence = 0.9
		case strings.HasSuffix(domain, ".co.uk"):
			confidence = 0.8
		}

		findings = append(findings, Finding{
			Type:       TypeEmail,
			Value:      value,
			Start:      loc[0],
			End:        loc[1],
			Confidence: confidence,
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
			Metadata:   map[string]string{"domain": domain},
		})
	}

	return findings
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

const ukPhoneConfidence = 0.8

// scanUKPhones emits UK phone findings. The regex is lenient on grouping;
// the digit-count and prefix checks reject malformed candidates.
func scanUKPhones(text string, cfg scanConfig) []Finding {
	var findings []Finding

	for _, loc := range ukPhonePattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		if !validUKPhone(value) {
			continue
		}
		findings = append(findings, Finding{
			Type:       TypePhoneUK,
			Value:      value,
			Start:      loc[0],
			End:        loc[1],
			Confidence: ukPhoneConfidence,
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
		})
	}

	return findings
}

// validUKPhone normalizes to the national 0-prefixed form and checks the
// digit count (10-13) and the leading area-code family.
func validUKPhone(raw string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if len(digits) < 10 || len(digits) > 13 {
		return false
	}

	national := digits
	if strings.HasPrefix(digits, "44") {
		national = "0" + digits[2:]
	}
	if len(national) < 10 || len(national) > 11 {
		return false
	}

	switch {
	case strings.HasPrefix(national, "07"):
		return len(national) == 11
	case strings.HasPrefix(national, "01"), strings.HasPrefix(national, "02"):
		return true
	}
	return false
}

const ukNIConfidence = 0.85

// Administrative prefixes never issued as real NI numbers.
var ukNIInvalidPrefixes = map[string]bool{
	"BG": true, "GB": true, "NK": true, "KN": true,
	"TN": true, "NT": true, "ZZ": true,
}

// Placeholder numbers that appear throughout HMRC documentation.
var ukNIPlaceholders = map[string]bool{
	"AB123456C": true, "AA123456A": true, "AA111111A": true,
}

func scanUKNINumbers(text string, cfg scanConfig) []Finding {
	var findings []Finding

	for _, loc := range ukNIPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		compact := strings.ReplaceAll(value, " ", "")
		if ukNIInvalidPrefixes[compact[:2]] {
			continue
		}
		if ukNIPlaceholders[compact] {
			continue
		}
		findings = append(findings, Finding{
			Type:       TypeUKNINumber,
			Value:      value,
			Start:      loc[0],
			End:        loc[1],
			Confidence: ukNIConfidence,
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
		})
	}

	return findings
}

// Lower than every other PII detector: the ddd-dd-dddd shape has the
// largest false-positive surface of anything the engine reports.
const usSSNConfidence = 0.75

// Numbers burned by advertising or published in test documentation.
var usSSNKnownFakes = map[string]bool{
	"078-05-1120": true, "219-09-9999": true, "457-55-5462": true,
	"123-45-6789": true, "987-65-4321": true,
}

func scanUSSSNs(text string, cfg scanConfig) []Finding {
	var findings []Finding

	for _, loc := range usSSNPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		if !validUSSSN(value) {
			continue
		}
		findings = append(findings, Finding{
			Type:       TypeUSSSN,
			Value:      value,
			Start:      loc[0],
			End:        loc[1],
			Confidence: usSSNConfidence,
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
		})
	}

	return findings
}

// validUSSSN applies the SSA reserved-range rules and suppresses known
// fakes and repeated-digit sequences.
func validUSSSN(value string) bool {
	area, group, serial := value[:3], value[4:6], value[7:]

	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	if group == "00" || serial == "0000" {
		return false
	}
	if usSSNKnownFakes[value] {
		return false
	}
	if allSameByte(area + group + serial) {
		return false
	}
	return true
}

const ibanConfidence = 0.9

// scanIBANs emits IBAN findings for candidates passing the mod-97 check.
func scanIBANs(text string, cfg scanConfig) []Finding {
	var findings []Finding

	for _, loc := range ibanPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		if !ibanValid(value) {
			continue
		}
		findings = append(findings, Finding{
			Type:       TypeIBAN,
			Value:      value,
			Start:      loc[0],
			End:        loc[1],
			Confidence: ibanConfidence,
			Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
			Metadata:   map[string]string{"country": value[:2]},
		})
	}

	return findings
}
