package detect

import (
	"regexp"
	"strings"
)

// PatternDefinition describes one provider-specific credential signature.
// The registry is static data interpreted by a single scanner loop; no
// per-pattern dispatch is needed.
type PatternDefinition struct {
	Type            DetectorType
	Pattern         *regexp.Regexp
	BaseConfidence  float64
	Validate        func(match string) bool
	ContextKeywords []string
}

// patternRegistry is the immutable, ordered credential pattern table.
// Entries are ordered most-specific-first so the more specific signature is
// available to win ties before overlap deduplication. Anthropic precedes
// OpenAI because sk-ant- is a strict refinement of the sk- prefix.
var patternRegistry = []PatternDefinition{
	{
		Type:            TypeAPIKeyAnthropic,
		Pattern:         regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_-]{24,}`),
		BaseConfidence:  0.92,
		ContextKeywords: []string{"anthropic", "claude"},
	},
	{
		Type:            TypeAPIKeyOpenAI,
		Pattern:         regexp.MustCompile(`\bsk-(?:proj-|svcacct-)?[A-Za-z0-9_-]{32,}`),
		BaseConfidence:  0.92,
		ContextKeywords: []string{"openai", "gpt"},
	},
	{
		Type:            TypeAPIKeyGitHub,
		Pattern:         regexp.MustCompile(`\b(?:gh[pours]_[A-Za-z0-9]{36,255}|github_pat_[A-Za-z0-9_]{22,255})\b`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"github"},
	},
	{
		Type:            TypeAPIKeyStripe,
		Pattern:         regexp.MustCompile(`\b(?:sk|rk)_(?:live|test)_[A-Za-z0-9]{24,}\b`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"stripe"},
	},
	{
		Type:            TypeAPIKeySlack,
		Pattern:         regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,250}\b`),
		BaseConfidence:  0.9,
		ContextKeywords: []string{"slack"},
	},
	{
		Type:            TypeAPIKeyAWS,
		Pattern:         regexp.MustCompile(`\b(?:AKIA|ASIA|ABIA|ACCA)[A-Z0-9]{16}\b`),
		BaseConfidence:  0.9,
		ContextKeywords: []string{"aws", "amazon"},
	},
	{
		Type:            TypeAWSSecretKey,
		Pattern:         regexp.MustCompile(`(?i)aws[_-]?secret[_-]?(?:access[_-]?)?key["']?\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}\b`),
		BaseConfidence:  0.85,
		ContextKeywords: []string{"aws", "amazon"},
	},
	{
		Type:            TypeAPIKeyGoogle,
		Pattern:         regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`),
		BaseConfidence:  0.9,
		ContextKeywords: []string{"google", "gcp", "firebase"},
	},
	{
		Type:            TypeAPIKeySendGrid,
		Pattern:         regexp.MustCompile(`\bSG\.[A-Za-z0-9_-]{16,32}\.[A-Za-z0-9_-]{16,64}\b`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"sendgrid"},
	},
	{
		Type:            TypeAPIKeyTwilio,
		Pattern:         regexp.MustCompile(`\bSK[0-9a-fA-F]{32}\b`),
		BaseConfidence:  0.85,
		ContextKeywords: []string{"twilio"},
	},
	{
		Type:            TypeAPIKeyMailchimp,
		Pattern:         regexp.MustCompile(`\b[0-9a-f]{32}-us[0-9]{1,2}\b`),
		BaseConfidence:  0.9,
		ContextKeywords: []string{"mailchimp"},
	},
	{
		Type:            TypeAPIKeyHeroku,
		Pattern:         regexp.MustCompile(`(?i)heroku[a-z0-9_ "'=:.-]{0,30}\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`),
		BaseConfidence:  0.75,
		ContextKeywords: []string{"heroku"},
	},
	{
		Type:            TypeAPIKeyNPM,
		Pattern:         regexp.MustCompile(`\bnpm_[A-Za-z0-9]{36}\b`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"npm", "registry"},
	},
	{
		Type:            TypeAPIKeyPyPI,
		Pattern:         regexp.MustCompile(`\bpypi-AgEIcHlwaS5vcmc[A-Za-z0-9_-]{50,}`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"pypi", "twine"},
	},
	{
		Type:            TypeAPIKeyDocker,
		Pattern:         regexp.MustCompile(`\bdckr_pat_[A-Za-z0-9_-]{27}\b`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"docker"},
	},
	{
		Type:            TypeAPIKeySupabase,
		Pattern:         regexp.MustCompile(`\bsbp_[0-9a-f]{40}\b`),
		BaseConfidence:  0.95,
		ContextKeywords: []string{"supabase"},
	},
	{
		Type:            TypeAPIKeyFirebase,
		Pattern:         regexp.MustCompile(`\bAAAA[A-Za-z0-9_-]{7}:APA91b[A-Za-z0-9_-]{100,}`),
		BaseConfidence:  0.9,
		ContextKeywords: []string{"firebase", "fcm"},
	},
	{
		Type:            TypePrivateKey,
		Pattern:         regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?: BLOCK)?-----`),
		BaseConfidence:  0.98,
		ContextKeywords: []string{"ssh", "pem", "rsa"},
	},
	{
		Type:            TypePassword,
		Pattern:         regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret|api[_-]?key|auth[_-]?token|access[_-]?token)["']?\s*[:=]\s*["']?[^\s"',;]{8,64}`),
		BaseConfidence:  0.5,
		Validate:        validatePasswordAssignment,
		ContextKeywords: []string{"login", "credentials"},
	},
}

// placeholderValues are assignment right-hand sides that are clearly not
// real secrets and would otherwise dominate the password detector's output.
var placeholderValues = []string{
	"password", "changeme", "change_me", "your_password", "yourpassword",
	"example", "placeholder", "redacted", "xxxxxxxx", "********",
}

// validatePasswordAssignment rejects template placeholders and variable
// interpolations matched by the generic assignment pattern.
func validatePasswordAssignment(match string) bool {
	idx := strings.IndexAny(match, ":=")
	if idx < 0 || idx == len(match)-1 {
		return false
	}
	value := strings.Trim(strings.TrimSpace(match[idx+1:]), `"'`)
	if len(value) < 8 {
		return false
	}
	if strings.ContainsAny(value, "<>{}$%") {
		return false
	}
	lower := strings.ToLower(value)
	for _, p := range placeholderValues {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// scanPatterns runs every enabled registry pattern over the text and emits
// raw findings. Identical (type, position, value) matches are suppressed.
func scanPatterns(text string, cfg scanConfig) []Finding {
	var findings []Finding
	type seenKey struct {
		t     DetectorType
		start int
		value string
	}
	seen := make(map[seenKey]bool)

	for i := range patternRegistry {
		def := &patternRegistry[i]
		if !cfg.enabled[def.Type] {
			continue
		}

		for _, loc := range def.Pattern.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			if def.Validate != nil && !safeValidate(def.Validate, value) {
				continue
			}

			key := seenKey{def.Type, loc[0], value}
			if seen[key] {
				continue
			}
			seen[key] = true

			findings = append(findings, Finding{
				Type:       def.Type,
				Value:      value,
				Start:      loc[0],
				End:        loc[1],
				Confidence: def.BaseConfidence,
				Context:    contextSnippet(text, loc[0], loc[1], cfg.contextSize),
			})
		}
	}

	return findings
}

// safeValidate isolates a buggy validator from the rest of the scan: a
// panic counts as a failed validation for that one candidate.
func safeValidate(validate func(string) bool, value string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return validate(value)
}

// contextSnippet returns up to size characters either side of a span.
func contextSnippet(text string, start, end, size int) string {
	from := start - size
	if from < 0 {
		from = 0
	}
	to := end + size
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}
