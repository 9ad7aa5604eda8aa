package detect

// DetectorType identifies the category a finding belongs to. The set is
// closed; adding a type requires a registry entry and a display label.
type DetectorType string

const (
	TypeAPIKeyOpenAI    DetectorType = "api_key_openai"
	TypeAPIKeyAnthropic DetectorType = "api_key_anthropic"
	TypeAPIKeyAWS       DetectorType = "api_key_aws"
	TypeAWSSecretKey    DetectorType = "aws_secret_key"
	TypeAPIKeyGitHub    DetectorType = "api_key_github"
	TypeAPIKeyStripe    DetectorType = "api_key_stripe"
	TypeAPIKeySlack     DetectorType = "api_key_slack"
	TypeAPIKeyGoogle    DetectorType = "api_key_google"
	TypeAPIKeySendGrid  DetectorType = "api_key_sendgrid"
	TypeAPIKeyTwilio    DetectorType = "api_key_twilio"
	TypeAPIKeyMailchimp DetectorType = "api_key_mailchimp"
	TypeAPIKeyHeroku    DetectorType = "api_key_heroku"
	TypeAPIKeyNPM       DetectorType = "api_key_npm"
	TypeAPIKeyPyPI      DetectorType = "api_key_pypi"
	TypeAPIKeyDocker    DetectorType = "api_key_docker"
	TypeAPIKeySupabase  DetectorType = "api_key_supabase"
	TypeAPIKeyFirebase  DetectorType = "api_key_firebase"
	TypePrivateKey      DetectorType = "private_key"
	TypePassword        DetectorType = "password"
	TypeCreditCard      DetectorType = "credit_card"
	TypeIBAN            DetectorType = "iban"
	TypeEmail           DetectorType = "email"
	TypePhoneUK         DetectorType = "phone_uk"
	TypeUKNINumber      DetectorType = "uk_ni_number"
	TypeUSSSN           DetectorType = "us_ssn"
	TypeHighEntropy     DetectorType = "high_entropy"
)

// typeLabels maps every detector type to its display name. A type missing
// from this table is a programming error, not a runtime condition.
var typeLabels = map[DetectorType]string{
	TypeAPIKeyOpenAI:    "OpenAI API key",
	TypeAPIKeyAnthropic: "Anthropic API key",
	TypeAPIKeyAWS:       "AWS access key ID",
	TypeAWSSecretKey:    "AWS secret access key",
	TypeAPIKeyGitHub:    "GitHub token",
	TypeAPIKeyStripe:    "Stripe API key",
	TypeAPIKeySlack:     "Slack token",
	TypeAPIKeyGoogle:    "Google API key",
	TypeAPIKeySendGrid:  "SendGrid API key",
	TypeAPIKeyTwilio:    "Twilio API key",
	TypeAPIKeyMailchimp: "Mailchimp API key",
	TypeAPIKeyHeroku:    "Heroku API key",
	TypeAPIKeyNPM:       "npm access token",
	TypeAPIKeyPyPI:      "PyPI API token",
	TypeAPIKeyDocker:    "Docker personal access token",
	TypeAPIKeySupabase:  "Supabase access token",
	TypeAPIKeyFirebase:  "Firebase cloud messaging key",
	TypePrivateKey:      "Private key block",
	TypePassword:        "Password or secret assignment",
	TypeCreditCard:      "Payment card number",
	TypeIBAN:            "International bank account number",
	TypeEmail:           "Email address",
	TypePhoneUK:         "UK phone number",
	TypeUKNINumber:      "UK National Insurance number",
	TypeUSSSN:           "US Social Security number",
	TypeHighEntropy:     "High-entropy string",
}

// Label returns the human-readable name for a detector type.
func (t DetectorType) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// AllDetectorTypes returns every known detector type in a stable order.
func AllDetectorTypes() []DetectorType {
	return []DetectorType{
		TypeAPIKeyOpenAI, TypeAPIKeyAnthropic, TypeAPIKeyAWS, TypeAWSSecretKey,
		TypeAPIKeyGitHub, TypeAPIKeyStripe, TypeAPIKeySlack, TypeAPIKeyGoogle,
		TypeAPIKeySendGrid, TypeAPIKeyTwilio, TypeAPIKeyMailchimp, TypeAPIKeyHeroku,
		TypeAPIKeyNPM, TypeAPIKeyPyPI, TypeAPIKeyDocker, TypeAPIKeySupabase,
		TypeAPIKeyFirebase, TypePrivateKey, TypePassword, TypeCreditCard,
		TypeIBAN, TypeEmail, TypePhoneUK, TypeUKNINumber, TypeUSSSN,
		TypeHighEntropy,
	}
}

// Sensitivity controls the minimum confidence required to report a finding.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Finding represents one detected span of sensitive text.
type Finding struct {
	Type       DetectorType      `json:"type"`
	Value      string            `json:"-"` // Never serialize the raw value
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Confidence float64           `json:"confidence"`
	Context    string            `json:"context,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// DetectionSummary aggregates a final findings list.
type DetectionSummary struct {
	Total             int                  `json:"total"`
	ByType            map[DetectorType]int `json:"byType"`
	HighestConfidence float64              `json:"highestConfidence"`
}

// DetectionResult is the output of a full scan. Findings are sorted by
// start position and guaranteed non-overlapping.
type DetectionResult struct {
	HasSensitiveData bool             `json:"hasSensitiveData"`
	Findings         []Finding        `json:"findings"`
	Summary          DetectionSummary `json:"summary"`
	ScanTime         float64          `json:"scanTime"` // milliseconds
	TextLength       int              `json:"textLength"`
}

// ScanOptions configures a single scan invocation.
type ScanOptions struct {
	// EnabledDetectors restricts the scan to the given types. Empty means all.
	EnabledDetectors []DetectorType `json:"enabledDetectors,omitempty"`
	// SensitivityLevel selects the confidence and entropy thresholds.
	// Unrecognized values fall back to medium.
	SensitivityLevel Sensitivity `json:"sensitivityLevel,omitempty"`
	// MaxResults caps the findings list. Zero or negative uses the default.
	MaxResults int `json:"maxResults,omitempty"`
	// IncludeContext attaches a snippet around each finding.
	IncludeContext *bool `json:"includeContext,omitempty"`
	// ContextSize is the number of characters captured on each side.
	ContextSize int `json:"contextSize,omitempty"`
	// FilterDomains excludes email findings on the listed domains.
	FilterDomains []string `json:"filterDomains,omitempty"`
	// MinConfidence, when positive, overrides the sensitivity threshold.
	MinConfidence float64 `json:"minConfidence,omitempty"`
	// Allowlist holds exact strings callers want ignored. The engine carries
	// it for hosts; enforcement happens at the service boundary.
	Allowlist []string `json:"allowlist,omitempty"`
}

const (
	defaultMaxResults  = 50
	defaultContextSize = 50
)

// minConfidenceFor maps a sensitivity level to the reporting threshold.
func minConfidenceFor(level Sensitivity) float64 {
	switch level {
	case SensitivityLow:
		return 0.8
	case SensitivityHigh:
		return 0.4
	default:
		return 0.6
	}
}

// entropyThresholdFor maps a sensitivity level to the minimum Shannon
// entropy required before a token is reported as high_entropy.
func entropyThresholdFor(level Sensitivity) float64 {
	switch level {
	case SensitivityLow:
		return 4.5
	case SensitivityHigh:
		return 3.5
	default:
		return 4.0
	}
}

// scanConfig is the canonical internal form of ScanOptions: every field
// resolved, the detector selection collapsed to a set.
type scanConfig struct {
	enabled        map[DetectorType]bool
	sensitivity    Sensitivity
	maxResults     int
	includeContext bool
	contextSize    int
	filterDomains  map[string]bool
	minConfidence  float64
}

// resolve normalizes caller options at the API boundary. A nil receiver
// yields the defaults.
func (o *ScanOptions) resolve() scanConfig {
	cfg := scanConfig{
		enabled:        make(map[DetectorType]bool),
		sensitivity:    SensitivityMedium,
		maxResults:     defaultMaxResults,
		includeContext: true,
		contextSize:    defaultContextSize,
		filterDomains:  make(map[string]bool),
	}

	if o == nil {
		for _, t := range AllDetectorTypes() {
			cfg.enabled[t] = true
		}
		cfg.minConfidence = minConfidenceFor(cfg.sensitivity)
		return cfg
	}

	switch o.SensitivityLevel {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		cfg.sensitivity = o.SensitivityLevel
	}

	if len(o.EnabledDetectors) == 0 {
		for _, t := range AllDetectorTypes() {
			cfg.enabled[t] = true
		}
	} else {
		for _, t := range o.EnabledDetectors {
			cfg.enabled[t] = true
		}
	}

	if o.MaxResults > 0 {
		cfg.maxResults = o.MaxResults
	}
	if o.IncludeContext != nil {
		cfg.includeContext = *o.IncludeContext
	}
	if o.ContextSize > 0 {
		cfg.contextSize = o.ContextSize
	}
	for _, d := range o.FilterDomains {
		cfg.filterDomains[normalizeDomain(d)] = true
	}

	cfg.minConfidence = minConfidenceFor(cfg.sensitivity)
	if o.MinConfidence > 0 {
		cfg.minConfidence = o.MinConfidence
	}

	return cfg
}

// overlaps reports whether two findings cover any shared character.
func overlaps(a, b Finding) bool {
	return a.Start < b.End && b.Start < a.End
}

// DescribeFinding maps a finding to its fixed human-readable label.
func DescribeFinding(f Finding) string {
	return f.Type.Label()
}
