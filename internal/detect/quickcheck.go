package detect

import "regexp"

// quickCheckMinLength: anything shorter cannot hold a reportable secret.
const quickCheckMinLength = 10

// quickPatterns are deliberately lenient: QuickCheck trades precision for
// near-constant evaluation so callers can skip full scans on clean text.
var quickPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`),
	regexp.MustCompile(`\bAKIA[A-Z0-9]{4,}`),
	regexp.MustCompile(`\bgh[pours]_[A-Za-z0-9]{8,}`),
	regexp.MustCompile(`\bxox[baprs]-`),
	regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`),
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret|token|api[_-]?key|access[_-]?key)\b\s*[:=]\s*\S`),
}

// QuickCheck is a cheap boolean gate over text that might contain
// sensitive data. It reports no type or span; a true result only means a
// full Scan is worth running.
func QuickCheck(text string) bool {
	if len(text) < quickCheckMinLength {
		return false
	}
	for _, p := range quickPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
