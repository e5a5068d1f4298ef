package secrets

import (
	"regexp"
	"strings"

	"github.com/bashbros/bashbros/internal/model"
)

// Finding is one credential located by ScanText.
type Finding struct {
	Pattern  string         `json:"pattern"`
	Line     int            `json:"line"`
	Severity model.Severity `json:"severity"`
	Redacted string         `json:"redacted"`
}

// ScanResult is the outcome of a text scan.
type ScanResult struct {
	Clean    bool      `json:"clean"`
	Findings []Finding `json:"findings"`
}

// credPattern is one known credential format.
type credPattern struct {
	name     string
	re       *regexp.Regexp
	severity model.Severity
}

var credPatterns = []credPattern{
	{"AWS Access Key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), model.SeverityCritical},
	{"AWS Secret Key", regexp.MustCompile(`(?i)aws_secret_access_key\s*[=:]\s*[A-Za-z0-9/+=]{40}`), model.SeverityCritical},
	{"GitHub Token", regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`), model.SeverityCritical},
	{"GitHub Fine-Grained Token", regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}\b`), model.SeverityCritical},
	{"Slack Token", regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`), model.SeverityHigh},
	{"Stripe Key", regexp.MustCompile(`\b(sk|rk)_(live|test)_[A-Za-z0-9]{20,}\b`), model.SeverityCritical},
	{"OpenAI Key", regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}\b`), model.SeverityHigh},
	{"Private Key", regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |DSA |PGP )?PRIVATE KEY-----`), model.SeverityCritical},
	{"JWT", regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\b`), model.SeverityHigh},
	{"Generic API Key", regexp.MustCompile(`(?i)\b(api_key|apikey|api_token)\s*[=:]\s*['"]?[A-Za-z0-9_-]{16,}`), model.SeverityHigh},
	{"Generic Password", regexp.MustCompile(`(?i)\bpassword\s*[=:]\s*['"]?\S{8,}`), model.SeverityHigh},
}

// Redact returns the preview form of a secret: first 4 characters, "***",
// last 2. Secrets shorter than 7 characters are fully masked.
func Redact(secret string) string {
	if len(secret) < 7 {
		return "***"
	}
	return secret[:4] + "***" + secret[len(secret)-2:]
}

// ScanText scans text for known credential formats. Matches are reported
// with a redacted preview; the input is never modified.
func ScanText(text string) ScanResult {
	result := ScanResult{Clean: true}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, cp := range credPatterns {
			for _, m := range cp.re.FindAllString(line, -1) {
				result.Clean = false
				result.Findings = append(result.Findings, Finding{
					Pattern:  cp.name,
					Line:     i + 1,
					Severity: cp.severity,
					Redacted: Redact(m),
				})
			}
		}
	}

	return result
}
