// Package secrets detects credential-exfiltration intent in commands and
// scans arbitrary text for leaked credentials. Detection is regex-based and
// deliberately conservative: a finding never mutates input, callers decide
// whether to redact or deny.
package secrets

import (
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/pattern"
)

// exfilPattern is one curated credential-exfiltration signature.
type exfilPattern struct {
	name     string
	re       *regexp.Regexp
	severity model.Severity
}

// sensitiveExt matches the file extensions and names that direct readers,
// scripting opens, and obfuscated access all key on.
const sensitiveExt = `(\.env|\.pem|\.key|id_rsa|id_ed25519|id_ecdsa|credentials|secret|password|token)`

// exfilPatterns is the built-in exfiltration signature list. Order matters
// only for which name appears in the violation; any match is terminal.
var exfilPatterns = []exfilPattern{
	// Direct readers on sensitive files.
	{"direct file read", regexp.MustCompile(`(?i)\b(cat|head|tail|less|more|bat)\b[^|;&]*` + sensitiveExt), model.SeverityCritical},
	// Scripting-language opens on sensitive extensions.
	{"script file open", regexp.MustCompile(`(?i)\b(python3?|ruby|perl|node)\b.*\bopen\s*\(.*` + sensitiveExt), model.SeverityCritical},
	{"script read file", regexp.MustCompile(`(?i)\b(readFileSync|readFile|File\.read|IO\.read)\b.*` + sensitiveExt), model.SeverityCritical},
	// Environment dumping.
	{"env dump", regexp.MustCompile(`(?i)\becho\s+\$\{?[A-Z_]*(SECRET|TOKEN|KEY|PASSWORD|CREDENTIAL)[A-Z_]*\}?`), model.SeverityHigh},
	{"env grep", regexp.MustCompile(`(?i)\benv\b\s*\|\s*grep`), model.SeverityHigh},
	{"printenv", regexp.MustCompile(`(?i)\bprintenv\b`), model.SeverityHigh},
	// Outbound HTTP with auth material.
	{"http auth exfil", regexp.MustCompile(`(?i)\b(curl|wget|http)\b.*(-H\s*["']?authorization|--header.*authorization|-u\s+\S+:\S+|--user\s+\S+)`), model.SeverityHigh},
	{"http post secret", regexp.MustCompile(`(?i)\b(curl|wget)\b.*(-d|--data|--data-raw|-F|--form)\s*\S*(secret|token|password|key)`), model.SeverityHigh},
	// Obfuscation of sensitive content.
	{"base64 obfuscation", regexp.MustCompile(`(?i)\bbase64\b[^|;&]*` + sensitiveExt), model.SeverityCritical},
	{"hex obfuscation", regexp.MustCompile(`(?i)\b(xxd|od|hexdump)\b[^|;&]*` + sensitiveExt), model.SeverityCritical},
	// Command substitution and indirection around readers.
	{"substitution read", regexp.MustCompile(`(?i)\b(cat|head|tail|less|more)\b\s+\$\(`), model.SeverityHigh},
	{"backtick read", regexp.MustCompile("(?i)\\b(cat|head|tail|less|more)\\b\\s+`"), model.SeverityHigh},
	{"variable read", regexp.MustCompile(`(?i)\b(cat|head|tail|less|more)\b\s+\$\{?[A-Za-z_]`), model.SeverityHigh},
	{"variable assignment read", regexp.MustCompile(`(?i)[A-Za-z_][A-Za-z0-9_]*=[^;]*` + sensitiveExt + `[^;]*;\s*(cat|head|tail|less|more)\b`), model.SeverityHigh},
	{"glob read", regexp.MustCompile(`(?i)\b(cat|head|tail|less|more)\b\s+\S*(\*|\?\?)env`), model.SeverityHigh},
	// Here-doc, here-string, process substitution.
	{"here-doc read", regexp.MustCompile(`(?i)<<-?\s*\S*\b(EOF|END)\b.*` + sensitiveExt), model.SeverityHigh},
	{"here-string read", regexp.MustCompile(`(?i)<<<\s*\S*` + sensitiveExt), model.SeverityHigh},
	{"process substitution", regexp.MustCompile(`(?i)\b(cat|head|tail|less|more)\b\s+<\(`), model.SeverityHigh},
	// Shell history.
	{"shell history", regexp.MustCompile(`(?i)(\.bash_history|\.zsh_history|\bhistory\b\s*\|)`), model.SeverityHigh},
	// Well-known credential paths.
	{"credential path", regexp.MustCompile(`(?i)(\.aws/credentials|\.kube/config|\.ssh/id_(rsa|ed25519|ecdsa)|authorized_keys|\.gnupg/|\.git-credentials|\.netrc|\.pgpass|\.my\.cnf)`), model.SeverityCritical},
	// GPG key export.
	{"gpg secret export", regexp.MustCompile(`(?i)\bgpg\b.*--export-secret`), model.SeverityCritical},
}

// sensitiveTokens are the literals whose base64/hex encodings mark an
// obfuscated access attempt.
var sensitiveTokens = []string{".env", ".pem", ".key", "id_rsa", "credentials", "secret"}

// encodedLiterals holds base64 and hex encodings of sensitiveTokens,
// built once at init.
var encodedLiterals = buildEncodedLiterals()

func buildEncodedLiterals() []string {
	var out []string
	for _, tok := range sensitiveTokens {
		out = append(out,
			base64.StdEncoding.EncodeToString([]byte(tok)),
			hex.EncodeToString([]byte(tok)),
		)
	}
	return out
}

// Guard runs the command-mode secrets checks.
type Guard struct {
	enabled      bool
	userPatterns []pattern.Compiled
}

// NewGuard compiles the user-configured secret path globs.
func NewGuard(enabled bool, userGlobs []string) *Guard {
	return &Guard{
		enabled:      enabled,
		userPatterns: pattern.CompileGlobs(userGlobs),
	}
}

// Check tests a command and its extracted path arguments for credential
// exfiltration intent. Nil means clean.
func (g *Guard) Check(command string, paths []string) *model.Violation {
	if !g.enabled {
		return nil
	}

	// User-configured secret globs on path arguments.
	for _, p := range paths {
		if hit := pattern.MatchAny(g.userPatterns, p); hit != nil {
			return &model.Violation{
				Type:     model.ViolationSecrets,
				Rule:     "secret_path:" + hit.Source,
				Message:  "command touches a protected secret path: " + p,
				Severity: model.SeverityCritical,
				Remediation: []string{
					"remove the secret path from the command",
					"use a scoped credential instead of reading the secret file",
				},
			}
		}
	}

	// Curated exfiltration signatures.
	for _, ep := range exfilPatterns {
		if ep.re.MatchString(command) {
			return &model.Violation{
				Type:     model.ViolationSecrets,
				Rule:     "exfil:" + strings.ReplaceAll(ep.name, " ", "_"),
				Message:  "credential exfiltration pattern (" + ep.name + ")",
				Severity: ep.severity,
				Remediation: []string{
					"avoid reading credential files from agent commands",
					"store secrets in a manager and inject them at run time",
				},
			}
		}
	}

	// Encoded access: base64/hex literal of a known sensitive token.
	for _, lit := range encodedLiterals {
		if strings.Contains(command, lit) {
			return &model.Violation{
				Type:     model.ViolationSecrets,
				Rule:     "encoded_access",
				Message:  "command contains an encoded sensitive token",
				Severity: model.SeverityCritical,
				Remediation: []string{
					"encoded references to credential files are not permitted",
				},
			}
		}
	}

	return nil
}
