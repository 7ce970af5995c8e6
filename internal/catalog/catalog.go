package catalog

// Rule is a named content pattern from the built-in catalog.
type Rule struct {
	ID   string
	Expr string
}

// rules is ordered; order only affects the order findings are reported in.
var rules = []Rule{
	// Assignments of literal values to secret-looking names, e.g. API_KEY = "abc123".
	{"secret_assignment", `(?i)\b[a-z0-9_]*(?:api_?key|secret|passw(?:or)?d|pwd|token|credential)[a-z0-9_]*\s*[:=]\s*["'][^"'\s]{3,}["']`},

	// Cloud providers
	{"aws_access_key_id", `\b(?:AKIA|ASIA|AGPA|AIDA|AROA|ANPA|ANVA|AIPA)[0-9A-Z]{16}\b`},
	{"aws_secret_access_key", `(?i)aws_?secret_?(?:access_?)?key["']?\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})`},
	{"google_api_key", `\bAIza[0-9A-Za-z_\-]{35}\b`},
	{"google_oauth_client", `\b[0-9]+-[0-9a-z_]{32}\.apps\.googleusercontent\.com\b`},
	{"google_oauth_token", `\bya29\.[0-9A-Za-z_\-]{20,}`},
	{"azure_storage_key", `(?i)AccountKey=([A-Za-z0-9+/=]{88})`},

	// Source hosting
	{"github_token", `\b(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36}\b`},
	{"github_fine_grained_pat", `\bgithub_pat_[A-Za-z0-9_]{82}\b`},
	{"gitlab_pat", `\bglpat-[A-Za-z0-9_\-]{20}\b`},

	// Payments
	{"stripe_key", `\b(?:sk|rk)_(?:live|test)_[0-9A-Za-z]{24,}\b`},
	{"square_token", `\bsq0(?:atp|csp)-[0-9A-Za-z_\-]{22,43}\b`},
	{"braintree_token", `access_token\$production\$[0-9a-z]{16}\$[0-9a-f]{32}`},

	// Messaging and email
	{"slack_token", `\bxox[baprs]-[0-9A-Za-z\-]{10,48}\b`},
	{"slack_webhook", `https://hooks\.slack\.com/services/T[A-Za-z0-9_]+/B[A-Za-z0-9_]+/[A-Za-z0-9_]+`},
	{"telegram_bot_token", `\b[0-9]{8,10}:AA[0-9A-Za-z_\-]{33}\b`},
	{"discord_bot_token", `\b[MN][A-Za-z0-9]{23,25}\.[A-Za-z0-9_\-]{6}\.[A-Za-z0-9_\-]{27,38}\b`},
	{"twilio_api_key", `\bSK[0-9a-fA-F]{32}\b`},
	{"sendgrid_api_key", `\bSG\.[A-Za-z0-9_\-]{22}\.[A-Za-z0-9_\-]{43}\b`},
	{"mailgun_api_key", `\bkey-[0-9a-zA-Z]{32}\b`},
	{"facebook_access_token", `\bEAACEdEose0cBA[0-9A-Za-z]+\b`},

	// Tokens and key material
	{"jwt", `\beyJ[A-Za-z0-9_\-]{10,}\.eyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}`},
	{"private_key_block", `-----BEGIN (?:[A-Z0-9]+ )*PRIVATE KEY(?: BLOCK)?-----`},
	{"certificate_block", `-----BEGIN CERTIFICATE-----`},
	{"ssh_public_key", `\b(?:ssh-(?:rsa|dss|ed25519)|ecdsa-sha2-nistp(?:256|384|521)) AAAA[0-9A-Za-z+/]+={0,3}`},

	// Long token-looking value assigned to a secret-looking name. The value is captured.
	{"generic_secret", `(?i)(?:key|secret|token|passw(?:or)?d)[a-z0-9_]*["']?\s*[:=]\s*["']([A-Za-z0-9+/=_\-]{32,})["']`},
}

var validExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".go", ".java", ".kt", ".scala", ".rb", ".php",
	".cs", ".c", ".cpp", ".h", ".rs", ".swift", ".sh", ".bash", ".zsh", ".ps1",
	".yml", ".yaml", ".json", ".xml", ".toml", ".ini", ".cfg", ".conf", ".env",
	".properties", ".tf", ".tfvars", ".sql", ".txt",
}

var prohibitedFiles = []string{
	".env", ".env.local", ".env.development", ".env.production", ".env.staging",
	"id_rsa", "id_dsa", "id_ecdsa", "id_ed25519",
	".npmrc", ".pypirc", ".netrc", ".htpasswd", ".pgpass", ".git-credentials",
	"credentials.json", "client_secret.json", "service-account.json",
	"secrets.yml", "secrets.yaml", "terraform.tfvars",
}

var prohibitedPatterns = []string{
	`.*\.pem$`,
	`.*\.key$`,
	`.*\.p12$`,
	`.*\.pfx$`,
	`.*\.keystore$`,
	`.*\.jks$`,
	`.*\.ovpn$`,
	`.*\.kdbx$`,
	`.*\.tfstate(\.backup)?$`,
	`(.*/)?\.aws/credentials$`,
	`(.*/)?\.ssh/`,
	`(.*/)?\.docker/config\.json$`,
}

// Patterns returns the default content patterns in catalog order.
func Patterns() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Expr
	}
	return out
}

// Rules returns a copy of the named default content patterns.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// RuleID returns the catalog ID for a pattern source, or "" for user patterns.
func RuleID(expr string) string {
	for _, r := range rules {
		if r.Expr == expr {
			return r.ID
		}
	}
	return ""
}

// ValidExtensions returns the default extensions eligible for content scanning.
func ValidExtensions() []string { return append([]string(nil), validExtensions...) }

// ProhibitedFiles returns the default exact basenames that must not be committed.
func ProhibitedFiles() []string { return append([]string(nil), prohibitedFiles...) }

// ProhibitedPatterns returns the default path patterns that must not be committed.
func ProhibitedPatterns() []string { return append([]string(nil), prohibitedPatterns...) }
