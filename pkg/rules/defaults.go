package rules

import "sync"

const (
	owaspInjection    = "A03-Injection"
	owaspCrypto       = "A02-Cryptographic Failures"
	owaspMisconfig    = "A05-Security Misconfiguration"
	owaspIntegrity    = "A08-Software and Data Integrity Failures"
	owaspAccess       = "A01-Broken Access Control"
	owaspAuthFailures = "A07-Identification and Authentication Failures"
)

// userInput matches the request accessors shared by the JavaScript rules.
const userInput = `(?:req\.|request\.|params\.|query\.)`

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the compiled built-in table. It is compiled once.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = MustCompile(DefaultSpecs())
	})
	return defaultTable
}

// DefaultSpecs returns the built-in rules. Quality rules are included; the
// engine only evaluates them when asked to.
func DefaultSpecs() []Spec {
	var specs []Spec
	specs = append(specs, SecretSpecs()...)
	specs = append(specs, VulnerabilitySpecs()...)
	specs = append(specs, QualitySpecs()...)
	return specs
}

// SecretSpecs returns the built-in secret rules.
func SecretSpecs() []Spec {
	return []Spec{
		{
			ID:              "aws-access-key",
			Name:            "AWS Access Key ID",
			Kind:            "secret",
			Pattern:         `\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`,
			Severity:        "critical",
			BaseConfidence:  0.95,
			HighSpecificity: true,
			Recommendation:  "Use AWS IAM roles or AWS Secrets Manager",
			CWE:             "CWE-798",
		},
		{
			ID:              "aws-secret-key",
			Name:            "AWS Secret Access Key",
			Kind:            "secret",
			Pattern:         `(?:^|[^A-Za-z0-9/+=])(?P<secret>[A-Za-z0-9/+=]{40})(?:[^A-Za-z0-9/+=]|$)`,
			Severity:        "critical",
			RequiresEntropy: true,
			MinEntropy:      4.5,
			RequiresContext: true,
			ExcludePatterns: []string{`hash|checksum|digest|sha\d`},
			ExcludeValues:   []string{`^[a-fA-F0-9]+$`},
			BaseConfidence:  0.8,
			Recommendation:  "Use AWS IAM roles or AWS Secrets Manager",
			CWE:             "CWE-798",
		},
		{
			ID:              "github-token",
			Name:            "GitHub Token",
			Kind:            "secret",
			Pattern:         `\bgh[pousr]_[A-Za-z0-9_]{36,255}\b`,
			Severity:        "high",
			BaseConfidence:  0.95,
			HighSpecificity: true,
			Recommendation:  "Use GitHub Apps or environment variables",
			CWE:             "CWE-798",
		},
		{
			ID:             "google-api-key",
			Name:           "Google API Key",
			Kind:           "secret",
			Pattern:        `AIza[0-9A-Za-z\-_]{35}`,
			Severity:       "high",
			BaseConfidence: 0.9,
			Recommendation: "Use Google Cloud Secret Manager",
			CWE:            "CWE-798",
		},
		{
			ID:             "slack-token",
			Name:           "Slack Token",
			Kind:           "secret",
			Pattern:        `xox[baprs]-[0-9A-Za-z-]{10,72}`,
			Severity:       "high",
			BaseConfidence: 0.9,
			Recommendation: "Use Slack App configuration or environment variables",
			CWE:            "CWE-798",
		},
		{
			ID:             "slack-webhook",
			Name:           "Slack Webhook URL",
			Kind:           "secret",
			Pattern:        `https://hooks\.slack\.com/services/T[A-Z0-9]+/B[A-Z0-9]+/[A-Za-z0-9]+`,
			Severity:       "high",
			BaseConfidence: 0.9,
			Recommendation: "Rotate the webhook and load it from configuration",
			CWE:            "CWE-798",
		},
		{
			ID:              "stripe-live-key",
			Name:            "Stripe Live Secret Key",
			Kind:            "secret",
			Pattern:         `\b(?:sk|rk)_live_[0-9A-Za-z]{24,99}\b`,
			Severity:        "critical",
			BaseConfidence:  0.95,
			HighSpecificity: true,
			Recommendation:  "Revoke the key in the Stripe dashboard and load it from a secret store",
			CWE:             "CWE-798",
		},
		{
			ID:             "sendgrid-api-key",
			Name:           "SendGrid API Key",
			Kind:           "secret",
			Pattern:        `SG\.[A-Za-z0-9_-]{22}\.[A-Za-z0-9_-]{43}`,
			Severity:       "high",
			BaseConfidence: 0.9,
			Recommendation: "Rotate the key and load it from a secret store",
			CWE:            "CWE-798",
		},
		{
			ID:             "npm-token",
			Name:           "npm Access Token",
			Kind:           "secret",
			Pattern:        `\bnpm_[A-Za-z0-9]{36}\b`,
			Severity:       "high",
			BaseConfidence: 0.9,
			Recommendation: "Revoke the token and use CI-scoped credentials",
			CWE:            "CWE-798",
		},
		{
			ID:             "jwt-token",
			Name:           "JWT Token",
			Kind:           "secret",
			Pattern:        `eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`,
			Severity:       "medium",
			BaseConfidence: 0.7,
			Recommendation: "Store JWT tokens securely and set appropriate expiration",
			CWE:            "CWE-522",
		},
		{
			// Matches the header only; the key body spans lines.
			ID:              "private-key",
			Name:            "Private Key",
			Kind:            "secret",
			Pattern:         `-----BEGIN (?:[A-Z0-9]+ )*PRIVATE KEY(?: BLOCK)?-----`,
			Severity:        "critical",
			BaseConfidence:  0.95,
			HighSpecificity: true,
			Recommendation:  "Use secure key management systems",
			CWE:             "CWE-321",
		},
		{
			ID:             "database-url-password",
			Name:           "Credentials in Connection String",
			Kind:           "secret",
			Pattern:        `(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqps?)://[^\s:@/]+:(?P<secret>[^\s@/]{4,})@`,
			Flags:          "i",
			Severity:       "high",
			BaseConfidence: 0.85,
			Recommendation: "Move connection credentials into environment configuration",
			CWE:            "CWE-798",
		},
		{
			ID:             "password-field",
			Name:           "Password in Code",
			Kind:           "secret",
			Pattern:        `(?:password|passwd|pwd|pass)['"]?\s*[:=]\s*['"](?P<secret>[^'",;\s]{8,})['"]`,
			Flags:          "i",
			Severity:       "high",
			BaseConfidence: 0.8,
			Recommendation: "Use environment variables or secure vaults",
			CWE:            "CWE-259",
		},
		{
			ID:              "generic-api-key",
			Name:            "Generic API Key",
			Kind:            "secret",
			Pattern:         `(?:api[_-]?key|apikey|secret[_-]?key|access[_-]?token|auth[_-]?token|client[_-]?secret)['"]?\s*[:=]\s*['"](?P<secret>[A-Za-z0-9_\-+/=.]{16,})['"]`,
			Flags:           "i",
			Severity:        "high",
			RequiresEntropy: true,
			MinEntropy:      3.5,
			BaseConfidence:  0.7,
			Recommendation:  "Load API keys from environment variables or a secret manager",
			CWE:             "CWE-798",
		},
	}
}

// VulnerabilitySpecs returns the built-in vulnerability rules for every
// supported language.
func VulnerabilitySpecs() []Spec {
	var specs []Spec
	js := javascriptSpecs()
	specs = append(specs, js...)
	// TypeScript shares the JavaScript rules under its own ids.
	for _, s := range js {
		s.ID = "ts" + s.ID[2:]
		s.Language = "typescript"
		specs = append(specs, s)
	}
	specs = append(specs, pythonSpecs()...)
	specs = append(specs, javaSpecs()...)
	specs = append(specs, phpSpecs()...)
	specs = append(specs, goSpecs()...)
	return specs
}

func javascriptSpecs() []Spec {
	return []Spec{
		{
			ID:              "js-eval-injection",
			Kind:            "vulnerability",
			Language:        "javascript",
			Pattern:         `\beval\s*\([^)]*` + userInput + `[^)]*\)`,
			Message:         "Potential code injection via eval() with user input",
			Severity:        "critical",
			Category:        "code-injection",
			CWE:             "CWE-94",
			OWASP:           owaspInjection,
			BaseConfidence:  0.9,
			HighSpecificity: true,
			Recommendation:  "Never use eval() with user input. Use JSON.parse() for JSON data.",
		},
		{
			ID:             "js-sql-injection",
			Kind:           "vulnerability",
			Language:       "javascript",
			Pattern:        `(?:SELECT|INSERT|UPDATE|DELETE)\b.*(?:\+|\$\{).*` + userInput,
			Flags:          "i",
			Message:        "Potential SQL injection vulnerability",
			Severity:       "critical",
			Category:       "sql-injection",
			CWE:            "CWE-89",
			OWASP:          owaspInjection,
			BaseConfidence: 0.85,
			Recommendation: "Use parameterized queries or prepared statements",
		},
		{
			ID:             "js-xss-innerhtml",
			Kind:           "vulnerability",
			Language:       "javascript",
			Pattern:        `\.(?:innerHTML|outerHTML)\s*=.*(?:` + userInput + `|location\.|document\.URL)`,
			Message:        "Potential XSS vulnerability via innerHTML",
			Severity:       "high",
			Category:       "xss",
			CWE:            "CWE-79",
			OWASP:          owaspInjection,
			BaseConfidence: 0.8,
			ExcludePatterns: []string{
				`DOMPurify\.sanitize|sanitizeHtml\(`,
			},
			Recommendation: "Use textContent or sanitize HTML input",
		},
		{
			ID:             "js-document-write",
			Kind:           "vulnerability",
			Language:       "javascript",
			Pattern:        `document\.write(?:ln)?\s*\(.*(?:` + userInput + `|location\.)`,
			Message:        "Potential XSS vulnerability via document.write",
			Severity:       "high",
			Category:       "xss",
			CWE:            "CWE-79",
			OWASP:          owaspInjection,
			BaseConfidence: 0.75,
			Recommendation: "Build DOM nodes explicitly instead of writing markup",
		},
		{
			ID:              "js-command-injection",
			Kind:            "vulnerability",
			Language:        "javascript",
			Pattern:         `(?:child_process\.|(?:^|[^.\w]))(?:exec|execSync|spawn|spawnSync|execFile)\s*\(`,
			Message:         "Shell command built near user input",
			Severity:        "critical",
			Category:        "command-injection",
			CWE:             "CWE-78",
			OWASP:           owaspInjection,
			BaseConfidence:  0.75,
			RequirePatterns: []string{`req\.|request\.|params|query|body|argv`},
			Recommendation:  "Use execFile with an argument array and validate input against an allowlist",
		},
		{
			ID:             "js-path-traversal",
			Kind:           "vulnerability",
			Language:       "javascript",
			Pattern:        `(?:readFile|readFileSync|createReadStream|sendFile|unlink|unlinkSync)\s*\([^)]*` + userInput,
			Message:        "File path derived from user input",
			Severity:       "high",
			Category:       "path-traversal",
			CWE:            "CWE-22",
			OWASP:          owaspAccess,
			BaseConfidence: 0.8,
			Recommendation: "Resolve the path and verify it stays under an allowed root",
		},
		{
			ID:              "js-new-function",
			Kind:            "vulnerability",
			Language:        "javascript",
			Pattern:         `\bnew\s+Function\s*\(`,
			Message:         "Dynamic code construction with new Function()",
			Severity:        "high",
			Category:        "code-injection",
			CWE:             "CWE-95",
			OWASP:           owaspInjection,
			BaseConfidence:  0.7,
			RequirePatterns: []string{userInput + `|body\.|input`},
			Recommendation:  "Avoid compiling code from strings",
		},
		{
			ID:             "js-weak-hash",
			Kind:           "vulnerability",
			Language:       "javascript",
			Pattern:        `createHash\(\s*['"](?:md5|sha1)['"]\s*\)`,
			Flags:          "i",
			Message:        "Weak hash algorithm",
			Severity:       "medium",
			Category:       "crypto",
			CWE:            "CWE-328",
			OWASP:          owaspCrypto,
			BaseConfidence: 0.8,
			Recommendation: "Use SHA-256 or stronger; use bcrypt or argon2 for passwords",
		},
		{
			ID:              "js-insecure-random",
			Kind:            "vulnerability",
			Language:        "javascript",
			Pattern:         `Math\.random\s*\(\s*\)`,
			Message:         "Math.random() used for security-sensitive value",
			Severity:        "medium",
			Category:        "crypto",
			CWE:             "CWE-338",
			OWASP:           owaspCrypto,
			BaseConfidence:  0.6,
			RequirePatterns: []string{`token|secret|password|nonce|salt|session`},
			Recommendation:  "Use crypto.randomBytes or crypto.getRandomValues",
		},
		{
			ID:              "js-tls-disabled",
			Kind:            "vulnerability",
			Language:        "javascript",
			Pattern:         `NODE_TLS_REJECT_UNAUTHORIZED\s*=\s*['"]?0|rejectUnauthorized\s*:\s*false`,
			Message:         "TLS certificate verification disabled",
			Severity:        "high",
			Category:        "crypto",
			CWE:             "CWE-295",
			OWASP:           owaspCrypto,
			BaseConfidence:  0.8,
			HighSpecificity: true,
			Recommendation:  "Keep certificate verification enabled and trust a private CA instead",
		},
	}
}

func pythonSpecs() []Spec {
	return []Spec{
		{
			ID:              "py-exec-injection",
			Kind:            "vulnerability",
			Language:        "python",
			Pattern:         `\b(?:exec|eval)\s*\([^)]*(?:request\.|flask\.request\.|django\.request\.)[^)]*\)`,
			Message:         "Potential code injection via exec() with user input",
			Severity:        "critical",
			Category:        "code-injection",
			CWE:             "CWE-94",
			OWASP:           owaspInjection,
			BaseConfidence:  0.9,
			HighSpecificity: true,
			Recommendation:  "Never use exec() with user input",
		},
		{
			ID:             "py-sql-injection",
			Kind:           "vulnerability",
			Language:       "python",
			Pattern:        `(?:SELECT|INSERT|UPDATE|DELETE)\b.*(?:%|\.format\(|\+).*(?:request\.|flask\.request\.|django\.request\.)`,
			Flags:          "i",
			Message:        "Potential SQL injection with string formatting",
			Severity:       "critical",
			Category:       "sql-injection",
			CWE:            "CWE-89",
			OWASP:          owaspInjection,
			BaseConfidence: 0.85,
			Recommendation: "Use parameterized queries with your database library",
		},
		{
			ID:              "py-command-injection",
			Kind:            "vulnerability",
			Language:        "python",
			Pattern:         `(?:os\.system|os\.popen|subprocess\.(?:call|run|Popen|check_output|check_call))\s*\(`,
			Message:         "Shell command built near user input",
			Severity:        "critical",
			Category:        "command-injection",
			CWE:             "CWE-78",
			OWASP:           owaspInjection,
			BaseConfidence:  0.75,
			RequirePatterns: []string{`request\.|sys\.argv|input\(`},
			Recommendation:  "Pass an argument list without a shell and validate input",
		},
		{
			ID:             "py-subprocess-shell",
			Kind:           "vulnerability",
			Language:       "python",
			Pattern:        `subprocess\.\w+\s*\(.*shell\s*=\s*True`,
			Message:        "subprocess invoked with shell=True",
			Severity:       "high",
			Category:       "command-injection",
			CWE:            "CWE-78",
			OWASP:          owaspInjection,
			BaseConfidence: 0.8,
			Recommendation: "Call subprocess with an argument list and shell=False",
		},
		{
			ID:             "py-pickle-load",
			Kind:           "vulnerability",
			Language:       "python",
			Pattern:        `\b(?:pickle|cPickle|dill)\.loads?\s*\(`,
			Message:        "Unsafe deserialization with pickle",
			Severity:       "high",
			Category:       "deserialization",
			CWE:            "CWE-502",
			OWASP:          owaspIntegrity,
			BaseConfidence: 0.8,
			Recommendation: "Deserialize untrusted data with a safe format such as JSON",
		},
		{
			ID:              "py-yaml-load",
			Kind:            "vulnerability",
			Language:        "python",
			Pattern:         `\byaml\.load\s*\(`,
			Message:         "yaml.load without a safe loader",
			Severity:        "medium",
			Category:        "deserialization",
			CWE:             "CWE-502",
			OWASP:           owaspIntegrity,
			BaseConfidence:  0.75,
			ExcludePatterns: []string{`SafeLoader|CSafeLoader|safe_load`},
			Recommendation:  "Use yaml.safe_load",
		},
		{
			ID:             "py-flask-debug",
			Kind:           "vulnerability",
			Language:       "python",
			Pattern:        `\.run\s*\(.*debug\s*=\s*True`,
			Message:        "Application started with debug mode enabled",
			Severity:       "medium",
			Category:       "misconfiguration",
			CWE:            "CWE-489",
			OWASP:          owaspMisconfig,
			BaseConfidence: 0.7,
			Recommendation: "Disable debug mode outside local development",
		},
		{
			ID:             "py-weak-hash",
			Kind:           "vulnerability",
			Language:       "python",
			Pattern:        `hashlib\.(?:md5|sha1)\s*\(`,
			Message:        "Weak hash algorithm",
			Severity:       "medium",
			Category:       "crypto",
			CWE:            "CWE-328",
			OWASP:          owaspCrypto,
			BaseConfidence: 0.8,
			Recommendation: "Use hashlib.sha256 or a password hashing function",
		},
	}
}

func javaSpecs() []Spec {
	return []Spec{
		{
			ID:             "java-sql-injection",
			Kind:           "vulnerability",
			Language:       "java",
			Pattern:        `(?:executeQuery|executeUpdate|execute|prepareStatement|addBatch)\s*\(\s*"[^"]*"\s*\+`,
			Message:        "SQL statement built by string concatenation",
			Severity:       "critical",
			Category:       "sql-injection",
			CWE:            "CWE-89",
			OWASP:          owaspInjection,
			BaseConfidence: 0.85,
			Recommendation: "Use PreparedStatement with bound parameters",
		},
		{
			ID:              "java-command-injection",
			Kind:            "vulnerability",
			Language:        "java",
			Pattern:         `Runtime\.getRuntime\(\)\.exec\s*\(|new\s+ProcessBuilder\s*\(`,
			Message:         "OS command built near user input",
			Severity:        "critical",
			Category:        "command-injection",
			CWE:             "CWE-78",
			OWASP:           owaspInjection,
			BaseConfidence:  0.75,
			RequirePatterns: []string{`getParameter|getHeader|getQueryString|args\[`},
			Recommendation:  "Pass a fixed command with validated arguments",
		},
		{
			ID:             "java-deserialization",
			Kind:           "vulnerability",
			Language:       "java",
			Pattern:        `new\s+ObjectInputStream\s*\(`,
			Message:        "Java native deserialization",
			Severity:       "high",
			Category:       "deserialization",
			CWE:            "CWE-502",
			OWASP:          owaspIntegrity,
			BaseConfidence: 0.7,
			Recommendation: "Avoid native serialization of untrusted data or apply an ObjectInputFilter",
		},
		{
			ID:             "java-weak-hash",
			Kind:           "vulnerability",
			Language:       "java",
			Pattern:        `MessageDigest\.getInstance\(\s*"(?:MD5|SHA-?1)"`,
			Flags:          "i",
			Message:        "Weak hash algorithm",
			Severity:       "medium",
			Category:       "crypto",
			CWE:            "CWE-328",
			OWASP:          owaspCrypto,
			BaseConfidence: 0.8,
			Recommendation: "Use SHA-256 or stronger",
		},
		{
			ID:             "java-reflected-xss",
			Kind:           "vulnerability",
			Language:       "java",
			Pattern:        `getWriter\(\)\.(?:print|println|write)\s*\(.*getParameter`,
			Message:        "Request parameter written to the response",
			Severity:       "high",
			Category:       "xss",
			CWE:            "CWE-79",
			OWASP:          owaspInjection,
			BaseConfidence: 0.8,
			Recommendation: "Encode output for the HTML context",
		},
	}
}

func phpSpecs() []Spec {
	const superglobal = `\$_(?:GET|POST|REQUEST|COOKIE)`
	return []Spec{
		{
			ID:             "php-sql-injection",
			Kind:           "vulnerability",
			Language:       "php",
			Pattern:        `(?:mysql_query|mysqli_query|->query)\s*\(.*` + superglobal,
			Message:        "SQL query built from request data",
			Severity:       "critical",
			Category:       "sql-injection",
			CWE:            "CWE-89",
			OWASP:          owaspInjection,
			BaseConfidence: 0.85,
			Recommendation: "Use PDO prepared statements",
		},
		{
			ID:              "php-eval-injection",
			Kind:            "vulnerability",
			Language:        "php",
			Pattern:         `\beval\s*\(.*` + superglobal,
			Message:         "eval() with request data",
			Severity:        "critical",
			Category:        "code-injection",
			CWE:             "CWE-94",
			OWASP:           owaspInjection,
			BaseConfidence:  0.9,
			HighSpecificity: true,
			Recommendation:  "Remove eval() on request data",
		},
		{
			ID:             "php-command-injection",
			Kind:           "vulnerability",
			Language:       "php",
			Pattern:        `\b(?:system|exec|shell_exec|passthru|popen|proc_open)\s*\(.*` + superglobal,
			Message:        "OS command built from request data",
			Severity:       "critical",
			Category:       "command-injection",
			CWE:            "CWE-78",
			OWASP:          owaspInjection,
			BaseConfidence: 0.85,
			Recommendation: "Use escapeshellarg and an allowlist of commands",
		},
		{
			ID:              "php-reflected-xss",
			Kind:            "vulnerability",
			Language:        "php",
			Pattern:         `\b(?:echo|print)\s+.*\$_(?:GET|POST|REQUEST)`,
			Message:         "Request data echoed without encoding",
			Severity:        "high",
			Category:        "xss",
			CWE:             "CWE-79",
			OWASP:           owaspInjection,
			BaseConfidence:  0.8,
			ExcludePatterns: []string{`htmlspecialchars|htmlentities`},
			Recommendation:  "Encode output with htmlspecialchars",
		},
		{
			ID:             "php-file-inclusion",
			Kind:           "vulnerability",
			Language:       "php",
			Pattern:        `\b(?:include|require)(?:_once)?\s*\(?\s*` + superglobal,
			Message:        "File inclusion controlled by request data",
			Severity:       "critical",
			Category:       "path-traversal",
			CWE:            "CWE-98",
			OWASP:          owaspInjection,
			BaseConfidence: 0.85,
			Recommendation: "Map request values to a fixed set of files",
		},
	}
}

func goSpecs() []Spec {
	return []Spec{
		{
			ID:             "go-sql-injection",
			Kind:           "vulnerability",
			Language:       "go",
			Pattern:        `\.(?:Query|QueryRow|Exec|QueryContext|QueryRowContext|ExecContext)\s*\(.*(?:"\s*\+\s*\w|fmt\.Sprintf\()`,
			Message:        "SQL statement built by string formatting",
			Severity:       "high",
			Category:       "sql-injection",
			CWE:            "CWE-89",
			OWASP:          owaspInjection,
			BaseConfidence: 0.8,
			Recommendation: "Pass arguments as query parameters",
		},
		{
			ID:              "go-command-injection",
			Kind:            "vulnerability",
			Language:        "go",
			Pattern:         `exec\.Command(?:Context)?\s*\(`,
			Message:         "OS command built near user input",
			Severity:        "critical",
			Category:        "command-injection",
			CWE:             "CWE-78",
			OWASP:           owaspInjection,
			BaseConfidence:  0.75,
			RequirePatterns: []string{`r\.URL|FormValue|PostForm|r\.Body|os\.Args`},
			Recommendation:  "Use a fixed binary and validate every argument",
		},
		{
			ID:              "go-tls-insecure",
			Kind:            "vulnerability",
			Language:        "go",
			Pattern:         `InsecureSkipVerify\s*:\s*true`,
			Message:         "TLS certificate verification disabled",
			Severity:        "high",
			Category:        "crypto",
			CWE:             "CWE-295",
			OWASP:           owaspCrypto,
			BaseConfidence:  0.85,
			HighSpecificity: true,
			Recommendation:  "Keep verification on and configure RootCAs",
		},
		{
			ID:             "go-weak-hash",
			Kind:           "vulnerability",
			Language:       "go",
			Pattern:        `\b(?:md5|sha1)\.(?:New|Sum)\s*\(`,
			Message:        "Weak hash algorithm",
			Severity:       "medium",
			Category:       "crypto",
			CWE:            "CWE-328",
			OWASP:          owaspCrypto,
			BaseConfidence: 0.8,
			Recommendation: "Use crypto/sha256 or golang.org/x/crypto/bcrypt for passwords",
		},
		{
			ID:              "go-unescaped-html",
			Kind:            "vulnerability",
			Language:        "go",
			Pattern:         `template\.HTML\s*\(`,
			Message:         "Request data marked as safe HTML",
			Severity:        "high",
			Category:        "xss",
			CWE:             "CWE-79",
			OWASP:           owaspInjection,
			BaseConfidence:  0.7,
			RequirePatterns: []string{`r\.URL|FormValue|Query\(\)|PostForm`},
			Recommendation:  "Let html/template escape request values",
		},
		{
			ID:             "go-hardcoded-jwt-secret",
			Kind:           "vulnerability",
			Language:       "go",
			Pattern:        `SignedString\(\s*\[\]byte\(\s*"`,
			Message:        "JWT signed with a hard-coded key",
			Severity:       "high",
			Category:       "auth",
			CWE:            "CWE-321",
			OWASP:          owaspAuthFailures,
			BaseConfidence: 0.8,
			Recommendation: "Load signing keys from a secret store",
		},
	}
}

// QualitySpecs returns the built-in code-quality rules. Languages without
// their own rules fall back to the generic set.
func QualitySpecs() []Spec {
	q := func(id, lang, pattern, message, severity, category, rec string) Spec {
		return Spec{
			ID:             id,
			Kind:           "quality",
			Language:       lang,
			Pattern:        pattern,
			Flags:          "i",
			Message:        message,
			Severity:       severity,
			Category:       category,
			Recommendation: rec,
		}
	}
	return []Spec{
		q("js-console-log", "javascript", `console\.log\s*\(`, "Console.log statement found - should be removed in production", "low", "maintainability", "Remove console.log statements or use a proper logging framework"),
		q("js-alert-usage", "javascript", `\balert\s*\(`, "Alert usage detected - not recommended for production", "medium", "maintainability", "Replace alerts with proper UI notifications"),
		q("js-var-declaration", "javascript", `\bvar\s+\w+`, "Variable declared with var - use let or const instead", "low", "maintainability", "Use let or const"),
		q("js-loose-equality", "javascript", `[^=!<>]==[^=]|!=[^=]`, "Use strict equality (===) instead of loose equality (==)", "medium", "reliability", "Use === and !=="),
		q("js-function-complexity", "javascript", `function\s+\w+[^}]{200,}`, "Function appears to be very long - consider breaking it down", "medium", "maintainability", "Split the function into smaller units"),

		q("py-print-statement", "python", `\bprint\s*\(`, "Print statement found - consider using logging instead", "low", "maintainability", "Use the logging module"),
		q("py-bare-except", "python", `except\s*:`, "Bare except clause catches all exceptions", "high", "reliability", "Catch specific exception types"),
		q("py-global-variable", "python", `\bglobal\s+\w+`, "Global variable usage detected", "medium", "maintainability", "Pass state explicitly"),
		q("py-lambda-assignment", "python", `\w+\s*=\s*lambda\b`, "Lambda assigned to variable - use def instead", "medium", "readability", "Define a named function with def"),
		q("py-import-star", "python", `from\s+\w+(?:\.\w+)*\s+import\s+\*`, "Star import pollutes namespace", "medium", "maintainability", "Import names explicitly"),

		q("java-system-out", "java", `System\.(?:out|err)\.print`, "System.out usage found - use logging framework instead", "low", "maintainability", "Use a logging framework such as SLF4J"),
		q("java-empty-catch", "java", `catch\s*\([^)]+\)\s*\{\s*\}`, "Empty catch block ignores exceptions", "high", "reliability", "Handle or log the exception"),
		q("java-string-concatenation", "java", `String\s+\w+\s*=\s*[^;]+\+`, "String concatenation in loop or multiple operations", "medium", "performance", "Use StringBuilder"),

		q("php-var-dump", "php", `\bvar_dump\s*\(`, "var_dump usage found - remove before production", "medium", "maintainability", "Remove debug output"),
		q("php-global-variable", "php", `\bglobal\s+\$\w+`, "Global variable usage detected", "medium", "maintainability", "Pass state explicitly"),
		q("php-error-suppression", "php", `@\w+\s*\(`, "Error suppression operator (@) used", "high", "reliability", "Handle errors instead of suppressing them"),

		q("go-fmt-print", "go", `fmt\.Print`, "fmt.Print usage found - consider structured logging", "low", "maintainability", "Use a structured logger"),
		q("go-empty-if", "go", `if\s+[^{]+\{\s*\}`, "Empty if block detected", "medium", "maintainability", "Remove empty if blocks or add proper handling"),

		q("long-line", GenericLanguage, `.{120,}`, "Line too long - affects readability", "low", "readability", "Break long lines for better readability"),
		q("trailing-whitespace", GenericLanguage, `\s+$`, "Trailing whitespace detected", "low", "maintainability", "Remove trailing whitespace"),
		q("todo-comment", GenericLanguage, `\b(?:TODO|FIXME|HACK|XXX)\b`, "TODO/FIXME comment found", "low", "maintainability", "Address TODO items or create proper issues"),
	}
}
