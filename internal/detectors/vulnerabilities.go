package detectors

import "github.com/secscan/secscan/internal/types"

// bq is a backtick; several patterns need it inside a character class and
// Go raw strings cannot hold one.
const bq = "`"

// userInput matches the request-object prefixes used by the injection rules.
const userInput = `(req\.|request\.|params\.|query\.|body\.)`

// sastRules is the built-in vulnerability catalog. Same textual contract as
// secretRules.
var sastRules = []Rule{
	// SQL injection
	{
		ID: "sql-injection-concatenation", Description: "Potential SQL Injection - String Concatenation in Query",
		Pattern:  `(execute|query|exec)\s*\(\s*['"` + bq + `].*?(SELECT|INSERT|UPDATE|DELETE).*?\+`,
		Flags:    "gi",
		Keywords: []string{"query", "execute", "sql"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "sql-injection-template", Description: "Potential SQL Injection - Template Literal in Query",
		Pattern:  `(execute|query|exec)\s*\(\s*` + bq + `.*?(SELECT|INSERT|UPDATE|DELETE).*?\$\{`,
		Flags:    "gi",
		Keywords: []string{"query", "execute", "sql"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "sql-injection-user-input", Description: "Potential SQL Injection - User Input in Query",
		Pattern:  `(WHERE|SET|VALUES)\s+.*?\+\s*` + userInput,
		Flags:    "gi",
		Keywords: []string{"where", "req", "params"},
		Severity: types.SevCritical, Category: types.CategorySAST,
	},

	// Cross-site scripting
	{
		ID: "xss-innerhtml", Description: "Potential XSS - innerHTML with User Input",
		Pattern:  `innerHTML\s*=\s*(req\.|request\.|params\.|query\.|body\.|input\.|user\.)`,
		Flags:    "gi",
		Keywords: []string{"innerHTML"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "xss-dangerously-set", Description: "Potential XSS - dangerouslySetInnerHTML with User Input",
		Pattern:  `dangerouslySetInnerHTML.*?(req\.|request\.|params\.|query\.|body\.|input\.|user\.)`,
		Flags:    "gi",
		Keywords: []string{"dangerouslySetInnerHTML"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "xss-document-write", Description: "Potential XSS - document.write without Sanitization",
		Pattern:  `document\.write\s*\(\s*(?!['"` + bq + `])`,
		Flags:    "gi",
		Keywords: []string{"document.write"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},
	{
		ID: "xss-eval", Description: "Potential XSS - eval() with User Input",
		Pattern:  `eval\s*\(\s*(req\.|request\.|params\.|query\.|body\.|input\.|user\.)`,
		Flags:    "gi",
		Keywords: []string{"eval"},
		Severity: types.SevCritical, Category: types.CategorySAST,
	},

	// Command injection
	{
		ID: "command-injection-exec", Description: "Potential Command Injection - exec with User Input",
		Pattern:  `(exec|spawn|execSync|spawnSync)\s*\([^)]*?` + userInput,
		Flags:    "gi",
		Keywords: []string{"exec", "spawn"},
		Severity: types.SevCritical, Category: types.CategorySAST,
	},
	{
		ID: "command-injection-shell", Description: "Potential Command Injection - Shell Command with User Input",
		Pattern:  `child_process\.(exec|spawn).*?` + userInput,
		Flags:    "gi",
		Keywords: []string{"child_process"},
		Severity: types.SevCritical, Category: types.CategorySAST,
	},

	// Path traversal
	{
		ID: "path-traversal", Description: "Potential Path Traversal - User Input in File Path",
		Pattern:  `(readFile|writeFile|appendFile|unlink|rmdir|mkdir)\s*\([^)]*?` + userInput,
		Flags:    "gi",
		Keywords: []string{"readFile", "writeFile"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "path-traversal-join", Description: "Potential Path Traversal - Unsafe Path Join",
		Pattern:  `path\.join\s*\([^)]*?` + userInput,
		Flags:    "gi",
		Keywords: []string{"path.join"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},

	// Hardcoded credentials
	{
		ID: "hardcoded-password", Description: "Hardcoded Password",
		Pattern:  `password\s*[:=]\s*['"` + bq + `][^'"` + bq + `\s]{6,}['"` + bq + `]`,
		Flags:    "gi",
		Keywords: []string{"password"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "hardcoded-secret", Description: "Hardcoded Secret",
		Pattern:  `(const|let|var)\s+\w*[Ss]ecret\w*\s*[:=]\s*['"` + bq + `][^'"` + bq + `\s]{8,}['"` + bq + `]`,
		Flags:    "gi",
		Keywords: []string{"secret"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},
	{
		ID: "hardcoded-api-key", Description: "Hardcoded API Key",
		Pattern:  `(apiKey|api_key|apikey)\s*[:=]\s*['"` + bq + `][^'"` + bq + `\s]{20,}['"` + bq + `]`,
		Flags:    "gi",
		Keywords: []string{"apikey", "api_key"},
		Severity: types.SevCritical, Category: types.CategorySAST,
	},

	// Weak randomness and cryptography
	{
		ID: "weak-random", Description: "Weak Random Number Generator",
		Pattern:  `Math\.random\(\)`,
		Flags:    "gi",
		Keywords: []string{"Math.random"},
		Severity: types.SevLow, Category: types.CategorySAST,
	},
	{
		ID: "weak-hash-md5", Description: "Weak Cryptographic Hash - MD5",
		Pattern:  `createHash\s*\(\s*['"` + bq + `]md5['"` + bq + `]\s*\)`,
		Flags:    "gi",
		Keywords: []string{"md5"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},
	{
		ID: "weak-hash-sha1", Description: "Weak Cryptographic Hash - SHA1",
		Pattern:  `createHash\s*\(\s*['"` + bq + `]sha1['"` + bq + `]\s*\)`,
		Flags:    "gi",
		Keywords: []string{"sha1"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},

	// Deserialization
	{
		ID: "unsafe-deserialize", Description: "Potential Insecure Deserialization",
		Pattern:  `(JSON\.parse|eval|Function)\s*\([^)]*?` + userInput,
		Flags:    "gi",
		Keywords: []string{"JSON.parse", "eval"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},

	// Transport and headers
	{
		ID: "cors-wildcard", Description: "CORS Misconfiguration - Wildcard Origin",
		Pattern:  `Access-Control-Allow-Origin.*?\*`,
		Flags:    "gi",
		Keywords: []string{"Access-Control-Allow-Origin"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},
	{
		ID: "http-not-https", Description: "Insecure HTTP URL",
		Pattern:  `http:\/\/(?!localhost|127\.0\.0\.1|0\.0\.0\.0)`,
		Flags:    "gi",
		Keywords: []string{"http://"},
		Severity: types.SevLow, Category: types.CategorySAST,
	},

	// Debug code
	{
		ID: "console-log", Description: "Console.log in Production Code",
		Pattern:  `console\.(log|debug|info|warn|error)`,
		Flags:    "gi",
		Keywords: []string{"console.log"},
		Severity: types.SevLow, Category: types.CategorySAST,
	},
	{
		ID: "debugger-statement", Description: "Debugger Statement",
		Pattern:  `\bdebugger\b`,
		Flags:    "gi",
		Keywords: []string{"debugger"},
		Severity: types.SevLow, Category: types.CategorySAST,
	},

	// ReDoS
	{
		ID: "redos-vulnerable-pattern", Description: "Potential ReDoS - Vulnerable Regex Pattern",
		Pattern:  `new RegExp\([^)]*(\(.*\*.*\).*\+|\+.*\(.*\*.*\))`,
		Flags:    "gi",
		Keywords: []string{"RegExp"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},

	// XML external entities
	{
		ID: "xxe-vulnerable", Description: "Potential XXE Vulnerability",
		Pattern:  `parseFromString|DOMParser|XMLHttpRequest`,
		Flags:    "gi",
		Keywords: []string{"parseFromString", "XMLHttpRequest"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},

	// Access control
	{
		ID: "idor-user-id", Description: "Potential IDOR - Direct User ID Reference",
		Pattern:  `findById\s*\([^)]*?(req\.|request\.|params\.|query\.)`,
		Flags:    "gi",
		Keywords: []string{"findById"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},
	{
		ID: "open-redirect", Description: "Potential Open Redirect",
		Pattern:  `redirect\s*\([^)]*?` + userInput,
		Flags:    "gi",
		Keywords: []string{"redirect"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},
	{
		ID: "jwt-no-verify", Description: "JWT Decoded Without Verification",
		Pattern:  `jwt\.decode\s*\(`,
		Flags:    "gi",
		Keywords: []string{"jwt.decode"},
		Severity: types.SevHigh, Category: types.CategorySAST,
	},

	// Sensitive data exposure
	{
		ID: "sensitive-data-log", Description: "Potential Sensitive Data in Logs",
		Pattern:  `console\.log.*?(password|secret|token|key|credential)`,
		Flags:    "gi",
		Keywords: []string{"console.log", "password"},
		Severity: types.SevMed, Category: types.CategorySAST,
	},
}
