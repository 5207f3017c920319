// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. This package helps prevent
// the accidental leakage of session tokens, credentials, connection strings, file
// paths, and other sensitive data that might be included in error messages.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
)

// Precompiled regex patterns
var (
	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|mysql|mongodb|db|database|connection)://[^@]+@`)

	// Credentials and keys
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	apiKeyRegex   = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	awsKeyRegex = regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`)

	// Session tokens are 32 random bytes, hex encoded: 64 hex characters
	sessionTokenRegex = regexp.MustCompile(`\b[0-9a-fA-F]{64}\b`)

	// Entity identifiers
	uuidRegex = regexp.MustCompile(
		`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`,
	)

	// SQL statements keep their shape but lose their values
	sqlSelectRegex = regexp.MustCompile(`(?i)\bSELECT\s+.*?\s+FROM\s+.*`)
	sqlInsertRegex = regexp.MustCompile(`(?i)\b(INSERT\s+INTO\s+[\w.]+\s*\([^)]*\)\s*VALUES)\s*\(.*\)`)
	sqlUpdateRegex = regexp.MustCompile(`(?i)\b(UPDATE\s+[\w.]+\s+SET)\s+.*`)
	sqlDeleteRegex = regexp.MustCompile(`(?i)\b(DELETE\s+FROM\s+[\w.]+)\s+WHERE\s+.*`)

	// File paths
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// Stack trace fragments
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)

	// Email addresses
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Additional sensitive patterns
	lineNumberRegex  = regexp.MustCompile(`(?:at )?line ?\d+`)
	syntaxErrorRegex = regexp.MustCompile(`(?i)syntax error|syntax problem|parse error`)
	hostPortRegex    = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)
	fileErrorRegex = regexp.MustCompile(
		`(?i)(?:no such file|file not found|can't open|cannot open|file error)`,
	)

	// replacements are applied in order; earlier patterns consume text so that
	// broad patterns (paths, hosts) don't shadow the specific ones. The SQL
	// templates use $1 to keep the statement shape while dropping its values.
	replacements = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{dbConnRegex, RedactedCredentialPlaceholder},
		{passwordRegex, RedactedCredentialPlaceholder},
		{apiKeyRegex, RedactedKeyPlaceholder},
		{awsKeyRegex, RedactedKeyPlaceholder},
		{sessionTokenRegex, RedactedTokenPlaceholder},
		{uuidRegex, "[REDACTED_UUID]"},
		{sqlSelectRegex, "SELECT FROM... [SQL_VALUES_REDACTED]"},
		{sqlInsertRegex, "$1 [SQL_VALUES_REDACTED]"},
		{sqlUpdateRegex, "$1 [SQL_VALUES_REDACTED]"},
		{sqlDeleteRegex, "$1 [SQL_WHERE_REDACTED]"},
		{unixPathRegex, RedactedPathPlaceholder},
		{winPathRegex, RedactedPathPlaceholder},
		{stackTraceRegex, "[STACK_TRACE_REDACTED]"},
		{emailRegex, "[REDACTED_EMAIL]"},
		{lineNumberRegex, "[REDACTED_LINE_NUMBER]"},
		{syntaxErrorRegex, "[REDACTED_SYNTAX_ERROR]"},
		{hostPortRegex, "[REDACTED_HOST]"},
		{fileErrorRegex, "[REDACTED_FILE_ERROR]"},
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
