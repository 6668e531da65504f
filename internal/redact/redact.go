package redact

import "regexp"

const redacted = "[REDACTED]"

// userinfoPattern matches credentials embedded in a URL authority.
var userinfoPattern = regexp.MustCompile(`(?i)\b(https?://)[^/\s@"]+@`)

// queryPattern matches credential-bearing query parameters.
var queryPattern = regexp.MustCompile(`(?i)([?&](?:access_token|token|api_key|apikey|key|secret|password|sig)=)[^&\s"#]+`)

// patterns holds single-line secret-detection regexes in priority order.
var patterns = []*regexp.Regexp{
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// sk- style API keys
	regexp.MustCompile(`\bsk-[a-zA-Z0-9]{20,}`),
	// JWT tokens (three base64url segments)
	regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`),
	// Bearer tokens; require minimum 20-char token to avoid false positives
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]{20,}=*`),
	// Inline password assignments
	regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
}

// Redact replaces credentials in input with [REDACTED]. It is applied to
// every error message before it is logged, since transport errors echo the
// request URL verbatim.
func Redact(input string) string {
	input = userinfoPattern.ReplaceAllString(input, "${1}"+redacted+"@")
	input = queryPattern.ReplaceAllString(input, "${1}"+redacted)
	for _, re := range patterns {
		input = re.ReplaceAllString(input, redacted)
	}
	return input
}

// Error returns the redacted message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Redact(err.Error())
}
