package classify

import "strings"

// Redaction parameters. The snippet shows at most visibleEdge characters
// from each end of the match with a fixed mask in between. This is a
// hard invariant, not formatting: findings end up in persisted report
// files.
const (
	visibleEdge = 4
	redactMask  = "****"
)

// Redact produces the redacted form of a matched secret. Multi-line
// matches (PEM blocks) collapse to their first line before redaction so
// no key material survives.
func Redact(secret string) string {
	if i := strings.IndexByte(secret, '\n'); i >= 0 {
		secret = secret[:i]
	}
	secret = strings.TrimSpace(secret)
	if len(secret) <= visibleEdge*2 {
		return redactMask
	}
	return secret[:visibleEdge] + redactMask + secret[len(secret)-visibleEdge:]
}
