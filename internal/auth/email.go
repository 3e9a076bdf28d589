package auth

import "regexp"

// emailPattern is deliberately loose: non-empty local part, one @, and a
// dot somewhere in the domain. Stricter RFC validation would reject
// addresses the rest of the flow accepts.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like a deliverable email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
