package utils

import "strings"

// SplitFullName splits "owner/repo" into its parts.
func SplitFullName(fullName string) (owner, repo string, ok bool) {
	owner, repo, found := strings.Cut(strings.TrimSpace(fullName), "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// EscapeRef escapes each segment of a ref name, keeping the slashes.
func EscapeRef(ref string, escape func(string) string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = escape(p)
	}
	return strings.Join(parts, "/")
}
