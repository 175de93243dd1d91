package utils

import "strings"

// IsOK reports whether an HTTP status counts as a healthy answer (2xx or 3xx).
func IsOK(status int) bool {
	return status >= 200 && status < 400
}

// JoinURL appends path to a base URL without doubling the slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
