package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// IsAbsoluteURL reports whether raw parses as a URL carrying its own scheme.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// Origin returns scheme://host of rawURL, or "" when it has neither.
func Origin(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// JoinOrigin appends "/"+path to origin and collapses repeated slashes in the
// appended part. A leading "//" in path is not treated as protocol-relative.
func JoinOrigin(origin, path string) string {
	return origin + repeatedSlashes.ReplaceAllString("/"+path, "/")
}

// DomainLabel is the host of rawURL without a leading "www.".
func DomainLabel(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
