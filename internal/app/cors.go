package app

import (
	"net/url"
	"strings"
)

// extractOriginHost reduces an Origin header value to its "host[:port]" part.
// Values that do not parse as URLs are returned unchanged.
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern matches a host against an allow-list entry. Supported
// forms: exact host, "*.example.com" subdomain wildcards and "host:*" port
// wildcards.
func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
