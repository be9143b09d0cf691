// Package routepath extracts and decodes the routable fragment of a URL.
package routepath

import (
	"net/url"
	"strings"

	"github.com/vango-dev/fragment/internal/errors"
)

// FromURL returns everything after the first "#" in href, verbatim.
// It returns "" when href has no fragment.
func FromURL(href string) string {
	_, fragment, found := strings.Cut(href, "#")
	if !found {
		return ""
	}
	return fragment
}

// WithFragment returns href with its fragment replaced by fragment. An
// empty fragment keeps the "#" so the result still differs from a URL
// without one.
func WithFragment(href, fragment string) string {
	base, _, _ := strings.Cut(href, "#")
	return base + "#" + fragment
}

// SplitQuery splits a fragment such as "/search?q=go" into its path and
// query parts. The query is returned without the leading "?".
func SplitQuery(fragment string) (path, query string) {
	path, query, _ = strings.Cut(fragment, "?")
	return path, query
}

// Decode percent-decodes a fragment. Invalid escapes are rejected with an
// E110 error pointing at the offending "%".
func Decode(fragment string) (string, error) {
	if !strings.Contains(fragment, "%") {
		return fragment, nil
	}
	if off := invalidEscapeOffset(fragment); off >= 0 {
		return "", errors.New("E110").WithLocation(fragment, off)
	}
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return "", errors.New("E110").Wrap(err)
	}
	return decoded, nil
}

// DecodeSegment decodes a single parameter value. Unless the value came
// from a wildcard, an encoded "/" (%2F) is rejected.
func DecodeSegment(segment string, isWildcard bool) (string, error) {
	if !isWildcard {
		if off := strings.Index(strings.ToUpper(segment), "%2F"); off >= 0 {
			return "", errors.New("E111").WithLocation(segment, off)
		}
	}
	return Decode(segment)
}

// invalidEscapeOffset returns the offset of the first malformed percent
// escape in s, or -1. Valid escapes are %XX where X is a hex digit.
func invalidEscapeOffset(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !isHexDigit(s[i+1]) || !isHexDigit(s[i+2]) {
			return i
		}
		i += 2
	}
	return -1
}

// isHexDigit returns true if c is a valid hex digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
