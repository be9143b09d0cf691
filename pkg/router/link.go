package router

import (
	"github.com/vango-dev/fragment/pkg/pattern"
)

// Href builds a "#"-prefixed link for a route pattern by substituting
// params and wildcards. It is the inverse of matching: the result, without
// the "#", matches raw and yields the same params.
func Href(raw string, params map[string]string, wildcards ...string) (string, error) {
	p, err := pattern.Cached(raw, false)
	if err != nil {
		return "", err
	}
	frag, err := p.Expand(params, wildcards...)
	if err != nil {
		return "", err
	}
	return "#" + frag, nil
}

// MustHref is like Href but panics on error. Use it for links built from
// constant patterns.
func MustHref(raw string, params map[string]string, wildcards ...string) string {
	href, err := Href(raw, params, wildcards...)
	if err != nil {
		panic(err)
	}
	return href
}
