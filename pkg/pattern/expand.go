package pattern

import (
	"net/url"
	"strings"

	"github.com/vango-dev/fragment/internal/errors"
)

// exprChars are pattern characters that have no literal expansion.
const exprChars = `()[]{}?+|^$\`

// Expand builds a fragment that the pattern matches, substituting params
// for named parameters and wildcards, in order, for "*". Parameter values
// are path-escaped; wildcard values are written as given. Optional
// parameters without a value are dropped together with their slash.
func (p *Pattern) Expand(params map[string]string, wildcards ...string) (string, error) {
	var b strings.Builder
	next := 0

	for _, tok := range tokenize(p.raw) {
		if tok.kind == tokenLiteral {
			for i := 0; i < len(tok.text); i++ {
				c := tok.text[i]
				switch {
				case c == '*':
					if next < len(wildcards) {
						b.WriteString(wildcards[next])
					}
					next++
				case strings.IndexByte(exprChars, c) >= 0:
					return "", errors.New("E101").WithLocation(p.raw, tok.offset+i)
				default:
					b.WriteByte(c)
				}
			}
			continue
		}

		v := params[tok.name]
		if v == "" {
			if tok.optional {
				continue
			}
			return "", errors.New("E102").
				WithLocation(p.raw, tok.offset).
				WithDetail("No value for required parameter :" + tok.name + ".")
		}
		if tok.slash {
			b.WriteByte('/')
		}
		if tok.dot {
			b.WriteByte('.')
		}
		b.WriteString(url.PathEscape(v))
	}

	out := b.String()
	if !p.MatchString(out) {
		return "", errors.New("E101").
			WithDetail("The expanded fragment " + out + " does not match " + p.raw + ".")
	}
	return out, nil
}
