package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParamDescriptor describes one named parameter of a pattern.
type ParamDescriptor struct {
	// Name is the parameter name without the leading ":".
	Name string `json:"name"`

	// Optional is true for parameters written with a trailing "?".
	Optional bool `json:"optional"`
}

type groupKind int

const (
	groupPositional groupKind = iota // capture group written in the pattern text
	groupParam
	groupWildcard
)

// groupRef identifies what a capture group of the expression stands for.
type groupRef struct {
	kind  groupKind
	index int // index into params for groupParam
}

// Pattern is a compiled route pattern. It is immutable once built.
type Pattern struct {
	raw       string
	strict    bool
	expr      string
	re        *regexp.Regexp
	params    []ParamDescriptor
	groups    []groupRef // indexed by subexpression number, groups[0] is the whole match
	wildcards int
}

// Compile turns a route pattern into a Pattern.
//
// Unless strict is set, a trailing slash is optional. A pattern that does
// not produce a valid expression returns a *PatternError, as does one that
// names its own group p<N> or w<N>; those names belong to parameters and
// wildcards.
//
// Custom captures such as :n(.+) are copied into the expression as written.
// Unlike the rest of the pattern, "/" and "." inside them are not escaped,
// so "." keeps its any-character meaning.
func Compile(raw string, strict bool) (*Pattern, error) {
	src := raw
	if !strict {
		src += "/?"
	}
	src = strings.ReplaceAll(src, "/(", "(?:/")

	var b builder
	for _, tok := range tokenize(src) {
		switch tok.kind {
		case tokenParam:
			b.param(tok)
		default:
			b.literal(tok.text)
		}
	}

	expr := "^" + b.String() + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, newPatternError(raw, expr, err)
	}

	p := &Pattern{
		raw:       raw,
		strict:    strict,
		expr:      expr,
		re:        re,
		params:    b.params,
		wildcards: b.wildcards,
	}
	seen := make(map[groupRef]bool)
	p.groups = make([]groupRef, len(re.SubexpNames()))
	for i, name := range re.SubexpNames() {
		if i == 0 {
			continue
		}
		ref := parseGroupName(name)
		if ref.kind != groupPositional {
			// Each builder group appears exactly once; anything else was
			// written in the pattern text under a reserved name.
			if !p.owns(ref) || seen[ref] {
				return nil, newReservedGroupError(raw, expr, name)
			}
			seen[ref] = true
		}
		p.groups[i] = ref
	}
	return p, nil
}

// MustCompile is like Compile but panics if the pattern is malformed.
func MustCompile(raw string, strict bool) *Pattern {
	p, err := Compile(raw, strict)
	if err != nil {
		panic(err)
	}
	return p
}

// Raw returns the pattern text the Pattern was compiled from.
func (p *Pattern) Raw() string {
	return p.raw
}

// Strict reports whether a trailing slash is required to match exactly.
func (p *Pattern) Strict() bool {
	return p.strict
}

// Expr returns the anchored regular expression built from the pattern.
func (p *Pattern) Expr() string {
	return p.expr
}

// Params returns the named parameters in pattern order.
func (p *Pattern) Params() []ParamDescriptor {
	out := make([]ParamDescriptor, len(p.params))
	copy(out, p.params)
	return out
}

// NumWildcards returns the number of "*" captures in the pattern.
func (p *Pattern) NumWildcards() int {
	return p.wildcards
}

// String returns the raw pattern.
func (p *Pattern) String() string {
	return p.raw
}

// builder accumulates the expression for a tokenized pattern.
type builder struct {
	strings.Builder
	params    []ParamDescriptor
	wildcards int
}

// literal writes pattern text with "/" and "." escaped and "*" turned
// into a greedy capture.
func (b *builder) literal(text string) {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '/', '.':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '*':
			fmt.Fprintf(b, "(?P<w%d>.*)", b.wildcards)
			b.wildcards++
		default:
			b.WriteByte(c)
		}
	}
}

// param writes the group for a parameter token. A required parameter keeps
// its slash outside the group; an optional one moves it inside so a
// missing segment consumes the slash as well.
func (b *builder) param(tok token) {
	idx := len(b.params)
	b.params = append(b.params, ParamDescriptor{Name: tok.name, Optional: tok.optional})

	if tok.slash && !tok.optional {
		b.WriteString(`\/`)
	}
	b.WriteString("(?:")
	if tok.slash && tok.optional {
		b.WriteString(`\/`)
	}
	if tok.dot {
		b.WriteString(`\.`)
	}

	open := "(?P<p" + strconv.Itoa(idx) + ">"
	switch {
	case tok.capture != "" && !strings.HasPrefix(tok.capture, "(?"):
		b.WriteString(open + tok.capture[1:])
	case tok.capture != "":
		b.WriteString(open + tok.capture + ")")
	case tok.dot:
		b.WriteString(open + `[^\/\.]+?)`)
	default:
		b.WriteString(open + `[^\/]+?)`)
	}

	b.WriteString(")")
	if tok.optional {
		b.WriteString("?")
	}
}

// owns reports whether ref names a group the builder emitted.
func (p *Pattern) owns(ref groupRef) bool {
	switch ref.kind {
	case groupParam:
		return ref.index >= 0 && ref.index < len(p.params)
	case groupWildcard:
		return ref.index >= 0 && ref.index < p.wildcards
	}
	return true
}

// parseGroupName maps a subexpression name produced by the builder back to
// its parameter or wildcard. Unnamed groups come from the pattern text.
func parseGroupName(name string) groupRef {
	if len(name) < 2 {
		return groupRef{kind: groupPositional}
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || strconv.Itoa(n) != name[1:] {
		return groupRef{kind: groupPositional}
	}
	switch name[0] {
	case 'p':
		return groupRef{kind: groupParam, index: n}
	case 'w':
		return groupRef{kind: groupWildcard, index: n}
	}
	return groupRef{kind: groupPositional}
}
