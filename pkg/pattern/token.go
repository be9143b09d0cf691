package pattern

import "strings"

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenParam
)

// token is one piece of a route pattern: literal text or a parameter.
type token struct {
	kind tokenKind

	// text is the literal text, or the raw source of a parameter token.
	text string

	// offset is the byte offset of the token in the scanned input.
	offset int

	slash    bool   // parameter was preceded by "/"
	dot      bool   // parameter was preceded by "."
	name     string // parameter name without ":"
	capture  string // custom capture group including parentheses
	optional bool   // parameter ended with "?"
}

// tokenize splits s into literal runs and parameter tokens. A parameter
// token is an optional "/", an optional ".", ":", a name of word
// characters, an optional "( ... )" group closed by the first ")", and an
// optional "?".
func tokenize(s string) []token {
	var tokens []token
	start := 0

	for i := 0; i < len(s); {
		tok, end, ok := scanParam(s, i)
		if !ok {
			i++
			continue
		}
		if start < i {
			tokens = append(tokens, token{kind: tokenLiteral, text: s[start:i], offset: start})
		}
		tokens = append(tokens, tok)
		i, start = end, end
	}

	if start < len(s) {
		tokens = append(tokens, token{kind: tokenLiteral, text: s[start:], offset: start})
	}
	return tokens
}

// scanParam tries to read a parameter token starting at i.
func scanParam(s string, i int) (token, int, bool) {
	tok := token{kind: tokenParam, offset: i}
	j := i

	if j < len(s) && s[j] == '/' {
		tok.slash = true
		j++
	}
	if j < len(s) && s[j] == '.' {
		tok.dot = true
		j++
	}
	if j+1 >= len(s) || s[j] != ':' || !isWordChar(s[j+1]) {
		return token{}, 0, false
	}

	k := j + 1
	for k < len(s) && isWordChar(s[k]) {
		k++
	}
	tok.name = s[j+1 : k]

	if k < len(s) && s[k] == '(' {
		if closing := strings.IndexByte(s[k:], ')'); closing >= 0 {
			tok.capture = s[k : k+closing+1]
			k += closing + 1
		}
	}
	if k < len(s) && s[k] == '?' {
		tok.optional = true
		k++
	}

	tok.text = s[i:k]
	return tok, k, true
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
