package pattern

// MatchResult is the outcome of a successful match.
type MatchResult struct {
	// Path is the full matched text.
	Path string

	// Names are the named parameters of the pattern, in order.
	Names []ParamDescriptor

	// Values holds every capture of the expression by position; Values[0]
	// is the full match. Groups that did not participate are "".
	Values []string

	// Params maps parameter names to captured text. Optional parameters
	// that did not match are absent. When a name repeats, the later
	// capture wins.
	Params map[string]string

	// Wildcards holds the "*" captures in pattern order.
	Wildcards []string

	defined []bool
}

// Lookup returns the value of a named parameter and whether it matched.
func (m *MatchResult) Lookup(name string) (string, bool) {
	v, ok := m.Params[name]
	return v, ok
}

// Get returns the value of a named parameter, or "" if it did not match.
func (m *MatchResult) Get(name string) string {
	return m.Params[name]
}

// ValueAt returns the capture at position i and whether that group took
// part in the match.
func (m *MatchResult) ValueAt(i int) (string, bool) {
	if i < 0 || i >= len(m.Values) {
		return "", false
	}
	return m.Values[i], m.defined[i]
}

// Wildcard returns the first wildcard capture, or "".
func (m *MatchResult) Wildcard() string {
	if len(m.Wildcards) == 0 {
		return ""
	}
	return m.Wildcards[0]
}

// Match applies the pattern to candidate. It returns nil when the
// candidate does not match; that is not an error.
func (p *Pattern) Match(candidate string) *MatchResult {
	idx := p.re.FindStringSubmatchIndex(candidate)
	if idx == nil {
		return nil
	}

	n := len(idx) / 2
	m := &MatchResult{
		Path:    candidate[idx[0]:idx[1]],
		Names:   p.Params(),
		Values:  make([]string, n),
		Params:  make(map[string]string, len(p.params)),
		defined: make([]bool, n),
	}
	for g := 0; g < n; g++ {
		if idx[2*g] >= 0 {
			m.Values[g] = candidate[idx[2*g]:idx[2*g+1]]
			m.defined[g] = true
		}
	}

	for g := 1; g < n; g++ {
		ref := p.groups[g]
		switch ref.kind {
		case groupParam:
			name := p.params[ref.index].Name
			if m.defined[g] {
				m.Params[name] = m.Values[g]
			} else {
				delete(m.Params, name)
			}
		case groupWildcard:
			m.Wildcards = append(m.Wildcards, m.Values[g])
		}
	}
	return m
}

// MatchString reports whether candidate matches the pattern.
func (p *Pattern) MatchString(candidate string) bool {
	return p.re.MatchString(candidate)
}

// Match compiles raw (non-strict, through the shared cache) and applies it
// to candidate. The error is non-nil only for malformed patterns; a
// candidate that does not match yields a nil result and a nil error.
func Match(raw, candidate string) (*MatchResult, error) {
	p, err := Cached(raw, false)
	if err != nil {
		return nil, err
	}
	return p.Match(candidate), nil
}
