// Package pattern compiles route patterns into anchored regular expressions
// and matches fragments against them.
//
// # Pattern Syntax
//
//	/user/:id            → named parameter, one segment
//	/user/:id?           → optional parameter (the slash is optional too)
//	/file/:name.:ext     → parameter after a literal dot stops at the next dot
//	/user/:id(\d+)       → parameter with a custom capture group
//	/files/*             → wildcard, greedy over the rest of the fragment
//	/user(/edit)         → "/(" opens a non-capturing group
//
// Any other text is used as expression syntax, except that "/" and "."
// always match literally. Unless a pattern is compiled strict, a trailing
// slash is optional.
//
// # Usage
//
//	p, err := pattern.Compile("/user/:id/:action?", false)
//	if err != nil {
//	    // *PatternError: the pattern is malformed
//	}
//
//	m := p.Match("/user/42")
//	if m != nil {
//	    // m.Params["id"] == "42"
//	    // _, ok := m.Lookup("action") → ok == false
//	}
//
// Compiled patterns are immutable and safe for concurrent use. The package
// level Match and Cached functions share a process-wide cache keyed by the
// pattern text and strictness.
package pattern
