// Package errors provides structured, coded errors for the fragment router.
//
// Every error carries a code (e.g. "E100") registered with a category, a
// short message and a longer explanation. Errors about a specific input,
// such as a route pattern, can point at the offending byte so the CLI can
// print a caret under it.
//
// # Error Categories
//
//   - pattern: route patterns that do not compile or cannot be expanded
//   - route: registration problems (nil handlers, panicking handlers)
//   - fragment: malformed fragments (bad percent escapes)
//   - config: fragment.json problems
//   - partial: partial content that cannot be fetched or delivered
//   - bridge: WebSocket frames the bridge cannot decode
//
// # Usage
//
//	err := errors.New("E100").
//	    WithLocation("/user/:id(\\d+", 9).
//	    WithSuggestion("Close the custom capture group with ')'")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E100: Invalid route pattern
//	//
//	//   /user/:id(\d+
//	//            ^
//	//
//	//   Hint: Close the custom capture group with ')'
package errors
