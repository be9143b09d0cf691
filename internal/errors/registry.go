package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Pattern Errors (E100-E104)
	// ============================================

	"E100": {
		Category: CategoryPattern,
		Message:  "Invalid route pattern",
		Detail:   "The route pattern does not produce a valid matching expression. This is usually caused by an unbalanced parenthesis in a custom capture group.",
	},
	"E101": {
		Category: CategoryPattern,
		Message:  "Pattern cannot be expanded",
		Detail:   "The pattern contains expression syntax that cannot be turned back into a fragment.",
	},
	"E102": {
		Category: CategoryPattern,
		Message:  "Missing route parameter",
		Detail:   "A required route parameter was not provided.",
	},

	// ============================================
	// Route Errors (E105-E109)
	// ============================================

	"E105": {
		Category: CategoryRoute,
		Message:  "Route handler is nil",
		Detail:   "Every registered route needs a handler function.",
	},
	"E106": {
		Category: CategoryRoute,
		Message:  "Handler panicked",
		Detail:   "A route handler panicked while a fragment change was being dispatched.",
	},

	// ============================================
	// Fragment Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryFragment,
		Message:  "Invalid percent escape in fragment",
		Detail:   "Percent escapes must be written as % followed by two hex digits.",
	},
	"E111": {
		Category: CategoryFragment,
		Message:  "Encoded slash in parameter",
		Detail:   "A single-segment parameter decoded to a value containing '/'.",
	},

	// ============================================
	// Configuration Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid fragment.json",
		Detail:   "The fragment.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No fragment.json file was found.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong format.",
	},

	// ============================================
	// Partial Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryPartial,
		Message:  "Unsupported partial source",
		Detail:   "No partial source is registered for the URL scheme.",
	},
	"E131": {
		Category: CategoryPartial,
		Message:  "Partial fetch failed",
		Detail:   "The partial content could not be retrieved from its source.",
	},
	"E132": {
		Category: CategoryPartial,
		Message:  "Partial delivery failed",
		Detail:   "The partial content could not be delivered to its target.",
	},
	"E133": {
		Category: CategoryPartial,
		Message:  "Invalid partial path",
		Detail:   "The partial URL does not name an object the source can read.",
	},

	// ============================================
	// Bridge Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryBridge,
		Message:  "Invalid bridge frame",
		Detail:   "The client sent a frame that could not be decoded.",
	},
	"E141": {
		Category: CategoryBridge,
		Message:  "Dispatch failed",
		Detail:   "A route handler returned an error while handling a fragment change.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
