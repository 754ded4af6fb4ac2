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
	// Config Errors (L001-L019)
	// ============================================

	"L001": {
		Category: CategoryConfig,
		Message:  "loadable requires a Loading view",
		Detail:   "Options.Loading renders while the module loads and when it fails. It cannot be nil.",
	},
	"L002": {
		Category: CategoryConfig,
		Message:  "loadable map requires a Render function",
		Detail:   "A map loadable resolves to map[string]V, which has no default rendering. Provide MapOptions.Render.",
	},
	"L003": {
		Category: CategoryConfig,
		Message:  "loadable requires a Loader",
		Detail:   "Options.Loader (or every MapOptions.Loaders entry) must be a non-nil function.",
	},
	"L004": {
		Category: CategoryConfig,
		Message:  "invalid configuration value",
	},
	"L005": {
		Category: CategoryConfig,
		Message:  "configuration file not found",
	},
	"L006": {
		Category: CategoryConfig,
		Message:  "configuration file is not valid JSON",
	},

	// ============================================
	// Runtime Errors (L020-L039)
	// ============================================

	"L020": {
		Category: CategoryRuntime,
		Message:  "loader panicked",
		Detail:   "The loader function panicked. The panic value was converted into the load error.",
	},
	"L021": {
		Category: CategoryRuntime,
		Message:  "module fetch failed",
	},

	// ============================================
	// Hydration Errors (L040-L059)
	// ============================================

	"L040": {
		Category: CategoryHydration,
		Message:  "malformed preloadables payload",
		Detail:   "The payload script must contain a JSON array of strings.",
	},
	"L041": {
		Category: CategoryHydration,
		Message:  "unknown preloadable name",
		Detail:   "The server rendered a loadable that this process never registered. The page and the binary are probably out of sync.",
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
