package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Dispatch Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryDispatch,
		Message:  "View module not found",
		Detail:   "No view module is registered under this name, and no fallback template exists for the page.",
		DocURL:   "https://routra.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryDispatch,
		Message:  "View function not defined",
		Detail:   "The view module exists but does not define a function with this name.",
		DocURL:   "https://routra.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryDispatch,
		Message:  "View function not registered",
		Detail:   "The function exists but was exposed without registration, so it is not routable. Register it to make it dispatchable.",
		DocURL:   "https://routra.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryDispatch,
		Message:  "Invalid view signature",
		Detail:   "View functions take *http.Request first and return a single value.",
		DocURL:   "https://routra.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryDispatch,
		Message:  "View returned no response",
		Detail:   "The view (or a post-dispatch hook) produced a value that is not a Response.",
		DocURL:   "https://routra.dev/docs/errors/E005",
	},
	"E006": {
		Category: CategoryDispatch,
		Message:  "Redirect chain too long",
		Detail:   "Internal redirects exceeded the configured limit. Check for views that redirect to each other.",
		DocURL:   "https://routra.dev/docs/errors/E006",
	},
	"E007": {
		Category: CategoryDispatch,
		Message:  "Method not allowed",
		Detail:   "The class-based view defines no handler for this HTTP method.",
		DocURL:   "https://routra.dev/docs/errors/E007",
	},
	"E008": {
		Category: CategoryDispatch,
		Message:  "Dispatch context missing",
		Detail:   "The request reached the dispatcher without a dispatch context. Install the routectx middleware ahead of it.",
		DocURL:   "https://routra.dev/docs/errors/E008",
	},

	// ============================================
	// Conversion Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryConversion,
		Message:  "URL parameter conversion failed",
		Detail:   "A positional URL parameter could not be converted to the view parameter's type.",
		DocURL:   "https://routra.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryConversion,
		Message:  "Too many URL parameters",
		Detail:   "The URL supplies more positional parameters than the view accepts.",
		DocURL:   "https://routra.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategoryConversion,
		Message:  "No converter for parameter type",
		Detail:   "No converter is registered for this parameter type and no kind-based default applies.",
		DocURL:   "https://routra.dev/docs/errors/E022",
	},

	// ============================================
	// Template Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryTemplate,
		Message:  "Template not found",
		Detail:   "The fallback template for this page does not exist in the app's template directory.",
		DocURL:   "https://routra.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryTemplate,
		Message:  "Template parse failed",
		Detail:   "The template file exists but could not be parsed.",
		DocURL:   "https://routra.dev/docs/errors/E041",
	},
	"E042": {
		Category: CategoryTemplate,
		Message:  "Template render failed",
		Detail:   "The template failed while executing, usually from a missing field or a nil value.",
		DocURL:   "https://routra.dev/docs/errors/E042",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid routra.json",
		Detail:   "The routra.json configuration file is malformed.",
		DocURL:   "https://routra.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://routra.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is invalid or already in use.",
		DocURL:   "https://routra.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Template directory not found",
		Detail:   "The configured template directory does not exist.",
		DocURL:   "https://routra.dev/docs/errors/E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Not a Routra project",
		Detail:   "The current directory is not a Routra project. Run this command from a directory with routra.json.",
		DocURL:   "https://routra.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed to start",
		Detail:   "The HTTP server could not bind or serve. Check the host and port configuration.",
		DocURL:   "https://routra.dev/docs/errors/E141",
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
