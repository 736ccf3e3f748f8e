package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// CLI Errors (E100-E109)
	// ============================================

	"E100": {
		Category: CategoryCLI,
		Message:  "Missing component name",
		DocURL:   "https://uicli.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryCLI,
		Message:  "Invalid command line",
		DocURL:   "https://uicli.dev/docs/errors/E101",
	},

	// ============================================
	// Validation Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryValidation,
		Message:  "Invalid component name",
		DocURL:   "https://uicli.dev/docs/errors/E110",
	},

	// ============================================
	// Configuration Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Failed to load uicli.json",
		DocURL:   "https://uicli.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid uicli.json",
		DocURL:   "https://uicli.dev/docs/errors/E121",
	},

	// ============================================
	// Network Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryNetwork,
		Message:  "Component not found",
		DocURL:   "https://uicli.dev/docs/errors/E130",
	},
	"E131": {
		Category: CategoryNetwork,
		Message:  "Rate limit exceeded",
		DocURL:   "https://uicli.dev/docs/errors/E131",
	},
	"E132": {
		Category: CategoryNetwork,
		Message:  "Network error",
		DocURL:   "https://uicli.dev/docs/errors/E132",
	},
	"E133": {
		Category: CategoryNetwork,
		Message:  "Unexpected response from component library",
		DocURL:   "https://uicli.dev/docs/errors/E133",
	},

	// ============================================
	// Filesystem Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryFilesystem,
		Message:  "Failed to write file",
		DocURL:   "https://uicli.dev/docs/errors/E140",
	},

	// ============================================
	// Dependency Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategoryDependency,
		Message:  "Failed to install package dependencies",
		DocURL:   "https://uicli.dev/docs/errors/E150",
	},

	// ============================================
	// Tailwind Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryConfig,
		Message:  "Tailwind config not recognized",
		DocURL:   "https://uicli.dev/docs/errors/E160",
	},
}

// Lookup returns the template for an error code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
