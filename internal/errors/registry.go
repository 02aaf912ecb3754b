package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Input Errors (E001-E009)
	// ============================================

	"E001": {
		Category: CategoryInput,
		Message:  "Invalid element",
		Detail:   "Render must be called with a well-formed element: a host element with a tag or a composite element with a constructor.",
	},
	"E002": {
		Category: CategoryInput,
		Message:  "Invalid root node type",
		Detail:   "Render needs a non-nil factory for the backend's top-level node.",
	},

	// ============================================
	// Backend Configuration Errors (E010-E019)
	// ============================================

	"E010": {
		Category: CategoryConfig,
		Message:  "Unknown element type",
		Detail:   "The element's tag is not present in the type map of the parent node nor in the root's type map.",
	},
	"E011": {
		Category: CategoryConfig,
		Message:  "Invalid type map",
		Detail:   "Type map tags must be non-empty words without whitespace and every tag needs a non-nil factory.",
	},
	"E012": {
		Category: CategoryConfig,
		Message:  "Node destroyed twice",
		Detail:   "Destroy must be called exactly once per native node.",
	},

	// ============================================
	// Lifecycle Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryLifecycle,
		Message:  "Parent node not registered",
		Detail:   "A child was mounted before its parent was registered. This is a lifecycle ordering violation by the reconciler.",
	},
	"E021": {
		Category: CategoryLifecycle,
		Message:  "No root node installed",
		Detail:   "A top-level element was mounted before a root node was installed in the registry.",
	},
	"E030": {
		Category: CategoryLifecycle,
		Message:  "Generic component not injected",
		Detail:   "The reconciler was asked to instantiate a host element before a generic component implementation was injected.",
	},
	"E031": {
		Category: CategoryLifecycle,
		Message:  "Lifecycle call out of order",
		Detail:   "A mount, update or unmount was requested in a state that does not allow it.",
	},

	// ============================================
	// Configuration File Errors (E040-E049)
	// ============================================

	"E040": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E041": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
	},

	// ============================================
	// Runtime Errors (E050-E059)
	// ============================================

	"E050": {
		Category: CategoryRuntime,
		Message:  "Snapshot export failed",
		Detail:   "A render snapshot could not be encoded or written to its sink.",
	},
	"E051": {
		Category: CategoryRuntime,
		Message:  "Render pass failed",
		Detail:   "The root node or one of its descendants returned an error while rendering.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
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
