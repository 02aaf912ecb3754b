package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryInput     Category = "input"
	CategoryConfig    Category = "config"
	CategoryLifecycle Category = "lifecycle"
	CategoryRuntime   Category = "runtime"
)

// NodeRef identifies the native node an error relates to.
type NodeRef struct {
	ID  string `json:"id,omitempty"`
	Tag string `json:"tag,omitempty"`
}

// String returns the node reference as "tag@id".
func (n *NodeRef) String() string {
	if n == nil {
		return ""
	}
	if n.Tag == "" {
		return n.ID
	}
	if n.ID == "" {
		return n.Tag
	}
	return n.Tag + "@" + n.ID
}

// BridgeError is a structured error with node context, suggestions, and documentation.
type BridgeError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (input, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Node is the native node the error occurred on, if any.
	Node *NodeRef

	// Suggestion is a hint on how to fix the error.
	Suggestion string


	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Node != nil {
		msg += " (" + e.Node.String() + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BridgeError) Unwrap() error {
	return e.Wrapped
}

// WithNode attaches the node id and tag the error relates to.
func (e *BridgeError) WithNode(id, tag string) *BridgeError {
	e.Node = &NodeRef{ID: id, Tag: tag}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BridgeError) WithSuggestion(s string) *BridgeError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *BridgeError) WithDetail(d string) *BridgeError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *BridgeError) Wrap(err error) *BridgeError {
	e.Wrapped = err
	return e
}

// New creates a BridgeError from a registered error code.
func New(code string) *BridgeError {
	template, ok := registry[code]
	if !ok {
		return &BridgeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BridgeError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new BridgeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *BridgeError {
	return &BridgeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a BridgeError.
func FromError(err error, code string) *BridgeError {
	if err == nil {
		return nil
	}
	if be, ok := err.(*BridgeError); ok {
		return be
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first BridgeError in err's tree, or "".
func CodeOf(err error) string {
	var be *BridgeError
	if stderrors.As(err, &be) {
		return be.Code
	}
	return ""
}
