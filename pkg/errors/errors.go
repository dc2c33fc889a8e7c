// Package errors provides custom error types for the plating system.
// These errors enable programmatic error checking across discovery,
// registry, and rendering while keeping per-bundle failures isolated
// from one another.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Join wraps a list of errors into one.
// It's an alias for the standard library errors.Join.
var Join = errors.Join

// Common sentinel errors for the plating system
var (
	// ErrNotFound indicates that a requested bundle or component was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a bundle or set already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUndocumented indicates a bundle without a main template was
	// given to an operation that requires one
	ErrUndocumented = errors.New("bundle has no main template")

	// ErrCycle indicates a cyclic partial reference during rendering
	ErrCycle = errors.New("template cycle")

	// ErrSchemaUnavailable indicates schema() was called but the
	// provider returned nothing for the component
	ErrSchemaUnavailable = errors.New("schema unavailable")

	// ErrTransient indicates a retryable I/O failure
	ErrTransient = errors.New("transient I/O failure")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// RenderKind classifies per-bundle rendering failures.
type RenderKind string

// Render failure kinds. Each is fatal for the bundle being rendered
// and harmless to every other bundle in the same run.
const (
	KindMissingExample    RenderKind = "missing_example"
	KindMissingPartial    RenderKind = "missing_partial"
	KindTemplateCycle     RenderKind = "template_cycle"
	KindSchemaUnavailable RenderKind = "schema_unavailable"
	KindTimeout           RenderKind = "timeout"
	KindTemplateInvalid   RenderKind = "template_invalid"
)

// RenderError represents a failure while rendering one bundle's template.
type RenderError struct {
	Bundle string
	Kind   RenderKind
	Detail string
	Err    error
}

// Error implements the error interface
func (e *RenderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("rendering %s: %s: %s", e.Bundle, e.Kind, e.Detail)
	}
	return fmt.Sprintf("rendering %s: %s", e.Bundle, e.Kind)
}

// Unwrap implements errors.Unwrap
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RenderError) Is(target error) bool {
	switch e.Kind {
	case KindTemplateCycle:
		return target == ErrCycle
	case KindSchemaUnavailable:
		return target == ErrSchemaUnavailable
	case KindTimeout:
		return target == ErrTimeout
	case KindMissingExample, KindMissingPartial:
		return target == ErrNotFound
	}
	return false
}

// NewRenderError creates a new RenderError
func NewRenderError(bundle string, kind RenderKind, detail string) *RenderError {
	return &RenderError{Bundle: bundle, Kind: kind, Detail: detail}
}

// DiscoveryError represents a recoverable problem while scanning one root.
// Discovery records these as warnings and keeps going; a bad root never
// aborts a scan.
type DiscoveryError struct {
	Root string
	Err  error
}

// Error implements the error interface
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("scanning root %s: %v", e.Root, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// NewDiscoveryError creates a new DiscoveryError
func NewDiscoveryError(root string, err error) *DiscoveryError {
	return &DiscoveryError{Root: root, Err: err}
}

// ComponentNotFoundError is raised when a set filter references a
// component the registry does not know. Callers accumulate these
// rather than failing the whole set-creation call.
type ComponentNotFoundError struct {
	Name      string
	Dimension string
	Domain    string
}

// Error implements the error interface
func (e *ComponentNotFoundError) Error() string {
	if e.Domain != "" {
		return fmt.Sprintf("component %s/%s not found (domain %s)", e.Dimension, e.Name, e.Domain)
	}
	return fmt.Sprintf("component %s/%s not found", e.Dimension, e.Name)
}

// Is implements errors.Is support
func (e *ComponentNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// WriteError represents a failed output write after retries were exhausted.
type WriteError struct {
	Bundle   string
	Path     string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("writing %s for bundle %s failed after %d attempts: %v", e.Path, e.Bundle, e.Attempts, e.Err)
	}
	return fmt.Sprintf("writing %s for bundle %s: %v", e.Path, e.Bundle, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "walk", "stat"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error with I/O operation context
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapResource wraps an error with resource context
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if id != "" {
		return fmt.Errorf("%s %s %s: %w", operation, resource, id, err)
	}
	return fmt.Errorf("%s %s: %w", operation, resource, err)
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCycle checks if an error is a template cycle error
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}

// IsTransient checks if an error is a retryable I/O failure
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// RenderKindOf extracts the render failure kind from an error tree,
// or "" if the error is not a RenderError.
func RenderKindOf(err error) RenderKind {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
