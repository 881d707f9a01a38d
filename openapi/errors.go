package openapi

import "fmt"

// DuplicateOperationError reports a strict registration of a (path, method)
// pair that already holds a pending operation generator.
type DuplicateOperationError struct {
	Path   string
	Method string
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("operation already registered for %s %s", e.Method, e.Path)
}

// DuplicateOperationIDError reports two generated operations sharing an
// operation id. Ids are compared as opaque strings, case-sensitively.
type DuplicateOperationIDError struct {
	ID string
}

func (e *DuplicateOperationIDError) Error() string {
	return fmt.Sprintf("duplicate operation id %q", e.ID)
}

// SchemaConflictError reports two distinct definitions registered under the
// same component name.
type SchemaConflictError struct {
	Name string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("multiple definitions registered for component %q", e.Name)
}

// UnsupportedMethodError reports an HTTP method outside the fixed set
// supported by the Path Item Object.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported HTTP method %q", e.Method)
}

// ResponseOverlapError reports a response status key defined by more than
// one source while assembling an operation's responses.
type ResponseOverlapError struct {
	Status string
}

func (e *ResponseOverlapError) Error() string {
	return fmt.Sprintf("response for status %q defined more than once", e.Status)
}
