// Package recerrors provides sentinel and custom error types for the engine.
package recerrors

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// ErrValidation represents a validation error.
// Use when client input fails validation.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// ErrProviderUnavailable is the sentinel for unreachable external capabilities
// (vector store, LLM, embeddings). The orchestrator maps it to a
// service-degraded response instead of an empty success.
var ErrProviderUnavailable = &ProviderUnavailableError{}

// ProviderUnavailableError is a sentinel error for provider outages/timeouts.
type ProviderUnavailableError struct {
	Provider string
	Message  string
}

// NewProviderUnavailableError creates a ProviderUnavailableError.
func NewProviderUnavailableError(provider, message string) *ProviderUnavailableError {
	return &ProviderUnavailableError{Provider: provider, Message: message}
}

// Error implements the error interface.
func (e *ProviderUnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Provider != "" {
		return e.Provider + " unavailable"
	}

	return "provider unavailable"
}

// Is implements the error interface for error comparison.
func (e *ProviderUnavailableError) Is(target error) bool {
	_, ok := target.(*ProviderUnavailableError)

	return ok
}

// ErrConfiguration is the sentinel for invalid startup configuration
// (ranking weights not summing to 1.0, embedding dimension mismatch).
// Fatal at startup: the pipeline must not serve traffic with these.
var ErrConfiguration = &ConfigurationError{}

// ConfigurationError is a sentinel error for invalid configuration.
type ConfigurationError struct {
	Setting string
	Message string
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Message: message}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Setting != "" {
		return "invalid configuration: " + e.Setting
	}

	return "configuration error"
}

// Is implements the error interface for error comparison.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)

	return ok
}
