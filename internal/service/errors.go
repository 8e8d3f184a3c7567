package service

import (
	"errors"
	"fmt"
)

// Provider error codes and types for failures raised before or around the HTTP call
const (
	ConfigurationErrorCode = 400
	ConfigurationErrorType = "CONFIGURATION_ERROR"
	NetworkErrorCode       = 500
	NetworkErrorType       = "NETWORK_ERROR"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// BusinessLogicError represents a business logic error
type BusinessLogicError struct {
	Message string
}

func (e *BusinessLogicError) Error() string {
	return fmt.Sprintf("business logic error: %s", e.Message)
}

// ConflictError represents a conflict error (e.g., a campaign already started)
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict with %s: %s", e.Resource, e.Message)
}

// ConfigurationError means a required credential or setting is missing.
// It is raised before any network call.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Code returns the provider-style error code
func (e *ConfigurationError) Code() int { return ConfigurationErrorCode }

// Type returns the provider-style error type
func (e *ConfigurationError) Type() string { return ConfigurationErrorType }

// ProviderError is a non-2xx answer from the messaging API
type ProviderError struct {
	Message    string
	Code       int
	Type       string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return e.Message
}

// NetworkError wraps a transport failure
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Code returns the provider-style error code
func (e *NetworkError) Code() int { return NetworkErrorCode }

// Type returns the provider-style error type
func (e *NetworkError) Type() string { return NetworkErrorType }

// IsSendFailure reports whether err is a per-recipient failure that a
// campaign run records and moves past.
func IsSendFailure(err error) bool {
	var providerErr *ProviderError
	var networkErr *NetworkError
	return errors.As(err, &providerErr) || errors.As(err, &networkErr)
}
