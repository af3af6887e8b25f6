package cache

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// CategoryConfiguration marks failures creating or resolving a cache
	// configuration or binding. These are fatal to the setup caller.
	CategoryConfiguration goerrors.Category = "configuration"
	// CategoryBackend marks failures talking to a cache backend.
	CategoryBackend goerrors.Category = "cache_backend"
)

const (
	TextCodeConfigNotFound  = "CACHE_CONFIG_NOT_FOUND"
	TextCodeBackendInit     = "CACHE_BACKEND_INIT"
	TextCodeInvalidDuration = "INVALID_DURATION"
	TextCodeGet             = "CACHE_GET"
	TextCodeSet             = "CACHE_SET"
	TextCodePurge           = "CACHE_PURGE"
	TextCodeEncode          = "CACHE_ENCODE"
	TextCodeDecode          = "CACHE_DECODE"
)

// IsConfigurationError reports whether err is a configuration failure.
func IsConfigurationError(err error) bool {
	return goerrors.HasCategory(err, CategoryConfiguration)
}

// IsBackendError reports whether err came from a cache backend.
func IsBackendError(err error) bool {
	return goerrors.HasCategory(err, CategoryBackend)
}

// BackendError wraps a backend failure for key with the given text code.
func BackendError(err error, code, key string) error {
	if err == nil {
		return nil
	}
	return wrap(err, CategoryBackend, "cache backend failure").
		WithTextCode(code).
		WithMetadata(map[string]any{"key": key})
}

func configNotFound(name string) error {
	return goerrors.New("cache configuration not found", CategoryConfiguration).
		WithTextCode(TextCodeConfigNotFound).
		WithMetadata(map[string]any{"config": name})
}

// wrap keeps err as the source under category. goerrors.Wrap would clone an
// existing *Error and keep its category instead.
func wrap(err error, category goerrors.Category, message string) *goerrors.Error {
	e := goerrors.New(message, category)
	e.Source = err
	return e
}
