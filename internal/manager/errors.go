package manager

import "errors"

// fileNotFoundError means the filename is not installed.
type fileNotFoundError struct{ name string }

func (e fileNotFoundError) Error() string { return "model file not found: " + e.name }

func ErrFileNotFound(name string) error { return fileNotFoundError{name: name} }

// IsFileNotFound reports whether err indicates a missing model file.
func IsFileNotFound(err error) bool {
	var e fileNotFoundError
	return errors.As(err, &e)
}

// modelLoadError wraps a native construction failure. Nothing is cached.
type modelLoadError struct {
	name string
	err  error
}

func (e modelLoadError) Error() string { return "load " + e.name + ": " + e.err.Error() }
func (e modelLoadError) Unwrap() error { return e.err }

// IsModelLoadFailure reports whether err came from the native loader.
func IsModelLoadFailure(err error) bool {
	var e modelLoadError
	return errors.As(err, &e)
}

// notLoadedError is returned when unloading a filename that is not resident.
type notLoadedError struct{ name string }

func (e notLoadedError) Error() string { return "model not loaded: " + e.name }

// ErrNotLoaded reports that name is not resident in the cache.
func ErrNotLoaded(name string) error { return notLoadedError{name: name} }

// IsNotLoaded reports whether err indicates a non-resident filename.
func IsNotLoaded(err error) bool {
	var e notLoadedError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing native runtime (llama.cpp)
// so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
