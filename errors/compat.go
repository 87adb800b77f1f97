package errors

import baseErrors "errors"

// Re-exports of the standard library error helpers, so that callers only need
// to import one errors package.

// Is detects whether the error is equal to a given error. Errors are
// considered equal if they are matched by the standard library errors.Is, or
// if their contained errors are matched through errors.Is. Unlike the
// standard library version, both sides are unwrapped, so a Mark copy of a
// sentinel still matches the sentinel.
func Is(e error, original error) bool {
	if baseErrors.Is(e, original) {
		return true
	}
	if e, ok := e.(*Error); ok {
		return Is(e.Err, original)
	}
	if original, ok := original.(*Error); ok {
		return Is(e, original.Err)
	}
	return false
}

// Is reports whether the target *Error carries the same contained error.
// Sentinels declared as *Error values are matched through their inner error,
// which survives Mark and Append copies. Implements the interface used by the
// standard library errors.Is.
func (err *Error) Is(target error) bool {
	if target, ok := target.(*Error); ok {
		return baseErrors.Is(err.Err, target.Err)
	}
	return false
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return baseErrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return baseErrors.Unwrap(err)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return baseErrors.Join(errs...)
}
