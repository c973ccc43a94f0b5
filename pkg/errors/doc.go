// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.Wrap(
//	    errors.ErrCodeNodeUnreachable,
//	    "failed to collect bond counters",
//	    cause,
//	)
package errors
