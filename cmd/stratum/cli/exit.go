// Copyright 2026 The Stratum Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError carries a specific process exit code through the error
// return path. main inspects the returned error for an ExitCode
// method and exits with that code.
type ExitError struct {
	// Code is the process exit code.
	Code int

	// Message, if set, is printed to stderr before exiting.
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the process exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}
