package cmd

import (
	"errors"
	"strconv"
)

// Exit codes for reqfile CLI
const (
	// ExitSuccess indicates every request completed and every script passed
	ExitSuccess = 0

	// ExitRequestFailure indicates a failed request or post-response script
	ExitRequestFailure = 1

	// ExitParseError indicates an unreadable file or a line without a request
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var errRequestsFailed = errors.New("one or more requests failed")
