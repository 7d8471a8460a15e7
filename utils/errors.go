package utils

import (
	"errors"
	"fmt"
)

// Exit codes reported to the task harness. Each pipeline stage owns a code so the
// harness can classify a failure without parsing log output.
const (
	ExitCodeSuccess        = 0
	ExitCodeGeneral        = 1
	ExitCodeConfiguration  = 2
	ExitCodeServiceStartup = 3
	ExitCodeAuthentication = 4
	ExitCodeScanExecution  = 5
	ExitCodeResultFetch    = 6
)

// StageError is implemented by every pipeline stage error. Stage is the name
// reported in the final log line, ExitCode the process exit status.
type StageError interface {
	error
	Stage() string
	ExitCode() int
}

type ConfigurationError struct {
	msg string
}

func NewConfigurationError(format string, a ...any) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, a...)}
}

func (e *ConfigurationError) Error() string { return e.msg }

func (e *ConfigurationError) Stage() string { return "configuration" }

func (e *ConfigurationError) ExitCode() int { return ExitCodeConfiguration }

type ServiceStartupError struct {
	msg string
}

func NewServiceStartupError(format string, a ...any) *ServiceStartupError {
	return &ServiceStartupError{msg: fmt.Sprintf(format, a...)}
}

func (e *ServiceStartupError) Error() string { return e.msg }

func (e *ServiceStartupError) Stage() string { return "service startup" }

func (e *ServiceStartupError) ExitCode() int { return ExitCodeServiceStartup }

type AuthenticationError struct {
	msg string
}

func NewAuthenticationError(format string, a ...any) *AuthenticationError {
	return &AuthenticationError{msg: fmt.Sprintf(format, a...)}
}

func (e *AuthenticationError) Error() string { return e.msg }

func (e *AuthenticationError) Stage() string { return "authentication" }

func (e *AuthenticationError) ExitCode() int { return ExitCodeAuthentication }

type ScanExecutionError struct {
	msg string
}

func NewScanExecutionError(format string, a ...any) *ScanExecutionError {
	return &ScanExecutionError{msg: fmt.Sprintf(format, a...)}
}

func (e *ScanExecutionError) Error() string { return e.msg }

func (e *ScanExecutionError) Stage() string { return "scan execution" }

func (e *ScanExecutionError) ExitCode() int { return ExitCodeScanExecution }

type ResultFetchError struct {
	msg string
}

func NewResultFetchError(format string, a ...any) *ResultFetchError {
	return &ResultFetchError{msg: fmt.Sprintf(format, a...)}
}

func (e *ResultFetchError) Error() string { return e.msg }

func (e *ResultFetchError) Stage() string { return "result fetch" }

func (e *ResultFetchError) ExitCode() int { return ExitCodeResultFetch }

// ExitCodeForError returns the exit code of the stage the error belongs to,
// ExitCodeGeneral for untyped errors and ExitCodeSuccess for nil.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var staged StageError
	if errors.As(err, &staged) {
		return staged.ExitCode()
	}
	return ExitCodeGeneral
}

// StageOfError names the pipeline stage the error belongs to.
func StageOfError(err error) string {
	var staged StageError
	if errors.As(err, &staged) {
		return staged.Stage()
	}
	return "general"
}
