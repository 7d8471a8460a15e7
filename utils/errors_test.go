package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeForError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		exitCode int
		stage    string
	}{
		{name: "nil", err: nil, exitCode: ExitCodeSuccess, stage: "general"},
		{name: "untyped", err: errors.New("boom"), exitCode: ExitCodeGeneral, stage: "general"},
		{name: "configuration", err: NewConfigurationError("missing %s", "SQ_TYPE"), exitCode: ExitCodeConfiguration, stage: "configuration"},
		{name: "service startup", err: NewServiceStartupError("server did not come up"), exitCode: ExitCodeServiceStartup, stage: "service startup"},
		{name: "authentication", err: NewAuthenticationError("invalid token"), exitCode: ExitCodeAuthentication, stage: "authentication"},
		{name: "scan execution", err: NewScanExecutionError("scanner exited with 2"), exitCode: ExitCodeScanExecution, stage: "scan execution"},
		{name: "result fetch", err: NewResultFetchError("task FAILED"), exitCode: ExitCodeResultFetch, stage: "result fetch"},
		{name: "wrapped", err: fmt.Errorf("scan step: %w", NewScanExecutionError("scanner exited with 2")), exitCode: ExitCodeScanExecution, stage: "scan execution"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.exitCode, ExitCodeForError(testCase.err))
			assert.Equal(t, testCase.stage, StageOfError(testCase.err))
		})
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := NewConfigurationError("no credentials configured for %s mode", "COMMON")
	assert.EqualError(t, err, "no credentials configured for COMMON mode")
}
