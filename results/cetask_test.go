package results

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

func TestWaitForCeTaskSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "AYhSN1ir", r.Form.Get("id"))
		serveJSON(t, w, map[string]any{"task": map[string]any{"id": "AYhSN1ir", "status": "SUCCESS"}})
	})
	assert.NoError(t, WaitForCeTask(client, "AYhSN1ir", time.Minute))
}

func TestWaitForCeTaskFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		serveJSON(t, w, map[string]any{"task": map[string]any{
			"id": "AYhSN1ir", "status": "FAILED", "errorMessage": "something broke",
		}})
	})
	err := WaitForCeTask(client, "AYhSN1ir", time.Minute)
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeResultFetch, utils.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "something broke")
}

func TestWaitForCeTaskTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		serveJSON(t, w, map[string]any{"task": map[string]any{"id": "AYhSN1ir", "status": "IN_PROGRESS"}})
	})
	err := WaitForCeTask(client, "AYhSN1ir", 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestTaskFailure(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "stale analysis state",
			message:  "LOAD called twice for thread 'main' or state wasn't cleared last time it was used",
			expected: "stale analysis state",
		},
		{
			name:     "heap space",
			message:  "Java heap space",
			expected: "Java heap space",
		},
		{
			name:     "indexation failure",
			message:  "Unrecoverable indexation failures: 1 errors among 1 requests",
			expected: "disk usage watermark",
		},
		{
			name:     "anything else",
			message:  "Fail to extract report",
			expected: "Fail to extract report",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := taskFailure(test.message)
			assert.Contains(t, err.Error(), test.expected)
			assert.Equal(t, utils.ExitCodeResultFetch, utils.ExitCodeForError(err))
		})
	}
}
