package results

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

func TestDumpMeasures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/measures/component", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test_1", r.Form.Get("component"))
		assert.Equal(t, debtMetricKeys, r.Form.Get("metricKeys"))
		serveJSON(t, w, map[string]any{"component": map[string]any{"measures": []any{
			map[string]any{"metric": "ncloc", "value": "1250.0"},
			map[string]any{"metric": "sqale_debt_ratio", "value": "1.5"},
			map[string]any{"metric": "new_bugs", "periods": []any{map[string]any{"index": 1, "value": "3"}}},
			map[string]any{"metric": "bugs", "value": "7"},
			map[string]any{"metric": "new_code_smells"},
			map[string]any{"metric": "vulnerabilities", "value": "n/a"},
		}}})
	})

	path := filepath.Join(t.TempDir(), "sonar_result.json")
	formatted, err := DumpMeasures(client, "test_1", path)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"ncloc":            1250,
		"sqale_debt_ratio": "1.500%",
		"new_bugs":         3,
		"bugs":             7,
		// new_code_smells has no period value, vulnerabilities is not numeric
	}, formatted)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted map[string]any
	require.NoError(t, json.Unmarshal(content, &persisted))
	assert.Equal(t, "1.500%", persisted["sqale_debt_ratio"])
	assert.Equal(t, float64(1250), persisted["ncloc"])
}

func TestDumpMeasuresServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := DumpMeasures(client, "test_1", filepath.Join(t.TempDir(), "sonar_result.json"))
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeResultFetch, utils.ExitCodeForError(err))
}
