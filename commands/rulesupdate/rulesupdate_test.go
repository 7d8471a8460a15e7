package rulesupdate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *sonar.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return sonar.NewClient(parsed.Scheme+"://"+parsed.Hostname(), port, "")
}

func rulesHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/rules/search", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "true", r.Form.Get("activation"))
		assert.Equal(t, "name,severity,lang,mdDesc", r.Form.Get("f"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"p": 1, "ps": 100, "total": 2,
			"rules": []any{
				map[string]any{
					"key": "go:S1067", "name": "Expressions should not be too complex",
					"severity": "MAJOR", "lang": "go", "type": "CODE_SMELL",
					"mdDesc": "<p>Keep expressions <code>simple</code>.</p>",
				},
				map[string]any{
					"key": "vbnet:S139", "name": "Comments should not be at the end",
					"severity": "MINOR", "lang": "vbnet", "type": "CODE_SMELL",
					"mdDesc": "plain text",
				},
			},
		}))
	}
}

func writeFlavorDocs(t *testing.T) string {
	t.Helper()
	configDir := t.TempDir()
	for flavor := range flavorLanguages {
		document := `[{"name": "` + flavor + `", "checkrule_set": []}]`
		require.NoError(t, os.WriteFile(filepath.Join(configDir, flavor+".json"), []byte(document), 0o644))
	}
	return configDir
}

func TestExportRules(t *testing.T) {
	cmd := NewRulesUpdateCommand().SetClient(newTestClient(t, rulesHandler(t)))
	require.NoError(t, cmd.configure())

	definitions, err := cmd.exportRules("go")
	require.NoError(t, err)

	// the vbnet rule has no platform language and is skipped
	require.Len(t, definitions, 1)
	definition := definitions[0]
	assert.Equal(t, "go:S1067", definition.RealName)
	assert.Equal(t, "GoS1067", definition.DisplayName)
	assert.Equal(t, "warning", definition.Severity)
	assert.Equal(t, "convention", definition.Category)
	assert.Equal(t, "Expressions should not be too complex", definition.RuleTitle)
	assert.Equal(t, []string{"Go"}, definition.Languages)
	assert.Nil(t, definition.RuleParams)
	assert.False(t, definition.Custom)
	assert.Empty(t, definition.Labels)
	assert.NotContains(t, definition.Description, "<p>")
	assert.Contains(t, definition.Description, "simple")
}

func TestRunWritesAllFlavors(t *testing.T) {
	configDir := writeFlavorDocs(t)
	outputDir := filepath.Join(t.TempDir(), "config-new")
	cmd := NewRulesUpdateCommand().
		SetClient(newTestClient(t, rulesHandler(t))).
		SetConfigDir(configDir).
		SetOutputDir(outputDir)
	require.NoError(t, cmd.Run())

	for flavor := range flavorLanguages {
		content, err := os.ReadFile(filepath.Join(outputDir, flavor+".json"))
		require.NoError(t, err)
		var document []map[string]any
		require.NoError(t, json.Unmarshal(content, &document))
		require.Len(t, document, 1)
		assert.Equal(t, flavor, document[0]["name"])
		assert.NotEmpty(t, document[0]["checkrule_set"])
	}
}

func TestUpdateDocumentMissingSource(t *testing.T) {
	cmd := NewRulesUpdateCommand().
		SetClient(newTestClient(t, rulesHandler(t))).
		SetConfigDir(t.TempDir()).
		SetOutputDir(t.TempDir())
	require.NoError(t, cmd.configure())
	assert.Error(t, cmd.updateDocument("sq", nil))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "GoS1067", displayName("go:S1067"))
	assert.Equal(t, "CommonGoDuplicatedblocks", displayName("common-go:DuplicatedBlocks"))
	assert.Equal(t, "JavaS110", displayName("java:S110"))
}

func TestDescribeRule(t *testing.T) {
	assert.Equal(t, "already markdown", describeRule("already markdown"))
	converted := describeRule("<p>Keep it <code>simple</code>.</p>")
	assert.NotContains(t, converted, "<p>")
	assert.Contains(t, converted, "`simple`")
}
