package sonar

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return NewClient(parsed.Scheme+"://"+parsed.Hostname(), port, "")
}

func TestErrorTaxonomy(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		matchErr func(t *testing.T, err error)
	}{
		{
			name:   "400 maps to validation error with joined messages",
			status: http.StatusBadRequest,
			body:   `{"errors":[{"msg":"Could not create Project"},{"msg":"key already exists"}]}`,
			matchErr: func(t *testing.T, err error) {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "Could not create Project, key already exists", validationErr.Msg)
			},
		},
		{
			name:   "401 maps to auth error",
			status: http.StatusUnauthorized,
			matchErr: func(t *testing.T, err error) {
				var authErr *AuthError
				assert.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "403 maps to auth error",
			status: http.StatusForbidden,
			matchErr: func(t *testing.T, err error) {
				var authErr *AuthError
				assert.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "404 maps to client error",
			status: http.StatusNotFound,
			matchErr: func(t *testing.T, err error) {
				var clientErr *ClientError
				assert.ErrorAs(t, err, &clientErr)
			},
		},
		{
			name:   "503 maps to server error",
			status: http.StatusServiceUnavailable,
			matchErr: func(t *testing.T, err error) {
				var serverErr *ServerError
				assert.ErrorAs(t, err, &serverErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			_, err := client.SystemStatus()
			require.Error(t, err)
			tc.matchErr(t, err)
		})
	}
}

func TestTokenAuth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "squ_sometoken", username)
		assert.Empty(t, password)
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	}))
	client.SetToken("squ_sometoken")

	status, err := client.SystemStatus()
	require.NoError(t, err)
	assert.Equal(t, "UP", status)
}

func TestBasicAuth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", username)
		assert.Equal(t, "admin", password)
		_, _ = w.Write([]byte(`{"valid":true}`))
	}))
	client.SetBasicAuth("admin", "admin")

	valid, err := client.ValidateAuthentication()
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSearchIssuesPaging(t *testing.T) {
	issuePages := map[string]string{
		"": `{"p":1,"ps":2,"total":3,"issues":[
			{"key":"a","rule":"java:S1192","component":"test:src/A.java","severity":"MAJOR","type":"CODE_SMELL","message":"dup literal",
			 "textRange":{"startLine":10,"endLine":10,"startOffset":4,"endOffset":12}},
			{"key":"b","rule":"java:S3776","component":"test:src/B.java","severity":"CRITICAL","type":"CODE_SMELL","message":"complexity 21 over 15"}]}`,
		"2": `{"p":2,"ps":2,"total":3,"issues":[
			{"key":"c","rule":"common-java:DuplicatedBlocks","component":"test:src/C.java","severity":"MAJOR","type":"CODE_SMELL","message":"dup blocks"}]}`,
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/api/issues/search", r.URL.Path)
		assert.Equal(t, "java", r.PostForm.Get("languages"))
		body, ok := issuePages[r.PostForm.Get("p")]
		require.True(t, ok, "unexpected page %q", r.PostForm.Get("p"))
		_, _ = w.Write([]byte(body))
	}))

	issues, err := client.SearchIssues(IssueQuery{Languages: "JAVA", ComponentKeys: "test"})
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, "java:S1192", issues[0].Rule)
	require.NotNil(t, issues[0].TextRange)
	assert.Equal(t, 10, issues[0].TextRange.StartLine)
	assert.Equal(t, 4, issues[0].TextRange.StartOffset)
	assert.Nil(t, issues[1].TextRange)
	assert.Equal(t, "common-java:DuplicatedBlocks", issues[2].Rule)
}

func TestCeTask(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/api/ce/task", r.URL.Path)
		assert.Equal(t, "AXvZrR4R", r.PostForm.Get("id"))
		_, _ = w.Write([]byte(`{"task":{"id":"AXvZrR4R","status":"FAILED","errorMessage":"Java heap space"}}`))
	}))

	task, err := client.CeTask("AXvZrR4R")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusFailed, task.Status)
	assert.Equal(t, "Java heap space", task.ErrorMessage)
}

func TestCreateProjectAlreadyExists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"msg":"Could not create Project, key already exists: test"}]}`))
	}))

	err := client.CreateProject("test", "test")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRestoreProfileUploadsBackup(t *testing.T) {
	profile := writeTempFile(t, "Java_SonarQube_Profile.xml", "<profile><name>custom</name><language>java</language></profile>")
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qualityprofiles/restore", r.URL.Path)
		file, header, err := r.FormFile("backup")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "Java_SonarQube_Profile.xml", header.Filename)
		_, _ = w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.RestoreProfile(profile))
}

func TestComponentMeasures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ncloc,bugs", r.PostForm.Get("metricKeys"))
		_, _ = w.Write([]byte(`{"component":{"measures":[
			{"metric":"ncloc","value":"1234"},
			{"metric":"new_bugs","periods":[{"index":1,"value":"7"}]}]}}`))
	}))

	measures, err := client.ComponentMeasures("test", "ncloc,bugs", "metrics,periods")
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.Equal(t, "1234", measures[0].Value)
	assert.Equal(t, "7", measures[1].Periods[0].Value)
}

func TestSearchRulesPaging(t *testing.T) {
	rulePages := map[string]string{
		"":  `{"p":1,"ps":1,"total":2,"rules":[{"key":"go:S1000","name":"First","severity":"MAJOR","lang":"go","type":"CODE_SMELL","mdDesc":"desc"}]}`,
		"2": `{"p":2,"ps":1,"total":2,"rules":[{"key":"go:S1001","name":"Second","severity":"INFO","lang":"go","type":"BUG","mdDesc":"<p>html</p>"}]}`,
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "no", r.PostForm.Get("is_template"))
		assert.Equal(t, "READY", r.PostForm.Get("statuses"))
		body, ok := rulePages[r.PostForm.Get("p")]
		require.True(t, ok, "unexpected page %q", r.PostForm.Get("p"))
		_, _ = w.Write([]byte(body))
	}))

	rules, err := client.SearchRules(RulesQuery{Languages: "go", Fields: "name,severity,lang,mdDesc"})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "go:S1001", rules[1].Key)
}

func TestSearchProfiles(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qualityprofiles/search", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test", r.URL.Query().Get("project"))
		assert.Equal(t, "java", r.URL.Query().Get("language"))
		_, _ = w.Write([]byte(`{"profiles":[{"key":"AXvZ","name":"custom","language":"java","isDefault":false}]}`))
	}))

	profiles, err := client.SearchProfiles("test", "Java")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "custom", profiles[0].Name)
	assert.False(t, profiles[0].IsDefault)
}

func TestLanguages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/languages/list", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"languages":[{"key":"go","name":"Go"},{"key":"java","name":"Java"}]}`))
	}))

	languages, err := client.Languages()
	require.NoError(t, err)
	require.Len(t, languages, 2)
	assert.Equal(t, "go", languages[0].Key)
}

func TestSettingValues(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/settings/values", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "sonar.technicalDebt.developmentCost", r.URL.Query().Get("keys"))
		_, _ = w.Write([]byte(`{"settings":[{"key":"sonar.technicalDebt.developmentCost","value":"30"}]}`))
	}))

	settings, err := client.SettingValues("sonar.technicalDebt.developmentCost", "")
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "30", settings[0].Value)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
