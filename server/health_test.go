package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

func newTestClient(t *testing.T, handler http.Handler) *sonar.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return sonar.NewClient(parsed.Scheme+"://"+parsed.Hostname(), port, "")
}

func TestWaitUntilReadyUp(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	}))
	assert.NoError(t, WaitUntilReady(client, nil, 10*time.Second))
}

func TestWaitUntilReadyTimesOutWhileStarting(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"STARTING"}`))
	}))
	err := WaitUntilReady(client, nil, 100*time.Millisecond)
	require.Error(t, err)
	var startupErr *utils.ServiceStartupError
	assert.ErrorAs(t, err, &startupErr)
}

func TestWaitUntilReadyFatalMarkerAbortsImmediately(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	}))
	launcher := NewLauncher(t.TempDir(), t.TempDir())
	launcher.observe("java.lang.IllegalStateException: SonarQube requires Java 11 to run")

	start := time.Now()
	err := WaitUntilReady(client, launcher, time.Minute)
	require.Error(t, err)
	var startupErr *utils.ServiceStartupError
	assert.ErrorAs(t, err, &startupErr)
	assert.Less(t, time.Since(start), 10*time.Second, "a fatal marker must not wait for the timeout")
}

func TestWaitUntilReadyRequiresLauncherReadiness(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	}))
	launcher := NewLauncher(t.TempDir(), t.TempDir())

	err := WaitUntilReady(client, launcher, 100*time.Millisecond)
	require.Error(t, err)

	launcher.observe("app[][o.s.a.SchedulerImpl] SonarQube is up")
	assert.NoError(t, WaitUntilReady(client, launcher, 10*time.Second))
}

func TestValidateRemote(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"valid":true}`))
		}))
		assert.NoError(t, ValidateRemote(client))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"valid":false}`))
		}))
		err := ValidateRemote(client)
		var authErr *utils.AuthenticationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("rejected request", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		err := ValidateRemote(client)
		var authErr *utils.AuthenticationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("unreachable", func(t *testing.T) {
		client := sonar.NewClient("http://127.0.0.1", 1, "")
		err := ValidateRemote(client)
		var startupErr *utils.ServiceStartupError
		assert.ErrorAs(t, err, &startupErr)
	})
}
