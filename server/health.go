package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// pollInterval is the cadence of all readiness probes, matching the rhythm of
// the server's own startup logging.
const pollInterval = 5 * time.Second

// WaitUntilReady polls the system status endpoint until the server reports UP.
// For a locally launched server the log watcher must additionally have seen the
// readiness marker, the web API answers before the compute engine is usable.
// A fatal launcher marker aborts the wait immediately.
func WaitUntilReady(client *sonar.Client, launcher *Launcher, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("waiting for the analysis server to come up")
	probe := func() error {
		if launcher != nil {
			if fatal := launcher.FatalError(); fatal != nil {
				return backoff.Permanent(fatal)
			}
		}
		status, err := client.SystemStatus()
		if err != nil {
			log.Debug("status probe:", err)
			return err
		}
		if status != "UP" {
			return fmt.Errorf("server status is %s", status)
		}
		if launcher != nil && !launcher.Ready() {
			return errors.New("server process has not logged readiness yet")
		}
		return nil
	}
	err := backoff.Retry(probe, backoff.WithContext(backoff.NewConstantBackOff(pollInterval), ctx))
	if err == nil {
		log.Info("analysis server is up")
		return nil
	}
	var staged utils.StageError
	if errors.As(err, &staged) {
		return err
	}
	return utils.NewServiceStartupError("the server did not come up within %s: %s", timeout, err)
}

// ValidateRemote checks that the shared server accepts the configured
// credentials before any scan work starts.
func ValidateRemote(client *sonar.Client) error {
	valid, err := client.ValidateAuthentication()
	if err != nil {
		var authErr *sonar.AuthError
		if errors.As(err, &authErr) {
			return utils.NewAuthenticationError("the configured server rejected the credentials: %s", authErr.Status)
		}
		return utils.NewServiceStartupError("failed to reach the configured server: %s", err)
	}
	if !valid {
		return utils.NewAuthenticationError("the configured credentials are not valid on the server")
	}
	return nil
}
