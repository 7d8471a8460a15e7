package results

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

const ceTaskPollInterval = 5 * time.Second

// Known background task failure messages that deserve a targeted explanation.
var staleAnalysisStatePattern = regexp.MustCompile(
	`(?i)^load called twice for thread '.*' or state wasn't cleared last time it was used`)

const (
	heapSpaceMessage  = "Java heap space"
	indexationMessage = "Unrecoverable indexation failures: 1 errors among 1 requests"
)

// WaitForCeTask polls the compute engine until the submitted task succeeds.
// Transient request failures keep the poll alive, a FAILED task or an expired
// timeout end the wait.
func WaitForCeTask(client *sonar.Client, taskID string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	poll := func() error {
		task, err := client.CeTask(taskID)
		if err != nil {
			log.Debugf("compute engine poll failed: %s", err)
			return err
		}
		log.Infof("compute engine task %s is %s", taskID, task.Status)
		switch task.Status {
		case sonar.TaskStatusSuccess:
			return nil
		case sonar.TaskStatusFailed:
			return backoff.Permanent(taskFailure(task.ErrorMessage))
		default:
			return fmt.Errorf("task %s is still %s", taskID, task.Status)
		}
	}

	err := backoff.Retry(poll, backoff.WithContext(backoff.NewConstantBackOff(ceTaskPollInterval), ctx))
	if err == nil {
		return nil
	}
	var stageErr utils.StageError
	if errors.As(err, &stageErr) {
		return err
	}
	return utils.NewResultFetchError("timed out waiting for compute engine task %s: %s", taskID, err)
}

// taskFailure maps the failure message of a background task to an actionable
// error, the generic fallback just relays the server message.
func taskFailure(message string) error {
	switch {
	case staleAnalysisStatePattern.MatchString(message):
		return utils.NewResultFetchError("the server is stuck in a stale analysis state and needs a restart")
	case message == heapSpaceMessage:
		return utils.NewResultFetchError("the server ran out of Java heap space during analysis")
	case message == indexationMessage:
		return utils.NewResultFetchError(
			"elasticsearch rejected the indexing, a disk usage watermark was likely reached, free up storage or restart the server")
	default:
		return utils.NewResultFetchError("the analysis task failed on the server: %s", message)
	}
}
