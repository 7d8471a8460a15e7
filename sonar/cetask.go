package sonar

import "net/url"

// Compute engine task states the plugin reacts to.
const (
	TaskStatusSuccess = "SUCCESS"
	TaskStatusFailed  = "FAILED"
)

// CeTask describes one background compute engine task.
type CeTask struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ComponentKey string `json:"componentKey"`
	ErrorMessage string `json:"errorMessage"`
}

// CeTask fetches the state of the compute engine task created by a scanner
// submission.
func (c *Client) CeTask(id string) (*CeTask, error) {
	params := url.Values{}
	params.Set("id", id)
	var payload struct {
		Task CeTask `json:"task"`
	}
	if err := c.postJSON("/api/ce/task", params, &payload); err != nil {
		return nil, err
	}
	return &payload.Task, nil
}
