package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// TaskRequest is the document the host writes for a run, TASK_REQUEST names its
// location on disk.
type TaskRequest struct {
	TaskParams TaskParams `json:"task_params"`
	TaskDir    string     `json:"task_dir"`
}

// TaskParams carries the analysis request: the enabled rules, their parameter
// overrides, path filters and the optional build related commands.
type TaskParams struct {
	Rules       []string      `json:"rules"`
	RuleList    []RuleSetting `json:"rule_list"`
	PathFilters PathFilters   `json:"path_filters"`
	IncrScan    bool          `json:"incr_scan"`
	ProjectID   FlexString    `json:"project_id"`
	PreCmd      string        `json:"pre_cmd"`
	BuildCmd    string        `json:"build_cmd"`
}

// RuleSetting carries the parameter overrides for one rule, Params uses the ini
// form rule authors write on the platform.
type RuleSetting struct {
	Name   string `json:"name"`
	Params string `json:"params"`
}

// PathFilters restricts the analysis scope. Wildcard entries use host glob
// syntax, Re entries are regular expressions, YamlFilters come from the repo
// side lint configuration.
type PathFilters struct {
	WildcardInclusion []string    `json:"wildcard_inclusion"`
	WildcardExclusion []string    `json:"wildcard_exclusion"`
	ReInclusion       []string    `json:"re_inclusion"`
	ReExclusion       []string    `json:"re_exclusion"`
	YamlFilters       YamlFilters `json:"yaml_filters"`
}

type YamlFilters struct {
	LintInclusion []string `json:"lint_inclusion"`
	LintExclusion []string `json:"lint_exclusion"`
}

// FlexString accepts both string and number JSON values, hosts serialize the
// project id either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*f = FlexString(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*f = FlexString(number.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// LoadTaskRequest reads and parses the task request document.
func LoadTaskRequest() (*TaskRequest, error) {
	path := os.Getenv(TaskRequestEnvVariable)
	if path == "" {
		return nil, utils.NewConfigurationError("%s is not set", TaskRequestEnvVariable)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewConfigurationError("failed to read task request %s: %s", path, err)
	}
	request := &TaskRequest{}
	if err = json.Unmarshal(content, request); err != nil {
		return nil, utils.NewConfigurationError("malformed task request %s: %s", path, err)
	}
	return request, nil
}

// WorkDir returns the scratch directory for this run under the task directory,
// creating it when absent.
func (r *TaskRequest) WorkDir() (string, error) {
	workDir := filepath.Join(r.TaskDir, "workdir")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", err
	}
	return workDir, nil
}
