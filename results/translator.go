package results

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jfrog/gofrog/datastructures"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// Rules with this suffix report file duplication, their related locations come
// from the duplications endpoint instead of issue flows.
const duplicatedBlocksRuleSuffix = "DuplicatedBlocks"

// Translator fetches the issues of a project and rewrites them into the
// platform result schema.
type Translator struct {
	client      *sonar.Client
	projectKey  string
	languages   string
	rules       []string
	sourceDir   string
	buildCwd    string
	qualityMode bool
}

func NewTranslator(client *sonar.Client) *Translator {
	return &Translator{client: client}
}

func (t *Translator) SetProjectKey(projectKey string) *Translator {
	t.projectKey = projectKey
	return t
}

func (t *Translator) SetLanguages(languages string) *Translator {
	t.languages = languages
	return t
}

func (t *Translator) SetRules(rules []string) *Translator {
	t.rules = rules
	return t
}

func (t *Translator) SetSourceDir(sourceDir string) *Translator {
	t.sourceDir = sourceDir
	return t
}

func (t *Translator) SetBuildCwd(buildCwd string) *Translator {
	t.buildCwd = buildCwd
	return t
}

// SetQualityMode disables the rule filter, caller managed quality profiles
// decide what is reported.
func (t *Translator) SetQualityMode(qualityMode bool) *Translator {
	t.qualityMode = qualityMode
	return t
}

// Translate fetches and converts the project issues. The server caps the
// reachable result window and reports the overflow as a validation error, the
// issues collected up to that point are returned instead of failing the run.
func (t *Translator) Translate() ([]Issue, error) {
	query := sonar.IssueQuery{Languages: t.languages, ComponentKeys: t.projectKey}
	if !t.qualityMode {
		query.Rules = strings.Join(t.rules, ",")
	}
	serverIssues, searchErr := t.client.SearchIssues(query)
	if searchErr != nil && !isValidationError(searchErr) {
		return nil, utils.NewResultFetchError("failed to fetch issues of %s: %s", t.projectKey, searchErr)
	}
	if searchErr != nil {
		log.Warnf("issue search stopped early: %s", searchErr)
	}

	requested := datastructures.MakeSetFromElements(t.rules...)

	issues := make([]Issue, 0, len(serverIssues))
	for _, serverIssue := range serverIssues {
		if !t.qualityMode && requested.Size() > 0 && !requested.Exists(serverIssue.Rule) {
			continue
		}
		translated, err := t.translateIssue(serverIssue)
		if err != nil {
			// The window cap can also strike the per issue expansion calls.
			if isValidationError(err) {
				log.Warnf("issue expansion stopped early: %s", err)
				break
			}
			return nil, err
		}
		issues = append(issues, translated...)
	}
	return issues, nil
}

// translateIssue converts one server issue. Duplication issues fan out into
// one result per duplication group.
func (t *Translator) translateIssue(serverIssue sonar.Issue) ([]Issue, error) {
	issue := Issue{
		Path:     t.rewritePath(serverIssue.Component),
		Rule:     serverIssue.Rule,
		Msg:      serverIssue.Message,
		Severity: serverIssue.Severity,
	}
	if serverIssue.TextRange != nil {
		issue.Line = serverIssue.TextRange.StartLine
		issue.Column = serverIssue.TextRange.StartOffset
	}

	if strings.HasSuffix(serverIssue.Rule, duplicatedBlocksRuleSuffix) {
		return t.expandDuplications(issue, serverIssue.Component)
	}

	for _, flow := range serverIssue.Flows {
		for _, location := range flow.Locations {
			issue.Refs = append(issue.Refs, Ref{
				Line:   location.TextRange.StartLine,
				Column: location.TextRange.StartOffset,
				Msg:    location.Msg,
				Path:   componentFilePath(location.Component),
			})
		}
	}
	return []Issue{issue}, nil
}

// expandDuplications resolves the duplication groups behind a DuplicatedBlocks
// issue, each group becomes its own result whose refs list the involved blocks.
func (t *Translator) expandDuplications(issue Issue, component string) ([]Issue, error) {
	duplications, err := t.client.ShowDuplications(component)
	if err != nil {
		if isValidationError(err) {
			return nil, err
		}
		return nil, utils.NewResultFetchError("failed to expand duplications of %s: %s", component, err)
	}
	issues := make([]Issue, 0, len(duplications.Duplications))
	for _, duplication := range duplications.Duplications {
		expanded := issue
		expanded.Refs = make([]Ref, 0, len(duplication.Blocks))
		for _, block := range duplication.Blocks {
			expanded.Refs = append(expanded.Refs, Ref{
				Line: block.From,
				Msg:  fmt.Sprintf("duplicated block (lines %d-%d)", block.From, block.From+block.Size-1),
				Path: duplications.Files[block.Ref].Name,
			})
		}
		issues = append(issues, expanded)
	}
	return issues, nil
}

// rewritePath turns a server component key into a path relative to the source
// directory: the file part is resolved against the build directory first, the
// scanner reported it relative to there.
func (t *Translator) rewritePath(component string) string {
	full := filepath.Join(t.buildCwd, componentFilePath(component))
	prefixLen := len(t.sourceDir) + 1
	if len(full) <= prefixLen {
		return ""
	}
	return full[prefixLen:]
}

// componentFilePath strips the project key prefix from a component key, the
// file path is the part behind the last colon.
func componentFilePath(component string) string {
	parts := strings.Split(component, ":")
	return parts[len(parts)-1]
}

func isValidationError(err error) bool {
	var validationErr *sonar.ValidationError
	return errors.As(err, &validationErr)
}
