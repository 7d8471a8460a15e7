package results

import (
	"encoding/json"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/GabrielLegend/tca-plugin-sonarqube/severityutils"
)

const sarifToolName = "SonarQube"

// ExportSarif writes the translated issues as a SARIF 2.1.0 log so runs can be
// consumed outside the platform.
func ExportSarif(issues []Issue, path string) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI(sarifToolName, "https://www.sonarqube.org/")
	for _, issue := range issues {
		level := severityutils.ToSarifLevel(severityutils.Severity(issue.Severity))
		result := run.CreateResultForRule(issue.Rule).
			WithMessage(sarif.NewTextMessage(issue.Msg)).
			WithLevel(level.String())
		result.AddLocation(issueLocation(issue.Path, issue.Line, issue.Column))
		for _, ref := range issue.Refs {
			related := issueLocation(ref.Path, ref.Line, ref.Column)
			related.Message = sarif.NewTextMessage(ref.Msg)
			result.RelatedLocations = append(result.RelatedLocations, related)
		}
	}
	report.AddRun(run)

	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func issueLocation(filePath string, line, column int) *sarif.Location {
	physical := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithUri("file://" + filePath))
	if line > 0 {
		physical.WithRegion(sarif.NewRegion().WithStartLine(line).WithStartColumn(column))
	}
	return sarif.NewLocation().WithPhysicalLocation(physical)
}
