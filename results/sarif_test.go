package results

import (
	"path/filepath"
	"testing"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSarif(t *testing.T) {
	issues := []Issue{
		{
			Path: "src/app/main.go", Rule: "go:S1067", Msg: "Reduce the number of conditional operators",
			Line: 10, Column: 4, Severity: "MAJOR",
			Refs: []Ref{{Line: 5, Column: 2, Msg: "origin", Path: "src/app/util.go"}},
		},
		{Path: "src/app/other.go", Rule: "go:S2068", Msg: "Remove this credential", Severity: "BLOCKER"},
	}

	path := filepath.Join(t.TempDir(), "issues.sarif")
	require.NoError(t, ExportSarif(issues, path))

	report, err := sarif.Open(path)
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)
	run := report.Runs[0]
	assert.Equal(t, sarifToolName, run.Tool.Driver.Name)
	require.Len(t, run.Results, 2)

	first := run.Results[0]
	assert.Equal(t, "go:S1067", *first.RuleID)
	assert.Equal(t, "warning", *first.Level)
	assert.Equal(t, "Reduce the number of conditional operators", *first.Message.Text)
	require.Len(t, first.Locations, 1)
	location := first.Locations[0].PhysicalLocation
	assert.Equal(t, "file://src/app/main.go", *location.ArtifactLocation.URI)
	require.NotNil(t, location.Region)
	assert.Equal(t, 10, *location.Region.StartLine)
	assert.Equal(t, 4, *location.Region.StartColumn)
	require.Len(t, first.RelatedLocations, 1)
	related := first.RelatedLocations[0]
	assert.Equal(t, "origin", *related.Message.Text)
	assert.Equal(t, "file://src/app/util.go", *related.PhysicalLocation.ArtifactLocation.URI)

	second := run.Results[1]
	assert.Equal(t, "error", *second.Level)
	// issues without a line carry no region
	assert.Nil(t, second.Locations[0].PhysicalLocation.Region)
}
