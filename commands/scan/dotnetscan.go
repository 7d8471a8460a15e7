package scan

import (
	"github.com/GabrielLegend/tca-plugin-sonarqube/scanner"
)

const dotnetLanguages = "cs"

// DotnetScanCommand analyzes C# projects through the MSBuild scanner, which
// always needs the project built in between its begin and end steps.
type DotnetScanCommand struct {
	ScanCommand
}

func NewDotnetScanCommand() *DotnetScanCommand {
	return &DotnetScanCommand{ScanCommand: *NewScanCommand()}
}

func (dsc *DotnetScanCommand) CommandName() string {
	return "sq_cs_scan"
}

func (dsc *DotnetScanCommand) Run() error {
	dsc.SetLanguages(dotnetLanguages)
	return dsc.runWithScanner(func(inv *scanner.Invocation) (string, error) {
		return inv.RunDotnet(dsc.task.TaskParams.BuildCmd, dsc.buildCwd)
	})
}
