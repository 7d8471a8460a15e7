package cli

import (
	cliCommand "github.com/urfave/cli/v2"

	"github.com/GabrielLegend/tca-plugin-sonarqube/commands/scan"
)

func getScanCommands() []*cliCommand.Command {
	return []*cliCommand.Command{
		{
			Name:    ScanCmd,
			Aliases: []string{"s"},
			Usage:   "Analyze the checkout without building it, covering every supported language.",
			Flags:   GetCommandFlags(ScanCmd),
			Action:  scanCmd,
		},
		{
			Name:    JavaScanCmd,
			Aliases: []string{"sj"},
			Usage:   "Analyze a Java or JSP codebase, building it first when SONAR_BUILD_TYPE asks for a build.",
			Flags:   GetCommandFlags(JavaScanCmd),
			Action:  javaScanCmd,
		},
		{
			Name:    DotnetScanCmd,
			Aliases: []string{"sd"},
			Usage:   "Analyze a C# codebase through the scanner for MSBuild.",
			Flags:   GetCommandFlags(DotnetScanCmd),
			Action:  dotnetScanCmd,
		},
	}
}

func scanCmd(c *cliCommand.Context) error {
	cmd := scan.NewScanCommand()
	if languages := c.String(languagesFlag); languages != "" {
		cmd.SetLanguages(languages)
	}
	return cmd.Run()
}

func javaScanCmd(_ *cliCommand.Context) error {
	return scan.NewJavaScanCommand().Run()
}

func dotnetScanCmd(_ *cliCommand.Context) error {
	return scan.NewDotnetScanCommand().Run()
}
