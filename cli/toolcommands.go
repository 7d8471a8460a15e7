package cli

import (
	cliCommand "github.com/urfave/cli/v2"

	"github.com/GabrielLegend/tca-plugin-sonarqube/commands/check"
	"github.com/GabrielLegend/tca-plugin-sonarqube/commands/rulesupdate"
)

func getToolCommands() []*cliCommand.Command {
	return []*cliCommand.Command{
		{
			Name:   CheckCmd,
			Usage:  "Probe whether the bundled tooling is usable on this machine and write check_result.json.",
			Flags:  GetCommandFlags(CheckCmd),
			Action: checkCmd,
		},
		{
			Name:   UpdateRulesCmd,
			Usage:  "Pull the active rules from the server and regenerate the platform rule documents.",
			Flags:  GetCommandFlags(UpdateRulesCmd),
			Action: updateRulesCmd,
		},
	}
}

func checkCmd(_ *cliCommand.Context) error {
	return check.NewCheckCommand().Run()
}

func updateRulesCmd(c *cliCommand.Context) error {
	cmd := rulesupdate.NewRulesUpdateCommand()
	if configDir := c.String(configDirFlag); configDir != "" {
		cmd.SetConfigDir(configDir)
	}
	if outputDir := c.String(outputDirFlag); outputDir != "" {
		cmd.SetOutputDir(outputDir)
	}
	return cmd.Run()
}
