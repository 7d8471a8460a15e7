// Package cli assembles the plugin command line: the scan flavors next to the
// check probe and the rules maintenance command.
package cli

import (
	cliCommand "github.com/urfave/cli/v2"
)

func GetApp() *cliCommand.App {
	app := cliCommand.NewApp()
	app.Name = "tca-plugin-sonarqube"
	app.Usage = "SonarQube integration for the code analysis platform"
	app.Commands = append(getScanCommands(), getToolCommands()...)
	return app
}
