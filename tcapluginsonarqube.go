package main

import (
	"os"

	"github.com/GabrielLegend/tca-plugin-sonarqube/cli"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

func main() {
	if err := cli.GetApp().Run(os.Args); err != nil {
		log.Errorf("the %s stage failed: %s", utils.StageOfError(err), err)
		os.Exit(utils.ExitCodeForError(err))
	}
}
