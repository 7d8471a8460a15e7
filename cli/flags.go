package cli

import (
	"sort"

	cliCommand "github.com/urfave/cli/v2"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
)

const (
	// Plugin Commands Keys
	ScanCmd        = "scan"
	JavaScanCmd    = "scan-java"
	DotnetScanCmd  = "scan-dotnet"
	CheckCmd       = "check"
	UpdateRulesCmd = "update-rules"

	// Scan flags
	languagesFlag = "languages"

	// Rules update flags
	configDirFlag = "config-dir"
	outputDirFlag = "output-dir"
)

// Mapping between plugin commands (key) and their flags (key).
var commandFlags = map[string][]string{
	ScanCmd:        {languagesFlag},
	JavaScanCmd:    {},
	DotnetScanCmd:  {},
	CheckCmd:       {},
	UpdateRulesCmd: {configDirFlag, outputDirFlag},
}

// Flag keys mapped to their corresponding cli.Flag definition.
var flagsMap = map[string]cliCommand.Flag{
	languagesFlag: &cliCommand.StringFlag{
		Name:  languagesFlag,
		Usage: "Comma separated SonarQube language keys to analyze. Defaults to every language the bundled profiles cover.` `",
	},
	configDirFlag: &cliCommand.StringFlag{
		Name:  configDirFlag,
		Usage: "Directory holding the shipped rule documents. Defaults to the config directory under the plugin home.` `",
	},
	outputDirFlag: &cliCommand.StringFlag{
		Name:  outputDirFlag,
		Usage: "Directory the regenerated rule documents are written to. Defaults to config-new under the plugin home.` `",
	},
}

func GetCommandFlags(cmdKey string) []cliCommand.Flag {
	flagList, ok := commandFlags[cmdKey]
	if !ok {
		log.Errorf("the command %q is not found in the command flags map", cmdKey)
		return nil
	}
	return buildAndSortFlags(flagList)
}

func buildAndSortFlags(keys []string) (flags []cliCommand.Flag) {
	for _, flag := range keys {
		flags = append(flags, flagsMap[flag])
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Names()[0] < flags[j].Names()[0] })
	return
}
