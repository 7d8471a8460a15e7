package scan

import (
	"strings"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/scanner"
)

const javaLanguages = "java,jsp"

// JavaScanCommand analyzes java projects. SONAR_BUILD_TYPE picks how sources
// are compiled before the scan, no_build skips the build entirely.
type JavaScanCommand struct {
	ScanCommand
	buildType string
}

func NewJavaScanCommand() *JavaScanCommand {
	return &JavaScanCommand{ScanCommand: *NewScanCommand()}
}

func (jsc *JavaScanCommand) CommandName() string {
	return "sq_java_scan"
}

func (jsc *JavaScanCommand) Run() error {
	jsc.SetLanguages(javaLanguages)
	jsc.buildType = strings.ToLower(config.EnvOr(config.SonarBuildTypeEnvVariable, "no_build"))
	log.Infof("java analysis uses build type %s", jsc.buildType)
	return jsc.runWithScanner(func(inv *scanner.Invocation) (string, error) {
		return inv.RunJava(jsc.buildType, jsc.task.TaskParams.BuildCmd, jsc.buildCwd)
	})
}
