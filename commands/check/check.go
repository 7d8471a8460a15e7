// Package check implements the tool health probe the host runs before
// scheduling analysis tasks on a node.
package check

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

const resultFileName = "check_result.json"

// The bundled server and scanner are pinned to Java 11, anything else on the
// resolved PATH means the node cannot run them.
const requiredJavaMarker = `version "11.`

// CheckCommand probes whether this node can run the analysis tools and writes
// the verdict for the host.
type CheckCommand struct{}

func NewCheckCommand() *CheckCommand {
	return &CheckCommand{}
}

func (ccmd *CheckCommand) CommandName() string {
	return "sq_check"
}

func (ccmd *CheckCommand) Run() error {
	usable := toolUsable()
	log.Infof("tool usable: %t", usable)
	content, err := json.Marshal(map[string]bool{"usable": usable})
	if err != nil {
		return err
	}
	return os.WriteFile(resultFileName, content, 0o644)
}

// toolUsable checks that the pinned Java resolves first on PATH. The version
// banner goes to stderr, RunCommand hands both streams to the callback.
func toolUsable() bool {
	if err := config.InitToolEnv(); err != nil {
		log.Warnf("tool environment setup failed: %s", err)
		return false
	}
	var banner strings.Builder
	err := utils.RunCommand([]string{"java", "-version"}, "", nil, func(line string) {
		banner.WriteString(line)
		banner.WriteString("\n")
	})
	if err != nil {
		log.Warnf("java probe failed: %s", err)
		return false
	}
	return strings.Contains(banner.String(), requiredJavaMarker)
}
