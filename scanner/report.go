package scanner

import (
	"os"

	"github.com/magiconair/properties"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

const reportFileName = "report-task.txt"

// FindReportFile locates the report-task.txt of a submission. The SONAR_REPORT
// override wins, then the location the flavor predicted, then a recursive
// search of the source tree and the scanner work directory.
func FindReportFile(predicted, sourceDir, scannerWorkDir string) string {
	if override := os.Getenv(config.SonarReportEnvVariable); override != "" {
		predicted = utils.JoinIfRelative(sourceDir, override)
	}
	if predicted != "" && utils.FileExists(predicted) {
		return predicted
	}
	log.Warnf("report file %q is missing, searching for it", predicted)
	candidates := utils.FindFilesBySuffix(sourceDir, reportFileName)
	if scannerWorkDir != "" && utils.FileExists(scannerWorkDir) {
		candidates = append(candidates, utils.FindFilesBySuffix(scannerWorkDir, reportFileName)...)
	}
	if len(candidates) == 0 {
		return ""
	}
	log.Infof("found report file %s", candidates[0])
	return candidates[0]
}

// CeTaskID extracts the compute engine task id the report file points at.
func CeTaskID(reportPath string) (string, error) {
	props, err := properties.LoadFile(reportPath, properties.UTF8)
	if err != nil {
		return "", utils.NewResultFetchError("failed to read the scanner report %s: %s", reportPath, err)
	}
	taskID := props.GetString("ceTaskId", "")
	if taskID == "" {
		return "", utils.NewResultFetchError("the scanner report %s names no compute engine task", reportPath)
	}
	return taskID, nil
}
