// Package config resolves the plugin runtime configuration: the execution mode,
// server credentials, the task request handed over by the host and the layout of
// the bundled tools.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// Environment variables read by the plugin. SQ_* variables select servers and
// scanner behavior, SONAR_* variables tune the analysis itself.
const (
	SonarTypeEnvVariable         = "SQ_TYPE"
	SettingsFileEnvVariable      = "SQ_SETTINGS_FILE"
	PluginHomeEnvVariable        = "SONAR_PLUGIN_HOME"
	SourceDirEnvVariable         = "SOURCE_DIR"
	BuildCwdEnvVariable          = "BUILD_CWD"
	TaskRequestEnvVariable       = "TASK_REQUEST"
	SonarTimeoutEnvVariable      = "SONAR_TIMEOUT"
	SonarReportEnvVariable       = "SONAR_REPORT"
	SonarBuildTypeEnvVariable    = "SONAR_BUILD_TYPE"
	SonarJavaBuildEnvVariable    = "SQ_JAVA_BUILD"
	SonarJavaSrcEnvVariable      = "SONAR_JAVA_SRC"
	SonarSrcEnvVariable          = "SONAR_SRC"
	SonarBinEnvVariable          = "SONAR_BIN"
	SonarLibEnvVariable          = "SONAR_LIB"
	SonarJavaVersionEnvVariable  = "SONAR_JAVA_VERSION"
	SonarDevCostEnvVariable      = "SONAR_DEVCOST"
	SonarRatingGridEnvVariable   = "SONAR_DEBT_RATINGGRID"
	SonarServerParamsEnvVariable = "SONAR_SERVER_PARAMS"
	SonarClientParamsEnvVariable = "SQ_CLIENT_PARAMS"
	AnalyzeOptionsEnvVariable    = "SQ_ANALYZE_OPTIONS"
	QualityProfileEnvVariable    = "SONAR_QUALITYPROFILE"
	QualityProfileTypeEnvVar     = "SONAR_QUALITYPROFILE_TYPE"
	SarifOutputEnvVariable       = "SONAR_SARIF_OUTPUT"

	SonarScannerHomeEnvVariable = "SONAR_SCANNER_HOME"
	SonarqubeHomeEnvVariable    = "SONARQUBE_HOME"
	JdkHomeEnvVariable          = "SQ_JDK_HOME"
)

// Defaults for the technical debt model, applied only when the matching
// environment variable requests an override for the run.
const (
	DefaultDevCost        = 30
	DefaultDebtRatingGrid = "0.05,0.1,0.2,0.5"
)

const defaultServiceTimeout = 300 * time.Second

// ServiceTimeout returns how long to wait for the analysis service to report
// ready, honoring the SONAR_TIMEOUT override in seconds.
func ServiceTimeout() time.Duration {
	value := os.Getenv(SonarTimeoutEnvVariable)
	if value == "" {
		return defaultServiceTimeout
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return defaultServiceTimeout
	}
	return time.Duration(seconds) * time.Second
}

// SourceDir is the checkout the host asked us to analyze.
func SourceDir() string {
	return os.Getenv(SourceDirEnvVariable)
}

// BuildCwd resolves the working directory for build and scanner commands, the
// BUILD_CWD value is taken relative to the source directory.
func BuildCwd(sourceDir string) string {
	relative := os.Getenv(BuildCwdEnvVariable)
	if relative == "" {
		return sourceDir
	}
	return utils.JoinIfRelative(sourceDir, relative)
}

// QualityProfileRequested reports whether the run uses caller managed quality
// profiles instead of the rule set from the task request.
func QualityProfileRequested() bool {
	_, explicit := os.LookupEnv(QualityProfileEnvVariable)
	_, typed := os.LookupEnv(QualityProfileTypeEnvVar)
	return explicit || typed
}

// EnvOr returns the environment value of key, or fallback when unset or empty.
func EnvOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
