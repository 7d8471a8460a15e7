package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

type commandKind string

const (
	compileCommand commandKind = "compile"
	analyzeCommand commandKind = "analyze"
)

// Output markers the scanner prints on conditions its exit code does not
// distinguish.
const (
	missingBinariesMarker  = "java.lang.IllegalStateException: No files nor directories matching"
	unreadableSourceMarker = "java.lang.IllegalStateException: Unable to read file"
)

// RunNoBuild submits the sources without a build, the flavor used for all
// interpreted languages.
func (inv *Invocation) RunNoBuild(buildCwd string) (string, error) {
	args := []string{
		scannerExecutable,
		"-X",
		"-Dsonar.sources=" + config.EnvOr(config.SonarSrcEnvVariable, "."),
		"-Dsonar.java.binaries=" + config.EnvOr(config.SonarBinEnvVariable, "**/*"),
	}
	args = append(args, inv.commonArgs()...)
	if options := os.Getenv(config.AnalyzeOptionsEnvVariable); options != "" {
		args = append(args, strings.Fields(options)...)
	}
	if err := inv.runCommand(toWindowsArgs(args), buildCwd, analyzeCommand); err != nil {
		return "", err
	}
	return inv.reportCandidate(buildCwd, ".scannerwork", "report-task.txt"), nil
}

// RunJava submits a Java project. The build type selects how the scanner is
// driven: standalone after an optional build, or through the gradle, maven or
// ant integration.
func (inv *Invocation) RunJava(buildType, buildCmd, buildCwd string) (string, error) {
	switch strings.ToLower(buildType) {
	case "", "any", "no_build":
		if os.Getenv(config.SonarJavaBuildEnvVariable) != "" && buildCmd != "" {
			argv, err := splitCommand(buildCmd)
			if err != nil {
				return "", err
			}
			if err = inv.runCommand(argv, buildCwd, compileCommand); err != nil {
				return "", err
			}
		}
		args := []string{
			scannerExecutable,
			"-X",
			"-Dsonar.sources=" + config.EnvOr(config.SonarJavaSrcEnvVariable, "."),
			"-Dsonar.language=java,jsp",
			"-Dsonar.java.binaries=" + config.EnvOr(config.SonarBinEnvVariable, "**/*"),
		}
		args = append(args, inv.commonArgs()...)
		if libraries := os.Getenv(config.SonarLibEnvVariable); libraries != "" {
			args = append(args, "-Dsonar.java.libraries="+libraries)
		}
		if javaVersion := os.Getenv(config.SonarJavaVersionEnvVariable); javaVersion != "" {
			args = append(args, "-Dsonar.java.source="+javaVersion)
		}
		if err := inv.runCommand(toWindowsArgs(args), buildCwd, analyzeCommand); err != nil {
			return "", err
		}
		return inv.reportCandidate(buildCwd, ".scannerwork", "report-task.txt"), nil

	case "gradle":
		if buildCmd == "" {
			return "", utils.NewScanExecutionError("a build command is required for java analysis, set one and retry")
		}
		argv, err := splitCommand(buildCmd)
		if err != nil {
			return "", err
		}
		argv = append(argv, "sonarqube")
		argv = append(argv, inv.commonArgs()...)
		if err = inv.runCommand(toWindowsArgs(argv), buildCwd, compileCommand); err != nil {
			return "", err
		}
		return inv.reportCandidate(buildCwd, "build", "sonar", "report-task.txt"), nil

	case "maven", "mvn":
		argv := []string{"mvn"}
		if buildCmd != "" {
			var err error
			if argv, err = splitCommand(buildCmd); err != nil {
				return "", err
			}
		} else {
			log.Warn("no build command given, falling back to plain mvn")
		}
		argv = append(argv, "sonar:sonar", "-Dsonar.java.binaries="+config.EnvOr(config.SonarBinEnvVariable, "**/*"))
		argv = append(argv, inv.commonArgs()...)
		// The maven integration decides the report location itself, leave it
		// to the report search.
		return "", inv.runCommand(toWindowsArgs(argv), buildCwd, compileCommand)

	case "ant":
		if buildCmd == "" {
			return "", utils.NewScanExecutionError("a build command is required for java analysis, set one and retry")
		}
		argv := append([]string{"ant", "sonar", "-v"}, inv.commonArgs()...)
		return "", inv.runCommand(toWindowsArgs(argv), buildCwd, compileCommand)

	default:
		return "", utils.NewConfigurationError(
			"unsupported %s value %q, supported values are no_build, gradle, maven and ant",
			config.SonarBuildTypeEnvVariable, buildType)
	}
}

// RunDotnet submits a .NET project through SonarScanner.MSBuild: begin step,
// the caller supplied build, then the end step that uploads the analysis.
func (inv *Invocation) RunDotnet(buildCmd, buildCwd string) (string, error) {
	if buildCmd == "" {
		return "", utils.NewScanExecutionError("a build command is required for C# analysis, set one and retry")
	}
	begin := append([]string{msbuildScannerExecutable, "begin"}, toVisualStudioArgs(inv.commonArgs())...)
	if err := inv.runCommand(begin, buildCwd, compileCommand); err != nil {
		return "", err
	}
	buildArgv, err := utils.GenerateShellScript(inv.workDir, "build", buildCmd)
	if err != nil {
		return "", utils.NewScanExecutionError("failed to write the build script: %s", err)
	}
	if err = inv.runCommand(buildArgv, buildCwd, compileCommand); err != nil {
		return "", err
	}
	end := []string{
		msbuildScannerExecutable,
		"end",
		`/d:sonar.login="` + inv.login + `"`,
		`/d:sonar.password="` + inv.password + `"`,
	}
	if err = inv.runCommand(end, buildCwd, analyzeCommand); err != nil {
		return "", err
	}
	return inv.reportCandidate(buildCwd, ".sonarqube", "out", ".sonar", "report-task.txt"), nil
}

// RunPreCmd executes the task's preparation command. Its outcome never fails
// the run, a broken preparation surfaces later through the scan itself.
func RunPreCmd(preCmd, buildCwd string) {
	if preCmd == "" {
		return
	}
	argv, err := shlex.Split(preCmd)
	if err != nil || len(argv) == 0 {
		log.Warnf("skipping malformed pre command %q: %v", preCmd, err)
		return
	}
	log.Info("running pre command:", strings.Join(argv, " "))
	if err = utils.RunCommand(argv, buildCwd, nil, func(line string) { log.Info(line) }); err != nil {
		log.Warnf("pre command failed: %s", err)
	}
}

// reportCandidate predicts where the report file of this submission landed:
// the scanner work directory when the scanner used it, otherwise the flavor
// default relative to the build directory.
func (inv *Invocation) reportCandidate(buildCwd string, fallback ...string) string {
	if inv.scannerWorkDir != "" {
		if _, err := os.Stat(inv.scannerWorkDir); err == nil {
			return filepath.Join(inv.scannerWorkDir, "report-task.txt")
		}
	}
	return filepath.Join(buildCwd, filepath.Join(fallback...))
}

// runCommand runs one scanner or build command, streaming its output to the
// log and watching for the known failure markers.
func (inv *Invocation) runCommand(argv []string, cwd string, kind commandKind) error {
	log.Info("running:", strings.Join(argv, " "))
	var markerErr error
	onLine := func(line string) {
		log.Info(line)
		if markerErr != nil {
			return
		}
		if strings.Contains(line, missingBinariesMarker) {
			markerErr = utils.NewScanExecutionError(
				"no class files found under the binaries path, check the %s setting", config.SonarBinEnvVariable)
		} else if strings.Contains(line, unreadableSourceMarker) {
			markerErr = utils.NewConfigurationError(
				"failed to parse a source file, make sure it is not a broken symlink and has a valid encoding: %s",
				strings.TrimSpace(line))
		}
	}
	err := utils.RunCommand(argv, cwd, nil, onLine)
	if markerErr != nil {
		return markerErr
	}
	if err == nil {
		return nil
	}
	if kind == compileCommand {
		return utils.NewScanExecutionError("the build command failed, make sure it is correct and check the log: %s", err)
	}
	return utils.NewScanExecutionError("the analysis run failed, check the log for details: %s", err)
}

func splitCommand(command string) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, utils.NewConfigurationError("malformed build command %q: %s", command, err)
	}
	if len(argv) == 0 {
		return nil, utils.NewConfigurationError("malformed build command %q", command)
	}
	return argv, nil
}
