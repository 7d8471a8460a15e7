// Package scanner assembles and runs the bundled sonar-scanner and
// SonarScanner.MSBuild invocations and locates the report file a
// submission leaves behind.
package scanner

import (
	"os"
	"runtime"
	"strings"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

const (
	scannerExecutable        = "sonar-scanner"
	msbuildScannerExecutable = "SonarScanner.MSBuild.exe"
)

// Invocation carries the per run scanner context shared by all flavors: the
// target project, the server address and credentials and the analysis scope.
type Invocation struct {
	projectKey     string
	hostURL        string
	login          string
	password       string
	scannerWorkDir string
	workDir        string
	pathFilters    config.PathFilters
}

func NewInvocation() *Invocation {
	return &Invocation{}
}

func (inv *Invocation) SetProjectKey(projectKey string) *Invocation {
	inv.projectKey = projectKey
	return inv
}

// SetHostURL sets the full server address including port and base path.
func (inv *Invocation) SetHostURL(hostURL string) *Invocation {
	inv.hostURL = hostURL
	return inv
}

func (inv *Invocation) SetCredentials(login, password string) *Invocation {
	inv.login = login
	inv.password = password
	return inv
}

// SetScannerWorkDir sets the directory the scanner keeps its state in, passed
// through sonar.working.directory so the report lands in a known place.
func (inv *Invocation) SetScannerWorkDir(scannerWorkDir string) *Invocation {
	inv.scannerWorkDir = scannerWorkDir
	return inv
}

// SetWorkDir sets the scratch directory generated helper scripts are written to.
func (inv *Invocation) SetWorkDir(workDir string) *Invocation {
	inv.workDir = workDir
	return inv
}

func (inv *Invocation) SetPathFilters(pathFilters config.PathFilters) *Invocation {
	inv.pathFilters = pathFilters
	return inv
}

// commonArgs returns the flags every scanner flavor passes: project and server
// coordinates, the scope filters and any raw flags from SQ_CLIENT_PARAMS.
func (inv *Invocation) commonArgs() []string {
	args := []string{
		"-Dsonar.projectKey=" + inv.projectKey,
		"-Dsonar.host.url=" + inv.hostURL,
		"-Dsonar.login=" + inv.login,
		"-Dsonar.password=" + inv.password,
		"-Dsonar.scm.disabled=true",
		"-Dsonar.import_unknown_files=true",
		"-Dsonar.sourceEncoding=UTF-8",
		"-Dsonar.working.directory=" + inv.scannerWorkDir,
	}
	args = appendClientParams(args)
	args = appendPathFilterArgs(args, inv.pathFilters)
	return args
}

// appendClientParams splices raw scanner flags from SQ_CLIENT_PARAMS, for
// example "-Dsonar.javascript.globals=;-Dsonar.javascript.environments=".
func appendClientParams(args []string) []string {
	raw := strings.Trim(os.Getenv(config.SonarClientParamsEnvVariable), `"`)
	if raw == "" {
		return args
	}
	return append(args, strings.Split(raw, ";")...)
}

func appendPathFilterArgs(args []string, filters config.PathFilters) []string {
	// The same pattern can arrive through more than one filter source.
	var inclusions []string
	inclusions = append(inclusions, translateWildcardFilters(filters.WildcardInclusion)...)
	inclusions = append(inclusions, translateRegexFilters(filters.ReInclusion)...)
	inclusions = append(inclusions, translateRegexFilters(filters.YamlFilters.LintInclusion)...)
	inclusions = utils.UniqueUnion(inclusions)
	var exclusions []string
	exclusions = append(exclusions, translateWildcardFilters(filters.WildcardExclusion)...)
	exclusions = append(exclusions, translateRegexFilters(filters.ReExclusion)...)
	exclusions = append(exclusions, translateRegexFilters(filters.YamlFilters.LintExclusion)...)
	exclusions = utils.UniqueUnion(exclusions)

	if len(inclusions) > 0 {
		args = append(args, "-Dsonar.inclusions="+strings.Join(inclusions, ","))
	}
	if len(exclusions) > 0 {
		args = append(args, "-Dsonar.exclusions="+strings.Join(exclusions, ","))
	}
	return args
}

// translateWildcardFilters rewrites host glob patterns into scanner form, the
// scanner only treats ** and deeper as a recursive wildcard.
func translateWildcardFilters(patterns []string) []string {
	translated := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		translated = append(translated, strings.ReplaceAll(pattern, "*", "***"))
	}
	return translated
}

// translateRegexFilters rewrites the .* runs of regex patterns into the
// scanner wildcard, the rest of the pattern is passed through as is.
func translateRegexFilters(patterns []string) []string {
	translated := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		translated = append(translated, strings.ReplaceAll(pattern, ".*", "***"))
	}
	return translated
}

// toWindowsArgs quotes the payload of -D flags on Windows, cmd.exe would
// otherwise split values containing separators.
func toWindowsArgs(args []string) []string {
	if runtime.GOOS != "windows" {
		return args
	}
	converted := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "-D") {
			converted = append(converted, `-D"`+arg[2:]+`"`)
		} else {
			converted = append(converted, arg)
		}
	}
	return converted
}

// toVisualStudioArgs rewrites -D flags into the /k: and /d: forms understood
// by SonarScanner.MSBuild.
func toVisualStudioArgs(args []string) []string {
	converted := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "-Dsonar.projectKey="):
			_, value, _ := strings.Cut(arg, "=")
			converted = append(converted, `/k:"`+value+`"`)
		case strings.HasPrefix(arg, "-D"):
			key, value, _ := strings.Cut(arg[2:], "=")
			converted = append(converted, "/d:"+key+`="`+value+`"`)
		default:
			converted = append(converted, arg)
		}
	}
	return converted
}
