package scanner

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

func shellCommand(script string) []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/c", script}
	}
	return []string{"sh", "-c", script}
}

func TestRunJavaUnknownBuildType(t *testing.T) {
	_, err := testInvocation().RunJava("bazel", "bazel build //...", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeConfiguration, utils.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "SONAR_BUILD_TYPE")
}

func TestRunJavaGradleRequiresBuildCommand(t *testing.T) {
	_, err := testInvocation().RunJava("gradle", "", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeScanExecution, utils.ExitCodeForError(err))
}

func TestRunJavaAntRequiresBuildCommand(t *testing.T) {
	_, err := testInvocation().RunJava("ant", "", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeScanExecution, utils.ExitCodeForError(err))
}

func TestRunDotnetRequiresBuildCommand(t *testing.T) {
	_, err := testInvocation().RunDotnet("", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeScanExecution, utils.ExitCodeForError(err))
}

func TestRunCommandMarkerOverridesExitCode(t *testing.T) {
	err := testInvocation().runCommand(
		shellCommand("echo java.lang.IllegalStateException: Unable to read file broken.go"),
		t.TempDir(), analyzeCommand)
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeConfiguration, utils.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "broken.go")
}

func TestRunCommandMissingBinariesMarker(t *testing.T) {
	err := testInvocation().runCommand(
		shellCommand("echo java.lang.IllegalStateException: No files nor directories matching && exit 1"),
		t.TempDir(), analyzeCommand)
	require.Error(t, err)
	assert.Equal(t, utils.ExitCodeScanExecution, utils.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "SONAR_BIN")
}

func TestRunCommandCompileFailure(t *testing.T) {
	err := testInvocation().runCommand(shellCommand("exit 2"), t.TempDir(), compileCommand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build command failed")
}

func TestRunCommandAnalyzeFailure(t *testing.T) {
	err := testInvocation().runCommand(shellCommand("exit 2"), t.TempDir(), analyzeCommand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis run failed")
}

func TestRunPreCmdToleratesFailures(t *testing.T) {
	RunPreCmd("", t.TempDir())
	RunPreCmd(`echo "preparing`, t.TempDir())
	RunPreCmd("sh -c 'exit 9'", t.TempDir())
}

func TestSplitCommand(t *testing.T) {
	argv, err := splitCommand(`mvn clean install -DskipTests="true"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"mvn", "clean", "install", "-DskipTests=true"}, argv)

	_, err = splitCommand("   ")
	assert.Error(t, err)
}
