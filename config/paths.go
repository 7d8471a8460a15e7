package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
)

// Versions of the tools shipped next to the plugin.
const (
	scannerDirName = "sonar-scanner-4.2.0.1873"
	serverDirName  = "sonarqube-8.9.8.54436"
)

// platformDirs maps runtime.GOOS onto the per platform tool directory names.
var platformDirs = map[string]string{
	"linux":   "linux",
	"windows": "windows",
	"darwin":  "mac",
}

// PluginHome is the installation directory of the plugin, holding the tools,
// profiles and config directories. SONAR_PLUGIN_HOME overrides the default of
// the executable's directory.
func PluginHome() string {
	if home := os.Getenv(PluginHomeEnvVariable); home != "" {
		return home
	}
	executable, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(executable)
}

// ToolsDir holds the bundled scanner and server distributions.
func ToolsDir() string {
	return filepath.Join(PluginHome(), "tools")
}

// ProfilesDir holds the shipped quality profile XML files.
func ProfilesDir() string {
	return filepath.Join(PluginHome(), "profiles")
}

// RulesConfigDir holds the per flavor rule description documents.
func RulesConfigDir() string {
	return filepath.Join(PluginHome(), "config")
}

// ScannerHome returns the sonar-scanner distribution for this platform.
func ScannerHome() string {
	platform, ok := platformDirs[runtime.GOOS]
	if !ok {
		platform = "linux"
	}
	return filepath.Join(ToolsDir(), platform, scannerDirName)
}

// ServerHome returns the bundled SonarQube server distribution, shared across
// platforms.
func ServerHome() string {
	return filepath.Join(ToolsDir(), "common", serverDirName)
}

// JdkHome returns the JRE shipped inside the scanner distribution.
func JdkHome() string {
	return filepath.Join(ScannerHome(), "jre")
}

// InitToolEnv publishes the tool locations into the environment and puts the
// bundled JRE and scanner first on PATH, so the launched server and scanner
// resolve the pinned Java instead of whatever the machine carries.
func InitToolEnv() error {
	scannerHome := ScannerHome()
	jdkHome := JdkHome()
	serverHome := ServerHome()
	for key, value := range map[string]string{
		SonarScannerHomeEnvVariable: scannerHome,
		JdkHomeEnvVariable:          jdkHome,
		SonarqubeHomeEnvVariable:    serverHome,
	} {
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	path := filepath.Join(jdkHome, "bin") + string(os.PathListSeparator) +
		filepath.Join(scannerHome, "bin") + string(os.PathListSeparator) +
		os.Getenv("PATH")
	if err := os.Setenv("PATH", path); err != nil {
		return err
	}
	log.Debugf("tool environment ready, scanner at %s, server at %s", scannerHome, serverHome)
	return nil
}
