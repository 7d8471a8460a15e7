// Package server controls the lifecycle of the analysis service: launching the
// bundled SonarQube server for LOCAL runs, health checking, configuration
// overrides and cleanup of stray server processes.
package server

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// SonarqubeUserEnvVariable names the account the server is started under when
// the plugin itself runs as root. The server refuses to run as root, so a
// dedicated account is created when none is configured.
const SonarqubeUserEnvVariable = "SONARQUBE_USER"

const defaultServiceAccount = "sonarqube"

// readyMarker is the log line the server prints once every component is up.
const readyMarker = "SonarQube is up"

// fatalMarkers are log lines after which the launch cannot succeed anymore,
// waiting for the readiness probe would only burn the timeout.
var fatalMarkers = []string{
	"app[][o.s.a.SchedulerImpl] SonarQube is stopped",
	"java.lang.IllegalStateException: SonarQube requires Java 11 to run",
	"sudo: pam_open_session: Permission denied",
	"sudo: sorry, you must have a tty to run sudo",
	"sudoers.so must be only be writable by owner",
	"org.elasticsearch.cluster.block.ClusterBlockException: blocked by: [FORBIDDEN/12/index read-only / allow delete (api)]",
	"fatal error, unable to load plugins",
	"Error: Could not find or load main class org.sonar.application.App",
}

// Launcher starts and supervises one local server process.
type Launcher struct {
	serverHome string
	jdkHome    string

	cmd   *exec.Cmd
	pumps errgroup.Group
	ready atomic.Bool

	mu    sync.Mutex
	fatal string
}

func NewLauncher(serverHome, jdkHome string) *Launcher {
	return &Launcher{serverHome: serverHome, jdkHome: jdkHome}
}

// Start brings up the server process and begins watching its output. It
// returns as soon as the process is running, readiness is established
// separately through WaitUntilReady.
func (l *Launcher) Start() error {
	KillStrayServers()
	ensureNoProxyForLocalhost()

	argv, err := l.launchCommand()
	if err != nil {
		return utils.NewServiceStartupError("failed to prepare the server launch command: %s", err)
	}
	log.Info("starting local server:", strings.Join(argv, " "))
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = l.serverHome
	utils.SetProcessGroupAttr(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return utils.NewServiceStartupError("failed to attach to the server output: %s", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return utils.NewServiceStartupError("failed to attach to the server output: %s", err)
	}
	if err = cmd.Start(); err != nil {
		return utils.NewServiceStartupError("failed to start the server process: %s", err)
	}
	l.cmd = cmd
	l.pumps.Go(func() error { return utils.PumpLines(stdout, l.observe) })
	l.pumps.Go(func() error { return utils.PumpLines(stderr, l.observe) })
	log.Infof("server process started with pid %d", cmd.Process.Pid)
	return nil
}

// launchCommand builds the argv that brings the server up. Running as root
// needs an unprivileged account because the server refuses to start under root.
func (l *Launcher) launchCommand() ([]string, error) {
	if runtime.GOOS == "windows" {
		script := fmt.Sprintf("set PATH=%s;%%PATH%%\r\nbin\\windows-x86-64\\StartSonar.bat", filepath.Join(l.jdkHome, "bin"))
		return utils.GenerateShellScript(l.serverHome, "run_sonar", script)
	}
	pathExport := fmt.Sprintf("export PATH=%s/bin:$PATH", l.jdkHome)
	if os.Geteuid() == 0 {
		account, err := l.prepareServiceAccount()
		if err != nil {
			return nil, err
		}
		return []string{"sudo", "-u", account, "bash", "-c", pathExport + " && ./bin/run.sh"}, nil
	}
	return utils.GenerateShellScript(l.serverHome, "run_sonar", pathExport+"\n./bin/run.sh")
}

// prepareServiceAccount resolves or creates the account the server runs under
// and opens up the tool directories so that account can use them.
func (l *Launcher) prepareServiceAccount() (string, error) {
	account := os.Getenv(SonarqubeUserEnvVariable)
	if account == "" {
		account = defaultServiceAccount
		if err := utils.RunCommand([]string{"useradd", account}, l.serverHome, nil, logLine); err != nil {
			log.Debugf("useradd %s: %s", account, err)
		}
	}
	for _, dir := range []string{l.serverHome, l.jdkHome} {
		if err := utils.RunCommand([]string{"chmod", "-R", "777", dir}, l.serverHome, nil, logLine); err != nil {
			return "", err
		}
	}
	if err := chmodAncestors(l.serverHome, 0o777); err != nil {
		return "", err
	}
	return account, nil
}

// chmodAncestors opens up every directory above path so the service account can
// traverse into the server home.
func chmodAncestors(path string, mode os.FileMode) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	for {
		if err = os.Chmod(dir, mode); err != nil {
			return err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func (l *Launcher) observe(line string) {
	log.Debug("server:", line)
	if strings.Contains(line, readyMarker) {
		l.ready.Store(true)
		log.Info("server reported readiness")
		return
	}
	for _, marker := range fatalMarkers {
		if strings.Contains(line, marker) {
			l.mu.Lock()
			if l.fatal == "" {
				l.fatal = line
			}
			l.mu.Unlock()
			return
		}
	}
}

// Ready reports whether the server has logged its readiness marker.
func (l *Launcher) Ready() bool {
	return l.ready.Load()
}

// FatalError returns a startup error once the server output contained a fatal
// marker, nil otherwise.
func (l *Launcher) FatalError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fatal == "" {
		return nil
	}
	return utils.NewServiceStartupError("the server cannot start: %s", l.fatal)
}

// Stop terminates the server process tree. Safe to call when Start failed.
func (l *Launcher) Stop() {
	if l.cmd == nil || l.cmd.Process == nil {
		return
	}
	log.Infof("stopping server process %d", l.cmd.Process.Pid)
	utils.KillProcessTree(l.cmd.Process)
	_ = l.pumps.Wait()
	_ = l.cmd.Wait()
	l.cmd = nil
}

// ensureNoProxyForLocalhost keeps requests against the local server from being
// sent through a configured HTTP proxy.
func ensureNoProxyForLocalhost() {
	current := os.Getenv("no_proxy")
	entries := []string{}
	if current != "" {
		entries = strings.Split(current, ",")
	}
	for _, entry := range entries {
		if entry == "localhost" {
			return
		}
	}
	entries = append(entries, "localhost")
	_ = os.Setenv("no_proxy", strings.Join(entries, ","))
}

func logLine(line string) {
	log.Debug(line)
}
