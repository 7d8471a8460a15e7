package utils

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
)

// RunCommand executes argv in cwd and streams every output line to onLine.
// Both stdout and stderr are drained concurrently so the child never blocks on a
// full pipe. The returned error is the child's exit error, if any.
func RunCommand(argv []string, cwd string, extraEnv map[string]string, onLine func(string)) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = cwd
	if len(extraEnv) > 0 {
		cmd.Env = ToCommandEnvVars(MergeMaps(ToEnvVarsMap(os.Environ()), extraEnv))
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err = cmd.Start(); err != nil {
		return err
	}
	var pumps errgroup.Group
	pumps.Go(func() error { return PumpLines(stdout, onLine) })
	pumps.Go(func() error { return PumpLines(stderr, onLine) })
	pumpErr := pumps.Wait()
	if err = cmd.Wait(); err != nil {
		return err
	}
	return pumpErr
}

// PumpLines reads pipe line by line and hands each line to onLine.
func PumpLines(pipe io.Reader, onLine func(string)) error {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
	return scanner.Err()
}

// GenerateShellScript writes cmd into an executable script under dir and returns
// the argv that runs it. Wrapping user supplied command lines in a script keeps
// shell syntax such as pipes and && working on every platform, and lets the
// script be handed to another user account.
func GenerateShellScript(dir, name, cmd string) ([]string, error) {
	scriptName := name + ".sh"
	if runtime.GOOS == "windows" {
		scriptName = name + ".bat"
	}
	scriptPath := filepath.Join(dir, scriptName)
	if err := os.WriteFile(scriptPath, []byte(cmd), 0o700); err != nil {
		return nil, err
	}
	if err := os.Chmod(scriptPath, 0o777); err != nil {
		return nil, err
	}
	log.Debugf("generated %s with content:\n%s", scriptPath, cmd)
	if runtime.GOOS == "windows" {
		return []string{scriptPath}, nil
	}
	return []string{"bash", scriptPath}, nil
}
