package server

import (
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
)

// strayServerMarker identifies a running SonarQube server in a process command
// line regardless of which distribution directory it was started from.
const strayServerMarker = "lib/sonar-application"

// KillStrayServers terminates server processes left behind by earlier runs. A
// stray server still holds the web port and the Elasticsearch data directory,
// so a fresh launch cannot succeed while one is alive.
func KillStrayServers() {
	procs, err := process.Processes()
	if err != nil {
		log.Warn("failed to list processes:", err)
		return
	}
	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil || !strings.HasPrefix(strings.ToLower(name), "java") {
			continue
		}
		cmdline, err := proc.Cmdline()
		if err != nil || !strings.Contains(cmdline, strayServerMarker) {
			continue
		}
		killProcessFamily(proc)
		return
	}
}

func killProcessFamily(proc *process.Process) {
	log.Infof("terminating stray server process %d", proc.Pid)
	children := descendants(proc)
	if err := proc.Terminate(); err != nil {
		log.Debugf("terminate %d: %s", proc.Pid, err)
	}
	for _, child := range children {
		if err := child.Kill(); err != nil {
			log.Debugf("kill child %d: %s", child.Pid, err)
		}
	}
}

func descendants(proc *process.Process) []*process.Process {
	children, err := proc.Children()
	if err != nil {
		return nil
	}
	all := make([]*process.Process, 0, len(children))
	for _, child := range children {
		all = append(all, child)
		all = append(all, descendants(child)...)
	}
	return all
}
