// Package scan implements the analysis commands: they bring up (or connect to)
// a SonarQube server, prepare the project and its quality profiles, run the
// scanner flavor the command stands for and translate the findings into the
// host result schema.
package scan

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/profile"
	"github.com/GabrielLegend/tca-plugin-sonarqube/results"
	"github.com/GabrielLegend/tca-plugin-sonarqube/scanner"
	"github.com/GabrielLegend/tca-plugin-sonarqube/server"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// resultFileName is written to the process working directory, the host picks
// it up from there.
const resultFileName = "result.json"

// measuresFileName is the technical debt dump, written into the work dir.
const measuresFileName = "sonar_result.json"

// The web API may answer client errors while the compute engine warms up, so
// project creation retries a few times before giving up.
const (
	projectCreateRetries = 5
	projectRetryInterval = 5 * time.Second
)

// ScanCommand runs the generic scanner over every language the bundled server
// edition analyzes. The java and dotnet commands embed it and swap the scanner
// submission step.
type ScanCommand struct {
	languages string

	mode        config.Mode
	credentials *config.ServerCredentials
	task        *config.TaskRequest

	runID          string
	sourceDir      string
	buildCwd       string
	workDir        string
	scannerWorkDir string
	projectKey     string
	qualityMode    bool
	timeout        time.Duration

	client   *sonar.Client
	launcher *server.Launcher
}

func NewScanCommand() *ScanCommand {
	return &ScanCommand{languages: strings.Join(profile.SupportedLanguages, ",")}
}

func (cmd *ScanCommand) SetLanguages(languages string) *ScanCommand {
	cmd.languages = languages
	return cmd
}

func (cmd *ScanCommand) CommandName() string {
	return "sq_scan"
}

func (cmd *ScanCommand) Run() error {
	return cmd.runWithScanner(func(inv *scanner.Invocation) (string, error) {
		return inv.RunNoBuild(cmd.buildCwd)
	})
}

// runWithScanner drives the pipeline around the flavor specific submission
// step: configuration, the pre command, service startup, project preparation,
// the scan itself and result collection.
func (cmd *ScanCommand) runWithScanner(submit func(*scanner.Invocation) (string, error)) (err error) {
	if err = cmd.configure(); err != nil {
		return
	}
	scanner.RunPreCmd(cmd.task.TaskParams.PreCmd, cmd.buildCwd)

	shutdown, err := cmd.ensureService()
	if err != nil {
		return
	}
	defer shutdown()

	if err = cmd.prepareProject(); err != nil {
		return
	}
	defer cmd.resetDebtSettings()

	predicted, err := submit(cmd.newInvocation())
	if err != nil {
		return
	}
	return cmd.collectResults(predicted)
}

// configure resolves everything the run needs before any process is started:
// mode and credentials, the task request, directory layout and the API client.
func (cmd *ScanCommand) configure() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if cmd.mode, cmd.credentials, err = settings.ResolveMode(); err != nil {
		return err
	}
	if cmd.task, err = config.LoadTaskRequest(); err != nil {
		return err
	}
	if cmd.workDir, err = cmd.task.WorkDir(); err != nil {
		return utils.NewConfigurationError("cannot create the work directory: %s", err)
	}
	cmd.sourceDir = config.SourceDir()
	if cmd.sourceDir == "" {
		return utils.NewConfigurationError("%s is not set", config.SourceDirEnvVariable)
	}
	if err = config.InitToolEnv(); err != nil {
		return err
	}

	cmd.runID = uuid.NewString()
	cmd.buildCwd = config.BuildCwd(cmd.sourceDir)
	cmd.scannerWorkDir = filepath.Join(cmd.workDir, "scannerwork")
	cmd.timeout = config.ServiceTimeout()
	cmd.qualityMode = config.QualityProfileRequested()
	cmd.projectKey = config.ComposeProjectKey(cmd.mode, cmd.credentials, cmd.task.TaskParams.ProjectID.String())

	cmd.client = sonar.NewClient(cmd.credentials.URL, cmd.credentials.Port, cmd.credentials.BasePath)
	if cmd.mode == config.Common || cmd.credentials.Password == "" {
		cmd.client.SetToken(cmd.credentials.Username)
	} else {
		cmd.client.SetBasicAuth(cmd.credentials.Username, cmd.credentials.Password)
	}

	log.Infof("analysis run %s in %s mode, project %s", cmd.runID, cmd.mode, cmd.projectKey)
	log.Debugf("source dir %s, build dir %s, work dir %s", cmd.sourceDir, cmd.buildCwd, cmd.workDir)
	return nil
}

// ensureService makes the analysis server reachable. COMMON connects to the
// shared server and validates the credentials, LOCAL launches the bundled one.
// The returned shutdown reverses whatever was started.
func (cmd *ScanCommand) ensureService() (shutdown func(), err error) {
	if cmd.mode == config.Common {
		log.Infof("using the shared analysis server at %s", cmd.client.BaseURL())
		if err = server.ValidateRemote(cmd.client); err != nil {
			return nil, err
		}
		if err = server.WaitUntilReady(cmd.client, nil, cmd.timeout); err != nil {
			return nil, err
		}
		return func() {}, nil
	}

	serverHome := config.ServerHome()
	restoreProperties, err := server.ApplyServerParams(serverHome, os.Getenv(config.SonarServerParamsEnvVariable))
	if err != nil {
		return nil, utils.NewServiceStartupError("failed to apply the server parameter overrides: %s", err)
	}
	cmd.launcher = server.NewLauncher(serverHome, config.JdkHome())
	shutdown = func() {
		cmd.launcher.Stop()
		if restoreProperties == nil {
			return
		}
		if restoreErr := restoreProperties(); restoreErr != nil {
			log.Warnf("failed to restore the server properties: %s", restoreErr)
		}
	}
	if err = cmd.launcher.Start(); err != nil {
		shutdown()
		return nil, err
	}
	if err = server.WaitUntilReady(cmd.client, cmd.launcher, cmd.timeout); err != nil {
		shutdown()
		return nil, err
	}
	return shutdown, nil
}

// prepareProject registers the project, applies the per run technical debt
// overrides and installs the quality profiles.
func (cmd *ScanCommand) prepareProject() error {
	if err := cmd.createProject(); err != nil {
		return err
	}
	if err := cmd.applyDebtSettings(); err != nil {
		return err
	}
	return profile.NewInstaller(cmd.client).
		SetProjectKey(cmd.projectKey).
		SetLanguages(cmd.languages).
		SetRules(cmd.task.TaskParams.Rules, cmd.task.TaskParams.RuleList).
		SetProfilesDir(config.ProfilesDir()).
		SetWorkDir(cmd.workDir).
		SetSourceDir(cmd.sourceDir).
		Install()
}

// createProject registers the project key. A validation error means the
// project already exists, client errors are retried while the server warms up.
func (cmd *ScanCommand) createProject() error {
	deadline := time.Now().Add(cmd.timeout)
	for attempt := 1; ; attempt++ {
		err := cmd.client.CreateProject(cmd.projectKey, cmd.projectKey)
		if err == nil {
			log.Infof("project %s created", cmd.projectKey)
			return nil
		}
		var validationErr *sonar.ValidationError
		if errors.As(err, &validationErr) {
			log.Infof("project %s already exists", cmd.projectKey)
			return nil
		}
		var clientErr *sonar.ClientError
		if !errors.As(err, &clientErr) {
			return utils.NewScanExecutionError("failed to create project %s: %s", cmd.projectKey, err)
		}
		if attempt > projectCreateRetries {
			return utils.NewScanExecutionError(
				"project creation gave up after %d attempts, check the server log: %s", projectCreateRetries, err)
		}
		if time.Now().After(deadline) {
			return utils.NewScanExecutionError("timed out waiting for project creation: %s", err)
		}
		log.Debugf("project creation attempt %d failed: %s", attempt, err)
		time.Sleep(projectRetryInterval)
	}
}

// applyDebtSettings forwards the technical debt overrides of this run. The
// settings are server wide, resetDebtSettings puts the defaults back.
func (cmd *ScanCommand) applyDebtSettings() error {
	if devCost := os.Getenv(config.SonarDevCostEnvVariable); devCost != "" {
		if err := cmd.client.SetSetting("sonar.technicalDebt.developmentCost", devCost); err != nil {
			return utils.NewScanExecutionError("failed to set the development cost: %s", err)
		}
	}
	if grid := os.Getenv(config.SonarRatingGridEnvVariable); grid != "" {
		if err := cmd.client.SetSetting("sonar.technicalDebt.ratingGrid", grid); err != nil {
			return utils.NewScanExecutionError("failed to set the debt rating grid: %s", err)
		}
	}
	return nil
}

func (cmd *ScanCommand) resetDebtSettings() {
	if os.Getenv(config.SonarDevCostEnvVariable) != "" {
		if err := cmd.client.SetSetting("sonar.technicalDebt.developmentCost", strconv.Itoa(config.DefaultDevCost)); err != nil {
			log.Warnf("failed to reset the development cost: %s", err)
		}
	}
	if os.Getenv(config.SonarRatingGridEnvVariable) != "" {
		if err := cmd.client.SetSetting("sonar.technicalDebt.ratingGrid", config.DefaultDebtRatingGrid); err != nil {
			log.Warnf("failed to reset the debt rating grid: %s", err)
		}
	}
}

func (cmd *ScanCommand) newInvocation() *scanner.Invocation {
	return scanner.NewInvocation().
		SetProjectKey(cmd.projectKey).
		SetHostURL(cmd.client.BaseURL()).
		SetCredentials(cmd.credentials.Username, cmd.credentials.Password).
		SetScannerWorkDir(cmd.scannerWorkDir).
		SetWorkDir(cmd.workDir).
		SetPathFilters(cmd.task.TaskParams.PathFilters)
}

// collectResults turns a finished scanner run into the host artifacts: it waits
// for the server side task, dumps the debt measures, translates the issues and
// writes the result, summary and optional SARIF files.
func (cmd *ScanCommand) collectResults(predicted string) error {
	reportPath := scanner.FindReportFile(predicted, cmd.sourceDir, cmd.scannerWorkDir)
	if reportPath == "" {
		return utils.NewResultFetchError("no scanner report was produced, the analysis never reached the server")
	}
	taskID, err := scanner.CeTaskID(reportPath)
	if err != nil {
		return err
	}
	if err = results.WaitForCeTask(cmd.client, taskID, cmd.timeout); err != nil {
		return err
	}

	summary := &results.Summary{RunID: cmd.runID}
	if summary.SqDebt, err = results.DumpMeasures(cmd.client, cmd.projectKey, filepath.Join(cmd.workDir, measuresFileName)); err != nil {
		return err
	}

	issues, err := results.NewTranslator(cmd.client).
		SetProjectKey(cmd.projectKey).
		SetLanguages(cmd.languages).
		SetRules(cmd.task.TaskParams.Rules).
		SetQualityMode(cmd.qualityMode).
		SetSourceDir(cmd.sourceDir).
		SetBuildCwd(cmd.buildCwd).
		Translate()
	if err != nil {
		return err
	}

	if !cmd.task.TaskParams.IncrScan {
		summary.CognComplexity = results.CognComplexityRollup(issues)
	}
	if err = results.WriteSummary(summary, cmd.workDir); err != nil {
		return utils.NewResultFetchError("failed to write the task summary: %s", err)
	}
	if err = results.WriteResults(issues, resultFileName); err != nil {
		return utils.NewResultFetchError("failed to write %s: %s", resultFileName, err)
	}
	log.Infof("analysis finished with %d issues", len(issues))

	if sarifPath := os.Getenv(config.SarifOutputEnvVariable); sarifPath != "" {
		if err = results.ExportSarif(issues, sarifPath); err != nil {
			return utils.NewResultFetchError("failed to write the SARIF export: %s", err)
		}
		log.Infof("SARIF export written to %s", sarifPath)
	}
	return nil
}
