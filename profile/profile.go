// Package profile prepares the quality profiles a run activates on the
// server: the bundled defaults pruned down to the requested rules, or caller
// managed profile files selected through the environment.
package profile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/jfrog/gofrog/datastructures"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/ini.v1"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

const defaultProfileSuffix = "_SonarQube_Profile.xml"

// SupportedLanguages lists the languages the bundled server edition analyzes.
// Profiles for anything else are skipped.
var SupportedLanguages = []string{
	"cs", "java", "jsp", "vbnet", "css", "flex", "go", "js",
	"kotlin", "php", "py", "ruby", "scala", "ts", "web", "xml",
}

// Info is the identity of a profile backup file, read from its XML header.
type Info struct {
	Name     string
	Language string
}

// ReadInfo extracts the profile name and language from a backup file.
func ReadInfo(path string) (*Info, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, utils.NewConfigurationError("failed to parse quality profile %s: %s", path, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, utils.NewConfigurationError("quality profile %s has no root element", path)
	}
	name := root.SelectElement("name")
	language := root.SelectElement("language")
	if name == nil || language == nil {
		return nil, utils.NewConfigurationError("quality profile %s is missing its name or language element", path)
	}
	return &Info{Name: strings.TrimSpace(name.Text()), Language: strings.TrimSpace(language.Text())}, nil
}

// Installer collects the profile files relevant for one run and activates
// them on the server for the target project.
type Installer struct {
	client      *sonar.Client
	projectKey  string
	languages   []string
	rules       []string
	ruleList    []config.RuleSetting
	profilesDir string
	workDir     string
	sourceDir   string
}

func NewInstaller(client *sonar.Client) *Installer {
	return &Installer{client: client}
}

func (i *Installer) SetProjectKey(projectKey string) *Installer {
	i.projectKey = projectKey
	return i
}

// SetLanguages restricts caller managed profiles to the languages of the
// running flavor, given as the usual comma separated list.
func (i *Installer) SetLanguages(languages string) *Installer {
	i.languages = strings.Split(languages, ",")
	return i
}

func (i *Installer) SetRules(rules []string, ruleList []config.RuleSetting) *Installer {
	i.rules = rules
	i.ruleList = ruleList
	return i
}

// SetProfilesDir points at the bundled default profiles.
func (i *Installer) SetProfilesDir(profilesDir string) *Installer {
	i.profilesDir = profilesDir
	return i
}

func (i *Installer) SetWorkDir(workDir string) *Installer {
	i.workDir = workDir
	return i
}

func (i *Installer) SetSourceDir(sourceDir string) *Installer {
	i.sourceDir = sourceDir
	return i
}

// Install resolves the profile file per language, prunes the bundled defaults
// to the requested rules and restores every profile on the server before
// binding it to the project.
func (i *Installer) Install() error {
	profilePaths, err := i.collectProfiles()
	if err != nil {
		return err
	}
	for _, path := range profilePaths {
		if strings.HasSuffix(strings.ToLower(path), strings.ToLower(defaultProfileSuffix)) {
			if err = i.pruneProfile(path); err != nil {
				return err
			}
		}
	}

	languages := maps.Keys(profilePaths)
	slices.Sort(languages)
	for _, language := range languages {
		path := profilePaths[language]
		if err = i.client.RestoreProfile(path); err != nil {
			return utils.NewScanExecutionError("failed to restore quality profile %s: %s", path, err)
		}
		info, err := ReadInfo(path)
		if err != nil {
			return err
		}
		if err = i.client.AddProjectToProfile(i.projectKey, info.Language, info.Name); err != nil {
			return utils.NewScanExecutionError(
				"failed to bind quality profile %s to project %s: %s", info.Name, i.projectKey, err)
		}
		log.Infof("activated quality profile %s for %s", info.Name, language)
	}
	return nil
}

// collectProfiles maps each language to the profile file that wins for it:
// bundled defaults first, then a profile set selected by type, then explicit
// caller managed files.
func (i *Installer) collectProfiles() (map[string]string, error) {
	destDir := filepath.Join(i.workDir, "profiles")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	profilePaths := make(map[string]string)
	// Bundled defaults carry the language as the file name prefix.
	for _, path := range utils.FindFilesBySuffix(i.profilesDir, defaultProfileSuffix) {
		name := filepath.Base(path)
		language := strings.ToLower(strings.SplitN(name, "_", 2)[0])
		if !slices.Contains(SupportedLanguages, language) {
			continue
		}
		dest := filepath.Join(destDir, name)
		if err := utils.CopyFile(path, dest); err != nil {
			return nil, err
		}
		profilePaths[language] = dest
	}

	if profileType := os.Getenv(config.QualityProfileTypeEnvVar); profileType != "" {
		log.Infof("using the %s profile set", profileType)
		for _, path := range utils.FindFilesBySuffix(i.profilesDir, "_"+profileType+".xml") {
			info, err := ReadInfo(path)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(i.languages, info.Language) {
				continue
			}
			dest := filepath.Join(destDir, filepath.Base(path))
			if err = utils.CopyFile(path, dest); err != nil {
				return nil, err
			}
			profilePaths[info.Language] = dest
		}
	}

	if explicit := os.Getenv(config.QualityProfileEnvVariable); explicit != "" {
		log.Warn("using caller managed quality profiles")
		for _, entry := range strings.Split(explicit, ";") {
			if entry == "" {
				continue
			}
			path := utils.JoinIfRelative(i.sourceDir, entry)
			if !utils.FileExists(path) {
				return nil, utils.NewConfigurationError(
					"the quality profile %s does not exist, fix the configured path", entry)
			}
			info, err := ReadInfo(path)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(i.languages, info.Language) {
				continue
			}
			profilePaths[info.Language] = path
		}
	}
	return profilePaths, nil
}

// pruneProfile rewrites a bundled profile in place so only the requested
// rules stay active, applying the parameter overrides the task carries.
func (i *Installer) pruneProfile(path string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return utils.NewConfigurationError("failed to parse quality profile %s: %s", path, err)
	}
	root := doc.Root()
	if root == nil {
		return utils.NewConfigurationError("quality profile %s has no root element", path)
	}
	rulesElement := root.SelectElement("rules")
	if rulesElement == nil {
		return nil
	}

	requested := datastructures.MakeSetFromElements(i.rules...)
	for _, rule := range rulesElement.SelectElements("rule") {
		repository := rule.SelectElement("repositoryKey")
		key := rule.SelectElement("key")
		if repository == nil || key == nil {
			continue
		}
		ruleName := repository.Text() + ":" + key.Text()
		if !requested.Exists(ruleName) {
			rulesElement.RemoveChild(rule)
			continue
		}
		overrides := i.ruleParams(ruleName)
		if len(overrides) == 0 {
			continue
		}
		parameters := rule.SelectElement("parameters")
		if parameters == nil {
			continue
		}
		for _, parameter := range parameters.SelectElements("parameter") {
			parameterKey := parameter.SelectElement("key")
			parameterValue := parameter.SelectElement("value")
			if parameterKey == nil || parameterValue == nil {
				continue
			}
			if value, ok := overrides[parameterKey.Text()]; ok {
				parameterValue.SetText(value)
			}
		}
	}
	return doc.WriteToFile(path)
}

// ruleParams parses the ini formatted parameter overrides of one rule. Rule
// authors write bare "key=value" lines, the sq section header is implied.
func (i *Installer) ruleParams(rule string) map[string]string {
	for _, setting := range i.ruleList {
		if setting.Name != rule || setting.Params == "" {
			continue
		}
		payload := setting.Params
		if !strings.Contains(payload, "[sq]") {
			payload = "[sq]\n" + payload
		}
		file, err := ini.Load([]byte(payload))
		if err != nil {
			log.Warnf("ignoring malformed parameters of rule %s: %s", rule, err)
			return nil
		}
		return file.Section("sq").KeysHash()
	}
	return nil
}
