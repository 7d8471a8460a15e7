// Package rulesupdate exports the rule sets of a running local server into the
// per flavor rule documents the platform imports. Maintainers run it after a
// server or analyzer upgrade and review the config-new output before shipping.
package rulesupdate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/GabrielLegend/tca-plugin-sonarqube/config"
	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/severityutils"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// flavorLanguages maps each plugin flavor onto the languages its rule document
// covers. vbnet rules stay unpublished, the platform has no vbnet language.
var flavorLanguages = map[string]string{
	"sq":      "css,flex,go,js,kotlin,php,py,ruby,scala,ts,web,xml",
	"sq_cs":   "cs",
	"sq_java": "java,jsp",
}

// platformLanguages maps server language keys onto the platform language
// names. The casing is part of the host contract, including the upper case Go.
var platformLanguages = map[string]string{
	"java":   "java",
	"jsp":    "java",
	"cs":     "cs",
	"web":    "html",
	"py":     "python",
	"css":    "css",
	"flex":   "flex",
	"go":     "Go",
	"js":     "js",
	"kotlin": "kotlin",
	"php":    "php",
	"ruby":   "ruby",
	"scala":  "scala",
	"ts":     "ts",
	"xml":    "xml",
}

// RuleDefinition is one checkrule_set entry of a rule document.
type RuleDefinition struct {
	RealName    string   `json:"real_name"`
	DisplayName string   `json:"display_name"`
	Severity    string   `json:"severity"`
	Category    string   `json:"category"`
	RuleTitle   string   `json:"rule_title"`
	RuleParams  *string  `json:"rule_params"`
	Custom      bool     `json:"custom"`
	Languages   []string `json:"languages"`
	Solution    *string  `json:"solution"`
	Owner       *string  `json:"owner"`
	Labels      []string `json:"labels"`
	Description string   `json:"description"`
	Disable     bool     `json:"disable"`
}

// RulesUpdateCommand regenerates the rule documents from the server rule sets.
type RulesUpdateCommand struct {
	client    *sonar.Client
	configDir string
	outputDir string
}

func NewRulesUpdateCommand() *RulesUpdateCommand {
	return &RulesUpdateCommand{}
}

func (ruc *RulesUpdateCommand) SetClient(client *sonar.Client) *RulesUpdateCommand {
	ruc.client = client
	return ruc
}

func (ruc *RulesUpdateCommand) SetConfigDir(configDir string) *RulesUpdateCommand {
	ruc.configDir = configDir
	return ruc
}

func (ruc *RulesUpdateCommand) SetOutputDir(outputDir string) *RulesUpdateCommand {
	ruc.outputDir = outputDir
	return ruc
}

func (ruc *RulesUpdateCommand) CommandName() string {
	return "sq_update_rules"
}

func (ruc *RulesUpdateCommand) Run() error {
	if err := ruc.configure(); err != nil {
		return err
	}
	flavors := maps.Keys(flavorLanguages)
	slices.Sort(flavors)
	for _, flavor := range flavors {
		definitions, err := ruc.exportRules(flavorLanguages[flavor])
		if err != nil {
			return err
		}
		if err = ruc.updateDocument(flavor, definitions); err != nil {
			return err
		}
		log.Infof("flavor %s: exported %d rules", flavor, len(definitions))
	}
	return nil
}

// configure fills in whatever the caller did not inject: a client against the
// local server account and the document directories under the plugin home.
func (ruc *RulesUpdateCommand) configure() error {
	if ruc.client == nil {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		account := settings.LocalUser
		ruc.client = sonar.NewClient(account.URL, account.Port, account.BasePath)
		if account.Password == "" {
			ruc.client.SetToken(account.Username)
		} else {
			ruc.client.SetBasicAuth(account.Username, account.Password)
		}
	}
	if ruc.configDir == "" {
		ruc.configDir = config.RulesConfigDir()
	}
	if ruc.outputDir == "" {
		ruc.outputDir = filepath.Join(config.PluginHome(), "config-new")
	}
	return nil
}

// exportRules fetches the active rules of the given languages and converts
// them into platform rule definitions.
func (ruc *RulesUpdateCommand) exportRules(languages string) ([]RuleDefinition, error) {
	rules, err := ruc.client.SearchRules(sonar.RulesQuery{
		ActiveOnly: true,
		Languages:  languages,
		Fields:     "name,severity,lang,mdDesc",
	})
	if err != nil {
		return nil, utils.NewResultFetchError("failed to fetch the rules for %s: %s", languages, err)
	}
	definitions := make([]RuleDefinition, 0, len(rules))
	for _, rule := range rules {
		platformLanguage, ok := platformLanguages[rule.Lang]
		if !ok {
			log.Warnf("rule %s reports unmapped language %s, skipping it", rule.Key, rule.Lang)
			continue
		}
		definitions = append(definitions, RuleDefinition{
			RealName:    rule.Key,
			DisplayName: displayName(rule.Key),
			Severity:    severityutils.ToPlatformLevel(severityutils.Severity(rule.Severity)).String(),
			Category:    severityutils.ToPlatformCategory(severityutils.IssueType(rule.Type)).String(),
			RuleTitle:   rule.Name,
			Languages:   []string{platformLanguage},
			Labels:      []string{},
			Description: describeRule(rule.MdDesc),
		})
	}
	return definitions, nil
}

// updateDocument loads the shipped flavor document, replaces its rule set and
// writes the result into the output directory for review.
func (ruc *RulesUpdateCommand) updateDocument(flavor string, definitions []RuleDefinition) error {
	sourcePath := filepath.Join(ruc.configDir, flavor+".json")
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return utils.NewConfigurationError("failed to read the rule document %s: %s", sourcePath, err)
	}
	var document []map[string]any
	if err = json.Unmarshal(content, &document); err != nil {
		return utils.NewConfigurationError("malformed rule document %s: %s", sourcePath, err)
	}
	if len(document) == 0 {
		return utils.NewConfigurationError("the rule document %s is empty", sourcePath)
	}
	document[0]["checkrule_set"] = definitions

	if err = os.MkdirAll(ruc.outputDir, 0o755); err != nil {
		return err
	}
	updated, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ruc.outputDir, flavor+".json"), updated, 0o644)
}

// displayName turns a rule key such as common-go:DuplicatedBlocks into the
// camel cased name shown on the platform.
func displayName(key string) string {
	caser := cases.Title(language.Und)
	pieces := strings.FieldsFunc(key, func(r rune) bool { return r == ':' || r == '-' })
	for i, piece := range pieces {
		pieces[i] = caser.String(piece)
	}
	return strings.Join(pieces, "")
}

// describeRule converts html rule descriptions to markdown, descriptions that
// are already plain markdown pass through.
func describeRule(description string) string {
	if !strings.HasPrefix(description, "<p>") {
		return description
	}
	markdown, err := md.NewConverter("", true, nil).ConvertString(description)
	if err != nil {
		log.Warnf("failed to convert a rule description, keeping the html: %s", err)
		return description
	}
	return markdown
}
