package results

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/sonar"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// Metrics reported in the debt summary of every run.
const debtMetricKeys = "ncloc,sqale_index,sqale_debt_ratio,bugs,vulnerabilities,code_smells"

// DumpMeasures fetches the technical debt metrics of the project, formats them
// for the summary (ratios as percentages, everything else as integers) and
// writes them to path. New code metrics take their value from the first period.
func DumpMeasures(client *sonar.Client, projectKey, path string) (map[string]any, error) {
	measures, err := client.ComponentMeasures(projectKey, debtMetricKeys, "metrics,periods")
	if err != nil {
		return nil, utils.NewResultFetchError("failed to fetch the measures of %s: %s", projectKey, err)
	}

	formatted := make(map[string]any, len(measures))
	for _, measure := range measures {
		raw := measure.Value
		if strings.HasPrefix(measure.Metric, "new") {
			if len(measure.Periods) == 0 {
				log.Warnf("metric %s reports no period value, skipping it", measure.Metric)
				continue
			}
			raw = measure.Periods[0].Value
		}
		value, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			log.Warnf("metric %s has a non numeric value %q, skipping it", measure.Metric, raw)
			continue
		}
		if strings.HasSuffix(measure.Metric, "_ratio") {
			formatted[measure.Metric] = fmt.Sprintf("%.3f%%", value)
		} else {
			formatted[measure.Metric] = int(value)
		}
	}
	log.Infof("project measures: %v", formatted)

	content, err := json.MarshalIndent(formatted, "", "  ")
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(path, content, 0o644); err != nil {
		return nil, utils.NewResultFetchError("failed to write the measures dump %s: %s", path, err)
	}
	return formatted, nil
}
