package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The cognitive complexity rule whose findings feed the rollup.
const cognitiveComplexityRuleSuffix = ":S3776"

// Summary aggregates the run level metrics the host shows next to the issues.
type Summary struct {
	RunID          string          `json:"run_id,omitempty"`
	SqDebt         map[string]any  `json:"sqdebt,omitempty"`
	CognComplexity *CognComplexity `json:"cogncomplexity,omitempty"`
}

// CognComplexity is the rollup over functions exceeding the allowed cognitive
// complexity.
type CognComplexity struct {
	OverFuncCount   int     `json:"over_cognc_func_count"`
	OverFuncAverage float64 `json:"over_cognc_func_average"`
	OverSum         int     `json:"over_cognc_sum"`
}

// CognComplexityRollup aggregates the cognitive complexity findings. Their
// messages carry two numbers, the measured complexity and the allowed
// threshold, for example "Refactor this method to reduce its Cognitive
// Complexity from 27 to the 15 allowed.".
func CognComplexityRollup(issues []Issue) *CognComplexity {
	count, sum, overage := 0, 0, 0
	for _, issue := range issues {
		if !strings.HasSuffix(issue.Rule, cognitiveComplexityRuleSuffix) {
			continue
		}
		numbers := digitTokens(issue.Msg)
		if len(numbers) < 2 {
			continue
		}
		count++
		sum += numbers[0]
		overage += numbers[0] - numbers[1]
	}
	rollup := &CognComplexity{OverFuncCount: count, OverSum: overage}
	if count != 0 {
		rollup.OverFuncAverage = float64(sum) / float64(count)
	}
	return rollup
}

// WriteSummary persists the summary next to the other run artifacts in the
// work directory.
func WriteSummary(summary *Summary, workDir string) error {
	content, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workDir, "task_summary.json"), content, 0o644)
}

// digitTokens returns the whitespace separated tokens of s that are plain
// unsigned numbers, in order.
func digitTokens(s string) []int {
	var numbers []int
	for _, token := range strings.Fields(s) {
		if token == "" || strings.IndexFunc(token, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
			continue
		}
		if value, err := strconv.Atoi(token); err == nil {
			numbers = append(numbers, value)
		}
	}
	return numbers
}
