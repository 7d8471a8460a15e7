package sonar

import (
	"net/url"
	"strconv"
	"strings"
)

// Issue is one finding as reported by api/issues/search.
type Issue struct {
	Key       string     `json:"key"`
	Rule      string     `json:"rule"`
	Component string     `json:"component"`
	Severity  string     `json:"severity"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	TextRange *TextRange `json:"textRange,omitempty"`
	Flows     []Flow     `json:"flows,omitempty"`
}

// TextRange locates an issue inside a file, lines are 1 based, offsets 0 based.
type TextRange struct {
	StartLine   int `json:"startLine"`
	EndLine     int `json:"endLine"`
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`
}

// Flow is a secondary location trail attached to an issue.
type Flow struct {
	Locations []FlowLocation `json:"locations"`
}

type FlowLocation struct {
	Component string    `json:"component"`
	TextRange TextRange `json:"textRange"`
	Msg       string    `json:"msg"`
}

// IssueQuery narrows an issue search. Empty fields are left out of the request.
type IssueQuery struct {
	Languages     string
	ComponentKeys string
	Rules         string
}

type issuesSearchResult struct {
	Page     int     `json:"p"`
	PageSize int     `json:"ps"`
	Total    int     `json:"total"`
	Issues   []Issue `json:"issues"`
}

// SearchIssues pages through api/issues/search and returns every matching
// issue. The loop follows the page counters the server reports. On error the
// issues collected so far are returned together with the error, SonarQube caps
// the reachable result window and reports the overflow as a validation error.
func (c *Client) SearchIssues(query IssueQuery) ([]Issue, error) {
	params := url.Values{}
	if query.Languages != "" {
		params.Set("languages", strings.ToLower(query.Languages))
	}
	if query.ComponentKeys != "" {
		params.Set("componentKeys", query.ComponentKeys)
	}
	if query.Rules != "" {
		params.Set("rules", query.Rules)
	}

	var issues []Issue
	page, pageSize, total := 1, 1, 2
	for page*pageSize < total {
		var result issuesSearchResult
		if err := c.postJSON("/api/issues/search", params, &result); err != nil {
			return issues, err
		}
		page, pageSize, total = result.Page, result.PageSize, result.Total
		params.Set("p", strconv.Itoa(page+1))
		issues = append(issues, result.Issues...)
	}
	return issues, nil
}
