package sonar

import (
	"net/url"
	"strconv"
	"strings"
)

// Rule is one rule definition as reported by api/rules/search, the populated
// fields depend on the requested field list.
type Rule struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Lang     string `json:"lang"`
	Type     string `json:"type"`
	MdDesc   string `json:"mdDesc"`
}

// RulesQuery narrows a rule search. Fields selects the returned attributes in
// the server's short form, for example "name,severity,lang,mdDesc".
type RulesQuery struct {
	ActiveOnly bool
	Languages  string
	Fields     string
}

type rulesSearchResult struct {
	Page     int    `json:"p"`
	PageSize int    `json:"ps"`
	Total    int    `json:"total"`
	Rules    []Rule `json:"rules"`
}

// SearchRules pages through api/rules/search and returns every ready,
// non template rule matching the query.
func (c *Client) SearchRules(query RulesQuery) ([]Rule, error) {
	params := url.Values{}
	params.Set("is_template", "no")
	params.Set("statuses", "READY")
	if query.ActiveOnly {
		params.Set("activation", "true")
	}
	if query.Languages != "" {
		params.Set("languages", strings.ToLower(query.Languages))
	}
	if query.Fields != "" {
		params.Set("f", query.Fields)
	}

	var rules []Rule
	page, pageSize, total := 1, 1, 2
	for page*pageSize < total {
		var result rulesSearchResult
		if err := c.postJSON("/api/rules/search", params, &result); err != nil {
			return rules, err
		}
		page, pageSize, total = result.Page, result.PageSize, result.Total
		params.Set("p", strconv.Itoa(page+1))
		rules = append(rules, result.Rules...)
	}
	return rules, nil
}

// Language is one analyzable language of the server.
type Language struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Languages lists the languages the server can analyze.
func (c *Client) Languages() ([]Language, error) {
	var payload struct {
		Languages []Language `json:"languages"`
	}
	if err := c.getJSON("/api/languages/list", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Languages, nil
}
