package sonar

import "net/url"

// Measure is one metric value of a component. Metrics over the new code period
// report their value in Periods instead of Value.
type Measure struct {
	Metric  string   `json:"metric"`
	Value   string   `json:"value"`
	Periods []Period `json:"periods"`
}

type Period struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// ComponentMeasures fetches the requested metrics for one component.
func (c *Client) ComponentMeasures(component, metricKeys, additionalFields string) ([]Measure, error) {
	params := url.Values{}
	params.Set("component", component)
	params.Set("metricKeys", metricKeys)
	if additionalFields != "" {
		params.Set("additionalFields", additionalFields)
	}
	var payload struct {
		Component struct {
			Measures []Measure `json:"measures"`
		} `json:"component"`
	}
	if err := c.postJSON("/api/measures/component", params, &payload); err != nil {
		return nil, err
	}
	return payload.Component.Measures, nil
}
