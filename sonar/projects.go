package sonar

import "net/url"

// CreateProject provisions a project. Creating a key that already exists comes
// back as a ValidationError, callers treat that as success.
func (c *Client) CreateProject(name, project string) error {
	params := url.Values{}
	params.Set("name", name)
	params.Set("project", project)
	return c.postJSON("/api/projects/create", params, nil)
}

// SetSetting writes one server side setting.
func (c *Client) SetSetting(key, value string) error {
	params := url.Values{}
	params.Set("key", key)
	params.Set("value", value)
	return c.postJSON("/api/settings/set", params, nil)
}

// Setting is one server side setting as reported by api/settings/values.
type Setting struct {
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Values []string `json:"values"`
}

// SettingValues reads server side settings, optionally narrowed to keys and a
// component.
func (c *Client) SettingValues(keys, component string) ([]Setting, error) {
	params := url.Values{}
	if keys != "" {
		params.Set("keys", keys)
	}
	if component != "" {
		params.Set("component", component)
	}
	var payload struct {
		Settings []Setting `json:"settings"`
	}
	if err := c.getJSON("/api/settings/values", params, &payload); err != nil {
		return nil, err
	}
	return payload.Settings, nil
}
