package sonar

import (
	"net/url"
	"strings"
)

// Profile is one quality profile as reported by api/qualityprofiles/search.
type Profile struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	IsDefault bool   `json:"isDefault"`
}

// RestoreProfile uploads a quality profile backup XML. The profile name inside
// the file wins, an existing profile with the same name and language is
// overwritten.
func (c *Client) RestoreProfile(path string) error {
	return c.postFile("/api/qualityprofiles/restore", "backup", path)
}

// AddProjectToProfile associates the project with the named quality profile.
func (c *Client) AddProjectToProfile(project, language, qualityProfile string) error {
	params := url.Values{}
	params.Set("project", project)
	params.Set("language", strings.ToLower(language))
	params.Set("qualityProfile", qualityProfile)
	return c.postJSON("/api/qualityprofiles/add_project", params, nil)
}

// SearchProfiles lists quality profiles, optionally narrowed by project and
// language.
func (c *Client) SearchProfiles(project, language string) ([]Profile, error) {
	params := url.Values{}
	if project != "" {
		params.Set("project", project)
	}
	if language != "" {
		params.Set("language", strings.ToLower(language))
	}
	var payload struct {
		Profiles []Profile `json:"profiles"`
	}
	if err := c.getJSON("/api/qualityprofiles/search", params, &payload); err != nil {
		return nil, err
	}
	return payload.Profiles, nil
}
