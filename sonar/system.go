package sonar

// SystemStatus returns the server lifecycle state, "UP" once the server accepts
// analysis requests.
func (c *Client) SystemStatus() (string, error) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.getJSON("/api/system/status", nil, &payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

// ValidateAuthentication reports whether the configured credentials are
// accepted by the server.
func (c *Client) ValidateAuthentication() (bool, error) {
	var payload struct {
		Valid bool `json:"valid"`
	}
	if err := c.getJSON("/api/authentication/validate", nil, &payload); err != nil {
		return false, err
	}
	return payload.Valid, nil
}
