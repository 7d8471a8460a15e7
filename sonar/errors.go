package sonar

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ValidationError is SonarQube's 400 answer, the server names the rejected
// fields. Creating a project that already exists lands here.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Msg
}

// AuthError covers 401 and 403 answers.
type AuthError struct {
	Status string
}

func (e *AuthError) Error() string {
	return "authentication rejected: " + e.Status
}

// ClientError covers the remaining 4xx answers.
type ClientError struct {
	Status string
}

func (e *ClientError) Error() string {
	return "client error: " + e.Status
}

// ServerError covers 5xx answers.
type ServerError struct {
	Status string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Status
}

// checkResponse maps non 2xx answers onto the error taxonomy. On error the body
// is consumed and closed.
func checkResponse(response *http.Response) error {
	if response.StatusCode < 300 {
		return nil
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode == http.StatusBadRequest {
		var payload struct {
			Errors []struct {
				Msg string `json:"msg"`
			} `json:"errors"`
		}
		msg := response.Status
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && len(payload.Errors) > 0 {
			msgs := make([]string, 0, len(payload.Errors))
			for _, entry := range payload.Errors {
				msgs = append(msgs, entry.Msg)
			}
			msg = strings.Join(msgs, ", ")
		}
		return &ValidationError{Msg: msg}
	}
	if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
		return &AuthError{Status: response.Status}
	}
	if response.StatusCode < 500 {
		return &ClientError{Status: response.Status}
	}
	return &ServerError{Status: response.Status}
}
