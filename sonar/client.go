// Package sonar is a minimal client for the SonarQube web API, covering the
// endpoints the plugin drives during a scan: system status, project and quality
// profile administration, compute engine tasks, issue search and rule export.
package sonar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
)

const requestTimeout = 60 * time.Second

// Client talks to one SonarQube server. A single instance serves the whole run,
// the underlying http.Client reuses connections across the polling loops.
type Client struct {
	baseURL    string
	username   string
	password   string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the server at host:port with the optional base
// path, host carries the scheme.
func NewClient(host string, port int, basePath string) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("%s:%d%s", host, port, basePath),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// SetBasicAuth authenticates requests with a username and password pair.
func (c *Client) SetBasicAuth(username, password string) *Client {
	c.username = username
	c.password = password
	c.token = ""
	return c
}

// SetToken authenticates requests with an access token. SonarQube accepts the
// token as basic auth username with an empty password.
func (c *Client) SetToken(token string) *Client {
	c.token = token
	c.username = ""
	c.password = ""
	return c
}

// BaseURL returns the resolved server address, used in scanner arguments.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(method, endpoint string, params url.Values) (*http.Response, error) {
	var request *http.Request
	var err error
	switch method {
	case http.MethodGet:
		target := c.baseURL + endpoint
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
		request, err = http.NewRequest(http.MethodGet, target, nil)
	default:
		request, err = http.NewRequest(method, c.baseURL+endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	c.applyAuth(request)
	log.Debugf("%s %s", method, endpoint)
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	if err = checkResponse(response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) applyAuth(request *http.Request) {
	if c.token != "" {
		request.SetBasicAuth(c.token, "")
	} else if c.username != "" {
		request.SetBasicAuth(c.username, c.password)
	}
}

func (c *Client) getJSON(endpoint string, params url.Values, out any) error {
	return c.requestJSON(http.MethodGet, endpoint, params, out)
}

func (c *Client) postJSON(endpoint string, params url.Values, out any) error {
	return c.requestJSON(http.MethodPost, endpoint, params, out)
}

func (c *Client) requestJSON(method, endpoint string, params url.Values, out any) error {
	response, err := c.do(method, endpoint, params)
	if err != nil {
		return err
	}
	defer func() { _ = response.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	if err = json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// postFile uploads the file as a multipart form field.
func (c *Client) postFile(endpoint, field, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err = part.Write(content); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}
	request, err := http.NewRequest(http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyAuth(request)
	log.Debugf("POST %s (multipart %s)", endpoint, filepath.Base(path))
	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer func() { _ = response.Body.Close() }()
	if err = checkResponse(response); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}
