// Package results turns server findings into the platform result document and
// the run level summary artifacts.
package results

import (
	"encoding/json"
	"os"
)

// Structs in this file describe the host result schema and should NOT be
// changed without a matching host side change.

// Issue is one finding in the platform result document.
type Issue struct {
	Path     string `json:"path"`
	Rule     string `json:"rule"`
	Msg      string `json:"msg"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity,omitempty"`
	Refs     []Ref  `json:"refs"`
}

// Ref is one related location of an issue: a flow step or a duplicated block.
type Ref struct {
	Line   int     `json:"line"`
	Column int     `json:"column"`
	Msg    string  `json:"msg"`
	Tag    *string `json:"tag"`
	Path   string  `json:"path"`
}

// WriteResults writes the platform result document. The host collects it from
// the process working directory and expects an array even when nothing was
// found.
func WriteResults(issues []Issue, path string) error {
	if issues == nil {
		issues = []Issue{}
	}
	content, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
