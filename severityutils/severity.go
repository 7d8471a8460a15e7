// Package severityutils maps SonarQube severities and issue types onto the
// levels and categories the analysis platform understands.
package severityutils

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
)

const (
	Blocker  Severity = "BLOCKER"
	Critical Severity = "CRITICAL"
	Major    Severity = "MAJOR"
	Minor    Severity = "MINOR"
	Info     Severity = "INFO"
)

type Severity string

func (s Severity) String() string {
	return string(s)
}

// PlatformLevel is the severity vocabulary of the analysis platform.
const (
	LevelError   PlatformLevel = "error"
	LevelWarning PlatformLevel = "warning"
	LevelInfo    PlatformLevel = "info"
)

type PlatformLevel string

func (l PlatformLevel) String() string {
	return string(l)
}

// SarifSeverityLevel is the result level vocabulary of the SARIF format.
const (
	SarifError   SarifSeverityLevel = "error"
	SarifWarning SarifSeverityLevel = "warning"
	SarifNote    SarifSeverityLevel = "note"
)

type SarifSeverityLevel string

func (l SarifSeverityLevel) String() string {
	return string(l)
}

type SeverityDetails struct {
	Priority      int
	PlatformLevel PlatformLevel
	SarifLevel    SarifSeverityLevel
	style         color.Style
}

func (sd SeverityDetails) ToString(severity Severity, pretty bool) string {
	if !pretty {
		return severity.String()
	}
	return sd.style.Render(severity.String())
}

var Severities = map[Severity]*SeverityDetails{
	Blocker:  {Priority: 5, PlatformLevel: LevelError, SarifLevel: SarifError, style: color.New(color.BgLightRed, color.LightWhite)},
	Critical: {Priority: 4, PlatformLevel: LevelError, SarifLevel: SarifError, style: color.New(color.Red)},
	Major:    {Priority: 3, PlatformLevel: LevelWarning, SarifLevel: SarifWarning, style: color.New(color.Yellow)},
	Minor:    {Priority: 2, PlatformLevel: LevelInfo, SarifLevel: SarifNote, style: color.New(color.Cyan)},
	Info:     {Priority: 1, PlatformLevel: LevelInfo, SarifLevel: SarifNote, style: color.New(color.Blue)},
}

func supportedSeverities() []string {
	return []string{Blocker.String(), Critical.String(), Major.String(), Minor.String(), Info.String()}
}

// ParseSeverity parses a severity name as reported by the server.
func ParseSeverity(severity string) (Severity, error) {
	parsed := Severity(strings.ToUpper(severity))
	if _, ok := Severities[parsed]; !ok {
		return "", fmt.Errorf("severity '%s' is not supported, only the following severities are supported: %s",
			severity, strings.Join(supportedSeverities(), ", "))
	}
	return parsed, nil
}

// GetSeverityPriority returns the sort weight of the severity, higher is more
// severe. Unknown severities sort last.
func GetSeverityPriority(severity Severity) int {
	if details, ok := Severities[severity]; ok {
		return details.Priority
	}
	return 0
}

// CompareSeverity returns a positive value when severity1 is more severe.
func CompareSeverity(severity1, severity2 Severity) int {
	return GetSeverityPriority(severity1) - GetSeverityPriority(severity2)
}

// ToPlatformLevel maps a severity onto the platform level, unknown severities
// fall back to info.
func ToPlatformLevel(severity Severity) PlatformLevel {
	if details, ok := Severities[severity]; ok {
		return details.PlatformLevel
	}
	return LevelInfo
}

// ToSarifLevel maps a severity onto the SARIF result level, unknown severities
// fall back to note.
func ToSarifLevel(severity Severity) SarifSeverityLevel {
	if details, ok := Severities[severity]; ok {
		return details.SarifLevel
	}
	return SarifNote
}

// Render returns the severity name for log output, colored when pretty.
func Render(severity Severity, pretty bool) string {
	if details, ok := Severities[severity]; ok {
		return details.ToString(severity, pretty)
	}
	return severity.String()
}
