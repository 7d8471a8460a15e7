package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// Mode selects where the analysis service runs.
type Mode string

const (
	// Local launches the bundled SonarQube server on this machine.
	Local Mode = "LOCAL"
	// Common connects to a shared, already running server.
	Common Mode = "COMMON"
)

func (m Mode) String() string {
	return string(m)
}

// ResolveMode picks the execution mode from SQ_TYPE and returns the matching
// credentials. Resolution never touches the network. Asking for COMMON without a
// configured common account is a configuration error, there is no silent
// fallback to LOCAL.
func (s *Settings) ResolveMode() (Mode, *ServerCredentials, error) {
	value := strings.ToUpper(strings.TrimSpace(os.Getenv(SonarTypeEnvVariable)))
	switch value {
	case "", string(Local):
		if s.LocalUser == nil {
			return "", nil, utils.NewConfigurationError("no credentials configured for LOCAL mode")
		}
		return Local, s.LocalUser, nil
	case string(Common):
		if s.CommonUser == nil {
			return "", nil, utils.NewConfigurationError(
				"%s=COMMON requires a sq_common_user entry in the settings file", SonarTypeEnvVariable)
		}
		return Common, s.CommonUser, nil
	default:
		return "", nil, utils.NewConfigurationError("unsupported %s value %q", SonarTypeEnvVariable, value)
	}
}

// ComposeProjectKey derives the per task project key. In COMMON mode runs share
// one server, so the project id from the task request is appended to keep
// projects apart.
func ComposeProjectKey(mode Mode, credentials *ServerCredentials, projectID string) string {
	if mode == Common {
		return fmt.Sprintf("%s_%s", credentials.ProjectKey, projectID)
	}
	return credentials.ProjectKey
}
