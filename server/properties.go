package server

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"

	"github.com/GabrielLegend/tca-plugin-sonarqube/log"
	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

// ApplyServerParams merges the overrides from SONAR_SERVER_PARAMS into the
// server's sonar.properties before launch. The expected form is
// "sonar.web.javaOpts=-Xmx512m -Xms128m;sonar.ce.javaOpts=-Xmx512m".
// A pristine copy of the file is kept next to it and the returned restore
// function swaps it back, restore is nil when nothing was changed.
func ApplyServerParams(serverHome, params string) (restore func() error, err error) {
	params = strings.Trim(strings.TrimSpace(params), `"`)
	if params == "" {
		return nil, nil
	}
	propertyPath := filepath.Join(serverHome, "conf", "sonar.properties")
	backupPath := propertyPath + ".temp"
	if _, statErr := os.Stat(backupPath); errors.Is(statErr, fs.ErrNotExist) {
		if err = utils.CopyFile(propertyPath, backupPath); err != nil {
			return nil, err
		}
	}

	props, err := properties.LoadFile(propertyPath, properties.UTF8)
	if err != nil {
		return nil, err
	}
	for _, entry := range strings.Split(params, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found || key == "" {
			log.Warnf("ignoring malformed server parameter %q", entry)
			continue
		}
		if _, _, err = props.Set(key, value); err != nil {
			return nil, err
		}
	}

	file, err := os.Create(propertyPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := file.Close()
		if err == nil {
			err = closeErr
		}
	}()
	if _, err = props.Write(file, properties.UTF8); err != nil {
		return nil, err
	}
	log.Infof("applied %d server parameter overrides", len(strings.Split(params, ";")))

	restore = func() error {
		if removeErr := os.Remove(propertyPath); removeErr != nil {
			return removeErr
		}
		return os.Rename(backupPath, propertyPath)
	}
	return restore, nil
}
