package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the per-project CLI configuration file.
const ConfigFileName = ".jsonvault.yaml"

// FindConfig recursively looks upwards from startDir for a ConfigFileName.
// It returns the absolute path of the file, or an error if none is found.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found", ConfigFileName)
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
