package config

import (
	"os"
	"path/filepath"
)

// Environment variable names consulted by ResolveRuntimePaths, mirroring the
// teacher's pkg/config/paths.go PICOCLAW_CONFIG/PICOCLAW_HOME pair.
const (
	EnvVTCodeConfig = "VTCODE_CONFIG"
	EnvVTCodeHome   = "VTCODE_HOME"
)

// RuntimePaths locates the files and directories the agent core reads from
// and writes to outside the workspace it is operating on.
type RuntimePaths struct {
	HomeDir    string
	ConfigPath string
	CacheDir   string
}

// ResolveRuntimePaths checks VTCODE_CONFIG, then VTCODE_HOME, then falls
// back to ~/.vtcode.
func ResolveRuntimePaths() (RuntimePaths, error) {
	if cfgPath := os.Getenv(EnvVTCodeConfig); cfgPath != "" {
		return buildRuntimePaths(filepath.Dir(cfgPath), cfgPath)
	}

	home := os.Getenv(EnvVTCodeHome)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return RuntimePaths{}, err
		}
		home = filepath.Join(userHome, ".vtcode")
	}
	return buildRuntimePaths(home, filepath.Join(home, "config.toml"))
}

func buildRuntimePaths(homeDir, configPath string) (RuntimePaths, error) {
	return RuntimePaths{
		HomeDir:    homeDir,
		ConfigPath: configPath,
		CacheDir:   filepath.Join(homeDir, "cache"),
	}, nil
}

// ModelCacheSnapshotPath is the dynamic model catalog cache file location
// spec.md's External Interfaces section fixes: <cache>/models/dynamic_local_models.json.
func (p RuntimePaths) ModelCacheSnapshotPath() string {
	return filepath.Join(p.CacheDir, "models", "dynamic_local_models.json")
}
