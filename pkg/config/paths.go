package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names the environment variable holding an explicit path.
	EnvConfigPath = "GRAPHSCOPE_CONFIG"

	// ConfigDirName is the directory under the XDG config home.
	ConfigDirName = "graphscope"
)

// localNames are looked up in the working directory, in order.
var localNames = []string{"graphscope.toml", "graphscope.yaml", "graphscope.yml"}

// userNames are looked up in the user config directory, in order.
var userNames = []string{"config.toml", "config.yaml", "config.yml"}

// FindPath returns the first existing config file, or "" when none exists.
func FindPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	for _, name := range localNames {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	for _, dir := range userDirs() {
		for _, name := range userNames {
			path := filepath.Join(dir, ConfigDirName, name)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

func userDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, xdg)
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	return dirs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
