package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is used when no config path is given.
const DefaultFileName = "config.json"

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// ResolvePath picks the config file to load. An explicit path is expanded and
// returned as is. Otherwise the working directory is tried first, then
// ~/.config/restaurant-ai; if neither has a config file the working-directory
// name is returned so the caller reports it as missing.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return ExpandPath(explicit)
	}

	candidates := []string{
		DefaultFileName,
		ExpandPath(filepath.Join("~", ".config", "restaurant-ai", DefaultFileName)),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return DefaultFileName
}
