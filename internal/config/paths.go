package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "LLDPINVENTORY_CONFIG"
	// ConfigFileName is the source file looked up in the working directory
	ConfigFileName = "lldp.yml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "lldpinventory"
	// cacheFileName is the sqlite file under the cache directory
	cacheFileName = "cache.db"
)

// sourceName is the file looked up inside config directories
const sourceName = "inventory.yml"

// SearchPaths lists the inventory source candidates, most specific first:
// $LLDPINVENTORY_CONFIG, ./lldp.yml, the XDG config directory, ~/.config
// and /etc. Unset variables contribute no candidate.
func SearchPaths() []string {
	var paths []string
	add := func(parts ...string) {
		if parts[0] != "" {
			paths = append(paths, filepath.Join(parts...))
		}
	}

	add(os.Getenv(EnvConfigPath))
	add(ConfigFileName)
	add(os.Getenv("XDG_CONFIG_HOME"), ConfigDirName, sourceName)
	add(os.Getenv("HOME"), ".config", ConfigDirName, sourceName)
	add("/etc", ConfigDirName, sourceName)
	return paths
}

// FindConfigPath returns the first existing SearchPaths entry, made
// absolute when relative, or "" when none exists
func FindConfigPath() string {
	for _, path := range SearchPaths() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// DefaultCachePath returns the sqlite cache location:
// $XDG_CACHE_HOME/lldpinventory/cache.db, then ~/.cache, then the working
// directory
func DefaultCachePath() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, ConfigDirName, cacheFileName)
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache", ConfigDirName, cacheFileName)
	}

	return cacheFileName
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// EnsureDir creates the parent directory of path if it doesn't exist
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
