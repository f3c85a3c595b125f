package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath replaces a leading ~ with the home directory and expands $VAR
// references. The path is returned unchanged when the home directory is
// unknown.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// DataDir is where meisai keeps its database and certificates:
// $XDG_DATA_HOME/meisai, or ~/.local/share/meisai.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return filepath.Join(dir, "meisai")
	}
	return ExpandPath("~/.local/share/meisai")
}
