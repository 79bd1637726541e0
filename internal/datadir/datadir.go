// Package datadir locates the directory holding the catalog database and
// config. A folder can carry its own catalog in a .stitchbook directory;
// otherwise the one in the home directory is used.
package datadir

import (
	"os"
	"path/filepath"
)

const DirName = ".stitchbook"

// Find walks up from startDir looking for a .stitchbook directory.
// Returns "" if none is found.
func Find(startDir string) (string, error) {
	dir := startDir
	for {
		ok, err := Exists(dir)
		if err != nil {
			return "", err
		}
		if ok {
			return filepath.Join(dir, DirName), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Exists reports whether dir contains a .stitchbook directory. A regular
// file with that name is ignored.
func Exists(dir string) (bool, error) {
	fi, err := os.Stat(filepath.Join(dir, DirName))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.IsDir(), nil
}

// Init creates dir/.stitchbook and returns its path.
func Init(dir string) (string, error) {
	path := filepath.Join(dir, DirName)
	return path, os.MkdirAll(path, 0755)
}

// Default resolves the data directory for a command run from cwd: the
// nearest local catalog, else ~/.stitchbook.
func Default(cwd string) string {
	if cwd != "" {
		if found, err := Find(cwd); err == nil && found != "" {
			return found
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DirName)
	}
	return filepath.Join(home, DirName)
}
