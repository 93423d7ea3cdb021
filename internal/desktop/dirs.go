package desktop

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataDirs is used when XDG_DATA_DIRS is unset.
const DefaultDataDirs = "/usr/local/share:/usr/share"

// ApplicationDirs returns the applications directories in priority order.
// Extra directories are appended after the XDG ones. Duplicates are removed.
func ApplicationDirs(extra ...string) []string {
	var bases []string

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		bases = append(bases, dataHome)
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = DefaultDataDirs
	}
	for _, d := range strings.Split(dataDirs, ":") {
		if d != "" {
			bases = append(bases, d)
		}
	}

	seen := make(map[string]bool)
	dirs := make([]string, 0, len(bases)+len(extra))
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	for _, b := range bases {
		add(filepath.Join(b, "applications"))
	}
	for _, e := range extra {
		if e != "" {
			add(e)
		}
	}
	return dirs
}

// IconDirs returns the icon theme base directories in priority order:
// ~/.icons, $XDG_DATA_HOME/icons, then each $XDG_DATA_DIRS/icons.
func IconDirs() []string {
	var dirs []string

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".icons"))
	}

	for _, appDir := range ApplicationDirs() {
		dirs = append(dirs, filepath.Join(filepath.Dir(appDir), "icons"))
	}
	return dirs
}

// PixmapDir is the legacy unthemed icon directory.
const PixmapDir = "/usr/share/pixmaps"

// DesktopID derives the desktop file ID from a descriptor path relative to
// its applications directory: "kde/konsole.desktop" becomes "kde-konsole.desktop".
func DesktopID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
}
