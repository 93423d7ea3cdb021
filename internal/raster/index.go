package raster

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmylchreest/appdrawer/internal/desktop"
)

// FallbackTheme is searched after the configured theme and its parents.
const FallbackTheme = "hicolor"

var iconExtensions = []string{".svg", ".svgz", ".png", ".xpm", ".ico", ".bmp"}

type candidate struct {
	path     string
	size     int
	scalable bool
}

// IconIndex maps icon names to files, built once by listing theme directories.
type IconIndex struct {
	themes  []string
	byTheme []map[string][]candidate
	pixmaps map[string]string
}

// BuildIndex lists the icon files of theme, each theme it inherits from and
// hicolor, searching baseDirs in order, plus the unthemed pixmapDir.
func BuildIndex(theme string, baseDirs []string, pixmapDir string, logger *slog.Logger) *IconIndex {
	if logger == nil {
		logger = slog.Default()
	}

	ix := &IconIndex{
		themes:  themeChain(theme, baseDirs),
		pixmaps: make(map[string]string),
	}

	total := 0
	for _, t := range ix.themes {
		icons := make(map[string][]candidate)
		for _, base := range baseDirs {
			root := filepath.Join(base, t)
			total += indexTheme(root, icons)
		}
		ix.byTheme = append(ix.byTheme, icons)
	}

	if pixmapDir != "" {
		total += indexPixmaps(pixmapDir, ix.pixmaps)
	}

	logger.Debug("icon index built", "themes", ix.themes, "files", total)
	return ix
}

// Themes returns the theme search order.
func (ix *IconIndex) Themes() []string {
	return ix.themes
}

// themeChain resolves the Inherits= chain breadth first, ending with hicolor.
func themeChain(theme string, baseDirs []string) []string {
	if theme == "" {
		theme = FallbackTheme
	}

	var chain []string
	seen := make(map[string]bool)
	queue := []string{theme}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t] || t == FallbackTheme {
			continue
		}
		seen[t] = true
		chain = append(chain, t)
		queue = append(queue, themeParents(t, baseDirs)...)
	}

	return append(chain, FallbackTheme)
}

// themeParents reads Inherits from the first index.theme found for the theme.
func themeParents(theme string, baseDirs []string) []string {
	for _, base := range baseDirs {
		f, err := os.Open(filepath.Join(base, theme, "index.theme"))
		if err != nil {
			continue
		}
		kf, err := desktop.ParseGroup(f, "Icon Theme")
		_ = f.Close()
		if err != nil {
			return nil
		}

		var parents []string
		for _, p := range strings.Split(kf["Inherits"], ",") {
			if p = strings.TrimSpace(p); p != "" {
				parents = append(parents, p)
			}
		}
		return parents
	}
	return nil
}

func indexTheme(root string, icons map[string][]candidate) int {
	count := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name, ok := iconName(d.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return nil
		}
		size, scalable := dirSize(rel)
		icons[name] = append(icons[name], candidate{path: path, size: size, scalable: scalable})
		count++
		return nil
	})
	return count
}

func indexPixmaps(dir string, pixmaps map[string]string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := iconName(e.Name())
		if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if prev, exists := pixmaps[name]; exists && extRank(prev) <= extRank(path) {
			continue
		}
		pixmaps[name] = path
		count++
	}
	return count
}

// iconName strips a known icon extension.
func iconName(file string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	for _, known := range iconExtensions {
		if ext == known {
			return strings.TrimSuffix(file, filepath.Ext(file)), true
		}
	}
	return "", false
}

func extRank(path string) int {
	ext := strings.ToLower(filepath.Ext(path))
	for i, known := range iconExtensions {
		if ext == known {
			return i
		}
	}
	return len(iconExtensions)
}

// dirSize derives the nominal size from a theme subdirectory such as
// "48x48/apps", "apps/48", "256x256@2/apps" or "scalable/apps".
func dirSize(rel string) (size int, scalable bool) {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == "scalable" {
			return 0, true
		}

		dims, scaleStr, _ := strings.Cut(seg, "@")
		w, _, _ := strings.Cut(dims, "x")
		n, err := strconv.Atoi(w)
		if err != nil || n <= 0 {
			continue
		}

		scale := 1
		if s, err := strconv.Atoi(strings.TrimSuffix(scaleStr, "x")); err == nil && s > 0 {
			scale = s
		}
		return n * scale, false
	}
	return 0, false
}

// Lookup returns the best file for an icon name at size physical pixels.
// Themes are tried in order; within a theme a scalable image wins, then the
// smallest fixed size of at least size, then the largest available.
// Unthemed pixmaps are the last resort.
func (ix *IconIndex) Lookup(name string, size int) (string, bool) {
	if stripped, ok := iconName(name); ok {
		name = stripped
	}

	for _, icons := range ix.byTheme {
		if path, ok := pick(icons[name], size); ok {
			return path, true
		}
	}

	path, ok := ix.pixmaps[name]
	return path, ok
}

func pick(cands []candidate, size int) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}

	var best, largest *candidate
	for i := range cands {
		c := &cands[i]
		if c.scalable && isVectorPath(c.path) {
			return c.path, true
		}
		if largest == nil || c.size > largest.size {
			largest = c
		}
		if c.size >= size && (best == nil || c.size < best.size) {
			best = c
		}
	}

	if best != nil {
		return best.path, true
	}
	return largest.path, true
}

func isVectorPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".svg" || ext == ".svgz"
}
