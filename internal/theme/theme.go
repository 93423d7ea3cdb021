package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a loaded CSS theme with its imports inlined.
type Theme struct {
	Name    string
	Path    string // empty for embedded themes
	CSS     string
	ModTime time.Time
	// Imports lists the files inlined into CSS, for watching.
	Imports   []string
	IsDefault bool
	IsBundled bool
}

// NewTheme loads a theme file and inlines its imports.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     ProcessImports(string(css), filepath.Dir(path), seen),
		ModTime: info.ModTime(),
		Imports: importedFiles(seen),
	}, nil
}

// newEmbeddedTheme builds a theme from bundled CSS.
func newEmbeddedTheme(name, css string) *Theme {
	return &Theme{
		Name:      name,
		CSS:       ProcessImports(css, "", nil),
		IsDefault: name == DefaultThemeName,
		IsBundled: true,
	}
}

// NewDefaultTheme creates the embedded default theme.
func NewDefaultTheme() *Theme {
	css, _ := GetEmbeddedTheme(DefaultThemeName)
	return newEmbeddedTheme(DefaultThemeName, css)
}

func importedFiles(seen map[string]bool) []string {
	files := make([]string, 0, len(seen))
	for path := range seen {
		if path != "" {
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files
}

// ProcessImports inlines @import statements, resolved relative to baseDir.
// Missing files fall back to embedded partials and themes of the same name.
// seen records every visited path and stops import cycles.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}
		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}

		if baseDir == "" && !filepath.IsAbs(importPath) {
			return embeddedImport(importPath, nil, seen)
		}
		importedCSS, err := os.ReadFile(fullPath)
		if err != nil {
			return embeddedImport(importPath, err, seen)
		}
		seen[fullPath] = true

		return "/* imported: " + importPath + " */\n" +
			ProcessImports(string(importedCSS), filepath.Dir(fullPath), seen)
	})
}

// embeddedImport resolves an import against the bundled files.
func embeddedImport(importPath string, readErr error, seen map[string]bool) string {
	baseName := filepath.Base(importPath)
	key := "embedded:" + baseName
	if seen[key] {
		return "/* circular import prevented: " + importPath + " */"
	}

	css, found := "", false
	if strings.HasPrefix(baseName, "_") {
		css, found = GetEmbeddedPartial(baseName)
	}
	if !found {
		css, found = GetEmbeddedTheme(strings.TrimSuffix(baseName, ".css"))
	}
	if !found {
		if readErr == nil {
			readErr = os.ErrNotExist
		}
		return "/* import failed: " + importPath + " - " + readErr.Error() + " */"
	}

	seen[key] = true
	defer delete(seen, key)
	return "/* imported (embedded): " + importPath + " */\n" + ProcessImports(css, "", seen)
}

// Reload rereads the theme from disk and reports whether the CSS changed.
// Embedded themes never change.
func (t *Theme) Reload() (bool, error) {
	if t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	css, err := os.ReadFile(t.Path)
	if err != nil {
		return false, err
	}

	seen := map[string]bool{}
	processed := ProcessImports(string(css), filepath.Dir(t.Path), seen)
	changed := processed != t.CSS
	t.CSS = processed
	t.ModTime = info.ModTime()
	t.Imports = importedFiles(seen)
	return changed, nil
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailableThemes lists bundled themes followed by user themes in dir.
// A user theme with a bundled name overrides it.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	var themes []ThemeInfo
	index := make(map[string]int)

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".css" || strings.HasPrefix(name, "_") {
			continue
		}
		info := ThemeInfo{Name: strings.TrimSuffix(name, ".css"), Path: filepath.Join(dir, name)}
		if i, ok := index[info.Name]; ok {
			info.IsDefault = themes[i].IsDefault
			themes[i] = info
			continue
		}
		index[info.Name] = len(themes)
		themes = append(themes, info)
	}
	return themes, nil
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "appdrawer", "themes"), nil
}

// CreateThemesDir creates the themes directory if it doesn't exist.
func CreateThemesDir() error {
	themesDir, err := ThemesDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(themesDir, 0755)
}
