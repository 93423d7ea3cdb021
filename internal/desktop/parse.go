package desktop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// Reasons a descriptor is left out of the inventory. These are expected and
// logged at debug level only.
var (
	ErrNoDesktopGroup = errors.New("no [Desktop Entry] group")
	ErrNotApplication = errors.New("type is not Application")
	ErrHidden         = errors.New("entry is hidden")
	ErrIncomplete     = errors.New("entry has no Name or Exec")
)

// IsSkip reports whether err is one of the expected skip reasons rather than
// a read or syntax failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNoDesktopGroup) ||
		errors.Is(err, ErrNotApplication) ||
		errors.Is(err, ErrHidden) ||
		errors.Is(err, ErrIncomplete)
}

const desktopGroup = "Desktop Entry"

// KeyFile holds the key/value pairs of one key file group.
// Localised keys are stored under their full name, e.g. "Name[de]".
type KeyFile map[string]string

// ParseKeyFile reads the [Desktop Entry] group from r.
// Other groups (actions, vendor extensions) are ignored.
func ParseKeyFile(r io.Reader) (KeyFile, error) {
	kf, err := ParseGroup(r, desktopGroup)
	if errors.Is(err, ErrGroupNotFound) {
		return nil, ErrNoDesktopGroup
	}
	return kf, err
}

// ErrGroupNotFound is returned by ParseGroup when the group is absent.
var ErrGroupNotFound = errors.New("group not found")

// ParseGroup reads the first occurrence of the named group from a key file,
// such as [Icon Theme] from an icon theme's index.theme.
func ParseGroup(r io.Reader, group string) (KeyFile, error) {
	kf := make(KeyFile)
	inGroup := false
	found := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		if line[0] == '[' && line[len(line)-1] == ']' {
			// Only the first occurrence of the group counts
			inGroup = !found && line[1:len(line)-1] == group
			if inGroup {
				found = true
			}
			continue
		}

		if !inGroup {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, dup := kf[key]; dup {
			continue
		}
		kf[key] = unescapeValue(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrGroupNotFound
	}
	return kf, nil
}

// Bool returns the boolean value of key, false when absent.
func (kf KeyFile) Bool(key string) bool {
	return kf[key] == "true"
}

// Localized returns the value of key for the given locale, falling back
// through the usual lang_COUNTRY@MODIFIER, lang_COUNTRY, lang@MODIFIER, lang
// chain to the unlocalised key.
func (kf KeyFile) Localized(key, locale string) string {
	for _, variant := range localeVariants(locale) {
		if v, ok := kf[key+"["+variant+"]"]; ok && v != "" {
			return v
		}
	}
	return kf[key]
}

// List splits a ;-separated string list value.
func (kf KeyFile) List(key string) []string {
	raw := kf[key]
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// localeVariants expands a POSIX locale like "de_DE.UTF-8@euro" into the
// lookup keys in match order.
func localeVariants(locale string) []string {
	if locale == "" || locale == "C" || locale == "POSIX" {
		return nil
	}

	lang, modifier, _ := strings.Cut(locale, "@")
	lang, _, _ = strings.Cut(lang, ".")
	language, country, _ := strings.Cut(lang, "_")

	var variants []string
	if country != "" && modifier != "" {
		variants = append(variants, language+"_"+country+"@"+modifier)
	}
	if country != "" {
		variants = append(variants, language+"_"+country)
	}
	if modifier != "" {
		variants = append(variants, language+"@"+modifier)
	}
	return append(variants, language)
}

// Locale returns the message locale from the environment.
func Locale() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// unescapeValue applies the string escapes of the key file format.
func unescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ToEntry converts a parsed key file into an inventory entry.
// It returns one of the skip errors when the descriptor must not be shown.
func (kf KeyFile) ToEntry(id, locale string) (model.Entry, error) {
	if t := kf["Type"]; t != "" && t != "Application" {
		return model.Entry{}, ErrNotApplication
	}
	if kf.Bool("NoDisplay") || kf.Bool("Hidden") {
		return model.Entry{}, ErrHidden
	}

	name := kf.Localized("Name", locale)
	execLine := kf["Exec"]
	if name == "" || execLine == "" {
		return model.Entry{}, ErrIncomplete
	}

	argv, err := SplitExec(execLine)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parse Exec: %w", err)
	}
	if len(argv) == 0 {
		return model.Entry{}, ErrIncomplete
	}

	entry := model.Entry{
		ID:       id,
		Name:     name,
		Command:  argv,
		Icon:     kf.Localized("Icon", locale),
		Comment:  kf.Localized("Comment", locale),
		Keywords: kf.localizedList("Keywords", locale),
		Terminal: kf.Bool("Terminal"),
	}
	return entry, nil
}

func (kf KeyFile) localizedList(key, locale string) []string {
	for _, variant := range localeVariants(locale) {
		if list := kf.List(key + "[" + variant + "]"); len(list) > 0 {
			return list
		}
	}
	return kf.List(key)
}

// ParseFile reads and converts one descriptor. The entry Source and Modified
// fields are filled from the file.
func ParseFile(path, id, locale string) (model.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Entry{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return model.Entry{}, err
	}

	kf, err := ParseKeyFile(f)
	if err != nil {
		return model.Entry{}, err
	}

	entry, err := kf.ToEntry(id, locale)
	if err != nil {
		return model.Entry{}, err
	}
	entry.Source = path
	entry.Modified = info.ModTime()
	return entry, nil
}
