package check

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// OverridesFileName is the name of the project override config file,
// searched upward from the project root.
const OverridesFileName = ".forgelint"

// AllRules is the override entry value that suppresses every rule.
const AllRules = "all"

// fileGlob is a compiled file pattern.
type fileGlob struct {
	pattern string
	re      *regexp.Regexp
}

func (g fileGlob) match(path string) bool {
	return g.re.MatchString(path)
}

// ruleOverride suppresses a set of rules for files matching a glob.
type ruleOverride struct {
	glob  fileGlob
	rules map[string]bool // rule IDs, possibly AllRules
}

// Overrides is the project-level suppression configuration loaded from a
// .forgelint file. It is loaded once per run, immutable afterwards, and
// safe to share across concurrent workers.
type Overrides struct {
	dir         string
	ignoreGlobs []fileGlob
	overrides   []ruleOverride
}

// overridesFile mirrors the TOML layout:
//
//	[ignore]
//	files = ["test/integration/*.sol"]
//
//	[ignore.overrides]
//	"src/BaseBridgeReceiver.sol" = ["src"]
//	"src/legacy/**/*.sol" = ["all"]
type overridesFile struct {
	Ignore struct {
		Files     []string            `toml:"files"`
		Overrides map[string][]string `toml:"overrides"`
	} `toml:"ignore"`
}

// FindOverridesFile searches upward from start for a .forgelint file and
// returns its path.
func FindOverridesFile(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, OverridesFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadOverrides reads and parses an override config file. The returned
// error is always a *ConfigError; it is fatal for the whole run.
func LoadOverrides(path string) (*Overrides, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	o, err := ParseOverrides(string(content), filepath.Dir(path))
	if err != nil {
		if cfgErr, ok := err.(*ConfigError); ok {
			cfgErr.Path = path
		}
		return nil, err
	}
	return o, nil
}

// LoadProjectOverrides locates the .forgelint file for a project root and
// loads it. A missing file yields an empty config, not an error.
func LoadProjectOverrides(root string) (*Overrides, error) {
	path, ok := FindOverridesFile(root)
	if !ok {
		return &Overrides{dir: root}, nil
	}
	return LoadOverrides(path)
}

// ParseOverrides parses override config content. Malformed TOML, an
// invalid glob, and an unknown rule name are all *ConfigError.
func ParseOverrides(content, dir string) (*Overrides, error) {
	var raw overridesFile
	if err := toml.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("invalid TOML: %v", err)}
	}

	o := &Overrides{dir: dir}

	for _, pattern := range raw.Ignore.Files {
		g, err := compileGlob(pattern)
		if err != nil {
			return nil, &ConfigError{Message: err.Error()}
		}
		o.ignoreGlobs = append(o.ignoreGlobs, g)
	}

	// Sort the override globs so validation errors and unmatched-glob
	// warnings come out in a stable order.
	patterns := make([]string, 0, len(raw.Ignore.Overrides))
	for pattern := range raw.Ignore.Overrides {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		g, err := compileGlob(pattern)
		if err != nil {
			return nil, &ConfigError{Message: err.Error()}
		}
		rules := make(map[string]bool)
		for _, rule := range raw.Ignore.Overrides[pattern] {
			if rule != AllRules && !IsRule(rule) {
				return nil, &ConfigError{Message: fmt.Sprintf("unknown rule: '%s'", rule)}
			}
			rules[rule] = true
		}
		o.overrides = append(o.overrides, ruleOverride{glob: g, rules: rules})
	}

	return o, nil
}

// Dir returns the directory the config file was found in. Paths are
// matched relative to it.
func (o *Overrides) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// IsEmpty reports whether the config suppresses nothing.
func (o *Overrides) IsEmpty() bool {
	return o == nil || (len(o.ignoreGlobs) == 0 && len(o.overrides) == 0)
}

// IsFileIgnored reports whether the file is ignored entirely.
func (o *Overrides) IsFileIgnored(path string) bool {
	if o == nil {
		return false
	}
	normalized := o.normalize(path)
	for _, g := range o.ignoreGlobs {
		if g.match(normalized) {
			return true
		}
	}
	return false
}

// RuleIgnored reports whether findings of the given rule are suppressed
// for the file by an override entry naming the rule or "all".
func (o *Overrides) RuleIgnored(path, rule string) bool {
	if o == nil {
		return false
	}
	normalized := o.normalize(path)
	for _, ov := range o.overrides {
		if !ov.glob.match(normalized) {
			continue
		}
		if ov.rules[AllRules] || ov.rules[rule] {
			return true
		}
	}
	return false
}

// UnmatchedGlobs returns the configured globs that match none of the
// given checked files. Callers surface them as run warnings.
func (o *Overrides) UnmatchedGlobs(files []string) []string {
	if o == nil {
		return nil
	}
	normalized := make([]string, len(files))
	for i, f := range files {
		normalized[i] = o.normalize(f)
	}

	matchesAny := func(g fileGlob) bool {
		for _, f := range normalized {
			if g.match(f) {
				return true
			}
		}
		return false
	}

	var unmatched []string
	for _, g := range o.ignoreGlobs {
		if !matchesAny(g) {
			unmatched = append(unmatched, g.pattern)
		}
	}
	for _, ov := range o.overrides {
		if !matchesAny(ov.glob) {
			unmatched = append(unmatched, ov.glob.pattern)
		}
	}
	return unmatched
}

// normalize makes a path relative to the config directory with forward
// slashes and no leading "./", the shape glob patterns are written in.
func (o *Overrides) normalize(p string) string {
	if o.dir != "" && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(o.dir, p); err == nil {
			p = rel
		}
	}
	return NormalizePath(p)
}

// compileGlob converts a file glob into an anchored regular expression.
// Supported syntax: * within a segment, ? for one character, ** across
// segments, [...] character classes and {a,b} literal alternates.
func compileGlob(pattern string) (fileGlob, error) {
	expr, err := globToRegex(pattern)
	if err != nil {
		return fileGlob{}, fmt.Errorf("invalid glob pattern '%s': %v", pattern, err)
	}
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return fileGlob{}, fmt.Errorf("invalid glob pattern '%s': %v", pattern, err)
	}
	return fileGlob{pattern: pattern, re: re}, nil
}

func globToRegex(glob string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					// "**/" matches zero or more whole segments.
					b.WriteString("(?:.*/)?")
					i += 2
					continue
				}
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("unclosed '['")
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		case '{':
			end := strings.IndexByte(glob[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed '{'")
			}
			parts := strings.Split(glob[i+1:i+end], ",")
			for j, part := range parts {
				parts[j] = regexp.QuoteMeta(part)
			}
			b.WriteString("(?:" + strings.Join(parts, "|") + ")")
			i += end
		case '.', '+', '^', '$', '(', ')', '}', '|', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
