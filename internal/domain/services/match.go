package services

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

const globChars = "*?[{"

// isGlobPattern reports whether the entry contains glob metacharacters
func isGlobPattern(s string) bool {
	return strings.ContainsAny(s, globChars)
}

// globPattern is a compiled glob entry. Relative patterns are matched
// against the path made relative to the spec's base directory; absolute
// patterns are matched in absolute form.
type globPattern struct {
	raw      string
	matcher  glob.Glob
	absolute bool
}

// PathSpec evaluates whether a path falls inside an include/exclude
// specification. Entries are one of: a directory root (segment-aware
// prefix match), a literal file (exact resolved-path equality), or a glob.
// A path matches iff it matches some include entry and no exclude entry;
// an empty include list matches everything. Excludes always win on
// overlap. Malformed patterns fail at compile time, never at match time.
type PathSpec struct {
	baseDir      string
	hasInclude   bool
	includeRoots []string
	includeFiles map[string]struct{}
	includeGlobs []globPattern
	excludeRoots []string
	excludeFiles map[string]struct{}
	excludeGlobs []globPattern
	watchRoots   []string
}

// CompileSpec compiles include/exclude entries into a PathSpec. Relative
// entries and patterns are resolved against baseDir. A malformed glob is a
// configuration error surfaced here, at load time.
func CompileSpec(include, exclude []string, baseDir string) (*PathSpec, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, &entities.ConfigError{Field: "base_dir", Value: baseDir, Err: err}
	}

	s := &PathSpec{
		baseDir:      abs,
		hasInclude:   len(include) > 0,
		includeFiles: make(map[string]struct{}),
		excludeFiles: make(map[string]struct{}),
	}

	for _, entry := range include {
		if err := s.addEntry(entry, "include", true); err != nil {
			return nil, err
		}
	}

	for _, entry := range exclude {
		if err := s.addEntry(entry, "exclude", false); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// addEntry classifies and compiles a single spec entry. Include entries
// also contribute a watch root so the change source covers them.
func (s *PathSpec) addEntry(entry, field string, include bool) error {
	expanded := expandUser(entry)

	if isGlobPattern(expanded) {
		absolute := filepath.IsAbs(expanded)
		pattern := filepath.ToSlash(expanded)

		matcher, err := glob.Compile(pattern)
		if err != nil {
			return &entities.ConfigError{Field: field, Value: entry, Err: err}
		}

		gp := globPattern{raw: entry, matcher: matcher, absolute: absolute}
		if include {
			s.includeGlobs = append(s.includeGlobs, gp)
			if root := nearestExistingDir(s.resolve(globBaseDir(expanded))); root != "" {
				s.watchRoots = append(s.watchRoots, root)
			}
		} else {
			s.excludeGlobs = append(s.excludeGlobs, gp)
		}
		return nil
	}

	resolved := s.resolve(expanded)

	isDir := false
	if info, err := os.Stat(resolved); err == nil {
		isDir = info.IsDir()
	} else {
		// Missing paths fall back to a directory hint: a trailing
		// separator or the absence of an extension means directory.
		isDir = strings.HasSuffix(entry, "/") || strings.HasSuffix(entry, string(filepath.Separator)) || filepath.Ext(entry) == ""
	}

	if isDir {
		if include {
			s.includeRoots = append(s.includeRoots, resolved)
			if root := nearestExistingDir(resolved); root != "" {
				s.watchRoots = append(s.watchRoots, root)
			}
		} else {
			s.excludeRoots = append(s.excludeRoots, resolved)
		}
		return nil
	}

	if include {
		s.includeFiles[resolved] = struct{}{}
		if root := nearestExistingDir(filepath.Dir(resolved)); root != "" {
			s.watchRoots = append(s.watchRoots, root)
		}
	} else {
		s.excludeFiles[resolved] = struct{}{}
	}
	return nil
}

// Matches reports whether path falls inside the spec
func (s *PathSpec) Matches(path string) bool {
	resolved := s.resolve(path)

	if s.hasInclude && !s.matchesAny(resolved, s.includeRoots, s.includeFiles, s.includeGlobs) {
		return false
	}

	return !s.matchesAny(resolved, s.excludeRoots, s.excludeFiles, s.excludeGlobs)
}

// WatchRoots returns the deduplicated existing directories that cover the
// include entries, for feeding the change source.
func (s *PathSpec) WatchRoots() []string {
	seen := make(map[string]struct{}, len(s.watchRoots))
	out := make([]string, 0, len(s.watchRoots))
	for _, r := range s.watchRoots {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (s *PathSpec) matchesAny(path string, roots []string, files map[string]struct{}, globs []globPattern) bool {
	if _, ok := files[path]; ok {
		return true
	}

	for _, root := range roots {
		if underRoot(path, root) {
			return true
		}
	}

	if len(globs) == 0 {
		return false
	}

	absPosix := filepath.ToSlash(path)
	relPosix := ""
	if rel, err := filepath.Rel(s.baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		relPosix = filepath.ToSlash(rel)
	}

	for _, g := range globs {
		candidate := relPosix
		if g.absolute {
			candidate = absPosix
		}
		if candidate != "" && g.matcher.Match(candidate) {
			return true
		}
	}
	return false
}

// resolve makes path absolute relative to the spec base and cleans it
func (s *PathSpec) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	return filepath.Clean(path)
}

// underRoot reports a segment-aware prefix match: the root itself or any
// path below it, never a partial path segment.
func underRoot(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// globBaseDir returns the literal directory prefix of a glob pattern
func globBaseDir(pattern string) string {
	idx := strings.IndexAny(pattern, globChars)
	if idx <= 0 {
		return "."
	}

	prefix := pattern[:idx]
	if strings.HasSuffix(prefix, "/") || strings.HasSuffix(prefix, string(filepath.Separator)) {
		return filepath.Clean(prefix)
	}
	return filepath.Dir(prefix)
}

// nearestExistingDir walks up from path until it finds a directory that
// exists, or returns empty when none does.
func nearestExistingDir(path string) string {
	cur := path
	for {
		if info, err := os.Stat(cur); err == nil && info.IsDir() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}

// expandUser expands a leading ~ to the user's home directory
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
