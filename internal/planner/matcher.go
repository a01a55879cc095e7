package planner

import (
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Matcher decides which paths under the input root are sources and which are
// pruned. Paths are slash-separated and relative to the input root.
type Matcher struct {
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewMatcher compiles include and ignore glob patterns.
func NewMatcher(include, ignore []string) (*Matcher, error) {
	m := &Matcher{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		m.includePatterns = append(m.includePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		m.ignorePatterns = append(m.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return m, nil
}

// Includes reports whether relPath is a source file.
func (m *Matcher) Includes(relPath string) bool {
	return matchesAnyPattern(relPath, m.includePatterns)
}

// Ignores checks if a path matches any ignore pattern.
func (m *Matcher) Ignores(relPath string) bool {
	if len(m.ignorePatterns) == 0 {
		return false
	}

	if matchesAnyPattern(relPath, m.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "target" should match pattern "target/**"
	return matchesAnyPattern(relPath+"/**", m.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.java" match both "User.java"
	// and "model/User.java" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
