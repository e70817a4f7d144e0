package cases

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Placeholders recognised in arguments, env values and paths.
const (
	PlaceholderHere       = "{here}"
	PlaceholderCache      = "{cache}"
	PlaceholderWheelhouse = "{wheelhouse}"
	PlaceholderSrc        = "{src}"
)

var placeholderRe = regexp.MustCompile(`\{[a-z_]+\}`)

var knownPlaceholders = map[string]bool{
	PlaceholderHere:       true,
	PlaceholderCache:      true,
	PlaceholderWheelhouse: true,
	PlaceholderSrc:        true,
}

// CacheDir returns the resolved pip cache directory.
func (s *Suite) CacheDir() string {
	return s.resolvePath(s.Paths.Cache)
}

// WheelhouseDir returns the resolved wheelhouse directory.
func (s *Suite) WheelhouseDir() string {
	return s.resolvePath(s.Paths.Wheelhouse)
}

// SrcDir returns the resolved source checkout parent directory.
func (s *Suite) SrcDir() string {
	return s.resolvePath(s.Paths.Src)
}

// resolvePath expands {here} in a path template and makes it absolute
// relative to the suite directory.
func (s *Suite) resolvePath(tmpl string) string {
	p := filepath.FromSlash(strings.ReplaceAll(tmpl, PlaceholderHere, s.dir))
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.dir, p)
	}
	return filepath.Clean(p)
}

// replacer builds the placeholder replacer for this suite.
func (s *Suite) replacer() *strings.Replacer {
	return strings.NewReplacer(
		PlaceholderHere, s.dir,
		PlaceholderCache, s.CacheDir(),
		PlaceholderWheelhouse, s.WheelhouseDir(),
		PlaceholderSrc, s.SrcDir(),
	)
}

// Expand replaces placeholders in a single value.
func (s *Suite) Expand(value string) string {
	return s.replacer().Replace(value)
}

// ExpandAll replaces placeholders in every value and returns a new slice.
func (s *Suite) ExpandAll(values []string) []string {
	r := s.replacer()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = r.Replace(v)
	}
	return out
}

// ExpandedEnv returns Env with placeholders replaced.
func (s *Suite) ExpandedEnv() map[string]string {
	r := s.replacer()
	env := make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		env[k] = r.Replace(v)
	}
	return env
}

// unknownPlaceholders returns placeholders in value that Expand would leave untouched.
func unknownPlaceholders(value string) []string {
	var unknown []string
	for _, m := range placeholderRe.FindAllString(value, -1) {
		if !knownPlaceholders[m] {
			unknown = append(unknown, m)
		}
	}
	return unknown
}
