package cases

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is one problem found in a suite.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message prefixed with the field path.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult collects every error and warning of a suite.
//
// It implements error so loaders can return it directly; callers that want
// the individual problems use errors.As.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error formats all validation errors into one message.
func (r *ValidationResult) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, "  - "+e.Error())
	}
	return "suite validation failed:\n" + strings.Join(msgs, "\n")
}

func (r *ValidationResult) addError(field, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the suite's invariants.
//
// Errors: missing package, negative timeout, no cases, empty or duplicate
// case names, empty install/reinstall arguments, cases without variants,
// unknown placeholders, prepare source without URL.
// Warnings: variant options that do not look like flags.
func (s *Suite) Validate() *ValidationResult {
	r := &ValidationResult{}

	if strings.TrimSpace(s.Package) == "" {
		r.addError("package", "is required")
	}
	if strings.TrimSpace(s.Python) == "" {
		r.addError("python", "is required")
	}
	if s.TimeoutSeconds < 0 {
		r.addError("timeout_seconds", "must not be negative (got %d)", s.TimeoutSeconds)
	}
	if len(s.Cases) == 0 {
		r.addError("cases", "at least one case is required")
	}

	keys := make([]string, 0, len(s.Env))
	for key := range s.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		checkPlaceholders(r, "env."+key, s.Env[key])
	}
	for _, arg := range s.Pip {
		checkPlaceholders(r, "pip", arg)
	}
	for _, arg := range s.Bootstrap {
		checkPlaceholders(r, "bootstrap", arg)
	}
	checkPlaceholders(r, "paths.cache", s.Paths.Cache)
	checkPlaceholders(r, "paths.wheelhouse", s.Paths.Wheelhouse)
	checkPlaceholders(r, "paths.src", s.Paths.Src)

	if s.Prepare != nil && s.Prepare.Source != nil && strings.TrimSpace(s.Prepare.Source.URL) == "" {
		r.addError("prepare.source.url", "is required when prepare.source is set")
	}

	seen := make(map[string]int, len(s.Cases))
	for i, c := range s.Cases {
		field := fmt.Sprintf("cases[%d]", i)
		name := strings.TrimSpace(c.Name)
		if name == "" {
			r.addError(field+".name", "is required")
		} else {
			field = fmt.Sprintf("cases[%s]", name)
			if prev, dup := seen[name]; dup {
				r.addError(field+".name", "duplicates cases[%d]", prev)
			} else {
				seen[name] = i
			}
		}

		if len(c.Install) == 0 {
			r.addError(field+".install", "at least one argument is required")
		}
		if len(c.Reinstall) == 0 {
			r.addError(field+".reinstall", "at least one argument is required")
		}
		if len(c.Variants) == 0 {
			r.addError(field+".variants", "at least one variant is required")
		}
		for _, arg := range c.Install {
			checkPlaceholders(r, field+".install", arg)
		}
		for _, arg := range c.Reinstall {
			checkPlaceholders(r, field+".reinstall", arg)
		}
		for j, v := range c.Variants {
			for _, opt := range v.Options {
				if !strings.HasPrefix(opt, "-") {
					r.addWarning("%s.variants[%d].options: %q does not look like a pip option", field, j, opt)
				}
			}
		}
	}

	return r
}

func checkPlaceholders(r *ValidationResult, field, value string) {
	for _, p := range unknownPlaceholders(value) {
		r.addError(field, "unknown placeholder %s (known: {here}, {cache}, {wheelhouse}, {src})", p)
	}
}
