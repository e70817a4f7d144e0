package cases

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/pipcheck/pkg/verbose"
)

// DefaultMaxSuiteFileSize caps suite files at 10MB.
const DefaultMaxSuiteFileSize int64 = 10 * 1024 * 1024

// DefaultSuiteFile is looked up in the working directory when no path is given.
const DefaultSuiteFile = ".pipcheck.yml"

//go:embed default.yml
var defaultSuiteYAML []byte

// GetDefaultSuite returns the embedded default suite YAML.
func GetDefaultSuite() string {
	return string(defaultSuiteYAML)
}

// LoadSuite loads a suite from path or, when path is empty, from
// .pipcheck.yml in workDir, falling back to the embedded default suite.
//
// The suite is decoded strictly (unknown fields are errors), defaults are
// applied and the result is validated.
//
// Parameters:
//   - path: Suite file path, or empty
//   - workDir: Directory used for the local suite lookup and as {here} of the embedded suite
//
// Returns:
//   - *Suite: The loaded suite
//   - error: Read, decode or validation error
func LoadSuite(path, workDir string) (*Suite, error) {
	if workDir == "" {
		workDir = "."
	}

	if path == "" {
		local := filepath.Join(workDir, DefaultSuiteFile)
		if _, err := os.Stat(local); err == nil {
			verbose.Infof("Found local suite: %s", local)
			path = local
		}
	}

	if path == "" {
		verbose.Info("Using built-in default suite")
		return decodeSuite(defaultSuiteYAML, workDir, "")
	}

	data, err := readSuiteFile(path, DefaultMaxSuiteFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return decodeSuite(data, filepath.Dir(path), path)
}

// LoadSuiteData decodes a suite from memory. dir is what {here} resolves to.
func LoadSuiteData(data []byte, dir string) (*Suite, error) {
	return decodeSuite(data, dir, "")
}

// readSuiteFile reads a file after checking it is not larger than maxSize.
func readSuiteFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("suite file too large: %d bytes (max %d bytes)", info.Size(), maxSize)
	}
	return os.ReadFile(path)
}

// parseSuite decodes suite YAML strictly and applies defaults.
func parseSuite(data []byte, dir, source string) (*Suite, error) {
	var s Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("suite is empty")
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve suite directory: %w", err)
	}
	s.dir = absDir
	s.source = source
	s.applyDefaults()
	return &s, nil
}

// ValidateSuiteData reports every decoding and validation problem of a suite
// document. Unlike LoadSuiteData it also returns warnings.
func ValidateSuiteData(data []byte, dir string) *ValidationResult {
	s, err := parseSuite(data, dir, "")
	if err != nil {
		r := &ValidationResult{}
		r.addError("", "%v", err)
		return r
	}
	return s.Validate()
}

// decodeSuite parses, defaults and validates suite YAML.
func decodeSuite(data []byte, dir, source string) (*Suite, error) {
	s, err := parseSuite(data, dir, source)
	if err != nil {
		return nil, err
	}

	result := s.Validate()
	if result.HasErrors() {
		return nil, result
	}
	for _, w := range result.Warnings {
		verbose.Printf("Suite warning: %s", w)
	}

	verbose.SuiteLoaded(source, len(s.Cases))
	return s, nil
}

// applyDefaults fills optional settings.
func (s *Suite) applyDefaults() {
	if s.Python == "" {
		s.Python = "python3"
	}
	if s.Bootstrap == nil {
		s.Bootstrap = []string{"wheel"}
	}
	if s.Paths.Cache == "" {
		s.Paths.Cache = "{here}/cache"
	}
	if s.Paths.Wheelhouse == "" {
		s.Paths.Wheelhouse = "{here}/wheelhouse"
	}
	if s.Paths.Src == "" {
		s.Paths.Src = "{here}/src"
	}
	if s.Prepare != nil && s.Prepare.Source != nil && s.Prepare.Source.Dir == "" {
		s.Prepare.Source.Dir = repoDirName(s.Prepare.Source.URL)
	}
}

// repoDirName returns what "git clone <url>" would name the checkout.
func repoDirName(url string) string {
	base := filepath.Base(filepath.ToSlash(url))
	if ext := filepath.Ext(base); ext == ".git" {
		base = base[:len(base)-len(ext)]
	}
	return base
}
