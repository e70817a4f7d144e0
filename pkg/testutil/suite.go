package testutil

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/pipcheck/pkg/cases"
)

// SuiteBuilder provides a fluent API for constructing test suites.
//
// Suites are marshalled to YAML and loaded through cases.LoadSuiteData, so
// defaults and validation apply exactly as for a suite file.
type SuiteBuilder struct {
	suite cases.Suite
}

// NewSuite creates a builder for a suite observing pkg.
func NewSuite(pkg string) *SuiteBuilder {
	return &SuiteBuilder{suite: cases.Suite{Package: pkg}}
}

// WithPip sets the pip pin of the suite.
func (b *SuiteBuilder) WithPip(args ...string) *SuiteBuilder {
	b.suite.Pip = args
	return b
}

// WithEnv adds an environment override.
func (b *SuiteBuilder) WithEnv(key, value string) *SuiteBuilder {
	if b.suite.Env == nil {
		b.suite.Env = map[string]string{}
	}
	b.suite.Env[key] = value
	return b
}

// WithCase appends a case.
func (b *SuiteBuilder) WithCase(name string, install, reinstall []string, variants ...cases.Variant) *SuiteBuilder {
	b.suite.Cases = append(b.suite.Cases, cases.Case{
		Name:      name,
		Install:   install,
		Reinstall: reinstall,
		Variants:  variants,
	})
	return b
}

// YAML returns the suite as a suite file document.
func (b *SuiteBuilder) YAML(t *testing.T) string {
	t.Helper()
	data, err := yaml.Marshal(&b.suite)
	if err != nil {
		t.Fatalf("failed to marshal suite: %v", err)
	}
	return string(data)
}

// Build loads the suite with {here} resolving to dir.
//
// Parameters:
//   - t: Testing instance; the test fails if the suite is invalid
//   - dir: Suite directory
//
// Returns:
//   - *cases.Suite: The loaded suite
func (b *SuiteBuilder) Build(t *testing.T, dir string) *cases.Suite {
	t.Helper()
	s, err := cases.LoadSuiteData([]byte(b.YAML(t)), dir)
	if err != nil {
		t.Fatalf("failed to load suite: %v", err)
	}
	return s
}

// Expect returns a variant with the given expectation and options.
func Expect(reinstall bool, options ...string) cases.Variant {
	return cases.Variant{Options: options, ExpectReinstall: reinstall}
}

// UpgradeCase appends the canonical case: pin 0.1.1, reinstall unpinned,
// once without options (kept) and once with --upgrade (reinstalled).
func (b *SuiteBuilder) UpgradeCase() *SuiteBuilder {
	pkg := b.suite.Package
	return b.WithCase("upgrade", []string{pkg + "==0.1.1"}, []string{pkg},
		Expect(false),
		Expect(true, "--upgrade"),
	)
}
