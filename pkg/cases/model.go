// Package cases defines the reinstall test suite: the package under test, the
// environment every pip call runs with, and the ordered list of cases and
// variants. Suites are loaded from YAML; an embedded default suite reproduces
// the pip-test-package matrix.
package cases

// Suite is the root of a suite file.
type Suite struct {
	// Package is the distribution whose (re)installation is observed.
	Package string `yaml:"package"`

	// Python is the interpreter used to create virtual environments.
	// It may contain arguments, e.g. "py -3". Default: python3.
	Python string `yaml:"python,omitempty"`

	// Pip holds the install arguments used to pin pip inside each
	// environment (e.g. ["pip==23.0.1"] or ["-e", "../pip"]). Empty keeps
	// the pip bundled with the interpreter.
	Pip []string `yaml:"pip,omitempty"`

	// Bootstrap lists packages installed into the template environment
	// before pip is pinned. Default: ["wheel"].
	Bootstrap []string `yaml:"bootstrap,omitempty"`

	// Paths overrides the fixture directories.
	Paths PathsCfg `yaml:"paths,omitempty"`

	// Env is applied to every install and reinstall step.
	Env map[string]string `yaml:"env,omitempty"`

	// TimeoutSeconds bounds each pip invocation; 0 means no timeout.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// Prepare describes the local fixtures built by 'pipcheck prepare'.
	Prepare *PrepareCfg `yaml:"prepare,omitempty"`

	// Cases run in file order.
	Cases []Case `yaml:"cases"`

	// dir is the directory {here} resolves to.
	dir string

	// source is the file the suite was loaded from, empty when embedded.
	source string
}

// PathsCfg holds fixture directory templates. Values may use {here}.
type PathsCfg struct {
	Cache      string `yaml:"cache,omitempty"`
	Wheelhouse string `yaml:"wheelhouse,omitempty"`
	Src        string `yaml:"src,omitempty"`
}

// PrepareCfg lists what 'prepare' builds.
type PrepareCfg struct {
	// CacheRefs are built with "pip wheel" into the HTTP/wheel cache so that
	// VCS requirements resolve offline.
	CacheRefs []string `yaml:"cache_refs,omitempty"`

	// WheelhouseRefs are built with "pip wheel" into the wheelhouse.
	WheelhouseRefs []string `yaml:"wheelhouse_refs,omitempty"`

	// DownloadRefs are fetched as-is with "pip download" into the wheelhouse.
	DownloadRefs []string `yaml:"download_refs,omitempty"`

	// Source is a git checkout placed under the src directory.
	Source *SourceCfg `yaml:"source,omitempty"`
}

// SourceCfg is a git repository cloned at a ref.
type SourceCfg struct {
	URL string `yaml:"url"`
	Ref string `yaml:"ref,omitempty"`
	// Dir is the checkout directory name inside the src directory.
	// Default: the last path element of URL.
	Dir string `yaml:"dir,omitempty"`
}

// Case is a named scenario: an initial install followed by a reinstall
// attempt, repeated once per variant in a fresh environment.
type Case struct {
	Name      string    `yaml:"name"`
	Install   []string  `yaml:"install"`
	Reinstall []string  `yaml:"reinstall"`
	Variants  []Variant `yaml:"variants"`
}

// Variant is one set of reinstall options with its expected outcome.
type Variant struct {
	Options         []string `yaml:"options,omitempty"`
	ExpectReinstall bool     `yaml:"expect_reinstall"`
	Comment         string   `yaml:"comment,omitempty"`
}

// VariantCount returns the number of variants across cases.
func VariantCount(cs []Case) int {
	n := 0
	for _, c := range cs {
		n += len(c.Variants)
	}
	return n
}

// Dir returns the directory {here} resolves to.
func (s *Suite) Dir() string {
	return s.dir
}

// Source returns the file the suite was loaded from, or "" for the embedded suite.
func (s *Suite) Source() string {
	return s.source
}

// ReinstallArgs returns the reinstall step arguments for a variant: the
// variant's options followed by the case's reinstall requirement.
func (c Case) ReinstallArgs(v Variant) []string {
	args := make([]string, 0, len(v.Options)+len(c.Reinstall))
	args = append(args, v.Options...)
	return append(args, c.Reinstall...)
}
