// Package config loads resolver, validation and directory checker settings from
// a YAML file validated against an embedded JSON Schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	jsValidator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/speakeasy-api/csdl/crossfile"
	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/resolver"
	"github.com/speakeasy-api/csdl/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration file does not match the schema.
const ErrInvalidConfig errors.Error = "invalid configuration"

//go:embed schema.json
var schemaJSON string

const schemaURL = "config.schema.json"

var (
	compiled    *jsValidator.Schema
	compileErr  error
	compileOnce sync.Once

	defaultPrinter = message.NewPrinter(language.English)
)

// Resolution mirrors resolver.Options. Unset fields keep their defaults.
type Resolution struct {
	DetectCircularDependencies *bool         `yaml:"detectCircularDependencies,omitempty"`
	AllowCircularDependencies  *bool         `yaml:"allowCircularDependencies,omitempty"`
	MaxDependencyDepth         *int          `yaml:"maxDependencyDepth,omitempty"`
	EnableCaching              *bool         `yaml:"enableCaching,omitempty"`
	ConflictResolution         *merge.Policy `yaml:"conflictResolution,omitempty"`
	ValidateTypes              *bool         `yaml:"validateTypes,omitempty"`
}

type Validation struct {
	IgnoredRules []string                       `yaml:"ignoredRules,omitempty"`
	Severity     map[string]validation.Severity `yaml:"severity,omitempty"`
}

type Directory struct {
	Concurrency               *int  `yaml:"concurrency,omitempty"`
	ReportIdenticalContainers *bool `yaml:"reportIdenticalContainers,omitempty"`
}

// Config is the content of a configuration file.
type Config struct {
	Resolution Resolution `yaml:"resolution,omitempty"`
	Validation Validation `yaml:"validation,omitempty"`
	Directory  Directory  `yaml:"directory,omitempty"`

	// KnowledgeBase is the path of a saved knowledge base used as the validation baseline.
	KnowledgeBase string `yaml:"knowledgeBase,omitempty"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML configuration data against the schema and decodes it.
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidConfig.Wrap(err)
	}
	if raw == nil {
		return &Config{}, nil
	}

	if errs := validate(raw); len(errs) > 0 {
		return nil, ErrInvalidConfig.Wrap(errors.Join(errs...))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ErrInvalidConfig.Wrap(err)
	}
	return &cfg, nil
}

func validate(raw any) []error {
	schema, err := schemaValidator()
	if err != nil {
		return []error{err}
	}

	// Round trip through JSON so numbers and maps take the types the validator expects.
	buf, err := json.Marshal(raw)
	if err != nil {
		return []error{fmt.Errorf("config is not representable as json: %w", err)}
	}
	doc, err := jsValidator.UnmarshalJSON(bytes.NewReader(buf))
	if err != nil {
		return []error{err}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var validationErr *jsValidator.ValidationError
	if !errors.As(err, &validationErr) {
		return []error{err}
	}
	return rootCauses(validationErr)
}

func rootCauses(err *jsValidator.ValidationError) []error {
	if len(err.Causes) == 0 {
		location := "/" + strings.Join(err.InstanceLocation, "/")
		return []error{fmt.Errorf("%s: %s", location, err.ErrorKind.LocalizedString(defaultPrinter))}
	}

	var errs []error
	for _, cause := range err.Causes {
		errs = append(errs, rootCauses(cause)...)
	}
	return errs
}

func schemaValidator() (*jsValidator.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsValidator.UnmarshalJSON(strings.NewReader(schemaJSON))
		if err != nil {
			compileErr = err
			return
		}
		c := jsValidator.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// ResolverOptions converts the resolution and validation settings into resolver options.
func (c *Config) ResolverOptions() []resolver.Option {
	if c == nil {
		return nil
	}

	var opts []resolver.Option
	r := c.Resolution
	if r.DetectCircularDependencies != nil {
		opts = append(opts, resolver.WithCircularDependencyDetection(*r.DetectCircularDependencies))
	}
	if r.AllowCircularDependencies != nil {
		opts = append(opts, resolver.WithAllowCircularDependencies(*r.AllowCircularDependencies))
	}
	if r.MaxDependencyDepth != nil {
		opts = append(opts, resolver.WithMaxDependencyDepth(*r.MaxDependencyDepth))
	}
	if r.EnableCaching != nil {
		opts = append(opts, resolver.WithCaching(*r.EnableCaching))
	}
	if r.ConflictResolution != nil {
		opts = append(opts, resolver.WithConflictResolution(*r.ConflictResolution))
	}
	if r.ValidateTypes != nil {
		opts = append(opts, resolver.WithTypeValidation(*r.ValidateTypes))
	}
	if v := c.ValidationOptions(); len(v) > 0 {
		opts = append(opts, resolver.WithValidationOptions(v...))
	}
	return opts
}

// ValidationOptions converts the validation settings into finding filters.
func (c *Config) ValidationOptions() []validation.Option {
	if c == nil {
		return nil
	}

	var opts []validation.Option
	if len(c.Validation.IgnoredRules) > 0 {
		opts = append(opts, validation.WithIgnoredRules(c.Validation.IgnoredRules...))
	}
	rules := make([]string, 0, len(c.Validation.Severity))
	for rule := range c.Validation.Severity {
		rules = append(rules, rule)
	}
	slices.Sort(rules)
	for _, rule := range rules {
		opts = append(opts, validation.WithSeverity(rule, c.Validation.Severity[rule]))
	}
	return opts
}

// CheckerOptions converts the directory settings into checker options.
func (c *Config) CheckerOptions() []crossfile.Option {
	if c == nil {
		return nil
	}

	var opts []crossfile.Option
	if c.Directory.Concurrency != nil {
		opts = append(opts, crossfile.WithConcurrency(*c.Directory.Concurrency))
	}
	if c.Directory.ReportIdenticalContainers != nil {
		opts = append(opts, crossfile.WithReportIdenticalContainers(*c.Directory.ReportIdenticalContainers))
	}
	return opts
}
