package resolver

import (
	"github.com/speakeasy-api/csdl/cache"
	"github.com/speakeasy-api/csdl/graph"
	"github.com/speakeasy-api/csdl/knowledge"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/system"
	"github.com/speakeasy-api/csdl/validation"
)

// Options control how a root document is resolved.
type Options struct {
	// DetectCircularDependencies looks for reference cycles once the graph is built.
	DetectCircularDependencies bool `yaml:"detectCircularDependencies"`
	// AllowCircularDependencies reports cycles as conflicts instead of failing.
	AllowCircularDependencies bool `yaml:"allowCircularDependencies"`
	// MaxDependencyDepth bounds the reference chain below the root.
	MaxDependencyDepth int `yaml:"maxDependencyDepth"`
	// EnableCaching shares parsed documents across runs through the document cache.
	EnableCaching bool `yaml:"enableCaching"`
	// ConflictResolution decides how duplicate definitions are merged.
	ConflictResolution merge.Policy `yaml:"conflictResolution"`
	// ValidateTypes validates the merged namespaces against the knowledge base.
	ValidateTypes bool `yaml:"validateTypes"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		DetectCircularDependencies: true,
		AllowCircularDependencies:  false,
		MaxDependencyDepth:         graph.DefaultMaxDepth,
		EnableCaching:              true,
		ConflictResolution:         merge.ThrowError,
		ValidateTypes:              true,
	}
}

type Option func(r *Resolver)

// WithOptions replaces every option value at once.
func WithOptions(opts Options) Option {
	return func(r *Resolver) {
		r.opts = opts
	}
}

func WithCircularDependencyDetection(detect bool) Option {
	return func(r *Resolver) {
		r.opts.DetectCircularDependencies = detect
	}
}

func WithAllowCircularDependencies(allow bool) Option {
	return func(r *Resolver) {
		r.opts.AllowCircularDependencies = allow
	}
}

func WithMaxDependencyDepth(depth int) Option {
	return func(r *Resolver) {
		r.opts.MaxDependencyDepth = depth
	}
}

func WithCaching(enabled bool) Option {
	return func(r *Resolver) {
		r.opts.EnableCaching = enabled
	}
}

func WithConflictResolution(policy merge.Policy) Option {
	return func(r *Resolver) {
		r.opts.ConflictResolution = policy
	}
}

func WithTypeValidation(enabled bool) Option {
	return func(r *Resolver) {
		r.opts.ValidateTypes = enabled
	}
}

// WithDocumentCache shares parsed documents through the given cache instead of the
// process wide one.
func WithDocumentCache(documents *cache.Documents) Option {
	return func(r *Resolver) {
		r.documents = documents
	}
}

// WithLocator replaces the default locator chain.
func WithLocator(locator references.Locator) Option {
	return func(r *Resolver) {
		r.locator = locator
	}
}

// WithFS sets the file system used by the default locator chain.
func WithFS(fsys system.VirtualFS) Option {
	return func(r *Resolver) {
		r.fs = fsys
	}
}

// WithHTTPClient sets the client used by the default locator chain.
func WithHTTPClient(client system.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

func WithParser(parser DocumentParser) Option {
	return func(r *Resolver) {
		r.parser = parser
	}
}

func WithExtractor(extractor references.Extractor) Option {
	return func(r *Resolver) {
		r.extractor = extractor
	}
}

// WithBaseline validates merged namespaces against an existing knowledge base.
func WithBaseline(kb *knowledge.KnowledgeBase) Option {
	return func(r *Resolver) {
		r.baseline = kb
	}
}

// WithValidationOptions filters and re-grades validation findings.
func WithValidationOptions(opts ...validation.Option) Option {
	return func(r *Resolver) {
		r.validationOpts = append(r.validationOpts, opts...)
	}
}
