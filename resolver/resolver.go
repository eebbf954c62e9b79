// Package resolver resolves a root CSDL document and everything it references
// into one merged, validated set of namespaces.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/speakeasy-api/csdl/cache"
	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/graph"
	"github.com/speakeasy-api/csdl/knowledge"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/sequencedmap"
	"github.com/speakeasy-api/csdl/system"
	"github.com/speakeasy-api/csdl/validation"
	"github.com/speakeasy-api/csdl/vocabularies"
)

// DocumentParser turns document bytes into schema fragments.
type DocumentParser interface {
	Parse(ctx context.Context, id references.DocumentID, data []byte) ([]*csdl.Schema, error)
}

var _ DocumentParser = csdl.Parser{}

// Resolver resolves root documents. A Resolver holds no state between calls
// other than the document cache it was given.
type Resolver struct {
	opts Options

	documents      *cache.Documents
	locator        references.Locator
	fs             system.VirtualFS
	client         system.Client
	parser         DocumentParser
	extractor      references.Extractor
	baseline       *knowledge.KnowledgeBase
	validationOpts []validation.Option
}

// New creates a resolver with DefaultOptions overridden by opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(r)
	}

	if r.documents == nil {
		r.documents = cache.DefaultDocuments()
	}
	if r.fs == nil {
		r.fs = &system.FileSystem{}
	}
	if r.locator == nil {
		r.locator = references.DefaultChain(vocabularies.FS(), r.fs, r.client)
	}
	if r.parser == nil {
		r.parser = csdl.Parser{}
	}
	if r.extractor == nil {
		r.extractor = references.XMLExtractor{}
	}

	return r
}

// Options returns the options the resolver runs with.
func (r *Resolver) Options() Options {
	return r.opts
}

// run is the state of a single Resolve call.
type run struct {
	*Resolver
	documents *cache.Documents
	result    *Result
}

// Resolve builds the dependency graph of root, applies the cycle policy, loads
// and merges every document in dependency order and validates the merged
// namespaces. The returned result is never nil; when err is not nil the result
// describes how far resolution got.
func (r *Resolver) Resolve(ctx context.Context, root string) (*Result, error) {
	result := &Result{
		Documents: sequencedmap.New[references.DocumentID, *DocumentOutcome](),
	}

	rootID, err := r.canonicalRoot(root)
	if err != nil {
		return result.fail(errors.ErrSourceNotFound.Wrap(err))
	}
	result.Root = rootID

	documents := r.documents
	if !r.opts.EnableCaching {
		documents = cache.NewDocuments()
	}
	rn := &run{Resolver: r, documents: documents, result: result}

	g, err := graph.NewBuilder(rn.discover, r.opts.MaxDependencyDepth).Build(ctx, rootID)
	if err != nil {
		return result.fail(err)
	}
	result.Graph = g

	if r.opts.DetectCircularDependencies {
		result.Cycles = graph.DetectCycles(g)
		if len(result.Cycles) > 0 && !r.opts.AllowCircularDependencies {
			return result.fail(&graph.CycleError{Cycles: result.Cycles})
		}
		for _, cycle := range result.Cycles {
			result.Conflicts = append(result.Conflicts, merge.CycleConflict(cycle))
		}
	}

	result.LoadOrder = graph.LoadOrder(g, rootID)

	registry := merge.NewRegistry()
	aliases := map[string]string{}
	for _, id := range result.LoadOrder {
		if err := ctx.Err(); err != nil {
			return result.fail(err)
		}

		entry, ok := documents.Get(id)
		if !ok {
			return result.fail(fmt.Errorf("document %s missing from cache after discovery", id))
		}
		for _, ref := range entry.References {
			for alias, namespace := range ref.Aliases() {
				aliases[alias] = namespace
			}
		}

		for _, schema := range entry.Schemas {
			conflicts, err := merge.Merger{}.MergeInto(schema, registry, r.opts.ConflictResolution)
			if err != nil {
				var conflictErr *merge.ConflictError
				if len(conflicts) == 0 && errors.As(err, &conflictErr) {
					conflicts = conflictErr.Conflicts
				}
				// A failed merge publishes no namespaces at all, not even those merged before it.
				result.Conflicts = append(result.Conflicts, conflicts...)
				return result.fail(err)
			}
			result.Conflicts = append(result.Conflicts, conflicts...)
		}
	}
	result.Registry = registry

	if r.opts.ValidateTypes {
		validator := knowledge.NewValidator(r.baseline,
			knowledge.WithAliases(aliases),
			knowledge.WithValidationOptions(r.validationOpts...),
		)
		report, err := validator.ValidateRegistry(ctx, registry)
		if err != nil {
			return result.fail(err)
		}
		result.Validation = report
	}

	result.Compliant = result.compliant()
	return result, nil
}

func (r *Resolver) canonicalRoot(root string) (references.DocumentID, error) {
	id, err := references.Canonicalize(root, "")
	if err != nil {
		return "", err
	}
	if system.IsOS(r.fs) && !id.IsURL() && !id.IsEmbedded() {
		abs, err := filepath.Abs(filepath.FromSlash(string(id)))
		if err != nil {
			return "", err
		}
		return references.Canonicalize(filepath.ToSlash(abs), "")
	}
	return id, nil
}

// discover loads a document and returns the canonical targets of its references,
// one per raw reference in document order.
func (rn *run) discover(ctx context.Context, id references.DocumentID) ([]references.DocumentID, error) {
	entry, err := rn.load(ctx, id)
	if err != nil {
		return nil, err
	}

	targets := make([]references.DocumentID, 0, len(entry.References))
	for _, ref := range entry.References {
		target, err := references.Canonicalize(ref.URI, id)
		if err != nil {
			return nil, errors.ErrSourceNotFound.Wrapf("reference %q in %s: %s", ref.URI, id, err)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (rn *run) load(ctx context.Context, id references.DocumentID) (*cache.Entry, error) {
	outcome := &DocumentOutcome{ID: id}
	rn.result.Documents.Set(id, outcome)

	entry, hit, err := rn.documents.GetOrLoad(id, func() (*cache.Entry, error) {
		located, err := rn.locator.Locate(ctx, string(id), "")
		if err != nil {
			return nil, err
		}

		refs, err := rn.extractor.Extract(located.Data)
		if err != nil {
			return nil, errors.ErrInvalidDocument.Wrapf("%s: %s", id, err)
		}
		for _, ref := range refs {
			if err := ref.Validate(); err != nil {
				return nil, errors.ErrInvalidDocument.Wrapf("%s: %s", id, err)
			}
		}

		schemas, err := rn.parser.Parse(ctx, id, located.Data)
		if err != nil {
			return nil, err
		}

		return &cache.Entry{ID: id, References: refs, Schemas: schemas}, nil
	})
	if err != nil {
		outcome.Error = err.Error()
		return nil, err
	}

	outcome.Loaded = true
	outcome.CacheHit = hit
	outcome.Namespaces = entry.Namespaces()
	return entry, nil
}
