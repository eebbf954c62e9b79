package resolver

import (
	"github.com/speakeasy-api/csdl/graph"
	"github.com/speakeasy-api/csdl/knowledge"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/sequencedmap"
)

// DocumentOutcome records what happened when a document was loaded.
type DocumentOutcome struct {
	ID         references.DocumentID `yaml:"id"`
	Loaded     bool                  `yaml:"loaded"`
	CacheHit   bool                  `yaml:"cacheHit"`
	Namespaces []string              `yaml:"namespaces,omitempty"`
	Error      string                `yaml:"error,omitempty"`
}

// Result is the outcome of resolving a root document.
type Result struct {
	Root       references.DocumentID                                      `yaml:"root"`
	Compliant  bool                                                       `yaml:"compliant"`
	Error      string                                                     `yaml:"error,omitempty"`
	LoadOrder  []references.DocumentID                                    `yaml:"loadOrder,omitempty"`
	Cycles     []graph.Cycle                                              `yaml:"cycles,omitempty"`
	Conflicts  []merge.Conflict                                           `yaml:"conflicts,omitempty"`
	Documents  *sequencedmap.Map[references.DocumentID, *DocumentOutcome] `yaml:"documents"`
	Registry   *merge.Registry                                            `yaml:"namespaces,omitempty"`
	Validation *knowledge.ValidationReport                                `yaml:"validation,omitempty"`

	// Graph is the dependency graph, when discovery completed.
	Graph *graph.Graph `yaml:"-"`
}

func (r *Result) fail(err error) (*Result, error) {
	r.Compliant = false
	r.Error = err.Error()
	return r, err
}

// compliant reports whether resolution produced a conflict free, valid model.
// Allowed reference cycles and collisions settled by AutoMerge do not affect compliance.
func (r *Result) compliant() bool {
	if r.Error != "" {
		return false
	}
	for _, c := range r.Conflicts {
		if c.Kind != merge.ConflictCircularDependency && c.Resolution != merge.ResolutionMerged {
			return false
		}
	}
	return r.Validation == nil || r.Validation.Valid
}

// Namespaces returns the merged namespaces in the order they were first loaded.
func (r *Result) Namespaces() []string {
	if r.Registry == nil {
		return nil
	}
	return r.Registry.Namespaces()
}

// ConflictsOfKind returns the conflicts of the given kind.
func (r *Result) ConflictsOfKind(kind merge.ConflictKind) []merge.Conflict {
	var out []merge.Conflict
	for _, c := range r.Conflicts {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
