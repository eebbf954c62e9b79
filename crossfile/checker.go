// Package crossfile checks an unordered set of independent documents for
// elements defined by more than one file. References are not followed.
package crossfile

import (
	"cmp"
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/hashing"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/sequencedmap"
	"github.com/speakeasy-api/csdl/system"
	"golang.org/x/sync/errgroup"
)

// Parser turns document bytes into schema fragments.
type Parser interface {
	Parse(ctx context.Context, id references.DocumentID, data []byte) ([]*csdl.Schema, error)
}

// FileError is a file that could not be read or parsed.
type FileError struct {
	File references.DocumentID `yaml:"file"`
	Err  error                 `yaml:"-"`
}

func (e FileError) Error() string {
	return e.File.String() + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// MarshalYAML renders the failure with its message.
func (e FileError) MarshalYAML() (interface{}, error) {
	return map[string]string{"file": e.File.String(), "error": e.Err.Error()}, nil
}

// Report is the outcome of a directory check.
type Report struct {
	Compliant  bool                                               `yaml:"compliant"`
	Files      []references.DocumentID                            `yaml:"files"`
	Namespaces *sequencedmap.Map[string, []references.DocumentID] `yaml:"namespaces"`
	Conflicts  []merge.Conflict                                   `yaml:"conflicts,omitempty"`
	FileErrors []FileError                                        `yaml:"fileErrors,omitempty"`
}

type Option func(c *Checker)

// WithParser sets the parser used for every file. The default is csdl.Parser.
func WithParser(p Parser) Option {
	return func(c *Checker) {
		c.parser = p
	}
}

// WithFS sets the file system files are read from. The default is the OS file system.
func WithFS(fsys system.VirtualFS) Option {
	return func(c *Checker) {
		c.fsys = fsys
	}
}

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithReportIdenticalContainers reports entity containers repeated verbatim across files.
func WithReportIdenticalContainers(report bool) Option {
	return func(c *Checker) {
		c.reportIdenticalContainers = report
	}
}

// Checker detects elements defined by more than one file.
type Checker struct {
	parser                    Parser
	fsys                      system.VirtualFS
	concurrency               int
	reportIdenticalContainers bool
}

// NewChecker creates a checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		parser:      csdl.Parser{},
		fsys:        &system.FileSystem{},
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type elementKey struct {
	Kind      csdl.Kind
	Namespace string
	Name      string
	Sig       string
}

type definition struct {
	element csdl.Element
	hash    string
}

// aggregate collects definitions from concurrently parsed files.
type aggregate struct {
	mu          sync.Mutex
	definitions map[elementKey][]definition
	namespaces  map[string][]references.DocumentID
	fileErrors  []FileError
}

func (a *aggregate) add(id references.DocumentID, schemas []*csdl.Schema) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, schema := range schemas {
		if !slices.Contains(a.namespaces[schema.Namespace], id) {
			a.namespaces[schema.Namespace] = append(a.namespaces[schema.Namespace], id)
		}

		for _, el := range schema.Elements() {
			key := elementKey{Kind: el.Kind(), Namespace: schema.Namespace, Name: el.GetName()}
			if o, ok := el.(csdl.Overload); ok {
				key.Sig = o.Signature().String()
			}
			a.definitions[key] = append(a.definitions[key], definition{element: el, hash: hashing.Hash(el)})
		}
	}
}

func (a *aggregate) fail(id references.DocumentID, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fileErrors = append(a.fileErrors, FileError{File: id, Err: err})
}

// Check parses every file independently and reports cross-file collisions. Files
// that cannot be read or parsed are reported without stopping the check.
func (c *Checker) Check(ctx context.Context, files []string) (*Report, error) {
	ids := make([]references.DocumentID, 0, len(files))
	for _, file := range files {
		id, err := references.Canonicalize(file, "")
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	agg := &aggregate{
		definitions: map[elementKey][]definition{},
		namespaces:  map[string][]references.DocumentID{},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := id.String()
			if !system.IsOS(c.fsys) {
				name = strings.TrimPrefix(name, "/")
			}

			data, err := system.ReadFile(c.fsys, name)
			if err != nil {
				agg.fail(id, err)
				return nil
			}

			schemas, err := c.parser.Parse(ctx, id, data)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				agg.fail(id, err)
				return nil
			}

			agg.add(id, schemas)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c.report(ids, agg), nil
}

func (c *Checker) report(ids []references.DocumentID, agg *aggregate) *Report {
	report := &Report{
		Files:      ids,
		Namespaces: sequencedmap.New[string, []references.DocumentID](),
		FileErrors: agg.fileErrors,
	}

	namespaces := make([]string, 0, len(agg.namespaces))
	for ns := range agg.namespaces {
		namespaces = append(namespaces, ns)
	}
	slices.Sort(namespaces)
	for _, ns := range namespaces {
		files := slices.Clone(agg.namespaces[ns])
		slices.Sort(files)
		report.Namespaces.Set(ns, files)
	}

	for key, defs := range agg.definitions {
		if len(defs) < 2 {
			continue
		}

		slices.SortFunc(defs, func(a, b definition) int {
			return strings.Compare(a.element.GetSource().String(), b.element.GetSource().String())
		})

		if key.Kind == csdl.KindEntityContainer && !c.reportIdenticalContainers && allIdentical(defs) {
			continue
		}

		locations := make([]references.DocumentID, 0, len(defs))
		for _, d := range defs {
			locations = append(locations, d.element.GetSource())
		}

		el := defs[0].element
		conflict := merge.Conflict{
			Kind:        merge.ConflictDuplicateElement,
			Namespace:   key.Namespace,
			ElementKind: key.Kind,
			ElementName: key.Name,
			Locations:   locations,
			Resolution:  merge.ResolutionReported,
		}
		if o, ok := el.(csdl.Overload); ok {
			conflict.Signature = o.Signature()
		}
		conflict.Message = key.Kind.String() + " " + conflict.QualifiedName() + " is defined in " + joinIDs(locations)

		report.Conflicts = append(report.Conflicts, conflict)
	}

	slices.SortFunc(report.Conflicts, func(a, b merge.Conflict) int {
		return cmp.Or(
			strings.Compare(a.Namespace, b.Namespace),
			cmp.Compare(a.ElementKind, b.ElementKind),
			strings.Compare(a.ElementName, b.ElementName),
			strings.Compare(a.Signature.String(), b.Signature.String()),
		)
	})
	slices.SortFunc(report.FileErrors, func(a, b FileError) int {
		return strings.Compare(a.File.String(), b.File.String())
	})

	report.Compliant = len(report.Conflicts) == 0 && len(report.FileErrors) == 0
	return report
}

func allIdentical(defs []definition) bool {
	for _, d := range defs[1:] {
		if d.hash != defs[0].hash {
			return false
		}
	}
	return true
}

// CheckDir checks every .xml file under dir.
func (c *Checker) CheckDir(ctx context.Context, dir string) (*Report, error) {
	files, err := ListDocuments(c.fsys, dir)
	if err != nil {
		return nil, err
	}
	return c.Check(ctx, files)
}

// ListDocuments returns the slash separated paths of every .xml file under dir, sorted.
func ListDocuments(fsys system.VirtualFS, dir string) ([]string, error) {
	var files []string

	if system.IsOS(fsys) {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
				files = append(files, filepath.ToSlash(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		err := fs.WalkDir(fsys, strings.TrimPrefix(dir, "/"), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}

func joinIDs(ids []references.DocumentID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}
