package references

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/system"
)

// ErrNotApplicable is returned by a locator that does not handle the kind of reference given.
const ErrNotApplicable errors.Error = "locator not applicable"

// Located is a document found by a Locator.
type Located struct {
	ID   DocumentID
	Data []byte
}

// Locator turns a raw reference, relative to the referencing document, into document bytes.
type Locator interface {
	Locate(ctx context.Context, raw string, base DocumentID) (*Located, error)
}

// Chain tries each locator in registration order; the first to succeed wins.
type Chain []Locator

var _ Locator = Chain(nil)

func (c Chain) Locate(ctx context.Context, raw string, base DocumentID) (*Located, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs []error
	for _, locator := range c {
		located, err := locator.Locate(ctx, raw, base)
		if err == nil {
			return located, nil
		}
		if !errors.Is(err, ErrNotApplicable) {
			errs = append(errs, err)
		}
	}

	cause := fmt.Errorf("%q from %q", raw, base)
	if len(errs) > 0 {
		cause = fmt.Errorf("%w: %w", cause, errors.Join(errs...))
	}
	return nil, errors.ErrSourceNotFound.Wrap(cause)
}

// EmbeddedLocator serves documents from an embedded file system. It handles
// "embedded:" and "classpath:" URIs, and network URIs whose file name is present
// in the file system, so that standard vocabularies resolve without network access.
type EmbeddedLocator struct {
	FS fs.FS
}

var _ Locator = (*EmbeddedLocator)(nil)

func (l *EmbeddedLocator) Locate(_ context.Context, raw string, base DocumentID) (*Located, error) {
	if l.FS == nil {
		return nil, ErrNotApplicable
	}

	id, err := Canonicalize(raw, base)
	if err != nil {
		return nil, err
	}

	var name string
	switch {
	case id.IsEmbedded():
		name = strings.TrimPrefix(string(id), EmbeddedScheme)
	case id.IsURL():
		name = id.Base()
	default:
		return nil, ErrNotApplicable
	}

	data, err := fs.ReadFile(l.FS, name)
	if err != nil {
		if id.IsURL() {
			return nil, ErrNotApplicable
		}
		return nil, fmt.Errorf("embedded %s: %w", name, err)
	}

	return &Located{ID: id, Data: data}, nil
}

// FileSystemLocator reads file path references relative to the referencing document.
type FileSystemLocator struct {
	FS system.VirtualFS
}

var _ Locator = (*FileSystemLocator)(nil)

func (l *FileSystemLocator) Locate(_ context.Context, raw string, base DocumentID) (*Located, error) {
	id, err := Canonicalize(raw, base)
	if err != nil {
		return nil, err
	}
	if id.IsURL() || id.IsEmbedded() {
		return nil, ErrNotApplicable
	}

	fsys := l.FS
	if fsys == nil {
		fsys = &system.FileSystem{}
	}

	name := string(id)
	if !system.IsOS(fsys) {
		name = strings.TrimPrefix(path.Clean(name), "/")
	}

	data, err := system.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}

	return &Located{ID: id, Data: data}, nil
}

// URLLocator fetches http and https references.
type URLLocator struct {
	Client system.Client
}

var _ Locator = (*URLLocator)(nil)

func (l *URLLocator) Locate(ctx context.Context, raw string, base DocumentID) (*Located, error) {
	id, err := Canonicalize(raw, base)
	if err != nil {
		return nil, err
	}

	loc, err := Classify(string(id))
	if err != nil || loc.Type != LocationURL {
		return nil, ErrNotApplicable
	}
	if scheme := strings.ToLower(loc.ParsedURL.Scheme); scheme != "http" && scheme != "https" {
		return nil, ErrNotApplicable
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: HTTP request failed with status %d", id, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	return &Located{ID: id, Data: data}, nil
}

// DefaultChain returns the embedded, file system and network locators in that order.
// Nil arguments disable the embedded locator and use the OS file system and http.DefaultClient.
func DefaultChain(embedded fs.FS, fsys system.VirtualFS, client system.Client) Chain {
	chain := Chain{}
	if embedded != nil {
		chain = append(chain, &EmbeddedLocator{FS: embedded})
	}
	return append(chain, &FileSystemLocator{FS: fsys}, &URLLocator{Client: client})
}
