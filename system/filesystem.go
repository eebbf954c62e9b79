// Package system abstracts the file system and HTTP client used to read documents.
package system

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// VirtualFS is the file system documents are read from. Names are slash separated;
// the OS implementation accepts absolute paths.
type VirtualFS interface {
	fs.FS
}

// Client performs HTTP requests for network references.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// FileSystem is a VirtualFS backed by the operating system.
type FileSystem struct{}

var _ VirtualFS = (*FileSystem)(nil)

func (fs *FileSystem) Open(name string) (fs.File, error) {
	return os.Open(filepath.FromSlash(name))
}

// ReadFile reads the named file from fsys.
func ReadFile(fsys VirtualFS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// IsOS reports whether fsys reads from the operating system, meaning absolute paths are meaningful.
func IsOS(fsys VirtualFS) bool {
	_, ok := fsys.(*FileSystem)
	return ok
}
