// Package vocabularies embeds the OData standard vocabularies so that references
// to them resolve without network access.
package vocabularies

import (
	"embed"
	"io/fs"
)

//go:embed *.xml
var files embed.FS

// CoreURI is the published location of the Core vocabulary.
const CoreURI = "https://docs.oasis-open.org/odata/odata-vocabularies/v4.0/vocabularies/Org.OData.Core.V1.xml"

// FS returns the embedded vocabularies, keyed by file name.
func FS() fs.FS {
	return files
}

// Names lists the embedded vocabulary file names.
func Names() []string {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
