package references

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/speakeasy-api/csdl/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemLocator_Locate_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"schemas/Common.xml": &fstest.MapFile{Data: []byte("common")},
	}
	locator := &FileSystemLocator{FS: fsys}

	located, err := locator.Locate(context.Background(), "../schemas/./Common.xml", "schemas/Sales.xml")
	require.NoError(t, err)
	assert.Equal(t, DocumentID("schemas/Common.xml"), located.ID)
	assert.Equal(t, []byte("common"), located.Data)
}

func TestFileSystemLocator_Locate_Error(t *testing.T) {
	t.Parallel()

	locator := &FileSystemLocator{FS: fstest.MapFS{}}

	_, err := locator.Locate(context.Background(), "Missing.xml", "schemas/Sales.xml")
	require.Error(t, err)

	_, err = locator.Locate(context.Background(), "https://example.com/a.xml", "")
	assert.ErrorIs(t, err, ErrNotApplicable, "should leave urls to other locators")
}

func TestEmbeddedLocator_Locate_Success(t *testing.T) {
	t.Parallel()

	locator := &EmbeddedLocator{FS: fstest.MapFS{
		"Org.OData.Core.V1.xml":  &fstest.MapFile{Data: []byte("core")},
		"vocabularies/Extra.xml": &fstest.MapFile{Data: []byte("extra")},
	}}

	located, err := locator.Locate(context.Background(), "https://docs.oasis-open.org/odata/odata-vocabularies/v4.0/vocabularies/Org.OData.Core.V1.xml", "schemas/Sales.xml")
	require.NoError(t, err)
	assert.Equal(t, DocumentID("https://docs.oasis-open.org/odata/odata-vocabularies/v4.0/vocabularies/Org.OData.Core.V1.xml"), located.ID, "should keep the network identity")
	assert.Equal(t, []byte("core"), located.Data)

	located, err = locator.Locate(context.Background(), "classpath:/vocabularies/Extra.xml", "")
	require.NoError(t, err)
	assert.Equal(t, DocumentID("embedded:vocabularies/Extra.xml"), located.ID)
}

func TestEmbeddedLocator_Locate_NotApplicable(t *testing.T) {
	t.Parallel()

	locator := &EmbeddedLocator{FS: fstest.MapFS{}}

	_, err := locator.Locate(context.Background(), "https://example.com/Unknown.xml", "")
	require.ErrorIs(t, err, ErrNotApplicable)

	_, err = locator.Locate(context.Background(), "schemas/Sales.xml", "")
	require.ErrorIs(t, err, ErrNotApplicable)

	_, err = locator.Locate(context.Background(), "embedded:Missing.xml", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotApplicable, "an embedded uri that is missing is a real failure")
}

func TestURLLocator_Locate_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/odata/Types.xml":
			_, _ = w.Write([]byte("types"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	locator := &URLLocator{Client: server.Client()}

	located, err := locator.Locate(context.Background(), "Types.xml", DocumentID(server.URL+"/odata/Sales.xml"))
	require.NoError(t, err)
	assert.Equal(t, DocumentID(server.URL+"/odata/Types.xml"), located.ID)
	assert.Equal(t, []byte("types"), located.Data)

	_, err = locator.Locate(context.Background(), "Missing.xml", DocumentID(server.URL+"/odata/Sales.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = locator.Locate(context.Background(), "schemas/Sales.xml", "")
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestChain_Locate_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	chain := Chain{
		&EmbeddedLocator{FS: fstest.MapFS{"Common.xml": &fstest.MapFile{Data: []byte("embedded")}}},
		&FileSystemLocator{FS: fstest.MapFS{"schemas/Common.xml": &fstest.MapFile{Data: []byte("file")}}},
	}

	located, err := chain.Locate(context.Background(), "Common.xml", "schemas/Sales.xml")
	require.NoError(t, err)
	assert.Equal(t, []byte("file"), located.Data, "embedded locator only serves urls and embedded uris")

	located, err = chain.Locate(context.Background(), "embedded:Common.xml", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("embedded"), located.Data)
}

func TestChain_Locate_SourceNotFound(t *testing.T) {
	t.Parallel()

	chain := DefaultChain(nil, fstest.MapFS{}, nil)

	_, err := chain.Locate(context.Background(), "Missing.xml", "schemas/Sales.xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "Missing.xml")
}

func TestChain_Locate_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultChain(nil, fstest.MapFS{}, nil).Locate(ctx, "a.xml", "")
	assert.ErrorIs(t, err, context.Canceled)
}
