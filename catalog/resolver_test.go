package catalog_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/niemtran/catalog"
)

const mainCatalog = `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog" prefer="public">
  <uri name="http://release.niem.gov/niem/niem-core/4.0/" uri="niem/niem-core.xsd"/>
  <uri name="http://release.niem.gov/niem/domains/jxdm/6.0/" uri="niem/domains/jxdm.xsd"/>
  <system systemId="http://example.com/dtd/thing.dtd" uri="dtd/thing.dtd"/>
  <public publicId="-//EXAMPLE//DTD Thing//EN" uri="dtd/thing.dtd"/>
  <rewriteURI uriStartString="http://release.niem.gov/niem/codes/" rewritePrefix="niem/codes/"/>
  <nextCatalog catalog="extra/catalog.xml"/>
</catalog>
`

const extraCatalog = `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <uri name="http://release.niem.gov/niem/structures/4.0/" uri="structures.xsd"/>
  <uri name="http://release.niem.gov/niem/niem-core/4.0/" uri="shadowed-core.xsd"/>
</catalog>
`

func newTestResolver(t *testing.T) *catalog.Resolver {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cat/catalog.xml", []byte(mainCatalog), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cat/extra/catalog.xml", []byte(extraCatalog), 0o644))

	r := catalog.New(catalog.WithFs(fs))
	require.NoError(t, r.SetCatalogs([]string{"/cat/catalog.xml"}))

	return r
}

func TestResolveURI(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	tcs := map[string]struct {
		uri     string
		want    string
		wantHit bool
	}{
		"exact entry": {
			uri:     "http://release.niem.gov/niem/niem-core/4.0/",
			want:    "file:///cat/niem/niem-core.xsd",
			wantHit: true,
		},
		"entry from subordinate catalog": {
			uri:     "http://release.niem.gov/niem/structures/4.0/",
			want:    "file:///cat/extra/structures.xsd",
			wantHit: true,
		},
		"rewrite prefix": {
			uri:     "http://release.niem.gov/niem/codes/aamva/4.0/aamva.xsd",
			want:    "file:///cat/niem/codes/aamva/4.0/aamva.xsd",
			wantHit: true,
		},
		"miss": {
			uri:     "http://example.com/unknown/",
			want:    "",
			wantHit: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, ok := r.ResolveURI(tc.uri)
			assert.Equal(t, tc.wantHit, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFirstBindingWins(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	// The main catalog binds niem-core before the subordinate catalog's
	// shadowed entry is seen.
	got, ok := r.ResolveURI("http://release.niem.gov/niem/niem-core/4.0/")
	require.True(t, ok)
	assert.Equal(t, "file:///cat/niem/niem-core.xsd", got)
}

func TestResolveSystemAndPublic(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	got, ok := r.ResolveSystem("http://example.com/dtd/thing.dtd")
	require.True(t, ok)
	assert.Equal(t, "file:///cat/dtd/thing.dtd", got)

	got, ok = r.ResolvePublic("-//EXAMPLE//DTD Thing//EN")
	require.True(t, ok)
	assert.Equal(t, "file:///cat/dtd/thing.dtd", got)
}

func TestResolutionMessages(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	r.ResolveURI("http://release.niem.gov/niem/niem-core/4.0/")
	r.ResolveURI("http://example.com/unknown/")

	msgs := r.ResolutionMessages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "resolve uri http://release.niem.gov/niem/niem-core/4.0/ -> file:///cat/niem/niem-core.xsd")
	assert.Contains(t, msgs[1], "no match")

	r.ResetResolutions()
	assert.Empty(t, r.ResolutionMessages())
}

func TestValidationResults(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	results := r.ValidationResults()
	require.Len(t, results, 2)
	assert.Contains(t, results[0], "file:///cat/catalog.xml: ok")
	assert.Contains(t, results[1], "file:///cat/extra/catalog.xml: ok")
	assert.Empty(t, r.ValidationErrors())
	assert.True(t, r.OK())
}

func TestInvalidCatalogDoesNotAbortOthers(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cat/bad.xml",
		[]byte(`<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog"><uri name="x"/></catalog>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cat/good.xml", []byte(mainCatalog), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cat/extra/catalog.xml", []byte(extraCatalog), 0o644))

	r := catalog.New(catalog.WithFs(fs))
	require.NoError(t, r.SetCatalogs([]string{"/cat/bad.xml", "/cat/good.xml"}))

	assert.False(t, r.OK())
	assert.NotEmpty(t, r.ValidationErrors())

	// The good catalog still resolves.
	_, ok := r.ResolveURI("http://release.niem.gov/niem/niem-core/4.0/")
	assert.True(t, ok)
}

func TestUnreadableCatalog(t *testing.T) {
	t.Parallel()

	r := catalog.New(catalog.WithFs(afero.NewMemMapFs()))
	require.NoError(t, r.SetCatalogs([]string{"/missing/catalog.xml"}))

	assert.False(t, r.OK())
	require.Len(t, r.ValidationErrors(), 1)
	assert.Contains(t, r.ValidationErrors()[0], "catalog io")
}

func TestWrongRootElement(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cat/notcatalog.xml",
		[]byte(`<resolver xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog"/>`), 0o644))

	r := catalog.New(catalog.WithFs(fs))
	require.NoError(t, r.SetCatalogs([]string{"/cat/notcatalog.xml"}))

	assert.False(t, r.OK())
	require.NotEmpty(t, r.ValidationErrors())
	assert.Contains(t, r.ValidationErrors()[0], "want {urn:oasis:names:tc:entity:xmlns:xml:catalog}catalog")
}

func TestNonLocalDoctypeFlagged(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<!DOCTYPE catalog SYSTEM "http://www.oasis-open.org/committees/entity/release/1.0/catalog.dtd">
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <uri name="http://example.com/ns" uri="ns.xsd"/>
</catalog>
`

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cat/catalog.xml", []byte(doc), 0o644))

	r := catalog.New(catalog.WithFs(fs))
	require.NoError(t, r.SetCatalogs([]string{"/cat/catalog.xml"}))

	// Flagged but parsing continued.
	assert.True(t, r.OK())
	require.Len(t, r.ValidationErrors(), 1)
	assert.Contains(t, r.ValidationErrors()[0], "using bundled copy")

	_, ok := r.ResolveURI("http://example.com/ns")
	assert.True(t, ok)
}

func TestBundledDTDPresent(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(catalog.DTD), "urn:oasis:names:tc:entity:xmlns:xml:catalog")
}
