package assemble_test

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/niemtran/assemble"
	"go.jacobcolvin.com/niemtran/catalog"
)

const (
	crashNS = "http://example.com/CrashDriver/1.0/"
	coreNS  = "http://release.niem.gov/niem/niem-core/4.0/"
	jxdmNS  = "http://release.niem.gov/niem/domains/jxdm/6.0/"
	structNS = "http://release.niem.gov/niem/structures/4.0/"
)

func schemaDoc(target string, directives ...string) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0"?>` + "\n")
	sb.WriteString(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"`)
	sb.WriteString(` targetNamespace="` + target + `">` + "\n")

	for _, d := range directives {
		sb.WriteString("  " + d + "\n")
	}

	sb.WriteString(`</xs:schema>` + "\n")

	return sb.String()
}

func testFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/s/catalog.xml": `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <uri name="` + coreNS + `" uri="niem/niem-core.xsd"/>
  <uri name="` + jxdmNS + `" uri="niem/domains/jxdm.xsd"/>
</catalog>
`,
		"/s/ext/crash.xsd": schemaDoc(crashNS,
			`<xs:import namespace="`+coreNS+`" schemaLocation="../niem/niem-core.xsd"/>`,
			`<xs:import namespace="`+jxdmNS+`" schemaLocation="../niem/domains/jxdm.xsd"/>`,
		),
		"/s/niem/niem-core.xsd": schemaDoc(coreNS,
			`<xs:import namespace="`+structNS+`" schemaLocation="utility/structures.xsd"/>`,
		),
		"/s/niem/domains/jxdm.xsd": schemaDoc(jxdmNS,
			`<xs:import namespace="`+structNS+`" schemaLocation="../utility/structures.xsd"/>`,
		),
		"/s/niem/utility/structures.xsd": schemaDoc(structNS),
	}

	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	return fs
}

func newAssembler(t *testing.T, fs afero.Fs) *assemble.Assembler {
	t.Helper()

	r := catalog.New(catalog.WithFs(fs))

	return assemble.New(r, assemble.WithFs(fs))
}

func TestAssembleClean(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	a := newAssembler(t, fs)

	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	assert.True(t, a.InitOK())
	assert.ElementsMatch(t, []string{
		"ext/crash.xsd",
		"niem/niem-core.xsd",
		"niem/domains/jxdm.xsd",
		"niem/utility/structures.xsd",
	}, a.AssembledDocuments())

	assert.Equal(t, "file:///s/", a.Root())
	assert.ElementsMatch(t, []string{crashNS, coreNS, jxdmNS, structNS}, a.Namespaces())
}

func TestAssembleByNamespaceToken(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	a := newAssembler(t, fs)

	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{coreNS}))

	docs := a.AssembledDocuments()
	assert.Contains(t, docs, "niem/niem-core.xsd")
	assert.Contains(t, docs, "niem/utility/structures.xsd")
}

func TestNoReadableSchemas(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	a := newAssembler(t, fs)

	err := a.Assemble(nil, []string{"/missing.xsd"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assemble.ErrInit)
	assert.ErrorIs(t, err, assemble.ErrNoSchemas)
	assert.False(t, a.InitOK())
}

func TestBreadthFirstOrder(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	a := newAssembler(t, fs)

	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	// Both of crash.xsd's imports load before either of their own imports.
	docs := a.AssembledDocuments()
	require.Len(t, docs, 4)
	assert.Equal(t, "ext/crash.xsd", docs[0])
	assert.Equal(t, "niem/niem-core.xsd", docs[1])
	assert.Equal(t, "niem/domains/jxdm.xsd", docs[2])
	assert.Equal(t, "niem/utility/structures.xsd", docs[3])
}

func TestNamespaceAlsoLoadedWarning(t *testing.T) {
	t.Parallel()

	fs := testFs(t)

	// jxdm resolves structures to a second copy of the same namespace.
	require.NoError(t, afero.WriteFile(fs, "/s/niem/domains/jxdm.xsd", []byte(schemaDoc(jxdmNS,
		`<xs:import namespace="`+structNS+`" schemaLocation="structures-copy.xsd"/>`,
	)), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/s/niem/domains/structures-copy.xsd",
		[]byte(schemaDoc(structNS)), 0o644))

	a := newAssembler(t, fs)
	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	assert.True(t, a.HasWarnings())

	warnings := strings.Join(a.WarningMessages(), "\n")
	assert.Contains(t, warnings, "also loaded from")
	assert.Contains(t, warnings, "niem/domains/structures-copy.xsd")
}

func TestIncludeInCatalogedNamespaceWarning(t *testing.T) {
	t.Parallel()

	fs := testFs(t)

	// niem-core has a catalog entry, so an include inside it cannot be
	// reconciled by the schema engine.
	require.NoError(t, afero.WriteFile(fs, "/s/niem/niem-core.xsd", []byte(schemaDoc(coreNS,
		`<xs:include schemaLocation="niem-core-more.xsd"/>`,
	)), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/s/niem/niem-core-more.xsd",
		[]byte(schemaDoc(coreNS)), 0o644))

	a := newAssembler(t, fs)
	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	warnings := strings.Join(a.WarningMessages(), "\n")
	assert.Contains(t, warnings, "include found in a namespace that has a catalog entry")

	// Assembly continued: the included document was still loaded.
	assert.Contains(t, a.AssembledDocuments(), "niem/niem-core-more.xsd")
}

func TestNamespaceVsSchemaLocationDisagreement(t *testing.T) {
	t.Parallel()

	fs := testFs(t)

	// The jxdm import's schemaLocation names a different file than the
	// catalog entry for the jxdm namespace.
	require.NoError(t, afero.WriteFile(fs, "/s/ext/crash.xsd", []byte(schemaDoc(crashNS,
		`<xs:import namespace="`+jxdmNS+`" schemaLocation="jxdm-local.xsd"/>`,
	)), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/s/ext/jxdm-local.xsd",
		[]byte(schemaDoc(jxdmNS)), 0o644))

	a := newAssembler(t, fs)
	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	warnings := strings.Join(a.WarningMessages(), "\n")
	assert.Contains(t, warnings, "resolved namespace != resolved schemaLocation")

	// Both files were loaded.
	docs := a.AssembledDocuments()
	assert.Contains(t, docs, "niem/domains/jxdm.xsd")
	assert.Contains(t, docs, "ext/jxdm-local.xsd")
}

func TestImportWithoutNamespaceWarning(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	require.NoError(t, afero.WriteFile(fs, "/s/ext/crash.xsd", []byte(schemaDoc(crashNS,
		`<xs:import schemaLocation="../niem/utility/structures.xsd"/>`,
	)), 0o644))

	a := newAssembler(t, fs)
	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	warnings := strings.Join(a.WarningMessages(), "\n")
	assert.Contains(t, warnings, "import with no namespace attribute")
}

func TestTargetNamespaceMismatchWarning(t *testing.T) {
	t.Parallel()

	fs := testFs(t)

	// crash.xsd claims its import is niem-core but the resolved document
	// declares the structures namespace.
	require.NoError(t, afero.WriteFile(fs, "/s/ext/crash.xsd", []byte(schemaDoc(crashNS,
		`<xs:import namespace="`+structNS+`" schemaLocation="../niem/niem-core.xsd"/>`,
	)), 0o644))

	a := newAssembler(t, fs)
	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	warnings := strings.Join(a.WarningMessages(), "\n")
	assert.Contains(t, warnings, "differs from expected")
}

func TestNoCatalogEntryWarning(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	a := newAssembler(t, fs)

	// structures has no catalog entry; with catalogs configured this is
	// worth a warning even though the schemaLocation still resolves.
	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	warnings := strings.Join(a.WarningMessages(), "\n")
	assert.Contains(t, warnings, "no catalog entry for namespace "+structNS)
}

func TestLogMessagesGrouped(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	a := newAssembler(t, fs)

	require.NoError(t, a.Assemble([]string{"/s/catalog.xml"}, []string{"/s/ext/crash.xsd"}))

	log := a.LogMessages()
	require.NotEmpty(t, log)

	// Headers are unindented; detail lines are indented beneath them.
	assert.False(t, strings.HasPrefix(log[0], " "))
	assert.Contains(t, strings.Join(log, "\n"), "ext/crash.xsd:")
}
