// Package assemble discovers every schema document a chosen schema depends
// on, breadth-first, resolving import/include/redefine directives through an
// OASIS XML-Catalog resolver.
//
// Assembly is best-effort and informational: ambiguities are recorded as
// warnings on the [LoadRec] that observed them, and the assembler keeps
// going so the schema engine can still attempt construction. Only a total
// absence of readable initial documents stops it.
package assemble

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"go.jacobcolvin.com/niemtran/catalog"
	"go.jacobcolvin.com/niemtran/fileuri"
)

// Sentinel errors for assembler initialization.
var (
	// ErrInit indicates an inconsistency in the initial inputs.
	ErrInit = errors.New("initialization")
	// ErrNoSchemas indicates no readable initial schema document was found.
	ErrNoSchemas = errors.New("no readable schema documents")
)

// Assembler performs one breadth-first schema assembly. Its internal state
// (attempted set, loaded set, namespace map, record list) is single-use;
// create a fresh Assembler per schema build.
type Assembler struct {
	fs       afero.Fs
	resolver *catalog.Resolver
	logger   *slog.Logger

	recs       []*LoadRec
	queue      []*LoadRec
	attempted  []string
	attemptSet map[string]bool
	loaded     []string
	loadedSet  map[string]bool
	nsFile     map[string]string // namespace -> first file it was loaded from

	initMsgs []string
	initErr  bool
	root     string
}

// Option configures an [Assembler].
type Option func(*Assembler)

// WithFs sets the filesystem schema documents are read from.
func WithFs(fs afero.Fs) Option {
	return func(a *Assembler) {
		a.fs = fs
	}
}

// WithLogger sets the logger for assembly events.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// New creates an Assembler that resolves locations through r.
func New(r *catalog.Resolver, opts ...Option) *Assembler {
	a := &Assembler{
		fs:         afero.NewOsFs(),
		resolver:   r,
		logger:     slog.Default(),
		attemptSet: make(map[string]bool),
		loadedSet:  make(map[string]bool),
		nsFile:     make(map[string]string),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assemble runs the initialization checks and the breadth-first assembly.
//
// catalogPaths are OASIS catalog files. Each schema token is either a file
// path / file: URI (an initial schema document) or a URI with any other
// scheme (an initial namespace, resolved through the catalogs). Assemble
// returns an error only when bootstrap is impossible; everything else is
// recorded as warnings.
func (a *Assembler) Assemble(catalogPaths, schemaTokens []string) error {
	a.initialize(catalogPaths, schemaTokens)

	if len(a.queue) == 0 {
		a.initErr = true
		a.initMsgs = append(a.initMsgs, ErrNoSchemas.Error())

		return fmt.Errorf("%w: %w", ErrInit, ErrNoSchemas)
	}

	// Breadth-first: records are processed strictly in enqueue order.
	for len(a.queue) > 0 {
		rec := a.queue[0]
		a.queue = a.queue[1:]

		a.process(rec)
	}

	a.computeRoot()
	a.relativizeMessages()

	return nil
}

// initialize runs the ordered initialization checks: catalog validity,
// initial schema file readability, and initial namespace resolvability.
func (a *Assembler) initialize(catalogPaths, schemaTokens []string) {
	if len(catalogPaths) > 0 {
		if err := a.resolver.SetCatalogs(catalogPaths); err != nil {
			a.initErr = true
			a.initMsgs = append(a.initMsgs, err.Error())
		}

		a.initMsgs = append(a.initMsgs, a.resolver.ValidationResults()...)

		for _, e := range a.resolver.ValidationErrors() {
			a.initErr = true
			a.initMsgs = append(a.initMsgs, e)
		}
	}

	for _, tok := range schemaTokens {
		if fileuri.HasScheme(tok) && !fileuri.IsFileURI(tok) {
			a.initNamespace(tok)

			continue
		}

		a.initFile(tok)
	}
}

// initFile checks an initial schema file token and seeds a load record.
func (a *Assembler) initFile(tok string) {
	uri, err := fileuri.FromPath(tok)
	if err != nil {
		a.initErr = true
		a.initMsgs = append(a.initMsgs, fmt.Sprintf("schema document %s: %v", tok, err))

		return
	}

	ok, err := afero.Exists(a.fs, fileuri.ToPath(uri))
	if err != nil || !ok {
		a.initErr = true
		a.initMsgs = append(a.initMsgs, fmt.Sprintf("schema document %s: not readable", tok))

		return
	}

	a.initMsgs = append(a.initMsgs, fmt.Sprintf("schema document %s: ok", tok))
	a.enqueue(&LoadRec{Kind: KindLoad, DeclSchemaLocation: tok, FileURI: uri})
}

// initNamespace checks an initial namespace token: it must catalog-resolve
// to a local readable file.
func (a *Assembler) initNamespace(ns string) {
	resolved, ok := a.resolver.ResolveURI(ns)
	if !ok {
		a.initErr = true
		a.initMsgs = append(a.initMsgs, fmt.Sprintf("namespace %s: no catalog entry", ns))

		return
	}

	if !fileuri.IsFileURI(resolved) {
		a.initErr = true
		a.initMsgs = append(a.initMsgs, fmt.Sprintf("namespace %s: resolves to non-local %s", ns, resolved))

		return
	}

	exists, err := afero.Exists(a.fs, fileuri.ToPath(resolved))
	if err != nil || !exists {
		a.initErr = true
		a.initMsgs = append(a.initMsgs, fmt.Sprintf("namespace %s: resolved %s not readable", ns, resolved))

		return
	}

	a.initMsgs = append(a.initMsgs, fmt.Sprintf("namespace %s: ok (%s)", ns, resolved))
	a.enqueue(&LoadRec{Kind: KindLoad, DeclNS: ns, ExpectedNS: ns, ResolvedNS: resolved, FileURI: resolved})
}

func (a *Assembler) enqueue(rec *LoadRec) {
	a.recs = append(a.recs, rec)
	a.queue = append(a.queue, rec)
}

// process resolves and loads one record.
func (a *Assembler) process(rec *LoadRec) {
	a.resolveRecord(rec)
	a.chooseFiles(rec)

	if rec.FileURI == "" {
		rec.warn("no schema document could be determined; skipping")

		return
	}

	a.loadFile(rec, rec.FileURI)

	if rec.FileURIAlt != "" {
		a.loadFile(rec, rec.FileURIAlt)
	}
}

// resolveRecord runs the declared namespace and schemaLocation through the
// catalog resolver and emits the resolution warnings.
func (a *Assembler) resolveRecord(rec *LoadRec) {
	if rec.Kind == KindImport && rec.DeclNS == "" {
		rec.warn("import with no namespace attribute")
	}

	if rec.Kind != KindLoad && rec.DeclSchemaLocation == "" {
		// Non-fatal: the catalog may still resolve the namespace.
		rec.log("no schemaLocation attribute")
	}

	if rec.DeclNS != "" && rec.ResolvedNS == "" {
		resolved, ok := a.resolver.ResolveURI(rec.DeclNS)

		switch {
		case ok:
			rec.ResolvedNS = resolved
		case a.resolver.Configured():
			rec.warn("no catalog entry for namespace %s", rec.DeclNS)
		}
	}

	if rec.ResolvedNS != "" && !fileuri.IsFileURI(rec.ResolvedNS) {
		rec.warn("namespace %s resolves to non-local %s", rec.DeclNS, rec.ResolvedNS)
		rec.ResolvedNS = ""
	}

	if rec.Kind != KindLoad && rec.DeclSchemaLocation != "" && rec.ResolvedSLoc == "" {
		if resolved, ok := a.resolver.ResolveURI(rec.DeclSchemaLocation); ok {
			rec.ResolvedSLoc = resolved
		} else if rec.ParentURI != "" {
			rec.ResolvedSLoc = fileuri.Resolve(rec.ParentURI, rec.DeclSchemaLocation)
		}
	}

	if rec.ResolvedSLoc != "" && !fileuri.IsFileURI(rec.ResolvedSLoc) {
		rec.warn("schemaLocation %s resolves to non-local %s", rec.DeclSchemaLocation, rec.ResolvedSLoc)
		rec.ResolvedSLoc = ""
	}

	// An include or redefine inside a namespace that has its own catalog
	// entry cannot be reconciled by the schema engine: the catalog pins
	// the namespace to one document while the directive names another.
	if (rec.Kind == KindInclude || rec.Kind == KindRedefine) && rec.ParentNS != "" {
		if _, ok := a.resolver.ResolveURI(rec.ParentNS); ok {
			rec.warn("%s found in a namespace that has a catalog entry (%s)", rec.Kind, rec.ParentNS)
		}
	}
}

// chooseFiles picks the file (or files) to load from the resolutions.
func (a *Assembler) chooseFiles(rec *LoadRec) {
	if rec.FileURI != "" {
		// Initial records arrive with the file already chosen.
		return
	}

	switch {
	case rec.ResolvedNS != "" && rec.ResolvedSLoc != "" && rec.ResolvedNS != rec.ResolvedSLoc:
		rec.warn("resolved namespace != resolved schemaLocation (%s != %s); loading both",
			rec.ResolvedNS, rec.ResolvedSLoc)

		rec.FileURI = rec.ResolvedNS
		rec.FileURIAlt = rec.ResolvedSLoc

	case rec.ResolvedNS != "":
		rec.FileURI = rec.ResolvedNS

	case rec.ResolvedSLoc != "":
		rec.FileURI = rec.ResolvedSLoc
	}
}

// loadFile parses one chosen file (unless already attempted) and enqueues
// records for the directives found inside it.
func (a *Assembler) loadFile(rec *LoadRec, uri string) {
	if a.attemptSet[uri] {
		return
	}

	a.attemptSet[uri] = true
	a.attempted = append(a.attempted, uri)

	f, err := a.fs.Open(fileuri.ToPath(uri))
	if err != nil {
		rec.warn("cannot read %s: %v", uri, err)

		return
	}
	defer f.Close()

	info, err := scanDoc(f)
	if err != nil {
		rec.warn("cannot parse %s: %v", uri, err)

		return
	}

	a.loadedSet[uri] = true
	a.loaded = append(a.loaded, uri)
	rec.log("loaded %s", uri)
	a.logger.Debug("schema document loaded",
		slog.String("uri", uri),
		slog.String("targetNamespace", info.targetNamespace),
	)

	if rec.ExpectedNS != "" && info.targetNamespace != rec.ExpectedNS {
		rec.warn("target namespace %s differs from expected %s", info.targetNamespace, rec.ExpectedNS)
	}

	if info.targetNamespace != "" {
		if first, ok := a.nsFile[info.targetNamespace]; ok {
			if first != uri {
				rec.warn("namespace %s also loaded from %s (first from %s)", info.targetNamespace, uri, first)
			}
		} else {
			a.nsFile[info.targetNamespace] = uri
		}
	}

	for _, d := range info.directives {
		child := &LoadRec{
			Kind:               d.kind,
			ParentURI:          uri,
			ParentNS:           info.targetNamespace,
			ParentLine:         d.line,
			DeclNS:             d.namespace,
			DeclSchemaLocation: d.schemaLocation,
		}

		switch d.kind {
		case KindImport:
			child.ExpectedNS = d.namespace
		case KindInclude, KindRedefine:
			child.ExpectedNS = info.targetNamespace
		}

		a.enqueue(child)
	}
}

// computeRoot sets the schema root: the longest common file: URI prefix of
// every attempted file plus every catalog file.
func (a *Assembler) computeRoot() {
	uris := make([]string, 0, len(a.attempted))
	uris = append(uris, a.attempted...)
	uris = append(uris, a.resolver.CatalogURIs()...)

	a.root = fileuri.CommonPrefix(uris)
}

// relativizeMessages rewrites absolute file URIs in all messages to be
// relative to the schema root.
func (a *Assembler) relativizeMessages() {
	if a.root == "" {
		return
	}

	for _, rec := range a.recs {
		rec.ParentURI = fileuri.Relative(a.root, rec.ParentURI)
		rec.FileURI = fileuri.Relative(a.root, rec.FileURI)
		rec.FileURIAlt = fileuri.Relative(a.root, rec.FileURIAlt)

		for i, m := range rec.Msgs {
			rec.Msgs[i] = strings.ReplaceAll(m, a.root, "")
		}
	}

	for i, m := range a.initMsgs {
		a.initMsgs[i] = strings.ReplaceAll(m, a.root, "")
	}
}

// Root returns the schema root directory as a file: URI prefix.
func (a *Assembler) Root() string {
	return a.root
}

// AssembledDocuments returns the successfully parsed file URIs, relative to
// the schema root, in load order.
func (a *Assembler) AssembledDocuments() []string {
	docs := make([]string, 0, len(a.loaded))

	for _, uri := range a.loaded {
		docs = append(docs, fileuri.Relative(a.root, uri))
	}

	return docs
}

// AbsoluteDocuments returns the successfully parsed file URIs without root
// rewriting, for handing to the schema engine.
func (a *Assembler) AbsoluteDocuments() []string {
	docs := make([]string, len(a.loaded))
	copy(docs, a.loaded)

	return docs
}

// InitMessages returns the initialization-check messages, in check order.
func (a *Assembler) InitMessages() []string {
	msgs := make([]string, len(a.initMsgs))
	copy(msgs, a.initMsgs)

	return msgs
}

// InitOK reports whether all initialization checks passed.
func (a *Assembler) InitOK() bool {
	return !a.initErr
}

// LogMessages returns every assembly event chronologically, grouped per
// record under its header line.
func (a *Assembler) LogMessages() []string {
	var lines []string

	for _, rec := range a.recs {
		if len(rec.Msgs) == 0 {
			continue
		}

		lines = append(lines, rec.Header())

		for _, m := range rec.Msgs {
			lines = append(lines, "  "+m)
		}
	}

	return lines
}

// WarningMessages returns the log subset for records that raised a warning.
func (a *Assembler) WarningMessages() []string {
	var lines []string

	for _, rec := range a.recs {
		if !rec.Warn {
			continue
		}

		lines = append(lines, rec.Header())

		for _, m := range rec.Msgs {
			lines = append(lines, "  "+m)
		}
	}

	return lines
}

// HasWarnings reports whether any record raised a warning.
func (a *Assembler) HasWarnings() bool {
	for _, rec := range a.recs {
		if rec.Warn {
			return true
		}
	}

	return false
}

// Namespaces returns the namespace -> first-file map keys in sorted order,
// for diagnostics.
func (a *Assembler) Namespaces() []string {
	nss := make([]string, 0, len(a.nsFile))

	for ns := range a.nsFile {
		nss = append(nss, ns)
	}

	sort.Strings(nss)

	return nss
}
