package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"go.jacobcolvin.com/niemtran/fileuri"
)

// Resolver answers URI, system-id, and public-id resolution queries from a
// set of OASIS XML-Catalog files.
//
// Create instances with [New], then call [Resolver.SetCatalogs]. Every query
// appends to the resolution trace without locking, so a Resolver is not safe
// for concurrent use.
type Resolver struct {
	fs     afero.Fs
	logger *slog.Logger

	// files lists every catalog file URI attempted, in load order.
	files   []string
	results map[string]*parseResult

	uriExact    map[string]entry
	systemExact map[string]entry
	publicExact map[string]entry

	uriRewrites    []entry
	uriSuffixes    []entry
	systemRewrites []entry
	systemSuffixes []entry

	resolutions []string
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithFs sets the filesystem catalogs are read from. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) {
		r.fs = fs
	}
}

// WithLogger sets the logger used for resolution tracing. Defaults to
// [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates an empty Resolver with the given options. Until
// [Resolver.SetCatalogs] is called every resolution is a miss.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		fs:          afero.NewOsFs(),
		logger:      slog.Default(),
		results:     make(map[string]*parseResult),
		uriExact:    make(map[string]entry),
		systemExact: make(map[string]entry),
		publicExact: make(map[string]entry),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SetCatalogs canonicalizes each path to an absolute file: URI, parses each
// catalog following nextCatalog directives recursively, and builds the
// lookup index. A parse failure on one catalog is recorded in its result and
// does not abort the others. SetCatalogs returns an error only when a path
// cannot be canonicalized at all.
func (r *Resolver) SetCatalogs(paths []string) error {
	queue := make([]string, 0, len(paths))

	for _, p := range paths {
		uri, err := fileuri.FromPath(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCatalogIO, p, err)
		}

		queue = append(queue, uri)
	}

	for len(queue) > 0 {
		uri := queue[0]
		queue = queue[1:]

		if _, seen := r.results[uri]; seen {
			continue
		}

		res := r.loadOne(uri)
		r.files = append(r.files, uri)
		r.results[uri] = res

		if res.ok() {
			r.index(res)
			queue = append(queue, res.next...)
		}
	}

	return nil
}

// loadOne reads and parses a single catalog file.
func (r *Resolver) loadOne(uri string) *parseResult {
	f, err := r.fs.Open(fileuri.ToPath(uri))
	if err != nil {
		return &parseResult{
			fileURI: uri,
			errs:    []string{fmt.Sprintf("%v: %v", ErrCatalogIO, err)},
		}
	}
	defer f.Close()

	return parseCatalog(f, uri)
}

// index folds one catalog's entries into the lookup tables. For exact
// entries the first binding wins across all catalogs; rewrite and suffix
// entries accumulate and are matched longest-first.
func (r *Resolver) index(res *parseResult) {
	for _, e := range res.entries {
		switch e.kind {
		case kindURI:
			putFirst(r.uriExact, e)
		case kindSystem:
			putFirst(r.systemExact, e)
		case kindPublic:
			// Public entries are only usable from a prefer=public
			// context.
			if e.preferPublic {
				putFirst(r.publicExact, e)
			}
		case kindRewriteURI:
			r.uriRewrites = append(r.uriRewrites, e)
		case kindURISuffix:
			r.uriSuffixes = append(r.uriSuffixes, e)
		case kindRewriteSystem:
			r.systemRewrites = append(r.systemRewrites, e)
		case kindSystemSuffix:
			r.systemSuffixes = append(r.systemSuffixes, e)
		}
	}

	byKeyLen := func(entries []entry) {
		sort.SliceStable(entries, func(i, j int) bool {
			return len(entries[i].key) > len(entries[j].key)
		})
	}

	byKeyLen(r.uriRewrites)
	byKeyLen(r.uriSuffixes)
	byKeyLen(r.systemRewrites)
	byKeyLen(r.systemSuffixes)
}

func putFirst(m map[string]entry, e entry) {
	if _, ok := m[e.key]; !ok {
		m[e.key] = e
	}
}

// ResolveURI resolves a namespace or generic URI. The returned URI is
// whatever the catalog maps to, which may be non-local; callers decide how
// to treat non-file: results.
func (r *Resolver) ResolveURI(uri string) (string, bool) {
	return r.resolve("uri", uri, r.uriExact, r.uriRewrites, r.uriSuffixes)
}

// ResolveSystem resolves a system identifier.
func (r *Resolver) ResolveSystem(systemID string) (string, bool) {
	return r.resolve("system", systemID, r.systemExact, r.systemRewrites, r.systemSuffixes)
}

// ResolvePublic resolves a public identifier. Only public entries that
// appeared in a prefer=public context participate.
func (r *Resolver) ResolvePublic(publicID string) (string, bool) {
	return r.resolve("public", publicID, r.publicExact, nil, nil)
}

func (r *Resolver) resolve(kind, key string, exact map[string]entry, rewrites, suffixes []entry) (string, bool) {
	if e, ok := exact[key]; ok {
		r.trace(kind, key, e.value)

		return e.value, true
	}

	for _, e := range rewrites {
		if strings.HasPrefix(key, e.key) {
			v := e.value + strings.TrimPrefix(key, e.key)
			r.trace(kind, key, v)

			return v, true
		}
	}

	for _, e := range suffixes {
		if strings.HasSuffix(key, e.key) {
			r.trace(kind, key, e.value)

			return e.value, true
		}
	}

	r.trace(kind, key, "")

	return "", false
}

// trace records one resolution in the message log. A miss is traced with an
// empty result; misses are warnings for the caller, never errors.
func (r *Resolver) trace(kind, key, result string) {
	var msg string

	if result == "" {
		msg = fmt.Sprintf("resolve %s %s: no match", kind, key)
	} else {
		msg = fmt.Sprintf("resolve %s %s -> %s", kind, key, result)
	}

	r.resolutions = append(r.resolutions, msg)
	r.logger.Debug("catalog resolution",
		slog.String("kind", kind),
		slog.String("key", key),
		slog.String("result", result),
	)
}

// ValidationResults returns one line per attempted catalog file, in load
// order, reporting ok or the number of errors.
func (r *Resolver) ValidationResults() []string {
	lines := make([]string, 0, len(r.files))

	for _, uri := range r.files {
		res := r.results[uri]

		switch {
		case res.ok() && len(res.warns) == 0:
			lines = append(lines, fmt.Sprintf("%s: ok", uri))
		case res.ok():
			lines = append(lines, fmt.Sprintf("%s: ok (%d warnings)", uri, len(res.warns)))
		default:
			lines = append(lines, fmt.Sprintf("%s: %d errors", uri, len(res.errs)))
		}
	}

	return lines
}

// ValidationErrors returns every error and every warning (such as a
// non-local DTD flag) of the attempted catalogs, one line each, prefixed
// with the catalog file URI.
func (r *Resolver) ValidationErrors() []string {
	var lines []string

	for _, uri := range r.files {
		res := r.results[uri]

		for _, e := range res.errs {
			lines = append(lines, fmt.Sprintf("%s: %s", uri, e))
		}

		for _, w := range res.warns {
			lines = append(lines, fmt.Sprintf("%s: %s", uri, w))
		}
	}

	return lines
}

// OK reports whether every attempted catalog file parsed cleanly.
func (r *Resolver) OK() bool {
	for _, res := range r.results {
		if !res.ok() {
			return false
		}
	}

	return true
}

// CatalogURIs returns the file URIs of every attempted catalog, in load
// order, including subordinate catalogs reached through nextCatalog.
func (r *Resolver) CatalogURIs() []string {
	uris := make([]string, len(r.files))
	copy(uris, r.files)

	return uris
}

// Configured reports whether any catalog has been loaded.
func (r *Resolver) Configured() bool {
	return len(r.files) > 0
}

// ResolutionMessages returns a trace of every resolve call since the last
// [Resolver.ResetResolutions].
func (r *Resolver) ResolutionMessages() []string {
	msgs := make([]string, len(r.resolutions))
	copy(msgs, r.resolutions)

	return msgs
}

// ResetResolutions clears the resolution trace.
func (r *Resolver) ResetResolutions() {
	r.resolutions = nil
}
