// Package catalog loads OASIS XML-Catalog documents and resolves namespace
// URIs, system identifiers, and public identifiers to absolute file: URIs.
//
// A [Resolver] is configured once with [Resolver.SetCatalogs], which parses
// and validates every catalog file (following nextCatalog directives
// recursively) and records one parse result per file. A parse failure in one
// catalog does not abort the others.
//
// Resolution queries ([Resolver.ResolveURI], [Resolver.ResolveSystem],
// [Resolver.ResolvePublic]) consult exact entries first and then rewrite and
// suffix entries with longest-match semantics. Every query appends one line
// to the resolution trace returned by [Resolver.ResolutionMessages].
//
// Resolutions that point outside the local filesystem are returned to the
// caller unchanged; it is the caller's job to treat a non-file: result as
// non-local.
package catalog
