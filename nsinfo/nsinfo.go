// Package nsinfo extracts per-namespace information from an assembled
// schema: the prefix declarations each namespace's schema documents made,
// the NDR conformance-target version, and document provenance.
//
// The extractor also ranks namespaces into three priority bands so that
// downstream prefix selection prefers designer intent over defaults:
// extension namespaces first, then NIEM-release namespaces, then external
// namespaces (those with no conformance assertion).
package nsinfo

import (
	"fmt"
	"sort"
	"strings"

	"go.jacobcolvin.com/niemtran/contextreg"
	"go.jacobcolvin.com/niemtran/model"
	"go.jacobcolvin.com/niemtran/xs"
)

// Binding records one prefix declaration for a URI, with the namespace
// whose schema document declared it.
type Binding struct {
	Prefix      string
	DeclaringNS string
}

// Info is the extracted namespace information.
type Info struct {
	// Decls maps a namespace to the prefix -> URI declarations its own
	// schema documents made, after the skip rule.
	Decls map[string]map[string]string

	// PrefixIndex is the inverse index prefix -> declaring namespace ->
	// URI, used for conflict detection.
	PrefixIndex map[string]map[string]string

	// URIBindings maps a URI to every (prefix, declaring namespace) pair
	// that bound it.
	URIBindings map[string][]Binding

	// NDRVersion maps a namespace to its NDR conformance-target version.
	// The empty string marks the namespace as external.
	NDRVersion map[string]string

	// Files maps a namespace to the schema documents that contributed to
	// it.
	Files map[string][]string

	// GeneralWarnings reports structural ambiguities: one prefix bound to
	// several URIs, or one URI bound under several prefixes.
	GeneralWarnings []string

	// DomainWarnings reports NIEM-specific oddities: a well-known URI
	// bound under a non-canonical prefix, or an external namespace.
	DomainWarnings []string

	ordered []string
}

// skipURI reports whether a declaration's URI is excluded from the prefix
// map: the XML-Schema machinery namespaces and the NIEM annotation
// namespaces never become context bindings.
func skipURI(uri string) bool {
	return uri == model.XSDNamespace ||
		uri == model.XSINamespace ||
		strings.HasPrefix(uri, model.AppinfoFamily) ||
		strings.HasPrefix(uri, model.ConformanceTargetsFamily) ||
		strings.HasPrefix(uri, model.XSDProxyFamily)
}

// Extract walks the schema's namespace items and parses their annotations.
func Extract(s *xs.Schema) *Info {
	info := &Info{
		Decls:       make(map[string]map[string]string),
		PrefixIndex: make(map[string]map[string]string),
		URIBindings: make(map[string][]Binding),
		NDRVersion:  make(map[string]string),
		Files:       make(map[string][]string),
	}

	for _, ns := range s.Namespaces() {
		info.addNamespace(ns)
	}

	info.detectConflicts()
	info.order()

	return info
}

// addNamespace folds one namespace item into the tables.
func (info *Info) addNamespace(ns *xs.Namespace) {
	decls, ok := info.Decls[ns.URI]
	if !ok {
		decls = make(map[string]string)
		info.Decls[ns.URI] = decls
	}

	info.Files[ns.URI] = append(info.Files[ns.URI], ns.Files...)

	for _, d := range ns.Decls {
		if d.Prefix == "" || skipURI(d.URI) {
			continue
		}

		if _, dup := decls[d.Prefix]; !dup {
			decls[d.Prefix] = d.URI
		}

		byNS, ok := info.PrefixIndex[d.Prefix]
		if !ok {
			byNS = make(map[string]string)
			info.PrefixIndex[d.Prefix] = byNS
		}

		byNS[ns.URI] = d.URI

		if !hasBinding(info.URIBindings[d.URI], d.Prefix, ns.URI) {
			info.URIBindings[d.URI] = append(info.URIBindings[d.URI], Binding{
				Prefix:      d.Prefix,
				DeclaringNS: ns.URI,
			})
		}
	}

	version := ndrVersion(ns)
	info.NDRVersion[ns.URI] = version

	if version == "" {
		info.DomainWarnings = append(info.DomainWarnings,
			fmt.Sprintf("namespace %s is external (no conformance assertion)", ns.URI))
	}
}

func hasBinding(bindings []Binding, prefix, declaring string) bool {
	for _, b := range bindings {
		if b.Prefix == prefix && b.DeclaringNS == declaring {
			return true
		}
	}

	return false
}

// ndrVersion extracts the NDR version from a namespace's <schema>
// attributes: find the conformanceTargets attribute in a conformance-target
// namespace, take the first whitespace-separated token under the NDR URI
// prefix, and parse the version from the first path segment after the
// prefix.
func ndrVersion(ns *xs.Namespace) string {
	for _, a := range ns.Attrs {
		if a.Local != model.ConformanceTargetsAttribute {
			continue
		}

		if !strings.HasPrefix(a.Space, model.ConformanceTargetsFamily) {
			continue
		}

		for _, target := range strings.Fields(a.Value) {
			if !strings.HasPrefix(target, model.NDRPrefix) {
				continue
			}

			rest := strings.TrimPrefix(target, model.NDRPrefix)
			if i := strings.IndexAny(rest, "/#"); i >= 0 {
				rest = rest[:i]
			}

			return rest
		}
	}

	return ""
}

// detectConflicts emits the general and domain warnings for ambiguous
// bindings.
func (info *Info) detectConflicts() {
	prefixes := sortedKeys(info.PrefixIndex)

	for _, prefix := range prefixes {
		uris := make(map[string]bool)

		for _, uri := range info.PrefixIndex[prefix] {
			uris[uri] = true
		}

		if len(uris) > 1 {
			info.GeneralWarnings = append(info.GeneralWarnings,
				fmt.Sprintf("prefix %s is bound to %d different URIs", prefix, len(uris)))
		}
	}

	uris := sortedKeys(info.URIBindings)

	for _, uri := range uris {
		bindings := info.URIBindings[uri]

		distinct := make(map[string]bool)
		for _, b := range bindings {
			distinct[b.Prefix] = true
		}

		if len(distinct) > 1 {
			info.GeneralWarnings = append(info.GeneralWarnings,
				fmt.Sprintf("URI %s is bound under %d different prefixes", uri, len(distinct)))
		}

		canonical := contextreg.CanonicalPrefix(uri)
		if canonical == "" {
			continue
		}

		for _, b := range bindings {
			if b.Prefix != canonical {
				info.DomainWarnings = append(info.DomainWarnings,
					fmt.Sprintf("URI %s is bound as %q in %s; the well-known prefix is %q",
						uri, b.Prefix, b.DeclaringNS, canonical))
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// band assigns a namespace to its priority band: 0 for extension
// namespaces, 1 for NIEM-release namespaces, 2 for external namespaces.
func (info *Info) band(ns string) int {
	if info.NDRVersion[ns] == "" {
		return 2
	}

	if strings.HasPrefix(ns, model.ReleasePrefix) {
		return 1
	}

	return 0
}

// order sorts the namespaces into the three bands, alphabetical by URI
// within a band.
func (info *Info) order() {
	nss := sortedKeys(info.NDRVersion)

	sort.SliceStable(nss, func(i, j int) bool {
		bi, bj := info.band(nss[i]), info.band(nss[j])
		if bi != bj {
			return bi < bj
		}

		return nss[i] < nss[j]
	})

	info.ordered = nss
}

// OrderedNamespaces returns the namespaces in priority order: extension
// namespaces, then NIEM-release namespaces, then external namespaces.
func (info *Info) OrderedNamespaces() []string {
	out := make([]string, len(info.ordered))
	copy(out, info.ordered)

	return out
}

// IsExternal reports whether ns carries no conformance assertion.
func (info *Info) IsExternal(ns string) bool {
	return info.NDRVersion[ns] == ""
}
