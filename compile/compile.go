// Package compile distills an assembled schema and its extracted namespace
// information into a translation model.
//
// Prefix selection works by ordered assignment into a [nsbind.Bindings]:
// the rdf prefix is seeded first, then every prefix declaration is assigned
// following the extractor's namespace priority bands. First binding wins,
// so earlier bands pin their prefixes and later collisions synthesize _N
// suffixes.
package compile

import (
	"sort"
	"strings"

	"go.jacobcolvin.com/niemtran/contextreg"
	"go.jacobcolvin.com/niemtran/model"
	"go.jacobcolvin.com/niemtran/nsbind"
	"go.jacobcolvin.com/niemtran/nsinfo"
	"go.jacobcolvin.com/niemtran/xs"
)

// Compile builds the translation model from the schema component set and
// the extracted namespace information.
func Compile(s *xs.Schema, info *nsinfo.Info) *model.Model {
	b := nsbind.New()
	b.Assign(model.RDFNamespace, "rdf")

	for _, ns := range info.OrderedNamespaces() {
		assignDecls(b, info.Decls[ns])
	}

	m := &model.Model{
		Attributes:     make(map[string]string),
		SimpleElements: make(map[string]string),
		HasWildcard:    s.HasWildcard(),
	}

	for _, e := range s.Elements() {
		if token, ok := s.ElementToken(e); ok {
			m.SimpleElements[model.ComponentIRI(e.Name.Space, e.Name.Local)] = token
		}
	}

	for _, a := range s.Attributes() {
		if token, ok := s.AttributeToken(a); ok {
			m.Attributes[model.ComponentIRI(a.Name.Space, a.Name.Local)] = token
		}
	}

	for _, ns := range info.OrderedNamespaces() {
		if info.IsExternal(ns) {
			m.ExternalNamespaces = append(m.ExternalNamespaces, ns)
		}
	}

	sort.Strings(m.ExternalNamespaces)

	for _, pair := range b.Pairs() {
		uri := pair[1]
		if !strings.HasSuffix(uri, "#") {
			uri += "#"
		}

		m.ContextBindings = append(m.ContextBindings, [2]string{pair[0], uri})
	}

	return m
}

// assignDecls assigns one namespace's declarations. Declarations whose
// prefix matches the context registry's canonical prefix go first, so
// well-known prefixes win residual collisions; the rest follow in URI
// order.
func assignDecls(b *nsbind.Bindings, decls map[string]string) {
	type decl struct {
		prefix string
		uri    string
	}

	ordered := make([]decl, 0, len(decls))

	for prefix, uri := range decls {
		ordered = append(ordered, decl{prefix: prefix, uri: uri})
	}

	sort.Slice(ordered, func(i, j int) bool {
		ci := ordered[i].prefix == contextreg.CanonicalPrefix(ordered[i].uri)
		cj := ordered[j].prefix == contextreg.CanonicalPrefix(ordered[j].uri)

		if ci != cj {
			return ci
		}

		if ordered[i].uri != ordered[j].uri {
			return ordered[i].uri < ordered[j].uri
		}

		return ordered[i].prefix < ordered[j].prefix
	})

	for _, d := range ordered {
		b.Assign(d.uri, d.prefix)
	}
}
