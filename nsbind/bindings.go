// Package nsbind maintains a bidirectional mapping between namespace
// prefixes and namespace URIs.
//
// A [Bindings] value is a finite bijection: each prefix maps to exactly one
// URI and each URI to exactly one prefix. [Bindings.Assign] is the only
// mutator. When a requested prefix is already bound to a different URI, a
// fresh prefix is synthesized by appending _1, _2, ... until unique. When the
// URI is already bound, the call is a no-op and the existing prefix is
// returned (first binding wins).
//
// The schema compiler uses a Bindings to construct the final context map, and
// the translator extends a per-document [Bindings.Snapshot] with declarations
// observed in the input document.
package nsbind

import (
	"fmt"
	"strconv"
)

// Bindings is a bijective prefix <-> namespace URI map.
//
// The zero value is not usable; create instances with [New]. A Bindings is
// not safe for concurrent mutation; take a [Bindings.Snapshot] per goroutine
// instead.
type Bindings struct {
	byPrefix map[string]string
	byURI    map[string]string
	order    []string // URIs in first-assignment order
}

// New creates an empty Bindings.
func New() *Bindings {
	return &Bindings{
		byPrefix: make(map[string]string),
		byURI:    make(map[string]string),
	}
}

// Assign binds uri to prefix and returns the prefix actually bound.
//
// If uri is already bound, Assign returns its existing prefix without
// mutating the map. If prefix is already bound to a different URI, Assign
// synthesizes prefix_1, prefix_2, ... until an unbound prefix is found.
// Assign is idempotent for a pair that is already in the map.
func (b *Bindings) Assign(uri, prefix string) string {
	if p, ok := b.byURI[uri]; ok {
		return p
	}

	p := prefix

	for n := 1; ; n++ {
		if _, taken := b.byPrefix[p]; !taken {
			break
		}

		p = prefix + "_" + strconv.Itoa(n)
	}

	b.byPrefix[p] = uri
	b.byURI[uri] = p
	b.order = append(b.order, uri)

	return p
}

// PrefixOf returns the prefix bound to uri.
func (b *Bindings) PrefixOf(uri string) (string, bool) {
	p, ok := b.byURI[uri]

	return p, ok
}

// URIOf returns the URI bound to prefix.
func (b *Bindings) URIOf(prefix string) (string, bool) {
	u, ok := b.byPrefix[prefix]

	return u, ok
}

// Has reports whether uri is bound.
func (b *Bindings) Has(uri string) bool {
	_, ok := b.byURI[uri]

	return ok
}

// Len returns the number of bindings.
func (b *Bindings) Len() int {
	return len(b.order)
}

// Snapshot returns an owned copy of b. Mutations of the copy do not affect
// the original, and vice versa.
func (b *Bindings) Snapshot() *Bindings {
	c := &Bindings{
		byPrefix: make(map[string]string, len(b.byPrefix)),
		byURI:    make(map[string]string, len(b.byURI)),
		order:    make([]string, len(b.order)),
	}

	for k, v := range b.byPrefix {
		c.byPrefix[k] = v
	}

	for k, v := range b.byURI {
		c.byURI[k] = v
	}

	copy(c.order, b.order)

	return c
}

// Pairs returns the (prefix, uri) pairs in first-assignment order.
func (b *Bindings) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(b.order))

	for _, uri := range b.order {
		pairs = append(pairs, [2]string{b.byURI[uri], uri})
	}

	return pairs
}

// String returns a debug rendering of the bindings in assignment order.
func (b *Bindings) String() string {
	s := ""

	for _, pair := range b.Pairs() {
		s += fmt.Sprintf("%s=%s\n", pair[0], pair[1])
	}

	return s
}
