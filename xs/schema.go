package xs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"go.jacobcolvin.com/niemtran/fileuri"
)

// ErrSchemaConstruction indicates the schema component set could not be
// built from the assembled documents.
var ErrSchemaConstruction = errors.New("schema construction")

// Schema is the assembled post-validation component set.
type Schema struct {
	namespaces map[string]*Namespace
	nsOrder    []string
	elements   map[QName]*Element
	elemOrder  []QName
	attributes map[QName]*Attribute
	attrOrder  []QName
	types      map[QName]*TypeDef
	wildcard   bool
}

// Build parses every assembled schema document and links the component set.
// docURIs are absolute file: URIs in assembly order.
func Build(fs afero.Fs, docURIs []string) (*Schema, error) {
	if len(docURIs) == 0 {
		return nil, fmt.Errorf("%w: no schema documents", ErrSchemaConstruction)
	}

	s := &Schema{
		namespaces: make(map[string]*Namespace),
		elements:   make(map[QName]*Element),
		attributes: make(map[QName]*Attribute),
		types:      make(map[QName]*TypeDef),
	}

	for _, uri := range docURIs {
		data, err := afero.ReadFile(fs, fileuri.ToPath(uri))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaConstruction, uri, err)
		}

		dp, err := parseDoc(data, uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaConstruction, uri, err)
		}

		s.addDoc(dp)
	}

	return s, nil
}

// addDoc folds one parsed document into the component set. First
// declaration wins for duplicate global components, matching how the
// assembler treats the first file bound to a namespace as canonical.
func (s *Schema) addDoc(dp *docParse) {
	ns, ok := s.namespaces[dp.targetNS]
	if !ok {
		ns = &Namespace{URI: dp.targetNS}
		s.namespaces[dp.targetNS] = ns
		s.nsOrder = append(s.nsOrder, dp.targetNS)
	}

	ns.Files = append(ns.Files, dp.fileURI)
	ns.Decls = append(ns.Decls, dp.decls...)
	ns.Attrs = append(ns.Attrs, dp.attrs...)

	for i := range dp.raw.Elements {
		e := &dp.raw.Elements[i]
		if e.Name == "" {
			continue
		}

		name := QName{Space: dp.targetNS, Local: e.Name}
		if _, exists := s.elements[name]; exists {
			continue
		}

		s.elements[name] = &Element{
			Name:              name,
			Type:              dp.qname(e.Type),
			TypeInline:        s.inlineType(dp, e.SimpleType, e.ComplexType),
			SubstitutionGroup: dp.qname(e.SubstitutionGroup),
			Abstract:          e.Abstract,
			File:              dp.fileURI,
		}
		s.elemOrder = append(s.elemOrder, name)
	}

	for i := range dp.raw.Attributes {
		a := &dp.raw.Attributes[i]
		if a.Name == "" {
			continue
		}

		name := QName{Space: dp.targetNS, Local: a.Name}
		if _, exists := s.attributes[name]; exists {
			continue
		}

		s.attributes[name] = &Attribute{
			Name:       name,
			Type:       dp.qname(a.Type),
			TypeInline: s.simpleTypeDef(dp, a.SimpleType),
			File:       dp.fileURI,
		}
		s.attrOrder = append(s.attrOrder, name)
	}

	for i := range dp.raw.SimpleTypes {
		st := &dp.raw.SimpleTypes[i]
		if st.Name == "" {
			continue
		}

		name := QName{Space: dp.targetNS, Local: st.Name}
		if _, exists := s.types[name]; exists {
			continue
		}

		td := s.simpleTypeDef(dp, st)
		td.Name = name
		s.types[name] = td
	}

	for i := range dp.raw.ComplexTypes {
		ct := &dp.raw.ComplexTypes[i]
		if ct.Name == "" {
			continue
		}

		name := QName{Space: dp.targetNS, Local: ct.Name}
		if _, exists := s.types[name]; exists {
			continue
		}

		td := s.complexTypeDef(dp, ct)
		td.Name = name
		s.types[name] = td

		if td.Wildcard {
			s.wildcard = true
		}
	}
}

// inlineType converts an element's anonymous type, simple or complex, into
// a TypeDef.
func (s *Schema) inlineType(dp *docParse, st *xsdSimpleType, ct *xsdComplexType) *TypeDef {
	if st != nil {
		return s.simpleTypeDef(dp, st)
	}

	if ct != nil {
		td := s.complexTypeDef(dp, ct)
		if td.Wildcard {
			s.wildcard = true
		}

		return td
	}

	return nil
}

// simpleTypeDef converts a raw simpleType into a TypeDef.
func (s *Schema) simpleTypeDef(dp *docParse, st *xsdSimpleType) *TypeDef {
	if st == nil {
		return nil
	}

	switch {
	case st.List != nil:
		td := &TypeDef{Kind: KindSimpleList}

		if st.List.ItemType != "" {
			td.Item = dp.qname(st.List.ItemType)
		} else {
			td.ItemInline = s.simpleTypeDef(dp, st.List.SimpleType)
		}

		return td

	case st.Union != nil:
		td := &TypeDef{Kind: KindSimpleUnion}

		for _, m := range strings.Fields(st.Union.MemberTypes) {
			td.Members = append(td.Members, dp.qname(m))
		}

		return td

	case st.Restriction != nil:
		td := &TypeDef{Kind: KindSimpleAtomic}

		if st.Restriction.Base != "" {
			td.Base = dp.qname(st.Restriction.Base)
		} else {
			td.BaseInline = s.simpleTypeDef(dp, st.Restriction.SimpleType)
		}

		return td
	}

	return &TypeDef{Kind: KindSimpleAtomic}
}

// complexTypeDef converts a raw complexType into a TypeDef, detecting
// simple content and wildcard terms.
func (s *Schema) complexTypeDef(dp *docParse, ct *xsdComplexType) *TypeDef {
	td := &TypeDef{Kind: KindComplexElementOnly}

	if ct.AnyAttribute != nil {
		td.Wildcard = true
	}

	if sc := ct.SimpleContent; sc != nil {
		td.Kind = KindComplexSimpleContent

		der := sc.Extension
		if der == nil {
			der = sc.Restriction
		}

		if der != nil {
			td.Base = dp.qname(der.Base)

			if der.AnyAttribute != nil {
				td.Wildcard = true
			}
		}

		return td
	}

	groups := []*xsdGroup{ct.Sequence, ct.Choice, ct.All}

	if cc := ct.ComplexContent; cc != nil {
		der := cc.Extension
		if der == nil {
			der = cc.Restriction
		}

		if der != nil {
			td.Base = dp.qname(der.Base)
			groups = append(groups, der.Sequence, der.Choice, der.All)

			if der.AnyAttribute != nil {
				td.Wildcard = true
			}
		}
	}

	for _, g := range groups {
		if groupHasWildcard(g) {
			td.Wildcard = true
		}
	}

	return td
}

// groupHasWildcard recurses through nested model groups looking for an
// element wildcard term.
func groupHasWildcard(g *xsdGroup) bool {
	if g == nil {
		return false
	}

	if len(g.Anys) > 0 {
		return true
	}

	nested := make([]xsdGroup, 0, len(g.Sequences)+len(g.Choices)+len(g.Alls))
	nested = append(nested, g.Sequences...)
	nested = append(nested, g.Choices...)
	nested = append(nested, g.Alls...)

	for i := range nested {
		if groupHasWildcard(&nested[i]) {
			return true
		}
	}

	return false
}

// Namespaces returns the namespace items in first-seen document order.
func (s *Schema) Namespaces() []*Namespace {
	out := make([]*Namespace, 0, len(s.nsOrder))

	for _, uri := range s.nsOrder {
		out = append(out, s.namespaces[uri])
	}

	return out
}

// Elements returns the global element declarations in declaration order.
func (s *Schema) Elements() []*Element {
	out := make([]*Element, 0, len(s.elemOrder))

	for _, q := range s.elemOrder {
		out = append(out, s.elements[q])
	}

	return out
}

// Attributes returns the global attribute declarations in declaration
// order.
func (s *Schema) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(s.attrOrder))

	for _, q := range s.attrOrder {
		out = append(out, s.attributes[q])
	}

	return out
}

// HasWildcard reports whether any complex type in the schema contains a
// wildcard (element or attribute) term.
func (s *Schema) HasWildcard() bool {
	return s.wildcard
}

// ElementToken returns the base-type token for a global element whose type
// has a simple base (directly simple, or complex with simple content). The
// second result is false for element-only complex types.
func (s *Schema) ElementToken(e *Element) (string, bool) {
	if e.TypeInline != nil {
		return s.tokenOfDef(e.TypeInline, nil)
	}

	return s.tokenOf(e.Type, nil)
}

// AttributeToken returns the base-type token for a global attribute.
func (s *Schema) AttributeToken(a *Attribute) (string, bool) {
	if a.TypeInline != nil {
		return s.tokenOfDef(a.TypeInline, nil)
	}

	return s.tokenOf(a.Type, nil)
}

// tokenOf walks the derivation chain of a named type until the XML-Schema
// namespace is reached. The first XSD-namespace name on the chain is the
// token; list types produce "list/" + the item's token.
func (s *Schema) tokenOf(q QName, seen map[QName]bool) (string, bool) {
	if q.IsZero() {
		return "", false
	}

	if q.Space == XSDNamespace {
		if q.Local == "anyType" || q.Local == "anySimpleType" {
			return "", false
		}

		return q.Local, true
	}

	if seen[q] {
		return "", false
	}

	if seen == nil {
		seen = make(map[QName]bool)
	}

	seen[q] = true

	td, ok := s.types[q]
	if !ok {
		return "", false
	}

	return s.tokenOfDef(td, seen)
}

// tokenOfDef walks a type definition.
func (s *Schema) tokenOfDef(td *TypeDef, seen map[QName]bool) (string, bool) {
	switch td.Kind {
	case KindSimpleList:
		var (
			item string
			ok   bool
		)

		if td.ItemInline != nil {
			item, ok = s.tokenOfDef(td.ItemInline, seen)
		} else {
			item, ok = s.tokenOf(td.Item, seen)
		}

		if !ok {
			return "", false
		}

		return "list/" + item, true

	case KindSimpleUnion:
		if len(td.Members) == 0 {
			return "", false
		}

		return s.tokenOf(td.Members[0], seen)

	case KindComplexElementOnly:
		return "", false

	default:
		if td.BaseInline != nil {
			return s.tokenOfDef(td.BaseInline, seen)
		}

		return s.tokenOf(td.Base, seen)
	}
}

// TypeToken exposes the token walk for a named type.
func (s *Schema) TypeToken(q QName) (string, bool) {
	return s.tokenOf(q, nil)
}
