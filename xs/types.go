package xs

import "fmt"

// XSDNamespace is the XML Schema namespace.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// QName is a namespace-qualified name.
type QName struct {
	Space string
	Local string
}

// IsZero reports whether q is the zero QName.
func (q QName) IsZero() bool {
	return q.Space == "" && q.Local == ""
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}

	return fmt.Sprintf("{%s}%s", q.Space, q.Local)
}

// PrefixDecl is one xmlns declaration on a <schema> element, with its
// document provenance.
type PrefixDecl struct {
	Prefix string
	URI    string
	File   string
	Line   int
}

// SchemaAttr is one attribute found on a <schema> element.
type SchemaAttr struct {
	Space string
	Local string
	Value string
}

// Namespace is one namespace item of the assembled schema. Its Decls and
// Attrs reproduce what the namespace's schema documents declared; the
// extractor parses them further.
type Namespace struct {
	URI   string
	Files []string
	Decls []PrefixDecl
	Attrs []SchemaAttr
}

// Element is a global element declaration.
type Element struct {
	Name              QName
	Type              QName
	TypeInline        *TypeDef
	SubstitutionGroup QName
	Abstract          bool
	File              string
}

// Attribute is a global attribute declaration.
type Attribute struct {
	Name       QName
	Type       QName
	TypeInline *TypeDef
	File       string
}

// TypeKind classifies a type definition.
type TypeKind int

// Type kinds.
const (
	KindSimpleAtomic TypeKind = iota
	KindSimpleList
	KindSimpleUnion
	KindComplexSimpleContent
	KindComplexElementOnly
)

// TypeDef is a named or anonymous type definition with just enough
// derivation structure to walk to an XML-Schema primitive.
type TypeDef struct {
	Name QName // zero for anonymous types
	Kind TypeKind

	// Base is the restriction/extension base for atomic simple types and
	// simple-content complex types. BaseInline holds an anonymous base.
	Base       QName
	BaseInline *TypeDef

	// Item is the list item type for KindSimpleList.
	Item       QName
	ItemInline *TypeDef

	// Members are the member types of a union; the first member drives
	// token derivation.
	Members []QName

	// Wildcard marks a complex type whose attribute set or content model
	// contains a wildcard term.
	Wildcard bool
}
