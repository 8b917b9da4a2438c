package xs

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Raw document structs for encoding/xml. Only the slice of schema features
// the compiler consumes is mapped; everything else (annotations, facets,
// identity constraints) is skipped by the decoder.

type xsdSchema struct {
	XMLName         xml.Name       `xml:"http://www.w3.org/2001/XMLSchema schema"`
	TargetNamespace string         `xml:"targetNamespace,attr"`
	Elements        []xsdElement   `xml:"element"`
	Attributes      []xsdAttribute `xml:"attribute"`
	SimpleTypes     []xsdSimpleType  `xml:"simpleType"`
	ComplexTypes    []xsdComplexType `xml:"complexType"`
}

type xsdElement struct {
	Name              string          `xml:"name,attr"`
	Type              string          `xml:"type,attr"`
	SubstitutionGroup string          `xml:"substitutionGroup,attr"`
	Abstract          bool            `xml:"abstract,attr"`
	SimpleType        *xsdSimpleType  `xml:"simpleType"`
	ComplexType       *xsdComplexType `xml:"complexType"`
}

type xsdAttribute struct {
	Name       string         `xml:"name,attr"`
	Type       string         `xml:"type,attr"`
	SimpleType *xsdSimpleType `xml:"simpleType"`
}

type xsdSimpleType struct {
	Name        string          `xml:"name,attr"`
	Restriction *xsdRestriction `xml:"restriction"`
	List        *xsdList        `xml:"list"`
	Union       *xsdUnion       `xml:"union"`
}

type xsdRestriction struct {
	Base       string         `xml:"base,attr"`
	SimpleType *xsdSimpleType `xml:"simpleType"`
}

type xsdList struct {
	ItemType   string         `xml:"itemType,attr"`
	SimpleType *xsdSimpleType `xml:"simpleType"`
}

type xsdUnion struct {
	MemberTypes string          `xml:"memberTypes,attr"`
	SimpleTypes []xsdSimpleType `xml:"simpleType"`
}

type xsdComplexType struct {
	Name           string             `xml:"name,attr"`
	SimpleContent  *xsdSimpleDerived  `xml:"simpleContent"`
	ComplexContent *xsdComplexDerived `xml:"complexContent"`
	Sequence       *xsdGroup          `xml:"sequence"`
	Choice         *xsdGroup          `xml:"choice"`
	All            *xsdGroup          `xml:"all"`
	AnyAttribute   *xsdAny            `xml:"anyAttribute"`
}

type xsdSimpleDerived struct {
	Extension   *xsdDerivation `xml:"extension"`
	Restriction *xsdDerivation `xml:"restriction"`
}

type xsdComplexDerived struct {
	Extension   *xsdDerivation `xml:"extension"`
	Restriction *xsdDerivation `xml:"restriction"`
}

type xsdDerivation struct {
	Base         string    `xml:"base,attr"`
	Sequence     *xsdGroup `xml:"sequence"`
	Choice       *xsdGroup `xml:"choice"`
	All          *xsdGroup `xml:"all"`
	AnyAttribute *xsdAny   `xml:"anyAttribute"`
}

type xsdGroup struct {
	Elements  []xsdElement `xml:"element"`
	Sequences []xsdGroup   `xml:"sequence"`
	Choices   []xsdGroup   `xml:"choice"`
	Alls      []xsdGroup   `xml:"all"`
	Anys      []xsdAny     `xml:"any"`
}

type xsdAny struct{}

// docParse is the result of parsing one schema document.
type docParse struct {
	fileURI  string
	targetNS string
	prefixes map[string]string // prefix -> URI, from the <schema> element
	decls    []PrefixDecl
	attrs    []SchemaAttr
	raw      *xsdSchema
}

// parseDoc reads one schema document twice over the same bytes: a shallow
// token pass to capture the <schema> element's attributes with line info,
// and a full unmarshal into the raw structs.
func parseDoc(data []byte, fileURI string) (*docParse, error) {
	dp := &docParse{
		fileURI:  fileURI,
		prefixes: make(map[string]string),
	}

	if err := dp.scanRoot(data); err != nil {
		return nil, err
	}

	raw := &xsdSchema{}
	if err := xml.Unmarshal(data, raw); err != nil {
		return nil, err
	}

	dp.targetNS = raw.TargetNamespace
	dp.raw = raw

	return dp, nil
}

// scanRoot captures the root <schema> element's xmlns declarations and
// other attributes, with the line they appear on.
func (dp *docParse) scanRoot(data []byte) error {
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return errors.New("no root element")
		}

		if err != nil {
			return err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Space != XSDNamespace || start.Name.Local != "schema" {
			return errors.New("root element is not an XML Schema document")
		}

		line, _ := dec.InputPos()

		for _, a := range start.Attr {
			switch {
			case a.Name.Space == "xmlns":
				dp.prefixes[a.Name.Local] = a.Value
				dp.decls = append(dp.decls, PrefixDecl{
					Prefix: a.Name.Local,
					URI:    a.Value,
					File:   dp.fileURI,
					Line:   line,
				})

			case a.Name.Space == "" && a.Name.Local == "xmlns":
				dp.prefixes[""] = a.Value
				dp.decls = append(dp.decls, PrefixDecl{
					URI:  a.Value,
					File: dp.fileURI,
					Line: line,
				})

			default:
				dp.attrs = append(dp.attrs, SchemaAttr{
					Space: a.Name.Space,
					Local: a.Name.Local,
					Value: a.Value,
				})
			}
		}

		return nil
	}
}

// qname resolves a prefixed name written in this document to a QName.
// An unprefixed name resolves through the default namespace when one is
// declared, else to the document's target namespace.
func (dp *docParse) qname(ref string) QName {
	if ref == "" {
		return QName{}
	}

	prefix, local, found := strings.Cut(ref, ":")
	if !found {
		if uri, ok := dp.prefixes[""]; ok {
			return QName{Space: uri, Local: ref}
		}

		return QName{Space: dp.targetNS, Local: ref}
	}

	if uri, ok := dp.prefixes[prefix]; ok {
		return QName{Space: uri, Local: local}
	}

	return QName{Space: dp.targetNS, Local: local}
}
