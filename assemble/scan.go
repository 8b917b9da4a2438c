package assemble

import (
	"encoding/xml"
	"errors"
	"io"
)

// XSDNamespace is the XML Schema namespace.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// directive is one import, include, or redefine element found in a schema
// document, with the line it appeared on.
type directive struct {
	kind           Kind
	namespace      string
	schemaLocation string
	line           int
}

// docInfo is what a plain, schema-unaware scan of a schema document yields:
// the target namespace and the composition directives to follow.
type docInfo struct {
	targetNamespace string
	directives      []directive
}

// scanDoc reads a schema document with a plain XML event parser and collects
// its target namespace and every {import, include, redefine} element in the
// XML-Schema namespace. No schema validation happens here; the document only
// needs to be well-formed.
func scanDoc(r io.Reader) (*docInfo, error) {
	info := &docInfo{}
	dec := xml.NewDecoder(r)

	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			sawRoot = true

			for _, a := range start.Attr {
				if a.Name.Local == "targetNamespace" && a.Name.Space == "" {
					info.targetNamespace = a.Value
				}
			}

			continue
		}

		if start.Name.Space != XSDNamespace {
			continue
		}

		var kind Kind

		switch start.Name.Local {
		case "import":
			kind = KindImport
		case "include":
			kind = KindInclude
		case "redefine":
			kind = KindRedefine
		default:
			continue
		}

		line, _ := dec.InputPos()
		d := directive{kind: kind, line: line}

		for _, a := range start.Attr {
			if a.Name.Space != "" {
				continue
			}

			switch a.Name.Local {
			case "namespace":
				d.namespace = a.Value
			case "schemaLocation":
				d.schemaLocation = a.Value
			}
		}

		info.directives = append(info.directives, d)
	}

	if !sawRoot {
		return nil, errors.New("empty document")
	}

	return info, nil
}
