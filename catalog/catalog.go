package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.jacobcolvin.com/niemtran/fileuri"
)

// Namespace is the OASIS XML-Catalog namespace.
const Namespace = "urn:oasis:names:tc:entity:xmlns:xml:catalog"

// Sentinel errors returned while loading catalogs.
var (
	// ErrCatalogParse indicates a catalog document is not a valid OASIS
	// XML catalog.
	ErrCatalogParse = errors.New("catalog parse")
	// ErrCatalogIO indicates a catalog file could not be read.
	ErrCatalogIO = errors.New("catalog io")
)

// entryKind identifies one OASIS catalog entry element.
type entryKind string

const (
	kindURI            entryKind = "uri"
	kindSystem         entryKind = "system"
	kindPublic         entryKind = "public"
	kindRewriteURI     entryKind = "rewriteURI"
	kindURISuffix      entryKind = "uriSuffix"
	kindRewriteSystem  entryKind = "rewriteSystem"
	kindSystemSuffix   entryKind = "systemSuffix"
	kindNextCatalog    entryKind = "nextCatalog"
	kindDelegatePublic entryKind = "delegatePublic"
	kindDelegateSystem entryKind = "delegateSystem"
	kindDelegateURI    entryKind = "delegateURI"
)

// entry is one resolved catalog entry. Key is the entry's match string
// (namespace URI, system id, public id, or prefix/suffix); value is the
// target, already resolved against the entry's base URI. preferPublic
// records the prefer context the entry appeared in.
type entry struct {
	kind         entryKind
	key          string
	value        string
	line         int
	preferPublic bool
}

// parseResult is the outcome of loading one catalog file.
type parseResult struct {
	fileURI string
	entries []entry
	next    []string // nextCatalog targets, resolved
	errs    []string
	warns   []string
}

func (r *parseResult) ok() bool {
	return len(r.errs) == 0
}

// requiredAttrs maps each catalog entry element to its required attributes,
// in the order (match attribute, target attribute). nextCatalog has only a
// catalog attribute.
var requiredAttrs = map[entryKind][2]string{
	kindURI:            {"name", "uri"},
	kindSystem:         {"systemId", "uri"},
	kindPublic:         {"publicId", "uri"},
	kindRewriteURI:     {"uriStartString", "rewritePrefix"},
	kindURISuffix:      {"uriSuffix", "uri"},
	kindRewriteSystem:  {"systemIdStartString", "rewritePrefix"},
	kindSystemSuffix:   {"systemIdSuffix", "uri"},
	kindDelegatePublic: {"publicIdStartString", "catalog"},
	kindDelegateSystem: {"systemIdStartString", "catalog"},
	kindDelegateURI:    {"uriStartString", "catalog"},
}

// parseCatalog reads one catalog document and validates its structure
// against the OASIS vocabulary. Errors are collected into the result rather
// than aborting, so one bad entry does not hide the rest.
func parseCatalog(r io.Reader, fileURI string) *parseResult {
	res := &parseResult{fileURI: fileURI}

	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		sawRoot bool
		depth   int
		// base and prefer stacks track xml:base and prefer attributes
		// through nested group elements.
		baseStack   = []string{fileURI}
		preferStack = []bool{true}
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			line, _ := dec.InputPos()
			res.errs = append(res.errs, fmt.Sprintf("%d: %v", line, err))

			return res
		}

		switch t := tok.(type) {
		case xml.Directive:
			if warn := checkDoctype(string(t)); warn != "" {
				res.warns = append(res.warns, warn)
			}

		case xml.StartElement:
			line, _ := dec.InputPos()
			base := baseStack[len(baseStack)-1]
			prefer := preferStack[len(preferStack)-1]

			if b := attrValue(t.Attr, "base"); b != "" {
				base = fileuri.Resolve(base, b)
			}

			if p := attrValue(t.Attr, "prefer"); p != "" {
				switch p {
				case "public":
					prefer = true
				case "system":
					prefer = false
				default:
					res.errs = append(res.errs, fmt.Sprintf("%d: prefer must be public or system, got %q", line, p))
				}
			}

			switch {
			case depth == 0:
				if t.Name.Space != Namespace || t.Name.Local != "catalog" {
					res.errs = append(res.errs, fmt.Sprintf("%d: root element is {%s}%s, want {%s}catalog",
						line, t.Name.Space, t.Name.Local, Namespace))

					return res
				}

				sawRoot = true

			case t.Name.Space != Namespace:
				// Foreign-namespace elements are permitted and ignored.
				if err := dec.Skip(); err != nil {
					res.errs = append(res.errs, fmt.Sprintf("%d: %v", line, err))

					return res
				}

				continue

			case t.Name.Local == "group":
				// Entries below inherit the group's base and prefer.

			case t.Name.Local == "nextCatalog":
				target := attrValue(t.Attr, "catalog")
				if target == "" {
					res.errs = append(res.errs, fmt.Sprintf("%d: nextCatalog missing catalog attribute", line))
				} else {
					res.next = append(res.next, fileuri.Resolve(base, target))
				}

			default:
				res.addEntry(t, line, base, prefer)
			}

			depth++
			baseStack = append(baseStack, base)
			preferStack = append(preferStack, prefer)

		case xml.EndElement:
			depth--
			baseStack = baseStack[:len(baseStack)-1]
			preferStack = preferStack[:len(preferStack)-1]
		}
	}

	if !sawRoot {
		res.errs = append(res.errs, "no catalog root element")
	}

	return res
}

// addEntry validates one catalog entry element and appends it.
func (res *parseResult) addEntry(t xml.StartElement, line int, base string, prefer bool) {
	kind := entryKind(t.Name.Local)

	attrs, known := requiredAttrs[kind]
	if !known {
		res.errs = append(res.errs, fmt.Sprintf("%d: unknown catalog element %q", line, t.Name.Local))

		return
	}

	key := attrValue(t.Attr, attrs[0])
	value := attrValue(t.Attr, attrs[1])

	if key == "" || value == "" {
		res.errs = append(res.errs, fmt.Sprintf("%d: %s requires %s and %s attributes",
			line, kind, attrs[0], attrs[1]))

		return
	}

	switch kind {
	case kindDelegatePublic, kindDelegateSystem, kindDelegateURI:
		res.warns = append(res.warns, fmt.Sprintf("%d: %s entries are not supported; ignored", line, kind))

		return
	case kindRewriteURI, kindRewriteSystem:
		// Rewrite prefixes resolve against the base URI so relative
		// prefixes work the same as uri targets.
		value = fileuri.Resolve(base, value)
	default:
		value = fileuri.Resolve(base, value)
	}

	res.entries = append(res.entries, entry{
		kind:         kind,
		key:          key,
		value:        value,
		line:         line,
		preferPublic: prefer,
	})
}

// checkDoctype inspects a DOCTYPE directive and returns a warning when it
// names a non-local DTD. encoding/xml does not fetch external DTDs, so the
// bundled OASIS catalog DTD ([DTD]) stands in for the remote resource.
func checkDoctype(directive string) string {
	s := strings.TrimSpace(directive)
	if !strings.HasPrefix(s, "DOCTYPE") {
		return ""
	}

	i := strings.Index(s, "SYSTEM")
	if i < 0 {
		return ""
	}

	rest := strings.TrimSpace(s[i+len("SYSTEM"):])
	if len(rest) < 2 {
		return ""
	}

	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}

	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return ""
	}

	sysID := rest[1 : 1+end]
	if fileuri.HasScheme(sysID) && !fileuri.IsFileURI(sysID) {
		return fmt.Sprintf("doctype references non-local DTD %s; using bundled copy", sysID)
	}

	return ""
}

func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}

	return ""
}
