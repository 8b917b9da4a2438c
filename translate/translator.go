// Package translate converts XML instance documents into their linked-data
// JSON serialization, driven by a compiled translation model.
//
// A [Translator] holds only a reference to an immutable [model.Model]; all
// per-document state is allocated fresh in [Translator.Translate], so one
// Translator may process many documents sequentially and many Translators
// may share a model in parallel.
package translate

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.jacobcolvin.com/niemtran/model"
	"go.jacobcolvin.com/niemtran/nsbind"
)

// Flags reports non-fatal oddities observed during one translation.
type Flags uint

// FlagExtended is set when the input document used a namespace that is not
// part of the model's context, so the context extension is non-empty.
const FlagExtended Flags = 1 << iota

// ErrTranslate wraps malformed-input failures.
var ErrTranslate = errors.New("translate")

// Result is the outcome of translating one instance document.
type Result struct {
	// Data is the translated message body.
	Data *Object

	// ContextExtension holds the prefix -> URI pairs observed in the
	// input but absent from the model's context.
	ContextExtension *Object

	// Context is the complete context map: the model's bindings followed
	// by the extension. URI values always carry a trailing '#'.
	Context *Object

	// MessageFormatID is the component IRI of the document element.
	MessageFormatID string

	Flags Flags
}

// Extended reports whether the translation extended the model's context.
func (r *Result) Extended() bool {
	return r.Flags&FlagExtended != 0
}

// Document assembles the full output document: the context under "@context"
// followed by the message body.
func (r *Result) Document() *Object {
	doc := NewObject()
	doc.Set("@context", r.Context)

	for _, k := range r.Data.Keys() {
		v, _ := r.Data.Get(k)
		doc.Set(k, v)
	}

	return doc
}

// Translator converts XML instance documents using one translation model.
type Translator struct {
	model *model.Model
}

// New creates a Translator over m. The model is never mutated.
func New(m *model.Model) *Translator {
	return &Translator{model: m}
}

// frame is the per-open-element state.
type frame struct {
	iri            string
	key            string
	local          string
	obj            *Object
	simpleType     string
	isSimple       bool
	attrKeys       int // leading obj keys that came from the element's attributes
	text           strings.Builder
	metadataTokens []string
}

// await pairs an object carrying a metadata placeholder with its tokens.
type await struct {
	obj    *Object
	tokens []string
}

// docState is the per-document translation state.
type docState struct {
	m        *model.Model
	bindings *nsbind.Bindings
	stack    []*frame

	usedOrder []string
	usedSet   map[string]bool

	metadataIDs map[string]string
	awaiting    []await

	data    *Object
	rootIRI string
	flags   Flags
}

// Translate reads one XML instance document and produces its JSON
// translation. Malformed input surfaces unchanged, wrapped in
// [ErrTranslate].
func (t *Translator) Translate(r io.Reader) (*Result, error) {
	st := &docState{
		m:           t.model,
		bindings:    t.contextBindings(),
		usedSet:     make(map[string]bool),
		metadataIDs: make(map[string]string),
	}

	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTranslate, err)
		}

		switch e := tok.(type) {
		case xml.StartElement:
			st.startElement(e)
		case xml.CharData:
			st.characters(e)
		case xml.EndElement:
			st.endElement(e)
		}
	}

	if st.data == nil {
		return nil, fmt.Errorf("%w: no document element", ErrTranslate)
	}

	st.resolveMetadata()

	return st.finish(), nil
}

// contextBindings snapshots the model's context into a working bindings
// map, with the trailing '#' stripped so lookups by raw namespace URI hit.
func (t *Translator) contextBindings() *nsbind.Bindings {
	b := nsbind.New()

	for _, pair := range t.model.ContextBindings {
		b.Assign(strings.TrimSuffix(pair[1], "#"), pair[0])
	}

	return b
}

// prefixFor returns the working prefix for a namespace URI, synthesizing a
// binding for URIs the context has never seen.
func (st *docState) prefixFor(uri string) string {
	if p, ok := st.bindings.PrefixOf(uri); ok {
		return p
	}

	return st.bindings.Assign(uri, "ns")
}

// useURI records that a namespace was actually observed on an element or
// attribute.
func (st *docState) useURI(uri string) {
	if uri == "" || st.usedSet[uri] {
		return
	}

	st.usedSet[uri] = true
	st.usedOrder = append(st.usedOrder, uri)
}

// startElement opens a new object frame and processes the attributes.
func (st *docState) startElement(e xml.StartElement) {
	// Absorb prefix declarations the document introduces before any
	// prefix lookup happens.
	for _, a := range e.Attr {
		if a.Name.Space == "xmlns" {
			st.bindings.Assign(a.Value, a.Name.Local)
		}
	}

	ns, local := e.Name.Space, e.Name.Local
	iri := model.ComponentIRI(ns, local)
	key := st.prefixFor(ns) + ":" + local

	st.useURI(ns)

	f := &frame{
		iri:   iri,
		key:   key,
		local: local,
		obj:   NewObject(),
	}

	if token, ok := st.m.SimpleElementType(iri); ok {
		f.simpleType = token
		f.isSimple = true
	}

	if len(st.stack) == 0 {
		st.rootIRI = iri
	}

	st.stack = append(st.stack, f)

	for _, a := range e.Attr {
		st.attribute(f, a)
	}

	f.attrKeys = f.obj.Len()
}

// attribute applies one attribute to the current frame.
func (st *docState) attribute(f *frame, a xml.Attr) {
	ns, local := a.Name.Space, a.Name.Local

	switch {
	case ns == "xmlns" || (ns == "" && local == "xmlns"):
		// Namespace declarations were absorbed above.

	case ns == model.XMLNamespace || ns == "xml":
		if local == "base" {
			f.obj.Set("@base", a.Value)
		}
		// xml:lang and xml:space are reserved for a future preservation
		// policy.

	case strings.HasPrefix(ns, model.StructuresFamily):
		st.structuresAttribute(f, local, a.Value)

	case ns == model.XSINamespace:
		// xsi:type, xsi:nil and friends say nothing the schema did not.

	default:
		iri := model.ComponentIRI(ns, local)
		token, _ := st.m.AttributeType(iri)

		key := local
		if ns != "" {
			key = st.prefixFor(ns) + ":" + local
			st.useURI(ns)
		}

		f.obj.Add(key, coerce(a.Value, token))
	}
}

// structuresAttribute handles the structures-family id/ref/uri/metadata
// attributes.
func (st *docState) structuresAttribute(f *frame, local, value string) {
	switch local {
	case "id", "ref", "uri":
		id := value
		if local != "uri" {
			id = "#" + value
		}

		f.obj.Set("@id", id)

		if strings.HasSuffix(f.local, "Metadata") {
			st.metadataIDs[fragment(value)] = f.key
		}

	case "metadata":
		for _, tok := range strings.Fields(value) {
			f.metadataTokens = append(f.metadataTokens, fragment(tok))
		}
	}
}

// fragment normalizes a metadata token to its "#id" form.
func fragment(tok string) string {
	if strings.HasPrefix(tok, "#") {
		return tok
	}

	return "#" + tok
}

// characters accumulates element text.
func (st *docState) characters(cd xml.CharData) {
	if len(st.stack) == 0 {
		return
	}

	st.stack[len(st.stack)-1].text.Write(cd)
}

// endElement pops the current frame and merges its value upward.
func (st *docState) endElement(_ xml.EndElement) {
	f := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]

	var upward any = f.obj

	if f.isSimple {
		val := coerce(strings.TrimSpace(f.text.String()), f.simpleType)

		if f.obj.Len() > 0 || len(f.metadataTokens) > 0 {
			f.obj.Set("rdf:value", val)
		} else {
			upward = val
		}
	}

	if len(f.metadataTokens) > 0 {
		st.awaiting = append(st.awaiting, await{obj: f.obj, tokens: f.metadataTokens})
	}

	if len(st.stack) == 0 {
		st.finishRoot(f, upward)

		return
	}

	parent := st.stack[len(st.stack)-1]

	// Augmentation flattening: the augmentation element disappears and
	// its children merge directly into the parent. Keys that came from the
	// augmentation element's own attributes are dropped with it.
	if obj, ok := upward.(*Object); ok && strings.HasSuffix(f.local, "Augmentation") {
		for _, k := range obj.Keys()[f.attrKeys:] {
			v, _ := obj.Get(k)
			parent.obj.Add(k, v)
		}

		return
	}

	parent.obj.Add(f.key, upward)
}

// finishRoot installs the document element's value as the message body.
func (st *docState) finishRoot(f *frame, upward any) {
	if obj, ok := upward.(*Object); ok {
		st.data = obj

		return
	}

	// A simple document element degenerates to one key.
	st.data = NewObject()
	st.data.Add(f.key, upward)
}

// resolveMetadata is the post-pass that turns metadata placeholders into
// cross-references: each token recovers the metadata element's key, and the
// awaiting object gains {"@id": token} under that key.
func (st *docState) resolveMetadata() {
	for _, aw := range st.awaiting {
		for _, tok := range aw.tokens {
			key, ok := st.metadataIDs[tok]
			if !ok {
				continue
			}

			ref := NewObject()
			ref.Set("@id", tok)
			aw.obj.Add(key, ref)
		}
	}
}

// finish builds the result: the full context is the model's bindings plus
// one entry per observed URI the model did not cover.
func (st *docState) finish() *Result {
	res := &Result{
		Data:             st.data,
		ContextExtension: NewObject(),
		Context:          NewObject(),
		MessageFormatID:  st.rootIRI,
	}

	inModel := make(map[string]bool, len(st.m.ContextBindings))

	for _, pair := range st.m.ContextBindings {
		res.Context.Set(pair[0], pair[1])
		inModel[strings.TrimSuffix(pair[1], "#")] = true
	}

	for _, uri := range st.usedOrder {
		if inModel[uri] {
			continue
		}

		prefix := st.prefixFor(uri)
		withHash := uri

		if !strings.HasSuffix(withHash, "#") {
			withHash += "#"
		}

		res.ContextExtension.Set(prefix, withHash)
		res.Context.Set(prefix, withHash)
		st.flags |= FlagExtended
	}

	res.Flags = st.flags

	return res
}
