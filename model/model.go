// Package model defines the translation model: the compiled, serializable
// artifact that parameterizes instance translation for one message family.
//
// A [Model] is immutable once compiled; any number of translators may share
// one concurrently. The serialized form is a single JSON object with the
// attribute table, the simple-element table, the external-namespace set, the
// ordered context bindings, and the wildcard flag.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFormat indicates a corrupted or unparsable translation-model file.
var ErrFormat = errors.New("model format")

// Model is the translation model consumed by the translator.
type Model struct {
	// Attributes maps an attribute component IRI to its base-type token.
	Attributes map[string]string `json:"attributes"`

	// SimpleElements maps an element component IRI to its base-type
	// token, for elements whose type has a simple base.
	SimpleElements map[string]string `json:"simpleElements"`

	// ExternalNamespaces lists the namespace URIs that carry no
	// conformance assertion.
	ExternalNamespaces []string `json:"externalNamespaces"`

	// ContextBindings is the ordered (prefix, namespace URI) list carried
	// as the @context of translated output. URI values always end in '#'.
	ContextBindings [][2]string `json:"contextBindings"`

	// HasWildcard records whether any complex type in the schema contains
	// a wildcard term.
	HasWildcard bool `json:"hasWildcard"`
}

// ComponentIRI forms the canonical IRI for a schema-declared component:
// namespace + '#' + local name. A namespace already ending in '#' gets no
// second marker.
func ComponentIRI(namespace, local string) string {
	if strings.HasSuffix(namespace, "#") {
		return namespace + local
	}

	return namespace + "#" + local
}

// AttributeType looks up the base-type token for an attribute component IRI.
func (m *Model) AttributeType(iri string) (string, bool) {
	t, ok := m.Attributes[iri]

	return t, ok
}

// SimpleElementType looks up the base-type token for an element component
// IRI.
func (m *Model) SimpleElementType(iri string) (string, bool) {
	t, ok := m.SimpleElements[iri]

	return t, ok
}

// IsExternal reports whether ns is flagged external.
func (m *Model) IsExternal(ns string) bool {
	for _, e := range m.ExternalNamespaces {
		if e == ns {
			return true
		}
	}

	return false
}

// Marshal serializes the model to its JSON text form.
func (m *Model) Marshal() ([]byte, error) {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	return append(out, '\n'), nil
}

// Load reads a serialized model. Any parse failure surfaces as [ErrFormat].
func Load(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	m := &Model{}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if m.Attributes == nil {
		m.Attributes = map[string]string{}
	}

	if m.SimpleElements == nil {
		m.SimpleElements = map[string]string{}
	}

	return m, nil
}
