// Package xs builds a post-validation view of an assembled XML Schema: the
// namespace items with their schema-document declarations, the global
// element and attribute declarations, and the type definitions with their
// derivation chains.
//
// This is not a validator. It reads the schema documents the assembler
// collected and exposes exactly the component properties the schema
// compiler and the namespace extractor need: simple-type derivation down to
// the XML-Schema primitives, list item types, simple-content detection on
// complex types, and wildcard detection in content models.
package xs
