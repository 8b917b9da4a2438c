package assemble

import (
	"fmt"
	"strings"
)

// Kind classifies how a schema document came to be loaded.
type Kind string

// Load record kinds. KindLoad marks an initial document or namespace; the
// others mirror the XML-Schema composition directives.
const (
	KindLoad     Kind = "load"
	KindImport   Kind = "import"
	KindInclude  Kind = "include"
	KindRedefine Kind = "redefine"
)

// LoadRec tracks one schema-document load attempt from enqueue through
// resolution and parse. Records live for a single assembler run.
type LoadRec struct {
	Kind       Kind
	ParentURI  string // document that contained the directive; empty for initial records
	ParentNS   string // target namespace of the parent document
	ParentLine int

	ExpectedNS         string // namespace the loaded document is expected to declare
	DeclNS             string // namespace attribute as written
	DeclSchemaLocation string // schemaLocation attribute as written

	ResolvedNS   string // catalog resolution of DeclNS
	ResolvedSLoc string // resolution of DeclSchemaLocation

	FileURI    string // chosen file
	FileURIAlt string // second file when ResolvedNS != ResolvedSLoc

	Warn bool
	Msgs []string
}

// Header renders the per-record log header: "parent:line KIND ns=... sl=...".
func (r *LoadRec) Header() string {
	parent := r.ParentURI
	if parent == "" {
		parent = "(initial)"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s:%d %s", parent, r.ParentLine, r.Kind)

	if r.DeclNS != "" {
		fmt.Fprintf(&sb, " ns=%s", r.DeclNS)
	}

	if r.DeclSchemaLocation != "" {
		fmt.Fprintf(&sb, " sl=%s", r.DeclSchemaLocation)
	}

	return sb.String()
}

// log appends an informational message to the record.
func (r *LoadRec) log(format string, args ...any) {
	r.Msgs = append(r.Msgs, fmt.Sprintf(format, args...))
}

// warn appends a message and sets the record's warning flag.
func (r *LoadRec) warn(format string, args ...any) {
	r.Warn = true
	r.log(format, args...)
}
