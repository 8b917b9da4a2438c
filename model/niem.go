package model

// Reserved namespace URI prefixes. Family membership is tested with a plain
// prefix match so every release version of a family namespace matches.
const (
	// StructuresFamily covers the structures namespaces, which carry the
	// special id/ref/uri/metadata attributes.
	StructuresFamily = "http://release.niem.gov/niem/structures/"

	// AppinfoFamily covers the appinfo annotation namespaces.
	AppinfoFamily = "http://release.niem.gov/niem/appinfo/"

	// ConformanceTargetsFamily covers the conformance-target attribute
	// namespaces.
	ConformanceTargetsFamily = "http://release.niem.gov/niem/conformanceTargets/"

	// XSDProxyFamily covers the XSD proxy namespaces.
	XSDProxyFamily = "http://release.niem.gov/niem/proxy/xsd/"

	// ConformanceTargetsAttribute is the local name of the conformance
	// target assertion attribute.
	ConformanceTargetsAttribute = "conformanceTargets"

	// NDRPrefix is the URI prefix of the NIEM naming-and-design-rules
	// specification; the path segment after it carries the version.
	NDRPrefix = "http://reference.niem.gov/niem/specification/naming-and-design-rules/"

	// ReleasePrefix covers every namespace published in a NIEM model
	// release.
	ReleasePrefix = "http://release.niem.gov/niem/"

	// RDFNamespace is the RDF namespace; the rdf prefix is reserved in
	// every compiled context.
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// XSDNamespace is the XML Schema namespace.
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"

	// XSINamespace is the XML Schema instance namespace.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

	// XMLNamespace is the xml: namespace.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
)
