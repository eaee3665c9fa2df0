package rbxml

// The document envelope is fixed: one root element carrying the schema
// namespaces and format version, wrapping the serialized instance
// tree.
const (
	// FormatVersion is the document format version constant.
	FormatVersion = 4

	xmimeNamespace = "http://www.w3.org/2005/05/xmlmime"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.roblox.com/roblox.xsd"
)

// Assemble serializes the root node inside the fixed document
// envelope and returns the final text together with the number of
// nodes emitted.
func Assemble(root *Node) (string, int, error) {
	w := NewWriter()
	refs := NewReferent()

	w.Write(`<roblox xmlns:xmime="`, xmimeNamespace,
		`" xmlns:xsi="`, xsiNamespace,
		`" xsi:noNamespaceSchemaLocation="`, schemaLocation,
		`" version="`, FormatVersion, `">`)

	if err := Serialize(root, w, refs); err != nil {
		return "", 0, err
	}

	w.Write("</roblox>")
	return w.Render(), refs.Count(), nil
}
