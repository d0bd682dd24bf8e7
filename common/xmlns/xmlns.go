// Package xmlns provides namespace surgery on parsed XML trees: forcing a
// namespace onto every element of a fragment, and patching the namespace of
// a single mislabelled element. Network devices are not always compliant
// about the namespaces they emit, and the structures here are the tools the
// device handlers use to put replies right.
package xmlns

import "encoding/xml"

// Node is a generic XML element tree. Namespace declaration attributes are
// not retained; element namespaces live in XMLName.Space and are emitted as
// default-namespace declarations on marshalling.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []Node     `xml:",any"`
}

// Parse builds a Node tree from an XML document.
func Parse(b []byte) (*Node, error) {
	n := &Node{}
	if err := xml.Unmarshal(b, n); err != nil {
		return nil, err
	}
	dropNamespaceDecls(n)
	return n, nil
}

// Marshal serialises the tree back to XML.
func (n *Node) Marshal() ([]byte, error) {
	return xml.Marshal(n)
}

// Child returns the first direct child element with the given local name, or
// nil if there is none.
func (n *Node) Child(local string) *Node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

// ChildText returns the character data of the first direct child element
// with the given local name, or the empty string.
func (n *Node) ChildText(local string) string {
	if c := n.Child(local); c != nil {
		return c.Text
	}
	return ""
}

// Inject forces ns onto every element of the tree. Used to requalify
// fragments that were parsed outside the envelope that declared their
// default namespace. Injecting the same namespace twice is a no-op.
func Inject(n *Node, ns string) {
	n.XMLName.Space = ns
	for i := range n.Nodes {
		Inject(&n.Nodes[i], ns)
	}
}

// StripDefaultNS clears ns from every element of the tree carrying it,
// leaving element names unqualified so they inherit the enclosing default
// namespace on the wire.
func StripDefaultNS(n *Node, ns string) {
	if n.XMLName.Space == ns {
		n.XMLName.Space = ""
	}
	for i := range n.Nodes {
		StripDefaultNS(&n.Nodes[i], ns)
	}
}

// FixResult reports what Fix did to the document.
type FixResult int

// Fix outcomes.
const (
	// FixSkipped: the target element already carries some other namespace;
	// the document is untouched.
	FixSkipped FixResult = iota
	// FixPatched: the target carried oldNS and has been rewritten to newNS.
	FixPatched
	// FixAligned: the target carried no namespace and has been silently
	// rewritten to newNS.
	FixAligned
	// FixAmbiguous: zero or multiple candidate elements; the document is
	// untouched.
	FixAmbiguous
)

// FindAll returns the elements of the tree, root included, whose local name
// matches local, in document order. The lookup is namespace-agnostic.
func FindAll(root *Node, local string) []*Node {
	var found []*Node
	if root.XMLName.Local == local {
		found = append(found, root)
	}
	for i := range root.Nodes {
		found = append(found, FindAll(&root.Nodes[i], local)...)
	}
	return found
}

// Fix patches the namespace of the single element named local within root.
// An element carrying oldNS is rewritten to newNS (FixPatched); an element
// with no namespace is rewritten silently (FixAligned); any other namespace
// is assumed correct and left alone (FixSkipped). When zero or more than one
// element matches, nothing is altered (FixAmbiguous). Applying Fix twice
// yields the same document as applying it once.
func Fix(root *Node, local, oldNS, newNS string) FixResult {
	matches := FindAll(root, local)
	if len(matches) != 1 {
		return FixAmbiguous
	}
	el := matches[0]
	switch el.XMLName.Space {
	case oldNS:
		el.XMLName.Space = newNS
		return FixPatched
	case "":
		el.XMLName.Space = newNS
		return FixAligned
	default:
		return FixSkipped
	}
}

func dropNamespaceDecls(n *Node) {
	attrs := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Name.Local == "xmlns" || a.Name.Space == "xmlns" {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attrs = attrs
	for i := range n.Nodes {
		dropNamespaceDecls(&n.Nodes[i])
	}
}
