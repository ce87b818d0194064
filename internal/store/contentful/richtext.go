package contentful

import "strings"

// Node is a Contentful rich text node.
type Node struct {
	NodeType string `json:"nodeType"`
	Value    string `json:"value"`
	Content  []Node `json:"content"`
}

// blockNodes end a run of text in the plain rendering.
var blockNodes = map[string]bool{
	"paragraph":         true,
	"heading-1":         true,
	"heading-2":         true,
	"heading-3":         true,
	"heading-4":         true,
	"heading-5":         true,
	"heading-6":         true,
	"list-item":         true,
	"blockquote":        true,
	"table-cell":        true,
	"table-header-cell": true,
}

// PlainText flattens a rich text document into paragraphs separated by a
// blank line. Embedded entries and assets are dropped.
func PlainText(doc *Node) string {
	if doc == nil {
		return ""
	}

	var blocks []string
	var walk func(n Node)
	walk = func(n Node) {
		if blockNodes[n.NodeType] {
			if text := strings.TrimSpace(inlineText(n)); text != "" {
				blocks = append(blocks, text)
			}
			return
		}
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(*doc)

	return strings.Join(blocks, "\n\n")
}

func inlineText(n Node) string {
	if n.NodeType == "text" {
		return n.Value
	}
	var b strings.Builder
	for _, c := range n.Content {
		if blockNodes[c.NodeType] && b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(inlineText(c))
	}
	return b.String()
}
