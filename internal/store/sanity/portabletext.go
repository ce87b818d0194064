package sanity

import (
	"encoding/json"
	"strings"
)

// Block is a portable text block. Only text blocks carry children; other
// block types such as images are skipped.
type Block struct {
	Type     string `json:"_type"`
	Style    string `json:"style"`
	Children []struct {
		Type string `json:"_type"`
		Text string `json:"text"`
	} `json:"children"`
}

// Description holds a field that is either a plain string or portable text.
type Description string

// UnmarshalJSON accepts a string or an array of portable text blocks.
func (d *Description) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Description(strings.TrimSpace(s))
		return nil
	}

	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	*d = Description(PlainText(blocks))
	return nil
}

// PlainText joins the text of every block, one paragraph per block.
func PlainText(blocks []Block) string {
	paragraphs := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type != "block" {
			continue
		}
		var sb strings.Builder
		for _, c := range b.Children {
			if c.Type == "span" {
				sb.WriteString(c.Text)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
