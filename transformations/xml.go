package transformations

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type xmlKind int

const (
	xmlElement xmlKind = iota
	xmlText
	xmlComment
	xmlProcInst
	xmlDirective
)

type xmlNode struct {
	kind     xmlKind
	name     string
	attrs    []xml.Attr
	text     string
	children []*xmlNode
}

var (
	xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	xmlAttrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

// XMLPrettify re-serializes XML with one element per line and two-space indentation.
// Attributes keep their order, empty elements self-close and elements holding only
// text stay on a single line.
type XMLPrettify struct{}

func (t *XMLPrettify) Transform(_ context.Context, input string) (string, error) {
	nodes, err := parseXML(IDXMLPrettify, input)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		writePrettyXML(&sb, n, 0)
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// XMLCompact re-serializes XML without whitespace between tags.
type XMLCompact struct{}

func (t *XMLCompact) Transform(_ context.Context, input string) (string, error) {
	nodes, err := parseXML(IDXMLCompact, input)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		writeCompactXML(&sb, n)
	}
	return sb.String(), nil
}

// parseXML builds the top-level node list of a document with exactly one root element.
// Whitespace-only runs between markup are dropped. Adjacent runs (text and CDATA) are
// joined verbatim, and text is trimmed only when it is the sole content of its element.
func parseXML(id, input string) ([]*xmlNode, error) {
	dec := xml.NewDecoder(strings.NewReader(input))
	dec.Strict = true
	// The document is already decoded text, whatever its declaration says.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	doc := &xmlNode{kind: xmlElement}
	stack := []*xmlNode{doc}
	roots := 0

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formatError(id, "XML", err)
		}
		parent := stack[len(stack)-1]

		switch tt := xml.CopyToken(tok).(type) {
		case xml.StartElement:
			if len(stack) == 1 {
				roots++
				if roots > 1 {
					return nil, formatErrorf(id, "XML", "line %d: multiple root elements", xmlLine(dec))
				}
			}
			n := &xmlNode{kind: xmlElement, name: qualifiedName(tt.Name), attrs: tt.Attr}
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			name := qualifiedName(tt.Name)
			if len(stack) == 1 || parent.name != name {
				return nil, formatErrorf(id, "XML", "line %d: unexpected closing tag </%s>", xmlLine(dec), name)
			}
			trimTextOnly(parent)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			text := string(tt)
			last := lastChild(parent)
			if last != nil && last.kind == xmlText {
				last.text += text
				continue
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			if len(stack) == 1 {
				return nil, formatErrorf(id, "XML", "line %d: text outside the root element", xmlLine(dec))
			}
			parent.children = append(parent.children, &xmlNode{kind: xmlText, text: text})
		case xml.Comment:
			parent.children = append(parent.children, &xmlNode{kind: xmlComment, text: string(tt)})
		case xml.ProcInst:
			parent.children = append(parent.children, &xmlNode{kind: xmlProcInst, name: tt.Target, text: string(tt.Inst)})
		case xml.Directive:
			parent.children = append(parent.children, &xmlNode{kind: xmlDirective, text: string(tt)})
		}
	}

	if len(stack) > 1 {
		return nil, formatErrorf(id, "XML", "unclosed element <%s>", stack[len(stack)-1].name)
	}
	if roots == 0 {
		return nil, formatError(id, "XML", errors.New("no root element"))
	}
	return doc.children, nil
}

func xmlLine(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}

// trimTextOnly trims the text of an element whose only child is text.
// Text mixed with sibling elements is kept as written.
func trimTextOnly(n *xmlNode) {
	if len(n.children) == 1 && n.children[0].kind == xmlText {
		n.children[0].text = strings.TrimSpace(n.children[0].text)
	}
}

func lastChild(n *xmlNode) *xmlNode {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeOpenTag(sb *strings.Builder, n *xmlNode) {
	sb.WriteByte('<')
	sb.WriteString(n.name)
	for _, a := range n.attrs {
		fmt.Fprintf(sb, ` %s="%s"`, qualifiedName(a.Name), xmlAttrEscaper.Replace(a.Value))
	}
}

func writeLeaf(sb *strings.Builder, n *xmlNode) {
	switch n.kind {
	case xmlText:
		sb.WriteString(xmlTextEscaper.Replace(n.text))
	case xmlComment:
		sb.WriteString("<!--" + n.text + "-->")
	case xmlProcInst:
		sb.WriteString("<?" + n.name)
		if inst := strings.TrimSpace(n.text); inst != "" {
			sb.WriteString(" " + inst)
		}
		sb.WriteString("?>")
	case xmlDirective:
		sb.WriteString("<!" + n.text + ">")
	}
}

func writePrettyXML(sb *strings.Builder, n *xmlNode, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	if n.kind == xmlText {
		sb.WriteString(xmlTextEscaper.Replace(strings.TrimSpace(n.text)))
		sb.WriteByte('\n')
		return
	}
	if n.kind != xmlElement {
		writeLeaf(sb, n)
		sb.WriteByte('\n')
		return
	}

	writeOpenTag(sb, n)
	switch {
	case len(n.children) == 0:
		sb.WriteString("/>\n")
	case len(n.children) == 1 && n.children[0].kind == xmlText:
		sb.WriteByte('>')
		writeLeaf(sb, n.children[0])
		sb.WriteString("</" + n.name + ">\n")
	default:
		sb.WriteString(">\n")
		for _, c := range n.children {
			writePrettyXML(sb, c, depth+1)
		}
		sb.WriteString(indent + "</" + n.name + ">\n")
	}
}

func writeCompactXML(sb *strings.Builder, n *xmlNode) {
	if n.kind != xmlElement {
		writeLeaf(sb, n)
		return
	}
	writeOpenTag(sb, n)
	if len(n.children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, c := range n.children {
		writeCompactXML(sb, c)
	}
	sb.WriteString("</" + n.name + ">")
}
