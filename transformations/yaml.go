package transformations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	yamlIndent = 2
	// maxYAMLDepth bounds alias expansion so self-referencing anchors fail instead of looping.
	maxYAMLDepth = 10000
)

// JSONToYAML converts a JSON document into block-style YAML, keeping key order.
type JSONToYAML struct{}

func (t *JSONToYAML) Transform(_ context.Context, input string) (string, error) {
	if err := validateJSON(IDJSONToYAML, input); err != nil {
		return "", err
	}
	out, err := encodeYAML(jsonToNode(gjson.Parse(input)))
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode YAML: %w", IDJSONToYAML, err)
	}
	return out, nil
}

// YAMLToJSON converts the first YAML document into two-space indented JSON.
// An empty document becomes null.
type YAMLToJSON struct{}

func (t *YAMLToJSON) Transform(_ context.Context, input string) (string, error) {
	root, err := parseYAML(IDYAMLToJSON, input)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if root == nil {
		buf.WriteString("null")
	} else if err := writeJSONValue(&buf, root, 0); err != nil {
		return "", formatError(IDYAMLToJSON, "YAML", err)
	}
	return prettyJSON(buf.Bytes()), nil
}

// parseYAML returns the root content node of the first document, or nil when empty.
func parseYAML(id, input string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, formatError(id, "YAML", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func encodeYAML(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// yaml11Bools are the YAML 1.1 boolean spellings that yaml.v3 still emits plain.
var yaml11Bools = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"n": true, "N": true, "no": true, "No": true, "NO": true,
	"on": true, "On": true, "ON": true,
	"off": true, "Off": true, "OFF": true,
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if yaml11Bools[s] {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

// numberTag tags a JSON number as !!int only when it fits a 64-bit integer.
func numberTag(raw string) string {
	if strings.ContainsAny(raw, ".eE") {
		return "!!float"
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return "!!int"
	}
	if _, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return "!!int"
	}
	return "!!float"
}

func jsonToNode(r gjson.Result) *yaml.Node {
	switch r.Type {
	case gjson.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	case gjson.True:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
	case gjson.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: numberTag(r.Raw), Value: r.Raw}
	case gjson.String:
		return stringNode(r.Str)
	}

	if r.IsArray() {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		r.ForEach(func(_, value gjson.Result) bool {
			seq.Content = append(seq.Content, jsonToNode(value))
			return true
		})
		return seq
	}

	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	r.ForEach(func(key, value gjson.Result) bool {
		m.Content = append(m.Content, stringNode(key.Str), jsonToNode(value))
		return true
	})
	return m
}

func writeJSONValue(buf *bytes.Buffer, n *yaml.Node, depth int) error {
	if depth > maxYAMLDepth {
		return errors.New("document nests too deeply")
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSONValue(buf, n.Content[0], depth+1)
	case yaml.AliasNode:
		return writeJSONValue(buf, n.Alias, depth+1)
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.MappingNode:
		pairs, err := mappingPairs(n, depth)
		if err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, p := range pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, p.key)
			buf.WriteByte(':')
			if err := writeJSONValue(buf, p.value, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.ScalarNode:
		return writeJSONScalar(buf, n)
	}
	return fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
}

type yamlPair struct {
	key   string
	value *yaml.Node
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && n.ShortTag() == "!!merge"
}

// mappingPairs lists the entries of a mapping with merge keys (<<) expanded in place.
// Explicit keys override merged ones, and earlier merge sources override later ones.
func mappingPairs(n *yaml.Node, depth int) ([]yamlPair, error) {
	if depth > maxYAMLDepth {
		return nil, errors.New("document nests too deeply")
	}
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if isMergeKey(n.Content[i]) {
			continue
		}
		key, err := mappingKey(n.Content[i])
		if err != nil {
			return nil, err
		}
		explicit[key] = true
	}

	var pairs []yamlPair
	merged := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if !isMergeKey(n.Content[i]) {
			key, _ := mappingKey(n.Content[i])
			pairs = append(pairs, yamlPair{key: key, value: n.Content[i+1]})
			continue
		}
		sources, err := mergeSources(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			srcPairs, err := mappingPairs(src, depth+1)
			if err != nil {
				return nil, err
			}
			for _, p := range srcPairs {
				if explicit[p.key] || merged[p.key] {
					continue
				}
				merged[p.key] = true
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

// mergeSources resolves the value of a merge key to the mappings it names.
func mergeSources(v *yaml.Node) ([]*yaml.Node, error) {
	resolve := func(n *yaml.Node) (*yaml.Node, error) {
		if n.Kind == yaml.AliasNode && n.Alias != nil {
			n = n.Alias
		}
		if n.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: merge key expects a mapping or a sequence of mappings", n.Line)
		}
		return n, nil
	}
	if v.Kind == yaml.SequenceNode {
		sources := make([]*yaml.Node, 0, len(v.Content))
		for _, item := range v.Content {
			m, err := resolve(item)
			if err != nil {
				return nil, err
			}
			sources = append(sources, m)
		}
		return sources, nil
	}
	m, err := resolve(v)
	if err != nil {
		return nil, err
	}
	return []*yaml.Node{m}, nil
}

func mappingKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", n.Line)
	}
	return n.Value, nil
}

func writeJSONScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case "!!int", "!!float":
		// Integers beyond 64 bits stay exact when they are already valid JSON numbers.
		if gjson.Valid(n.Value) && gjson.Parse(n.Value).Type == gjson.Number {
			buf.WriteString(n.Value)
			return nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
			return fmt.Errorf("line %d: %s cannot be represented in JSON", n.Line, n.Value)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(raw)
	default:
		writeJSONString(buf, n.Value)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
}
