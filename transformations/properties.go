package transformations

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PropertiesToYAML reads key=value lines and nests keys on every '.'.
// Blank lines and lines starting with '#' are skipped, as are lines without '='.
// When a key is both a leaf and a prefix (a=1 and a.b=2) the later line wins.
type PropertiesToYAML struct{}

func (t *PropertiesToYAML) Transform(_ context.Context, input string) (string, error) {
	tree := newPropTree()
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		tree.set(strings.Split(key, "."), value)
	}

	out, err := encodeYAML(tree.node())
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode YAML: %w", IDPropertiesToYAML, err)
	}
	return out, nil
}

// propTree is an insertion-ordered nested map of string leaves.
type propTree struct {
	order    []string
	values   map[string]string
	children map[string]*propTree
}

func newPropTree() *propTree {
	return &propTree{values: map[string]string{}, children: map[string]*propTree{}}
}

func (p *propTree) touch(key string) {
	_, isValue := p.values[key]
	_, isChild := p.children[key]
	if !isValue && !isChild {
		p.order = append(p.order, key)
	}
}

func (p *propTree) set(path []string, value string) {
	key := path[0]
	p.touch(key)
	if len(path) == 1 {
		delete(p.children, key)
		p.values[key] = value
		return
	}
	child, ok := p.children[key]
	if !ok {
		delete(p.values, key)
		child = newPropTree()
		p.children[key] = child
	}
	child.set(path[1:], value)
}

func (p *propTree) node() *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range p.order {
		if child, ok := p.children[key]; ok {
			m.Content = append(m.Content, stringNode(key), child.node())
			continue
		}
		m.Content = append(m.Content, stringNode(key), stringNode(p.values[key]))
	}
	return m
}

// YAMLToProperties flattens a YAML mapping into dot-joined key=value lines,
// depth first in document order. Sequence items use their index as the key segment
// and null leaves produce an empty value.
type YAMLToProperties struct{}

func (t *YAMLToProperties) Transform(_ context.Context, input string) (string, error) {
	root, err := parseYAML(IDYAMLToProperties, input)
	if err != nil {
		return "", err
	}
	if root == nil {
		return "", nil
	}
	if root.Kind == yaml.AliasNode {
		root = root.Alias
	}
	if root.Kind != yaml.MappingNode {
		return "", formatErrorf(IDYAMLToProperties, "YAML", "line %d: expected a mapping at the document root", root.Line)
	}

	var lines []string
	if err := flattenYAML(root, "", 0, &lines); err != nil {
		return "", formatError(IDYAMLToProperties, "YAML", err)
	}
	return strings.Join(lines, "\n"), nil
}

func flattenYAML(n *yaml.Node, prefix string, depth int, lines *[]string) error {
	if depth > maxYAMLDepth {
		return fmt.Errorf("document nests too deeply")
	}
	join := func(segment string) string {
		if prefix == "" {
			return segment
		}
		return prefix + "." + segment
	}

	switch n.Kind {
	case yaml.AliasNode:
		return flattenYAML(n.Alias, prefix, depth+1, lines)
	case yaml.MappingNode:
		pairs, err := mappingPairs(n, depth)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			if err := flattenYAML(p.value, join(p.key), depth+1, lines); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if err := flattenYAML(item, join(strconv.Itoa(i)), depth+1, lines); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		value := n.Value
		if n.ShortTag() == "!!null" {
			value = ""
		}
		*lines = append(*lines, prefix+"="+value)
	}
	return nil
}
