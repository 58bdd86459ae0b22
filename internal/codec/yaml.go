package codec

import (
	"bytes"

	"notes/internal/domain"
	"notes/internal/errors"

	"gopkg.in/yaml.v3"
)

// YAML encodes the same wire records as a YAML sequence.
type YAML struct{}

func (YAML) Format() Format { return FormatYAML }

func (YAML) Encode(items []domain.Item) ([]byte, error) {
	records, err := toWire(items)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, errors.NewEncodeError("items", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.NewEncodeError("items", err)
	}
	return buf.Bytes(), nil
}

func (YAML) Decode(data []byte) ([]domain.Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Item{}, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, decodeFailure(-1, "", ReasonMalformed, err.Error())
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return []domain.Item{}, nil
		}
		doc = doc.Content[0]
	}
	doc = resolveAlias(doc)

	switch {
	case doc.Kind == 0, doc.Kind == yaml.ScalarNode && doc.ShortTag() == "!!null":
		return []domain.Item{}, nil
	case doc.Kind != yaml.SequenceNode:
		return nil, decodeFailure(-1, "", ReasonMalformed, "expected a sequence of items")
	}

	items := make([]domain.Item, 0, len(doc.Content))
	for i, node := range doc.Content {
		node = resolveAlias(node)
		if node.Kind != yaml.MappingNode {
			return nil, decodeFailure(i, "", ReasonWrongType, "expected mapping")
		}
		item, err := decodeRecord(i, yamlRecord{node: node})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := checkUnique(items); err != nil {
		return nil, err
	}
	return items, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

type yamlRecord struct {
	node *yaml.Node
}

func (r yamlRecord) field(name string) (value, bool) {
	content := r.node.Content
	for i := 0; i+1 < len(content); i += 2 {
		if key := content[i]; key.Kind == yaml.ScalarNode && key.Value == name {
			return yamlValue{node: resolveAlias(content[i+1])}, true
		}
	}
	return nil, false
}

type yamlValue struct {
	node *yaml.Node
}

func (v yamlValue) isNull() bool {
	return v.node.Kind == yaml.ScalarNode && v.node.ShortTag() == "!!null"
}

func (v yamlValue) asString() (string, bool) {
	if v.node.Kind != yaml.ScalarNode || v.node.ShortTag() != "!!str" {
		return "", false
	}
	return v.node.Value, true
}

func (v yamlValue) asTimeText() (string, bool) {
	if v.node.Kind != yaml.ScalarNode {
		return "", false
	}
	switch v.node.ShortTag() {
	case "!!str", "!!timestamp":
		return v.node.Value, true
	default:
		return "", false
	}
}

func (v yamlValue) asBool() (bool, bool) {
	if v.node.Kind != yaml.ScalarNode || v.node.ShortTag() != "!!bool" {
		return false, false
	}
	var b bool
	if err := v.node.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}
