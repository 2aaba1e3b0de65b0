package config

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML flattens a YAML document into dotted names ("a.b.c") the
// way the original's ListAllMember walks a YAML::Node tree, then
// applies each leaf to its already-registered ConfigVar, exactly
// mirroring Config::LoadFromYaml's two-pass flatten-then-apply shape.
func LoadYAML(r io.Reader) error {
	var root yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	flat := map[string]string{}
	flatten("", &root, flat)
	Load(flat)
	return nil
}

func flatten(prefix string, node *yaml.Node, out map[string]string) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			flatten(prefix, c, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			if !validName.MatchString(name) {
				continue
			}
			flatten(name, node.Content[i+1], out)
		}
	case yaml.ScalarNode:
		if prefix != "" {
			out[prefix] = node.Value
		}
	case yaml.SequenceNode:
		if prefix == "" {
			return
		}
		items := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			items = append(items, c.Value)
		}
		out[prefix] = strings.Join(items, ",")
	}
}
