package schema

import (
	"fmt"
	"sort"
)

// Field describes one leaf or container in the schema tree.
type Field struct {
	Path     string   `json:"path"` // dotted, arrays as "units[]"
	Types    []string `json:"types"`
	Nullable bool     `json:"nullable"`
	Required bool     `json:"required"`
	Minimum  *float64 `json:"minimum,omitempty"`
	Maximum  *float64 `json:"maximum,omitempty"`
	MinItems *int     `json:"minItems,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

// Describe flattens the schema into a path-sorted field list.
func (s *Schema) Describe() []Field {
	var fields []Field
	walk(s.tree, "", true, func(path string, node map[string]interface{}, required bool) {
		if path == "" {
			return
		}
		f := Field{Path: path, Required: required, Types: typesOf(node)}
		for _, t := range f.Types {
			if t == "null" {
				f.Nullable = true
			}
		}
		f.Minimum = number(node["minimum"])
		f.Maximum = number(node["maximum"])
		if n := number(node["minItems"]); n != nil {
			v := int(*n)
			f.MinItems = &v
		}
		if enum, ok := node["enum"].([]interface{}); ok {
			for _, e := range enum {
				f.Enum = append(f.Enum, fmt.Sprint(e))
			}
		}
		fields = append(fields, f)
	})
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields
}

// walk visits node and every nested property and array item schema.
func walk(node map[string]interface{}, path string, required bool, visit func(string, map[string]interface{}, bool)) {
	visit(path, node, required)

	req := stringSet(node["required"])
	if props, ok := node["properties"].(map[string]interface{}); ok {
		for name, child := range props {
			c, ok := child.(map[string]interface{})
			if !ok {
				continue
			}
			walk(c, join(path, name), req[name], visit)
		}
	}
	if items, ok := node["items"].(map[string]interface{}); ok {
		walk(items, path+"[]", true, visit)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func typesOf(node map[string]interface{}) []string {
	switch t := node["type"].(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func hasType(node map[string]interface{}, want string) bool {
	for _, t := range typesOf(node) {
		if t == want {
			return true
		}
	}
	return false
}

func stringSet(v interface{}) map[string]bool {
	set := map[string]bool{}
	if list, ok := v.([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				set[s] = true
			}
		}
	}
	return set
}

func number(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
