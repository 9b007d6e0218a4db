package jsonvalue

import (
	"fmt"
	"strconv"
)

// Node is one line of the structured tree handed to the presentation layer.
// Containers carry a summary Label and Children, primitives carry Value.
type Node struct {
	Key      *string `json:"key,omitempty"`
	Kind     Kind    `json:"kind"`
	Label    string  `json:"label,omitempty"`
	Value    string  `json:"value,omitempty"`
	Children []Node  `json:"children,omitempty"`
}

// BuildTree converts v into a presentation tree rooted at an unkeyed node.
func BuildTree(v Value) Node {
	return buildNode(v, nil)
}

func buildNode(v Value, key *string) Node {
	if v == nil {
		v = Null{}
	}

	switch t := v.(type) {
	case Object:
		n := Node{Key: key, Kind: KindObject, Label: "Object", Children: make([]Node, 0, len(t.Members))}
		for _, m := range t.Members {
			k := m.Key
			n.Children = append(n.Children, buildNode(m.Value, &k))
		}
		return n
	case Array:
		n := Node{Key: key, Kind: KindArray, Label: fmt.Sprintf("Array[%d]", len(t)), Children: make([]Node, 0, len(t))}
		for i, item := range t {
			k := strconv.Itoa(i)
			n.Children = append(n.Children, buildNode(item, &k))
		}
		return n
	case String:
		return Node{Key: key, Kind: KindString, Value: string(t)}
	case Number:
		return Node{Key: key, Kind: KindNumber, Value: string(t)}
	case Bool:
		return Node{Key: key, Kind: KindBool, Value: strconv.FormatBool(bool(t))}
	default:
		return Node{Key: key, Kind: KindNull, Value: "null"}
	}
}
