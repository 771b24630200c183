// Package wire implements the dynamic request/reply tree and the framing
// codec used on the daemon's UNIX socket, standing in for the wire format
// the original tool speaks.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Node currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Node is a schemaless tagged-variant tree node: one of Null, Bool,
// Number, String, Array[Node], or Object[key->Node].
type Node struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Node
	obj  map[string]Node
}

// Null returns the null node.
func Null() Node { return Node{kind: KindNull} }

// Bool wraps a boolean value.
func Bool(v bool) Node { return Node{kind: KindBool, b: v} }

// Number wraps a numeric value.
func Number(v float64) Node { return Node{kind: KindNumber, n: v} }

// String wraps a string value.
func String(v string) Node { return Node{kind: KindString, s: v} }

// Array wraps a list of nodes.
func Array(v ...Node) Node { return Node{kind: KindArray, arr: v} }

// Object builds an object node from a map.
func Object(v map[string]Node) Node {
	if v == nil {
		v = map[string]Node{}
	}
	return Node{kind: KindObject, obj: v}
}

// Kind reports which variant n currently holds.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether n is the null variant, including the Go zero value.
func (n Node) IsNull() bool { return n.kind == KindNull }

// AsString returns the string value and true iff n is a string node.
func (n Node) AsString() (string, bool) {
	if n.kind != KindString {
		return "", false
	}
	return n.s, true
}

// AsBool returns the boolean value and true iff n is a bool node.
func (n Node) AsBool() (bool, bool) {
	if n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

// AsNumber returns the numeric value and true iff n is a number node.
func (n Node) AsNumber() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	return n.n, true
}

// AsArray returns the element slice and true iff n is an array node.
func (n Node) AsArray() ([]Node, bool) {
	if n.kind != KindArray {
		return nil, false
	}
	return n.arr, true
}

// AsObject returns the backing map and true iff n is an object node.
func (n Node) AsObject() (map[string]Node, bool) {
	if n.kind != KindObject {
		return nil, false
	}
	return n.obj, true
}

// Get looks up key in an object node. Returns the null node and false if n
// is not an object, or the key is absent.
func (n Node) Get(key string) (Node, bool) {
	obj, ok := n.AsObject()
	if !ok {
		return Null(), false
	}
	v, ok := obj[key]
	return v, ok
}

// Set inserts key into an object node, turning n into an object if it was
// null. Set on any other kind is a no-op and returns the node unchanged.
func (n Node) Set(key string, value Node) Node {
	if n.kind == KindNull {
		n.kind = KindObject
		n.obj = map[string]Node{}
	}
	if n.kind != KindObject {
		return n
	}
	n.obj[key] = value
	return n
}

// MarshalJSON renders n as compact JSON.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(n.b)
	case KindNumber:
		return json.Marshal(n.n)
	case KindString:
		return json.Marshal(n.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, v := range n.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := v.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		first := true
		for k, v := range n.obj {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("wire: unknown node kind %d", n.kind)
	}
}

// UnmarshalJSON parses JSON into n, preserving object key order is not
// attempted (JSON objects are unordered); arrays preserve order.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*n = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) Node {
	return FromGeneric(raw)
}

// FromGeneric converts a generic decoded value (as produced by
// encoding/json or gopkg.in/yaml.v3 decoding into interface{}) into a Node.
// It is exported so other decoders (e.g. internal/config's YAML loader)
// can build Nodes without going through a JSON round-trip.
func FromGeneric(raw interface{}) Node {
	switch v := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(v)
	case json.Number:
		f, _ := v.Float64()
		return Number(f)
	case int:
		return Number(float64(v))
	case float64:
		return Number(v)
	case string:
		return String(v)
	case []interface{}:
		out := make([]Node, 0, len(v))
		for _, e := range v {
			out = append(out, FromGeneric(e))
		}
		return Array(out...)
	case map[string]interface{}:
		out := make(map[string]Node, len(v))
		for k, e := range v {
			out[k] = FromGeneric(e)
		}
		return Object(out)
	case map[interface{}]interface{}:
		out := make(map[string]Node, len(v))
		for k, e := range v {
			out[fmt.Sprintf("%v", k)] = FromGeneric(e)
		}
		return Object(out)
	default:
		return Null()
	}
}

// Parse decodes a JSON byte buffer produced by the frame codec into a Node.
func Parse(data []byte) (Node, error) {
	var n Node
	if err := n.UnmarshalJSON(data); err != nil {
		return Null(), err
	}
	return n, nil
}

// Emit renders n as compact JSON bytes.
func Emit(n Node) ([]byte, error) {
	return n.MarshalJSON()
}
