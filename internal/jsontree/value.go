// Package jsontree holds a tagged-variant model of a JSON document and
// the parser that produces it.
package jsontree

import (
	"encoding/json"
	"fmt"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single JSON node. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Items   []Value
	Members []Member
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

func NullValue() Value { return Value{Kind: Null} }

func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

func NumberValue(n string) Value { return Value{Kind: Number, Number: json.Number(n)} }

func StringValue(s string) Value { return Value{Kind: String, Str: s} }

func ArrayValue(items ...Value) Value { return Value{Kind: Array, Items: items} }

func ObjectValue(members ...Member) Value { return Value{Kind: Object, Members: members} }

// Walk calls fn for v and every value nested beneath it, depth-first.
// Object keys are not visited.
func (v Value) Walk(fn func(Value)) {
	fn(v)
	switch v.Kind {
	case Array:
		for _, item := range v.Items {
			item.Walk(fn)
		}
	case Object:
		for _, m := range v.Members {
			m.Value.Walk(fn)
		}
	}
}
