package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
)

// MaxDepth is the deepest array/object nesting Parse accepts, matching the
// limit of the encoding/json scanner.
const MaxDepth = 10000

var (
	ErrEmptyDocument = errors.New("empty JSON document")
	ErrTrailingData  = errors.New("unexpected data after top-level JSON value")
	ErrTooDeep       = fmt.Errorf("JSON nesting exceeds %d levels", MaxDepth)

	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// StripBlockComments removes every /* ... */ span from data. The match is
// purely textual, so a comment-like span inside a string literal is removed
// as well.
func StripBlockComments(data []byte) []byte {
	return blockComment.ReplaceAll(data, nil)
}

// Parse decodes a complete JSON document into a Value tree. Numbers are kept
// in their textual form. When an object repeats a key, the last value wins
// and keeps the position of the first occurrence.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return Value{}, ErrEmptyDocument
	} else if err != nil {
		return Value{}, err
	}

	root, err := decodeToken(dec, tok, 0)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, err
		}
		return Value{}, ErrTrailingData
	}

	return root, nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	return decodeToken(dec, tok, depth)
}

func decodeToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t.String()), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '[':
			return decodeArray(dec, depth+1)
		case '{':
			return decodeObject(dec, depth+1)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return Value{}, fmt.Errorf("unexpected token %v (%T)", t, t)
	}
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	arr := Value{Kind: Array, Items: make([]Value, 0)}
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		arr.Items = append(arr.Items, item)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return arr, nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	obj := Value{Kind: Object, Members: make([]Member, 0)}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected object key, found %v", tok)
		}

		val, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}

		if i, seen := index[key]; seen {
			obj.Members[i].Value = val
			continue
		}
		index[key] = len(obj.Members)
		obj.Members = append(obj.Members, Member{Key: key, Value: val})
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return obj, nil
}
