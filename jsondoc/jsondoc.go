/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package jsondoc provides an order-preserving JSON document model.
//
// Manifests are rewritten in place, so fields this tool does not manage
// must survive a parse/serialize round trip byte-identically: same key
// order, same number text, no re-escaping. encoding/json maps cannot do
// that, so documents are modeled as a closed sum over
// {Null, Bool, Number, String, Array, Object} with objects keeping
// their key order.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Kind identifies which JSON type a Value holds.
type Kind uint8

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
	}
	return "invalid"
}

// Value is a single node of a JSON document. The zero value is Null.
// Read accessors are nil-safe so lookups can be chained:
//
//	doc.Get("compilerOptions").Get("paths")
//
// returns nil when any link in the chain is missing.
type Value struct {
	kind Kind
	b    bool
	num  string // verbatim number text from the source document
	str  string
	arr  []*Value
	keys []string
	vals map[string]*Value
}

// NewNull returns a null value.
func NewNull() *Value { return &Value{kind: Null} }

// NewBool returns a boolean value.
func NewBool(b bool) *Value { return &Value{kind: Bool, b: b} }

// NewNumber returns a number value holding the given JSON number text.
func NewNumber(text string) *Value { return &Value{kind: Number, num: text} }

// NewString returns a string value.
func NewString(s string) *Value { return &Value{kind: String, str: s} }

// NewArray returns an array value containing the given items.
func NewArray(items ...*Value) *Value {
	return &Value{kind: Array, arr: items}
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{kind: Object, vals: make(map[string]*Value)}
}

// Kind returns the value's JSON type. A nil value reports Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// Str returns the string content, or "" for non-strings.
func (v *Value) Str() string {
	if v == nil || v.kind != String {
		return ""
	}
	return v.str
}

// Bool returns the boolean content, or false for non-booleans.
func (v *Value) Bool() bool {
	if v == nil || v.kind != Bool {
		return false
	}
	return v.b
}

// Num returns the raw number text, or "" for non-numbers.
func (v *Value) Num() string {
	if v == nil || v.kind != Number {
		return ""
	}
	return v.num
}

// Items returns the array elements, or nil for non-arrays.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != Array {
		return nil
	}
	return v.arr
}

// Len returns the number of members (objects) or elements (arrays).
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case Object:
		return len(v.keys)
	case Array:
		return len(v.arr)
	}
	return 0
}

// Get returns the named object member, or nil when absent or when v
// is not an object.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != Object {
		return nil
	}
	return v.vals[key]
}

// Has reports whether the object has the named member.
func (v *Value) Has(key string) bool {
	if v == nil || v.kind != Object {
		return false
	}
	_, ok := v.vals[key]
	return ok
}

// Keys returns the object's keys in document order.
func (v *Value) Keys() []string {
	if v == nil || v.kind != Object {
		return nil
	}
	return slices.Clone(v.keys)
}

// Set stores an object member. A new key is appended after existing
// keys; replacing an existing key keeps its original position.
func (v *Value) Set(key string, val *Value) {
	if v == nil || v.kind != Object {
		return
	}
	if _, ok := v.vals[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.vals[key] = val
}

// Remove deletes an object member and reports whether it was present.
func (v *Value) Remove(key string) bool {
	if v == nil || v.kind != Object {
		return false
	}
	if _, ok := v.vals[key]; !ok {
		return false
	}
	delete(v.vals, key)
	v.keys = slices.DeleteFunc(v.keys, func(k string) bool { return k == key })
	return true
}

// SortKeys reorders the object's keys alphabetically.
func (v *Value) SortKeys() {
	if v == nil || v.kind != Object {
		return
	}
	slices.Sort(v.keys)
}

// Append adds elements to an array value.
func (v *Value) Append(items ...*Value) {
	if v == nil || v.kind != Array {
		return
	}
	v.arr = append(v.arr, items...)
}

// Clone returns a deep copy. Cloning nil returns nil.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{kind: v.kind, b: v.b, num: v.num, str: v.str}
	switch v.kind {
	case Array:
		out.arr = make([]*Value, len(v.arr))
		for i, item := range v.arr {
			out.arr[i] = item.Clone()
		}
	case Object:
		out.keys = slices.Clone(v.keys)
		out.vals = make(map[string]*Value, len(v.vals))
		for k, val := range v.vals {
			out.vals[k] = val.Clone()
		}
	}
	return out
}

// Parse decodes a JSON document, preserving object key order and
// verbatim number text.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected content after top-level value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(string(t)), nil
	case string:
		return NewString(t), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// Marshal serializes the document in the canonical on-disk form:
// two-space indentation, document key order, no HTML escaping, no
// trailing newline.
func (v *Value) Marshal() []byte {
	var buf bytes.Buffer
	m := &marshaler{buf: &buf}
	m.value(v, 0)
	return buf.Bytes()
}

// String returns the serialized document, for diagnostics.
func (v *Value) String() string {
	return string(v.Marshal())
}

type marshaler struct {
	buf     *bytes.Buffer
	scratch bytes.Buffer
}

func (m *marshaler) value(v *Value, depth int) {
	switch v.Kind() {
	case Null:
		m.buf.WriteString("null")
	case Bool:
		if v.b {
			m.buf.WriteString("true")
		} else {
			m.buf.WriteString("false")
		}
	case Number:
		m.buf.WriteString(v.num)
	case String:
		m.writeString(v.str)
	case Array:
		if len(v.arr) == 0 {
			m.buf.WriteString("[]")
			return
		}
		m.buf.WriteString("[\n")
		for i, item := range v.arr {
			m.indent(depth + 1)
			m.value(item, depth+1)
			if i < len(v.arr)-1 {
				m.buf.WriteByte(',')
			}
			m.buf.WriteByte('\n')
		}
		m.indent(depth)
		m.buf.WriteByte(']')
	case Object:
		if len(v.keys) == 0 {
			m.buf.WriteString("{}")
			return
		}
		m.buf.WriteString("{\n")
		for i, key := range v.keys {
			m.indent(depth + 1)
			m.writeString(key)
			m.buf.WriteString(": ")
			m.value(v.vals[key], depth+1)
			if i < len(v.keys)-1 {
				m.buf.WriteByte(',')
			}
			m.buf.WriteByte('\n')
		}
		m.indent(depth)
		m.buf.WriteByte('}')
	}
}

func (m *marshaler) indent(depth int) {
	for range depth {
		m.buf.WriteString("  ")
	}
}

// writeString emits a quoted JSON string without HTML escaping, which
// would otherwise rewrite characters in paths the tool never touched.
func (m *marshaler) writeString(s string) {
	m.scratch.Reset()
	enc := json.NewEncoder(&m.scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// strings cannot fail to encode; fall back to default escaping
		data, _ := json.Marshal(s)
		m.buf.Write(data)
		return
	}
	// Encode appends a newline
	m.buf.Write(bytes.TrimRight(m.scratch.Bytes(), "\n"))
}
