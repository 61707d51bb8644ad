// Package jsontree holds an order-preserving JSON value and structure-agnostic
// lookups over it. Upstream payloads are not modelled statically; extractors walk
// them through this type.
package jsontree

import (
	"strconv"
	"strings"
)

// Kind is the JSON type of a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value *Value
}

// Value is a parsed JSON value. A nil *Value stands for "absent" and every
// accessor is safe to call on it.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents, or the literal of a number
	items   []*Value
	members []Member
}

// NewString, NewNumber, NewBool, NewNull, NewArray and NewObject build values by hand.
func NewString(s string) *Value   { return &Value{kind: String, text: s} }
func NewNumber(lit string) *Value { return &Value{kind: Number, text: lit} }
func NewBool(b bool) *Value       { return &Value{kind: Bool, boolean: b} }
func NewNull() *Value             { return &Value{kind: Null} }

func NewArray(items ...*Value) *Value { return &Value{kind: Array, items: items} }

func NewObject(members ...Member) *Value { return &Value{kind: Object, members: members} }

// Kind reports the JSON type; absent values report Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// Exists reports whether v is present (a JSON null is present).
func (v *Value) Exists() bool { return v != nil }

// Get returns the first member named key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != Object {
		return nil
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Path follows a chain of object keys.
func (v *Value) Path(keys ...string) *Value {
	cur := v
	for _, k := range keys {
		cur = cur.Get(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Index returns the i-th array element, or nil.
func (v *Value) Index(i int) *Value {
	if v == nil || v.kind != Array || i < 0 || i >= len(v.items) {
		return nil
	}
	return v.items[i]
}

// Last returns the final array element, or nil.
func (v *Value) Last() *Value {
	if v == nil || v.kind != Array || len(v.items) == 0 {
		return nil
	}
	return v.items[len(v.items)-1]
}

// Len is the number of array elements or object members.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// Items returns the array elements. The slice must not be modified.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != Array {
		return nil
	}
	return v.items
}

// Members returns the object members in document order. The slice must not be modified.
func (v *Value) Members() []Member {
	if v == nil || v.kind != Object {
		return nil
	}
	return v.members
}

// Str returns the contents of a JSON string.
func (v *Value) Str() (string, bool) {
	if v == nil || v.kind != String {
		return "", false
	}
	return v.text, true
}

// StringOr returns the contents of a non-empty JSON string, the literal of a
// number, or def.
func (v *Value) StringOr(def string) string {
	switch v.Kind() {
	case String:
		if v.text != "" {
			return v.text
		}
	case Number:
		return v.text
	}
	return def
}

// Int returns an integral number. Numeric strings are accepted since upstream
// APIs are inconsistent about quoting counters.
func (v *Value) Int() (int64, bool) {
	switch v.Kind() {
	case Number, String:
		s := strings.TrimSpace(v.text)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

// IntOr returns Int() or def.
func (v *Value) IntOr(def int64) int64 {
	if n, ok := v.Int(); ok {
		return n
	}
	return def
}

// Bool returns a JSON boolean.
func (v *Value) Bool() (bool, bool) {
	if v == nil || v.kind != Bool {
		return false, false
	}
	return v.boolean, true
}

// BoolOr returns Bool() or def.
func (v *Value) BoolOr(def bool) bool {
	if b, ok := v.Bool(); ok {
		return b
	}
	return def
}
