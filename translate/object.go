package translate

import (
	"bytes"
	"encoding/json"
)

// Object is a JSON object that preserves key insertion order, both for
// iteration and for marshaling. Translated output depends on input document
// order, so a plain map will not do.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

// Set inserts or replaces the value for k. A new key is appended to the
// iteration order; replacing keeps the original position.
func (o *Object) Set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}

	o.vals[k] = v
}

// Add applies the add-or-collect rule: absent keys are inserted; a second
// value turns the entry into a two-element array; further values append.
func (o *Object) Add(k string, v any) {
	current, ok := o.vals[k]
	if !ok {
		o.Set(k, v)

		return
	}

	if arr, isArr := current.([]any); isArr {
		o.vals[k] = append(arr, v)

		return
	}

	o.vals[k] = []any{current, v}
}

// Get returns the value for k.
func (o *Object) Get(k string) (any, bool) {
	v, ok := o.vals[k]

	return v, ok
}

// Has reports whether k is present.
func (o *Object) Has(k string) bool {
	_, ok := o.vals[k]

	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)

	return keys
}

// MarshalJSON writes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}

		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
