package altupdater

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a decoded JSON object that remembers the order of its fields.
// Setting an existing field keeps its position; new fields are appended.
type Object struct {
	fields *orderedmap.OrderedMap[string, any]
}

func NewObject() *Object {
	return &Object{fields: orderedmap.New[string, any]()}
}

func (o *Object) Get(key string) (any, bool) {
	return o.fields.Get(key)
}

func (o *Object) Set(key string, value any) {
	o.fields.Set(key, value)
}

func (o *Object) Delete(key string) {
	o.fields.Delete(key)
}

func (o *Object) Len() int {
	return o.fields.Len()
}

// Keys returns the field names in document order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a shallow copy with the same field order.
func (o *Object) Clone() *Object {
	c := NewObject()
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		c.fields.Set(pair.Key, pair.Value)
	}
	return c
}

// MarshalJSON writes the fields in document order without HTML escaping.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := marshalValue(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := marshalValue(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
