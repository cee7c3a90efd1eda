// Package records holds the schema-less rows returned by the search endpoint.
//
// A Record keeps its keys in the order the server sent them. That order drives
// search, column layout and export, so it is never lost on the way through.
package records

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

type Kind int

const (
	Null Kind = iota
	String
	Number
	Bool
)

// Value is a single scalar cell. Numbers keep their raw JSON text in Str so
// that "1200.50" renders the way the server wrote it.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

func StringValue(s string) Value { return Value{Kind: String, Str: s} }

func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f, Str: strconv.FormatFloat(f, 'f', -1, 64)}
}

func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b, Str: strconv.FormatBool(b)} }

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Interface returns nil, string, float64 or bool.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		return v.Num
	case Bool:
		return v.Bool
	}
	return nil
}

func valueFromJSON(res gjson.Result) Value {
	switch res.Type {
	case gjson.Null:
		return Value{}
	case gjson.False, gjson.True:
		return BoolValue(res.Bool())
	case gjson.Number:
		return Value{Kind: Number, Num: res.Num, Str: res.Raw}
	case gjson.String:
		return StringValue(res.Str)
	}
	// Nested objects and arrays are kept as their raw JSON text.
	return StringValue(res.Raw)
}

type Field struct {
	Key   string
	Value Value
}

// Record is an ordered mapping from column name to scalar.
type Record struct {
	fields []Field
}

func New(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// FromStrings builds a record of string values from alternating key/value pairs.
func FromStrings(kv ...string) Record {
	var r Record
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], StringValue(kv[i+1]))
	}
	return r
}

// FromJSON converts a JSON object into a record. ok is false for anything
// that is not an object.
func FromJSON(obj gjson.Result) (r Record, ok bool) {
	if !obj.IsObject() {
		return Record{}, false
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		r.Set(key.String(), valueFromJSON(value))
		return true
	})
	return r, true
}

// Set replaces the value of an existing key in place or appends a new one.
func (r *Record) Set(key string, v Value) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

func (r Record) Get(key string) (Value, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// GetString returns the value's text, or "" when the key is missing.
func (r Record) GetString(key string) string {
	v, _ := r.Get(key)
	return v.String()
}

func (r Record) Len() int { return len(r.fields) }

func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Text joins all values with a single space, in key order.
func (r Record) Text() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = f.Value.String()
	}
	return strings.Join(parts, " ")
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Null:
		return []byte("null"), nil
	case Number:
		return []byte(v.Str), nil
	case Bool:
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Str)
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		val := &yaml.Node{Kind: yaml.ScalarNode}
		switch f.Value.Kind {
		case Null:
			val.Tag, val.Value = "!!null", "null"
		case Number:
			val.Tag, val.Value = "!!float", f.Value.Str
			if _, err := strconv.ParseInt(f.Value.Str, 10, 64); err == nil {
				val.Tag = "!!int"
			}
		case Bool:
			val.Tag, val.Value = "!!bool", strconv.FormatBool(f.Value.Bool)
		default:
			val.Tag, val.Value = "!!str", f.Value.Str
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
