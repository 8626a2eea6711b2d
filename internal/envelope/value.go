package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a decoded JSON value. It is one of Object, Sequence or Scalar.
type Value interface {
	isValue()
}

// Object is a JSON object.
type Object map[string]Value

// Sequence is a JSON array.
type Sequence []Value

// Scalar is a JSON string, number, boolean or null.
// Numbers keep their literal text as json.Number.
type Scalar struct {
	v any
}

func (Object) isValue()   {}
func (Sequence) isValue() {}
func (Scalar) isValue()   {}

// Parse decodes a raw frame into a Value.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode frame: trailing data")
	}

	return FromAny(raw), nil
}

// FromAny converts the output of encoding/json into a Value.
// Unknown Go types become a null Scalar.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case map[string]any:
		obj := make(Object, len(x))
		for k, v := range x {
			obj[k] = FromAny(v)
		}
		return obj
	case []any:
		seq := make(Sequence, len(x))
		for i, v := range x {
			seq[i] = FromAny(v)
		}
		return seq
	case string, json.Number, bool, nil:
		return Scalar{v: x}
	case float64:
		return Scalar{v: json.Number(fmt.Sprint(x))}
	default:
		return Scalar{}
	}
}

// Encode serializes v as compact JSON. Object keys are sorted, numbers keep
// their literal text and HTML characters are left unescaped.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalJSON encodes the scalar as it was received.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch x := s.v.(type) {
	case nil:
		return []byte("null"), nil
	case json.Number:
		if x == "" {
			return nil, fmt.Errorf("empty number literal")
		}
		return []byte(x), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Has reports whether key is present, regardless of its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Text returns the value at key as text when it is a non-empty string or a
// number. Other kinds report false.
func (o Object) Text(key string) (string, bool) {
	s, ok := o[key].(Scalar)
	if !ok {
		return "", false
	}
	return s.Text()
}

// FirstText returns the first non-empty Text among keys, in order.
func (o Object) FirstText(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := o.Text(k); ok {
			return v, true
		}
	}
	return "", false
}

// Sequence returns the value at key when it is a sequence.
func (o Object) Sequence(key string) (Sequence, bool) {
	seq, ok := o[key].(Sequence)
	return seq, ok
}

// Text returns the scalar as text when it is a non-empty string or a number.
func (s Scalar) Text() (string, bool) {
	switch x := s.v.(type) {
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), true
	}
	return "", false
}

// IsNull reports whether the scalar is JSON null.
func (s Scalar) IsNull() bool {
	return s.v == nil
}

// String builds a string Scalar.
func String(s string) Scalar { return Scalar{v: s} }

// Number builds a number Scalar from its literal text.
func Number(lit string) Scalar { return Scalar{v: json.Number(lit)} }

// Null is the JSON null Scalar.
var Null = Scalar{}

// empty reports whether v would be treated as "no value" when deciding to
// descend into a payload field: null, false, zero, "" and empty containers.
func empty(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case Object:
		return len(x) == 0
	case Sequence:
		return len(x) == 0
	case Scalar:
		switch s := x.v.(type) {
		case nil:
			return true
		case string:
			return s == ""
		case bool:
			return !s
		case json.Number:
			f, err := s.Float64()
			return err == nil && f == 0
		}
	}
	return false
}
