package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attribute is a single name/value entry.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is a string map that remembers insertion order. Keys are unique.
// The zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes returns Attributes holding the given entries in order.
func NewAttributes(entries ...Attribute) *Attributes {
	a := &Attributes{}
	a.AddAll(entries)

	return a
}

// Add sets key to value. A new key is appended; an existing key keeps its position.
func (a *Attributes) Add(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}

	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}

	a.values[key] = value
}

// AddAll adds every entry in order.
func (a *Attributes) AddAll(entries []Attribute) {
	for _, e := range entries {
		a.Add(e.Key, e.Value)
	}
}

// Remove deletes key if present.
func (a *Attributes) Remove(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}

	delete(a.values, key)

	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i:i], a.keys[i+1:]...)
			break
		}
	}
}

// RemoveAll deletes every entry.
func (a *Attributes) RemoveAll() {
	a.keys = nil
	a.values = nil
}

// Get returns the value of key, or an empty string.
func (a *Attributes) Get(key string) string {
	v, _ := a.Lookup(key)
	return v
}

// Lookup returns the value of key and whether it is present.
func (a *Attributes) Lookup(key string) (string, bool) {
	if a == nil {
		return "", false
	}

	v, ok := a.values[key]

	return v, ok
}

// GetAll returns a copy of all entries in insertion order.
func (a *Attributes) GetAll() []Attribute {
	if a == nil {
		return nil
	}

	out := make([]Attribute, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, Attribute{Key: k, Value: a.values[k]})
	}

	return out
}

// Contains reports whether key is present.
func (a *Attributes) Contains(key string) bool {
	_, ok := a.Lookup(key)
	return ok
}

// ContainsAll reports whether every key is present. It is true for no keys.
func (a *Attributes) ContainsAll(keys ...string) bool {
	for _, k := range keys {
		if !a.Contains(k) {
			return false
		}
	}

	return true
}

// Len returns the number of entries.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}

	return len(a.keys)
}

// Clone returns a deep copy; nil stays nil.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}

	return NewAttributes(a.GetAll()...)
}

// MarshalJSON writes a JSON object whose members follow insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of strings, keeping member order.
func (a *Attributes) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attributes: expected object, got %v", tok)
	}

	a.RemoveAll()

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attributes: expected string key, got %v", tok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attributes: value of %q: %w", key, err)
		}

		a.Add(key, value)
	}

	_, err = dec.Token()

	return err
}
