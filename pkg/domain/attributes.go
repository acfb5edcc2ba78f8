package domain

import (
	"encoding/json"
	"fmt"
)

// Attribute is a single collected key/value pair.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attributes is an insertion-ordered string map.
// Overwriting an existing key keeps its original position.
// The zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]string
}

// Set stores value under key, appending the key if it is new.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key.
func (a *Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// ValueOr returns the value for key, or def when the key is absent.
func (a *Attributes) ValueOr(key, def string) string {
	if v, ok := a.values[key]; ok {
		return v
	}
	return def
}

// Len returns the number of stored keys.
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Entries returns the pairs in insertion order.
func (a *Attributes) Entries() []Attribute {
	out := make([]Attribute, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, Attribute{Key: k, Value: a.values[k]})
	}
	return out
}

// Clone returns an independent copy.
func (a *Attributes) Clone() Attributes {
	var c Attributes
	for _, k := range a.keys {
		c.Set(k, a.values[k])
	}
	return c
}

// MarshalJSON encodes the attributes as an ordered array of pairs.
func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Entries())
}

// UnmarshalJSON decodes the ordered array produced by MarshalJSON.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var entries []Attribute
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode attributes: %w", err)
	}
	*a = Attributes{}
	for _, e := range entries {
		a.Set(e.Key, e.Value)
	}
	return nil
}
