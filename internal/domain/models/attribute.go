package models

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Attribute is a single free-form name/value pair attached to a CashBox
// object. Values may be strings, ints, floats or bools; anything else is
// rejected at construction.
type Attribute struct {
	Name  string
	Value interface{}
}

// NewAttribute creates an attribute, validating the value type
func NewAttribute(name string, value interface{}) (Attribute, error) {
	switch value.(type) {
	case nil, string, int, int32, int64, float32, float64, bool:
		return Attribute{Name: name, Value: value}, nil
	default:
		return Attribute{}, fmt.Errorf("attribute %q: unsupported value type %T", name, value)
	}
}

// NameValue is the wire-level form of an Attribute. CashBox only accepts
// string values, with fixed encodings for null, booleans and integers.
type NameValue struct {
	Name  string
	Value string
}

// WireValue coerces an attribute value to its CashBox string encoding:
// nil -> "null", bool -> "true"/"false", ints -> decimal string.
func WireValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int32:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float32:
		return decimal.NewFromFloat32(v).String()
	case float64:
		return decimal.NewFromFloat(v).String()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NameValue returns the wire-level form of the attribute
func (a Attribute) NameValue() NameValue {
	return NameValue{Name: a.Name, Value: WireValue(a.Value)}
}

// AttributeBag is an ordered collection of attributes
type AttributeBag struct {
	attributes []Attribute
}

// NewAttributeBag builds a bag from a name -> value map. Map iteration
// order is not stable, so entries are added sorted by name to keep the
// wire form deterministic.
func NewAttributeBag(values map[string]interface{}) (*AttributeBag, error) {
	bag := &AttributeBag{}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := bag.Add(name, values[name]); err != nil {
			return nil, err
		}
	}
	return bag, nil
}

// Add appends an attribute to the bag
func (b *AttributeBag) Add(name string, value interface{}) error {
	attr, err := NewAttribute(name, value)
	if err != nil {
		return err
	}
	b.attributes = append(b.attributes, attr)
	return nil
}

// Count returns the number of attributes in the bag
func (b *AttributeBag) Count() int {
	if b == nil {
		return 0
	}
	return len(b.attributes)
}

// All returns the attributes in insertion order
func (b *AttributeBag) All() []Attribute {
	if b == nil {
		return nil
	}
	return b.attributes
}

// NameValues returns the wire-level form of every attribute, in order
func (b *AttributeBag) NameValues() []NameValue {
	if b == nil {
		return nil
	}
	out := make([]NameValue, 0, len(b.attributes))
	for _, attr := range b.attributes {
		out = append(out, attr.NameValue())
	}
	return out
}
