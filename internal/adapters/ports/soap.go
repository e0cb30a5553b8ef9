package ports

import (
	"context"
	"time"
)

// Field is a single named value inside a request payload object. Values
// may be scalar (string, int, bool, decimal, time), a nested *Object, or
// a []*Object.
type Field struct {
	Name  string
	Value interface{}
}

// Object is an ordered payload object mirroring a CashBox object
// (Transaction, Account, PaymentMethod, ...). Field order is preserved:
// the hosted-form field derivation walks the tree in insertion order and
// must be deterministic.
type Object struct {
	Type   string
	Fields []Field
}

// NewObject creates an empty payload object of the given CashBox type
func NewObject(objectType string) *Object {
	return &Object{Type: objectType}
}

// Set appends a field, replacing in place if the name already exists
func (o *Object) Set(name string, value interface{}) *Object {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			o.Fields[i].Value = value
			return o
		}
	}
	o.Fields = append(o.Fields, Field{Name: name, Value: value})
	return o
}

// Get returns the value of a field, if present
func (o *Object) Get(name string) (interface{}, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// GetObject returns a nested object field, if present
func (o *Object) GetObject(name string) (*Object, bool) {
	v, ok := o.Get(name)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// SoapCall is one outbound CashBox invocation. Action names the remote
// method and travels out-of-band: it is never part of the payload body.
type SoapCall struct {
	Endpoint string // invocation URL
	WSDL     string // schema URL for the target object type
	Object   string // CashBox object type, e.g. "Transaction"
	Action   string // remote method, e.g. "auth"
	Body     *Object
	Timeout  time.Duration // bounds this call; zero means the transport's default
}

// SoapReply is the decoded reply envelope. Values are nested
// map[string]interface{} trees with []interface{} for repeated elements;
// the transport may collapse a single-element array to a bare map, so
// consumers re-wrap defensively.
type SoapReply struct {
	Fields map[string]interface{}
}

// Get returns a top-level reply field, if present
func (r *SoapReply) Get(name string) (interface{}, bool) {
	if r == nil || r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// SoapClient dispatches CashBox calls. Implementations must surface
// transport failures as errors and never fabricate a reply.
type SoapClient interface {
	Call(ctx context.Context, call *SoapCall) (*SoapReply, error)
}
