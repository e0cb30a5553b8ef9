package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/omnibill/vindicia/internal/adapters/ports"
)

// SoapClient is a scripted transport for tests. Each instance owns its
// own reply queue and is injected through the gateway constructor;
// nothing is process-wide.
type SoapClient struct {
	mu      sync.Mutex
	replies []scripted
	calls   []*ports.SoapCall
}

type scripted struct {
	reply *ports.SoapReply
	err   error
}

// NewSoapClient creates an empty scripted transport
func NewSoapClient() *SoapClient {
	return &SoapClient{}
}

// EnqueueReply scripts the next reply
func (c *SoapClient) EnqueueReply(fields map[string]interface{}) *SoapClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, scripted{reply: &ports.SoapReply{Fields: fields}})
	return c
}

// EnqueueError scripts the next call to fail at the transport level
func (c *SoapClient) EnqueueError(err error) *SoapClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, scripted{err: err})
	return c
}

// Call pops the next scripted reply and records the call for assertions
func (c *SoapClient) Call(_ context.Context, call *ports.SoapCall) (*ports.SoapReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	if len(c.replies) == 0 {
		return nil, fmt.Errorf("mock transport: no reply scripted for %s.%s", call.Object, call.Action)
	}
	next := c.replies[0]
	c.replies = c.replies[1:]
	if next.err != nil {
		return nil, next.err
	}
	return next.reply, nil
}

// Calls returns every dispatched call in order
func (c *SoapClient) Calls() []*ports.SoapCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastCall returns the most recent call, or nil
func (c *SoapClient) LastCall() *ports.SoapCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[len(c.calls)-1]
}

// SuccessReply builds a minimal successful envelope with optional
// payload siblings
func SuccessReply(payload map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"return": map[string]interface{}{
			"returnCode":   "200",
			"returnString": "OK",
		},
	}
	for k, v := range payload {
		fields[k] = v
	}
	return fields
}

// DeclineReply builds an envelope carrying a non-success code
func DeclineReply(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"return": map[string]interface{}{
			"returnCode":   code,
			"returnString": message,
		},
	}
}
