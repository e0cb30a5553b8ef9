package vindicia

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/config"
	"github.com/omnibill/vindicia/pkg/observability"
)

// Gateway is the direct (server-to-server) facade: one method per
// operation, each dispatching exactly one CashBox call. The transport is
// constructor-injected so tests substitute it per instance; there is no
// process-wide hook.
type Gateway struct {
	cfg    *config.Config
	client ports.SoapClient
	logger *zap.Logger
}

// New creates a gateway facade
func New(cfg *config.Config, client ports.SoapClient, logger *zap.Logger) *Gateway {
	cfg.Normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{cfg: cfg, client: client, logger: logger}
}

// send dispatches one call and wraps the reply. The action travels
// out-of-band in the call, never inside the payload body.
func (g *Gateway) send(ctx context.Context, objectType, action string, args *ports.Object, successCodes []string) (*Response, error) {
	reply, err := g.dispatch(ctx, objectType, action, args)
	if err != nil {
		return nil, err
	}
	resp, err := newResponse(action, reply, successCodes)
	if err != nil {
		return nil, err
	}
	g.observe(objectType, action, resp.Code())
	return resp, nil
}

// dispatch performs the raw call with logging and timing
func (g *Gateway) dispatch(ctx context.Context, objectType, action string, args *ports.Object) (*ports.SoapReply, error) {
	body := ports.NewObject(objectType)
	body.Set("auth", buildAuth(g.cfg))
	// The processor requires the srd marker present and empty on every
	// call
	body.Set("srd", "")
	for _, f := range args.Fields {
		body.Set(f.Name, f.Value)
	}

	call := &ports.SoapCall{
		Endpoint: soapURL(g.cfg),
		WSDL:     wsdlURL(g.cfg, objectType),
		Object:   objectType,
		Action:   action,
		Body:     body,
		Timeout:  g.cfg.Timeout,
	}

	g.logger.Debug("dispatching CashBox call",
		zap.String("object", objectType),
		zap.String("action", action),
		zap.Bool("test_mode", g.cfg.TestMode),
	)

	start := time.Now()
	reply, err := g.client.Call(ctx, call)
	observability.ObserveRPCDuration(objectType, action, time.Since(start))
	if err != nil {
		observability.RecordRPC(objectType, action, "transport_error")
		g.logger.Error("CashBox call failed",
			zap.String("object", objectType),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, err
	}
	return reply, nil
}

// observe records the reply's return code
func (g *Gateway) observe(objectType, action, code string) {
	observability.RecordRPC(objectType, action, code)
	g.logger.Info("CashBox call completed",
		zap.String("object", objectType),
		zap.String("action", action),
		zap.String("return_code", code),
	)
}

// PayPalGateway exposes the redirect-based PayPal flow. It shares the
// card gateway's dispatch but forks the payload construction by payment
// method.
type PayPalGateway struct {
	*Gateway
}

// NewPayPal creates a PayPal facade over the same configuration
func NewPayPal(cfg *config.Config, client ports.SoapClient, logger *zap.Logger) *PayPalGateway {
	return &PayPalGateway{Gateway: New(cfg, client, logger)}
}

// HOAGateway exposes the hosted (Web Session) flow, where the browser
// posts sensitive fields straight to the processor
type HOAGateway struct {
	*Gateway
}

// NewHOA creates a hosted-flow facade over the same configuration
func NewHOA(cfg *config.Config, client ports.SoapClient, logger *zap.Logger) *HOAGateway {
	return &HOAGateway{Gateway: New(cfg, client, logger)}
}
