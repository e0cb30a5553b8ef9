package vindicia

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Apple Pay merchant session validation. This is the one flow that does
// not ride the RPC contract: the browser hands the merchant a
// validation URL, and the merchant proves its identity to Apple with a
// JSON POST over a TLS client certificate. Success is solely HTTP 200.

// ApplePaySessionResponse holds Apple's session object merged with the
// HTTP status of the validation call
type ApplePaySessionResponse struct {
	StatusCode int
	Reason     string
	Session    map[string]interface{}
}

// IsSuccessful reports whether Apple accepted the validation
func (r *ApplePaySessionResponse) IsSuccessful() bool {
	return r.StatusCode == 200
}

// ValidateApplePaySession performs the merchant validation POST
func (g *Gateway) ValidateApplePaySession(ctx context.Context, p ApplePaySessionParams) (*ApplePaySessionResponse, error) {
	if p.ValidationURL == "" {
		return nil, pkgerrors.NewValidationError("validationUrl", "validationUrl is required")
	}
	if p.MerchantIdentifier == "" {
		return nil, pkgerrors.NewValidationError("merchantIdentifier", "merchantIdentifier is required")
	}
	if p.CertFile == "" || p.KeyFile == "" {
		return nil, pkgerrors.NewValidationError("certFile",
			"certFile and keyFile are required for merchant validation")
	}

	cert, err := tls.LoadX509KeyPair(p.CertFile, p.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant certificate: %w", err)
	}

	client := resty.New().
		SetTimeout(g.cfg.Timeout).
		SetCertificates(cert)

	var session map[string]interface{}
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"merchantIdentifier": p.MerchantIdentifier,
			"displayName":        p.DisplayName,
			"initiative":         "web",
			"initiativeContext":  p.DomainName,
		}).
		SetResult(&session).
		Post(p.ValidationURL)
	if err != nil {
		return nil, pkgerrors.NewPaymentError("NETWORK_ERROR",
			"failed to reach the Apple Pay validation endpoint",
			pkgerrors.CategoryNetworkError, true)
	}

	g.logger.Info("Apple Pay session validation completed",
		zap.Int("status_code", resp.StatusCode()),
		zap.String("merchant_identifier", p.MerchantIdentifier),
	)

	return &ApplePaySessionResponse{
		StatusCode: resp.StatusCode(),
		Reason:     resp.Status(),
		Session:    session,
	}, nil
}
