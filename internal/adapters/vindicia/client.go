package vindicia

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// SoapClient is the real transport: one synchronous, blocking HTTP POST
// per call. The caller-configured timeout covers both the connection
// and response phases; on timeout the failure surfaces as a transport
// error, never as a decline.
type SoapClient struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSoapClient creates the HTTP-backed transport
func NewSoapClient(timeout time.Duration, logger *zap.Logger) *SoapClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SoapClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Call dispatches one CashBox invocation. A per-call timeout bounds the
// whole exchange; zero falls back to the client-wide default.
func (c *SoapClient) Call(ctx context.Context, call *ports.SoapCall) (*ports.SoapReply, error) {
	payload, err := encodeEnvelope(call)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	c.logger.Debug("posting CashBox envelope",
		zap.String("endpoint", call.Endpoint),
		zap.String("action", call.Action),
		zap.Int("payload_bytes", len(payload)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", call.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", call.Action)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.NewPaymentError("NETWORK_ERROR",
			"failed to connect to payment gateway", pkgerrors.CategoryNetworkError, true)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 500 {
		return nil, pkgerrors.NewPaymentError("GATEWAY_ERROR",
			"payment gateway error", pkgerrors.CategorySystemError, true)
	}
	if httpResp.StatusCode >= 400 {
		return nil, pkgerrors.NewPaymentError("REQUEST_ERROR",
			"invalid request to payment gateway", pkgerrors.CategoryInvalidRequest, false)
	}

	fields, err := decodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &ports.SoapReply{Fields: fields}, nil
}

// encodeEnvelope serializes a call into a SOAP envelope. The action
// names the wrapping element; it is never a payload field.
func encodeEnvelope(call *ports.SoapCall) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	ns := fmt.Sprintf("http://soap.vindicia.com/v18_0/%s", call.Object)
	buf.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"`)
	buf.WriteString(` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)
	buf.WriteString(fmt.Sprintf(` xmlns:vin="%s">`, ns))
	buf.WriteString("<soapenv:Body>")
	buf.WriteString(fmt.Sprintf("<vin:%s>", call.Action))
	if err := encodeFields(&buf, call.Body.Fields); err != nil {
		return nil, err
	}
	buf.WriteString(fmt.Sprintf("</vin:%s>", call.Action))
	buf.WriteString("</soapenv:Body></soapenv:Envelope>")
	return buf.Bytes(), nil
}

// encodeFields writes payload fields in declaration order
func encodeFields(buf *bytes.Buffer, fields []ports.Field) error {
	for _, field := range fields {
		if err := encodeValue(buf, field.Name, field.Value); err != nil {
			return err
		}
	}
	return nil
}

// encodeValue writes one element; nil encodes as xsi:nil
func encodeValue(buf *bytes.Buffer, name string, value interface{}) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString(fmt.Sprintf(`<%s xsi:nil="true"/>`, name))
	case *ports.Object:
		if v == nil {
			buf.WriteString(fmt.Sprintf(`<%s xsi:nil="true"/>`, name))
			return nil
		}
		buf.WriteString(fmt.Sprintf("<%s>", name))
		if err := encodeFields(buf, v.Fields); err != nil {
			return err
		}
		buf.WriteString(fmt.Sprintf("</%s>", name))
	case []*ports.Object:
		for _, obj := range v {
			if err := encodeValue(buf, name, obj); err != nil {
				return err
			}
		}
	case []string:
		for _, s := range v {
			if err := encodeValue(buf, name, s); err != nil {
				return err
			}
		}
	default:
		buf.WriteString(fmt.Sprintf("<%s>", name))
		if err := xml.EscapeText(buf, []byte(models.WireValue(v))); err != nil {
			return err
		}
		buf.WriteString(fmt.Sprintf("</%s>", name))
	}
	return nil
}

// decodeEnvelope parses a reply into a generic field tree. Repeated
// sibling elements become slices; a single occurrence stays a bare
// value, which is exactly the collapse quirk the object builders
// re-wrap.
func decodeEnvelope(body []byte) (map[string]interface{}, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("reply has no body element")
		}
		if err != nil {
			return nil, err
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "Body" {
			// The response wrapper is the first element inside Body;
			// its children are the reply fields
			wrapper, err := decodeElement(decoder, start)
			if err != nil {
				return nil, err
			}
			for _, v := range wrapper {
				if m, ok := v.(map[string]interface{}); ok {
					return m, nil
				}
			}
			return nil, fmt.Errorf("reply body is empty")
		}
	}
}

// decodeElement reads one element's children into a map, accumulating
// text content for leaves
func decodeElement(decoder *xml.Decoder, start xml.StartElement) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	var text bytes.Buffer
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			child, err := decodeElement(decoder, t)
			if err != nil {
				return nil, err
			}
			var value interface{}
			if inner, ok := child["#text"]; ok && len(child) == 1 {
				value = inner
			} else if len(child) == 0 {
				value = ""
			} else {
				value = child
			}
			addChild(result, t.Name.Local, value)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if trimmed := bytes.TrimSpace(text.Bytes()); len(trimmed) > 0 && len(result) == 0 {
				result["#text"] = string(trimmed)
			}
			return result, nil
		}
	}
}

// addChild inserts a child value, promoting repeats to a slice
func addChild(m map[string]interface{}, name string, value interface{}) {
	existing, ok := m[name]
	if !ok {
		m[name] = value
		return
	}
	if slice, ok := existing.([]interface{}); ok {
		m[name] = append(slice, value)
		return
	}
	m[name] = []interface{}{existing, value}
}
