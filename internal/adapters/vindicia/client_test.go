package vindicia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// TestEncodeEnvelope tests the request serialization: the action wraps
// the payload, nil encodes as xsi:nil and lists repeat their element
func TestEncodeEnvelope(t *testing.T) {
	txn := ports.NewObject("Transaction")
	txn.Set("merchantTransactionId", "txn_1")
	txn.Set("amount", "10.00")

	item1 := ports.NewObject("TransactionItem")
	item1.Set("sku", "a")
	item2 := ports.NewObject("TransactionItem")
	item2.Set("sku", "b")
	txn.Set("transactionItems", []*ports.Object{item1, item2})

	body := ports.NewObject("Transaction")
	body.Set("transaction", txn)
	body.Set("campaignCode", nil)
	body.Set("dryrun", false)
	body.Set("minChargebackProbability", 100)

	payload, err := encodeEnvelope(&ports.SoapCall{
		Object: "Transaction",
		Action: "auth",
		Body:   body,
	})
	require.NoError(t, err)

	xml := string(payload)
	assert.Contains(t, xml, `xmlns:vin="http://soap.vindicia.com/v18_0/Transaction"`)
	assert.Contains(t, xml, "<vin:auth>")
	assert.Contains(t, xml, "</vin:auth>")
	assert.Contains(t, xml, "<merchantTransactionId>txn_1</merchantTransactionId>")
	assert.Contains(t, xml, `<campaignCode xsi:nil="true"/>`)
	assert.Contains(t, xml, "<dryrun>false</dryrun>")
	assert.Contains(t, xml, "<minChargebackProbability>100</minChargebackProbability>")

	// Repeated elements, one per list entry, in order
	assert.Contains(t, xml, "<transactionItems><sku>a</sku></transactionItems><transactionItems><sku>b</sku></transactionItems>")
}

// TestEncodeEnvelope_EscapesText tests XML escaping of field values
func TestEncodeEnvelope_EscapesText(t *testing.T) {
	body := ports.NewObject("Account")
	account := ports.NewObject("Account")
	account.Set("name", `Jones & Sons <Ltd>`)
	body.Set("account", account)

	payload, err := encodeEnvelope(&ports.SoapCall{Object: "Account", Action: "update", Body: body})
	require.NoError(t, err)
	assert.Contains(t, string(payload), "<name>Jones &amp; Sons &lt;Ltd&gt;</name>")
}

// TestDecodeEnvelope tests reply parsing, including the single-element
// collapse: one occurrence stays a bare map, repeats become a slice
func TestDecodeEnvelope(t *testing.T) {
	reply := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <performResponse>
      <return>
        <returnCode>200</returnCode>
        <returnString>OK</returnString>
      </return>
      <refunds>
        <merchantRefundId>ref_1</merchantRefundId>
        <amount>5.00</amount>
      </refunds>
      <refunds>
        <merchantRefundId>ref_2</merchantRefundId>
        <amount>7.50</amount>
      </refunds>
    </performResponse>
  </soap:Body>
</soap:Envelope>`)

	fields, err := decodeEnvelope(reply)
	require.NoError(t, err)

	ret, ok := fields["return"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "200", ret["returnCode"])
	assert.Equal(t, "OK", ret["returnString"])

	refunds, ok := fields["refunds"].([]interface{})
	require.True(t, ok)
	require.Len(t, refunds, 2)
	first := refunds[0].(map[string]interface{})
	assert.Equal(t, "ref_1", first["merchantRefundId"])
	assert.Equal(t, "5.00", first["amount"])
}

// TestDecodeEnvelope_SingleElementCollapses tests that one element does
// not become a slice
func TestDecodeEnvelope_SingleElementCollapses(t *testing.T) {
	reply := []byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <fetchByVidResponse>
      <return><returnCode>200</returnCode><returnString>OK</returnString></return>
      <refunds><merchantRefundId>ref_1</merchantRefundId></refunds>
    </fetchByVidResponse>
  </soap:Body>
</soap:Envelope>`)

	fields, err := decodeEnvelope(reply)
	require.NoError(t, err)

	single, ok := fields["refunds"].(map[string]interface{})
	require.True(t, ok, "a lone element must stay a bare map")
	assert.Equal(t, "ref_1", single["merchantRefundId"])

	// The object builders re-wrap the collapsed form
	assert.Len(t, asSlice(fields["refunds"]), 1)
}

// TestDecodeEnvelope_RoundTrip tests that an encoded request decodes
// back to its field values
func TestDecodeEnvelope_RoundTrip(t *testing.T) {
	account := ports.NewObject("Account")
	account.Set("merchantAccountId", "cust_1")
	account.Set("emailAddress", "customer@example.com")
	body := ports.NewObject("Account")
	body.Set("account", account)

	payload, err := encodeEnvelope(&ports.SoapCall{Object: "Account", Action: "update", Body: body})
	require.NoError(t, err)

	fields, err := decodeEnvelope(payload)
	require.NoError(t, err)

	decoded, ok := fields["account"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cust_1", decoded["merchantAccountId"])
	assert.Equal(t, "customer@example.com", decoded["emailAddress"])
}

// TestDecodeEnvelope_NoBody tests the malformed-document failure
func TestDecodeEnvelope_NoBody(t *testing.T) {
	_, err := decodeEnvelope([]byte(`<?xml version="1.0"?><notSoap/>`))
	assert.Error(t, err)
}

// TestCall_PerCallTimeout tests that the call-level timeout bounds the
// exchange even when the client-wide timeout is longer
func TestCall_PerCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewSoapClient(time.Minute, zap.NewNop())
	body := ports.NewObject("Account")
	body.Set("account", ports.NewObject("Account"))

	_, err := client.Call(context.Background(), &ports.SoapCall{
		Endpoint: server.URL,
		Object:   "Account",
		Action:   "update",
		Body:     body,
		Timeout:  time.Millisecond,
	})
	require.Error(t, err)

	var perr *pkgerrors.PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pkgerrors.CategoryNetworkError, perr.Category)
	assert.True(t, perr.IsRetriable)
}
