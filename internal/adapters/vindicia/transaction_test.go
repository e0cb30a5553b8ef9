package vindicia

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibill/vindicia/internal/adapters/mock"
	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// TestAuthorize_SynthesizesGenericItem tests that an amount without
// items produces the single generic line the processor requires
func TestAuthorize_SynthesizesGenericItem(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(map[string]interface{}{
		"transaction": map[string]interface{}{
			"merchantTransactionId": "txn_1",
			"VID":                   "vid_txn",
			"amount":                "10.00",
			"currency":              "USD",
		},
	}))

	resp, err := g.Authorize(context.Background(), TransactionParams{
		TransactionID: "txn_1",
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      "USD",
		CustomerID:    "cust_1",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccessful())
	require.NotNil(t, resp.Transaction())
	assert.Equal(t, "vid_txn", resp.Transaction().Reference)

	call := client.LastCall()
	assert.Equal(t, "Transaction", call.Object)
	assert.Equal(t, "auth", call.Action)

	txn, ok := call.Body.GetObject("transaction")
	require.True(t, ok)
	amount, _ := txn.Get("amount")
	assert.Equal(t, "10.00", amount)

	itemsVal, ok := txn.Get("transactionItems")
	require.True(t, ok)
	items, ok := itemsVal.([]*ports.Object)
	require.True(t, ok)
	require.Len(t, items, 1)

	sku, _ := items[0].Get("sku")
	assert.Equal(t, "0", sku)
	name, _ := items[0].Get("name")
	assert.Equal(t, "Item", name)
	price, _ := items[0].Get("price")
	assert.Equal(t, "10.00", price)
	quantity, _ := items[0].Get("quantity")
	assert.Equal(t, 1, quantity)
	tax, _ := items[0].Get("taxClassification")
	assert.Equal(t, "Otherwise Exempt", tax)

	// The risk gate defaults to 100 (disabled) and the notification and
	// dryrun switches are pinned
	mcp, _ := call.Body.Get("minChargebackProbability")
	assert.Equal(t, 100, mcp)
	notify, _ := call.Body.Get("sendEmailNotification")
	assert.Equal(t, false, notify)
	dryrun, _ := call.Body.Get("dryrun")
	assert.Equal(t, false, dryrun)
}

// TestAuthorize_GeneratesTransactionID tests the merchant-id fallback
func TestAuthorize_GeneratesTransactionID(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.Authorize(context.Background(), TransactionParams{
		Amount:     decimal.RequireFromString("5.00"),
		Currency:   "USD",
		CustomerID: "cust_1",
	})
	require.NoError(t, err)

	txn, ok := client.LastCall().Body.GetObject("transaction")
	require.True(t, ok)
	id, ok := txn.Get("merchantTransactionId")
	require.True(t, ok)
	assert.NotEmpty(t, id)
}

// TestAuthorize_Validation tests the pre-dispatch input rules
func TestAuthorize_Validation(t *testing.T) {
	tests := []struct {
		name          string
		params        TransactionParams
		expectedField string
	}{
		{
			name: "amount or items required",
			params: TransactionParams{
				Currency:   "USD",
				CustomerID: "cust_1",
			},
			expectedField: "amount",
		},
		{
			name: "currency required",
			params: TransactionParams{
				Amount:     decimal.RequireFromString("10.00"),
				CustomerID: "cust_1",
			},
			expectedField: "currency",
		},
		{
			name: "customer identity required",
			params: TransactionParams{
				Amount:   decimal.RequireFromString("10.00"),
				Currency: "USD",
			},
			expectedField: "customerId",
		},
		{
			name: "item totals must equal amount",
			params: TransactionParams{
				Amount:     decimal.RequireFromString("10.00"),
				Currency:   "USD",
				CustomerID: "cust_1",
				Items: []models.Item{
					{SKU: "a", Price: decimal.RequireFromString("3.00"), Quantity: 3},
				},
			},
			expectedField: "items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, client := newTestGateway(t)

			_, err := g.Authorize(context.Background(), tt.params)
			var verr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.expectedField, verr.Field)
			assert.Empty(t, client.Calls())
		})
	}
}

// TestAuthorize_ItemizedAmountMatch tests that matching totals pass and
// each item carries a classification
func TestAuthorize_ItemizedAmountMatch(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.Authorize(context.Background(), TransactionParams{
		Amount:     decimal.RequireFromString("9.00"),
		Currency:   "USD",
		CustomerID: "cust_1",
		Items: []models.Item{
			{SKU: "widget", Price: decimal.RequireFromString("3.00"), Quantity: 2, TaxClassification: "TaxableGoods"},
			{Price: decimal.RequireFromString("3.00"), Quantity: 1},
		},
	})
	require.NoError(t, err)

	txn, _ := client.LastCall().Body.GetObject("transaction")
	itemsVal, _ := txn.Get("transactionItems")
	items := itemsVal.([]*ports.Object)
	require.Len(t, items, 2)

	tax0, _ := items[0].Get("taxClassification")
	assert.Equal(t, "TaxableGoods", tax0)

	// A missing sku falls back to the item's index, and a missing
	// classification to the configured default
	sku1, _ := items[1].Get("sku")
	assert.Equal(t, "1", sku1)
	tax1, _ := items[1].Get("taxClassification")
	assert.Equal(t, "Otherwise Exempt", tax1)
}

// TestPurchase_UsesAuthCapture tests the purchase/authorize method fork
func TestPurchase_UsesAuthCapture(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.Purchase(context.Background(), TransactionParams{
		Amount:     decimal.RequireFromString("10.00"),
		Currency:   "USD",
		CustomerID: "cust_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "authCapture", client.LastCall().Action)
}

// TestPurchase_InlineCard tests a purchase carrying raw card details
// with no stored payment method: the method rides the transaction and
// needs no merchant id of its own
func TestPurchase_InlineCard(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.Purchase(context.Background(), TransactionParams{
		Amount:     decimal.RequireFromString("10.00"),
		Currency:   "USD",
		CustomerID: "cust_1",
		Card: &CardParams{
			Number:      "4111111111111111",
			ExpiryMonth: 12,
			ExpiryYear:  2027,
			CVV:         "123",
		},
	})
	require.NoError(t, err)

	txn, _ := client.LastCall().Body.GetObject("transaction")
	method, ok := txn.GetObject("srcPaymentMethod")
	require.True(t, ok)
	methodType, _ := method.Get("type")
	assert.Equal(t, "CreditCard", methodType)
	_, hasID := method.Get("merchantPaymentMethodId")
	assert.False(t, hasID)
	cc, ok := method.GetObject("creditCard")
	require.True(t, ok)
	number, _ := cc.Get("account")
	assert.Equal(t, "4111111111111111", number)
}

// TestAuthorize_StoredMethodNeedsIdentity tests that referring to a
// stored payment method by type alone still fails the identity rule
func TestAuthorize_StoredMethodNeedsIdentity(t *testing.T) {
	g, client := newTestGateway(t)

	_, err := g.Authorize(context.Background(), TransactionParams{
		Amount:            decimal.RequireFromString("10.00"),
		Currency:          "USD",
		CustomerID:        "cust_1",
		PaymentMethodType: models.PaymentMethodCreditCard,
	})
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "paymentMethodId", verr.Field)
	assert.Empty(t, client.Calls())
}

// TestCapture tests the multi-transaction capture call and its counter
// parsing
func TestCapture(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(map[string]interface{}{
		"return": map[string]interface{}{
			"returnCode":   "200",
			"returnString": "OK",
			"qtySuccess":   "2",
			"qtyFail":      "0",
		},
		"results": []interface{}{
			map[string]interface{}{"merchantTransactionId": "txn_1", "returnCode": "200"},
			map[string]interface{}{"merchantTransactionId": "txn_2", "returnCode": "200"},
		},
	})

	resp, err := g.Capture(context.Background(), CaptureParams{
		TransactionIDs:        []string{"txn_1"},
		TransactionReferences: []string{"vid_2"},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccessful())
	assert.Equal(t, 2, resp.QtySuccess)
	assert.Equal(t, 0, resp.QtyFail)

	call := client.LastCall()
	assert.Equal(t, "capture", call.Action)
	refsVal, _ := call.Body.Get("transactions")
	refs := refsVal.([]*ports.Object)
	require.Len(t, refs, 2)
	id, _ := refs[0].Get("merchantTransactionId")
	assert.Equal(t, "txn_1", id)
	vid, _ := refs[1].Get("VID")
	assert.Equal(t, "vid_2", vid)
}

// TestCapture_InconsistentCounters tests that a reply whose counters
// contradict its per-record codes is rejected outright
func TestCapture_InconsistentCounters(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(map[string]interface{}{
		"return": map[string]interface{}{
			"returnCode":   "200",
			"returnString": "OK",
			"qtySuccess":   "1",
			"qtyFail":      "0",
		},
		// One record failed but qtyFail claims none did
		"results": map[string]interface{}{
			"merchantTransactionId": "txn_1",
			"returnCode":            "402",
		},
	})

	_, err := g.Capture(context.Background(), CaptureParams{TransactionIDs: []string{"txn_1"}})
	require.Error(t, err)

	var ierr *pkgerrors.InconsistentReplyError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "capture", ierr.Action)
}

// TestCapture_CounterRecordMismatch tests the reverse disagreements: a
// claimed failure no record shows, and a success count the records
// cannot support
func TestCapture_CounterRecordMismatch(t *testing.T) {
	tests := []struct {
		name    string
		ret     map[string]interface{}
		results interface{}
	}{
		{
			name: "qtyFail claims a failure no record shows",
			ret: map[string]interface{}{
				"returnCode":   "200",
				"returnString": "OK",
				"qtySuccess":   "1",
				"qtyFail":      "1",
			},
			results: []interface{}{
				map[string]interface{}{"merchantTransactionId": "txn_1", "returnCode": "200"},
				map[string]interface{}{"merchantTransactionId": "txn_2", "returnCode": "200"},
			},
		},
		{
			name: "qtySuccess exceeds the per-record successes",
			ret: map[string]interface{}{
				"returnCode":   "200",
				"returnString": "OK",
				"qtySuccess":   "2",
				"qtyFail":      "0",
			},
			results: map[string]interface{}{
				"merchantTransactionId": "txn_1",
				"returnCode":            "200",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, client := newTestGateway(t)
			client.EnqueueReply(map[string]interface{}{
				"return":  tt.ret,
				"results": tt.results,
			})

			_, err := g.Capture(context.Background(), CaptureParams{
				TransactionIDs: []string{"txn_1", "txn_2"},
			})
			var ierr *pkgerrors.InconsistentReplyError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, "capture", ierr.Action)
		})
	}
}

// TestCapture_PartialFailureIsConsistent tests that an honestly reported
// partial failure parses fine
func TestCapture_PartialFailureIsConsistent(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(map[string]interface{}{
		"return": map[string]interface{}{
			"returnCode":   "200",
			"returnString": "OK",
			"qtySuccess":   "1",
			"qtyFail":      "1",
		},
		"results": []interface{}{
			map[string]interface{}{"merchantTransactionId": "txn_1", "returnCode": "200"},
			map[string]interface{}{"merchantTransactionId": "txn_2", "returnCode": "402"},
		},
	})

	resp, err := g.Capture(context.Background(), CaptureParams{
		TransactionIDs: []string{"txn_1", "txn_2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.QtySuccess)
	assert.Equal(t, 1, resp.QtyFail)
}

// TestVoid tests the cancel method and its identity guard
func TestVoid(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(map[string]interface{}{
		"return": map[string]interface{}{
			"returnCode":   "200",
			"returnString": "OK",
			"qtySuccess":   "1",
			"qtyFail":      "0",
		},
	})

	_, err := g.Void(context.Background(), VoidParams{TransactionIDs: []string{"txn_1"}})
	require.NoError(t, err)
	assert.Equal(t, "cancel", client.LastCall().Action)

	_, err = g.Void(context.Background(), VoidParams{})
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "transactionId", verr.Field)
}

// TestCalculateSalesTax_DegradedServiceIsSuccess tests the 202
// tax-service-down whitelist
func TestCalculateSalesTax_DegradedServiceIsSuccess(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.DeclineReply("202", "Tax service unavailable"))

	resp, err := g.CalculateSalesTax(context.Background(), CalculateSalesTaxParams{
		Amount:     decimal.RequireFromString("25.00"),
		Currency:   "USD",
		PostalCode: "94105",
		Country:    "US",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccessful())
	assert.Equal(t, "202", resp.Code())

	call := client.LastCall()
	assert.Equal(t, "calculateSalesTax", call.Action)
	txn, _ := call.Body.GetObject("transaction")
	addr, ok := txn.GetObject("shippingAddress")
	require.True(t, ok)
	postal, _ := addr.Get("postalCode")
	assert.Equal(t, "94105", postal)
}

// TestAuthorize_TaxDegradedIsNotSuccess tests that 202 stays a decline
// outside the tax quote whitelist
func TestAuthorize_TaxDegradedIsNotSuccess(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.DeclineReply("202", "Tax service unavailable"))

	resp, err := g.Authorize(context.Background(), TransactionParams{
		Amount:     decimal.RequireFromString("10.00"),
		Currency:   "USD",
		CustomerID: "cust_1",
	})
	require.NoError(t, err)
	assert.False(t, resp.IsSuccessful())
}

// TestFetchTransactions_SelectionModes tests the by-customer vs by-range
// fork and its validation
func TestFetchTransactions_SelectionModes(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		params         FetchListParams
		expectedAction string
		expectErr      bool
	}{
		{
			name:           "by customer",
			params:         FetchListParams{CustomerID: "cust_1"},
			expectedAction: "fetchByAccount",
		},
		{
			name:           "by range",
			params:         FetchListParams{StartTime: &start, EndTime: &end},
			expectedAction: "fetchDeltaSince",
		},
		{
			name:      "identity and range cannot combine",
			params:    FetchListParams{CustomerID: "cust_1", StartTime: &start, EndTime: &end},
			expectErr: true,
		},
		{
			name:      "range needs both bounds",
			params:    FetchListParams{StartTime: &start},
			expectErr: true,
		},
		{
			name:      "empty selection",
			params:    FetchListParams{},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, client := newTestGateway(t)
			client.EnqueueReply(mock.SuccessReply(nil))

			_, err := g.FetchTransactions(context.Background(), tt.params)
			if tt.expectErr {
				var verr *pkgerrors.ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedAction, client.LastCall().Action)
		})
	}
}

// TestFetchTransaction_ByReference tests the vid fetch path
func TestFetchTransaction_ByReference(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.FetchTransaction(context.Background(), FetchParams{Reference: "vid_txn"})
	require.NoError(t, err)

	call := client.LastCall()
	assert.Equal(t, "fetchByVid", call.Action)
	vid, _ := call.Body.Get("vid")
	assert.Equal(t, "vid_txn", vid)
}
