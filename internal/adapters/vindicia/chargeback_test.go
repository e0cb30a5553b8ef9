package vindicia

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibill/vindicia/internal/adapters/mock"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// TestFetchChargebacks_SelectionModes tests the disputed-transaction vs
// time-range fork and its validation
func TestFetchChargebacks_SelectionModes(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		params         FetchChargebacksParams
		expectedAction string
		expectErr      bool
	}{
		{
			name:           "by merchant transaction id",
			params:         FetchChargebacksParams{TransactionID: "txn_1"},
			expectedAction: "fetchByMerchantTransactionId",
		},
		{
			name:           "by chargeback reference",
			params:         FetchChargebacksParams{ChargebackReference: "vid_cb"},
			expectedAction: "fetchByVid",
		},
		{
			name:           "by range",
			params:         FetchChargebacksParams{StartTime: &start, EndTime: &end},
			expectedAction: "fetchDeltaSince",
		},
		{
			name:      "identity and range cannot combine",
			params:    FetchChargebacksParams{TransactionID: "txn_1", StartTime: &start, EndTime: &end},
			expectErr: true,
		},
		{
			name:      "range needs both bounds",
			params:    FetchChargebacksParams{EndTime: &end},
			expectErr: true,
		},
		{
			name:      "empty selection",
			params:    FetchChargebacksParams{},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, client := newTestGateway(t)
			client.EnqueueReply(mock.SuccessReply(nil))

			_, err := g.FetchChargebacks(context.Background(), tt.params)
			if tt.expectErr {
				var verr *pkgerrors.ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Chargeback", client.LastCall().Object)
			assert.Equal(t, tt.expectedAction, client.LastCall().Action)
		})
	}
}

// TestFetchChargebacks_ByReferenceSelectsOwnVID tests that the
// reference lookup keys on the chargeback's own VID, not the disputed
// transaction's
func TestFetchChargebacks_ByReferenceSelectsOwnVID(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.FetchChargebacks(context.Background(), FetchChargebacksParams{
		ChargebackReference: "vid_cb",
	})
	require.NoError(t, err)

	call := client.LastCall()
	assert.Equal(t, "fetchByVid", call.Action)
	vid, ok := call.Body.Get("vid")
	require.True(t, ok)
	assert.Equal(t, "vid_cb", vid)
	_, hasTxn := call.Body.Get("merchantTransactionId")
	assert.False(t, hasTxn)
}

// TestFetchChargebacks_RangeCarriesPagination tests that a delta fetch
// always pages from the start
func TestFetchChargebacks_RangeCarriesPagination(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	_, err := g.FetchChargebacks(context.Background(), FetchChargebacksParams{
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)

	call := client.LastCall()
	page, _ := call.Body.Get("page")
	assert.Equal(t, 0, page)
	pageSize, _ := call.Body.Get("pageSize")
	assert.Equal(t, 100, pageSize)
	ts, _ := call.Body.Get("timestamp")
	assert.Equal(t, "2026-07-01T00:00:00+00:00", ts)
}

// TestFetchChargebacks_ParsesBankReportingFields tests the chargeback
// object builder, which has no merchant id to parse
func TestFetchChargebacks_ParsesBankReportingFields(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(map[string]interface{}{
		"chargebacks": map[string]interface{}{
			"VID":                   "vid_cb",
			"amount":                "25.00",
			"currency":              "USD",
			"status":                "New",
			"merchantTransactionId": "txn_1",
			"reasonCode":            "10.4",
			"caseNumber":            "CASE-42",
			"referenceNumber":       "REF-9",
		},
	}))

	resp, err := g.FetchChargebacks(context.Background(), FetchChargebacksParams{TransactionID: "txn_1"})
	require.NoError(t, err)

	chargebacks := resp.Chargebacks()
	require.Len(t, chargebacks, 1)
	cb := chargebacks[0]
	assert.Equal(t, "vid_cb", cb.Reference)
	assert.Equal(t, "25.00", cb.Amount.StringFixed(2))
	assert.Equal(t, "10.4", cb.ReasonCode)
	assert.Equal(t, "CASE-42", cb.CaseNumber)
	assert.Equal(t, "txn_1", cb.TransactionID)
}

// TestUpdateChargeback tests the reference-only identity rule
func TestUpdateChargeback(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.UpdateChargeback(context.Background(), UpdateChargebackParams{
		ChargebackReference: "vid_cb",
		Status:              "Disputed",
		CaseNumber:          "CASE-42",
	})
	require.NoError(t, err)

	call := client.LastCall()
	assert.Equal(t, "update", call.Action)
	cb, _ := call.Body.GetObject("chargeback")
	vid, _ := cb.Get("VID")
	assert.Equal(t, "vid_cb", vid)
	status, _ := cb.Get("status")
	assert.Equal(t, "Disputed", status)

	_, err = g.UpdateChargeback(context.Background(), UpdateChargebackParams{Status: "Disputed"})
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "chargebackReference", verr.Field)
}
