package vindicia

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibill/vindicia/internal/adapters/mock"
	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// TestCreatePlan tests the billing plan payload: the interval becomes a
// single period carrying the price list
func TestCreatePlan(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(map[string]interface{}{
		"billingPlan": map[string]interface{}{
			"merchantBillingPlanId": "plan_1",
			"VID":                   "vid_plan",
			"periods": map[string]interface{}{
				"type":     "Month",
				"quantity": "1",
				"prices": []interface{}{
					map[string]interface{}{"currency": "USD", "amount": "9.99"},
					map[string]interface{}{"currency": "EUR", "amount": "8.99"},
				},
			},
		},
	}))

	resp, err := g.CreatePlan(context.Background(), PlanParams{
		PlanID:        "plan_1",
		IntervalUnit:  models.IntervalMonth,
		IntervalCount: 1,
		Prices: []models.Price{
			{Currency: "USD", Amount: decimal.RequireFromString("9.99")},
			{Currency: "EUR", Amount: decimal.RequireFromString("8.99")},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccessful())

	plan := resp.Plan()
	require.NotNil(t, plan)
	assert.Equal(t, "plan_1", plan.ID)
	assert.Equal(t, models.IntervalMonth, plan.IntervalUnit)
	assert.Equal(t, 1, plan.IntervalCount)
	require.NotNil(t, plan.Prices)
	usd, ok := plan.Prices.Get("USD")
	require.True(t, ok)
	assert.Equal(t, "9.99", usd.Amount.StringFixed(2))

	call := client.LastCall()
	assert.Equal(t, "BillingPlan", call.Object)
	assert.Equal(t, "update", call.Action)

	planObj, _ := call.Body.GetObject("billingPlan")
	periodsVal, ok := planObj.Get("periods")
	require.True(t, ok)
	periods := periodsVal.([]*ports.Object)
	require.Len(t, periods, 1)
	periodType, _ := periods[0].Get("type")
	assert.Equal(t, "Month", periodType)
	quantity, _ := periods[0].Get("quantity")
	assert.Equal(t, 1, quantity)

	pricesVal, _ := periods[0].Get("prices")
	prices := pricesVal.([]*ports.Object)
	require.Len(t, prices, 2)
	amount, _ := prices[0].Get("amount")
	assert.Equal(t, "9.99", amount)
}

// TestCreatePlan_Validation tests interval and price rules
func TestCreatePlan_Validation(t *testing.T) {
	price := models.Price{Currency: "USD", Amount: decimal.RequireFromString("9.99")}

	tests := []struct {
		name          string
		params        PlanParams
		expectedField string
	}{
		{
			name:          "merchant id required",
			params:        PlanParams{IntervalUnit: models.IntervalMonth, IntervalCount: 1},
			expectedField: "planId",
		},
		{
			name:          "interval required",
			params:        PlanParams{PlanID: "plan_1"},
			expectedField: "interval",
		},
		{
			name: "price and prices are exclusive",
			params: PlanParams{
				PlanID:        "plan_1",
				IntervalUnit:  models.IntervalMonth,
				IntervalCount: 1,
				Price:         &price,
				Prices:        []models.Price{price},
			},
			expectedField: "price",
		},
		{
			name: "duplicate currency",
			params: PlanParams{
				PlanID:        "plan_1",
				IntervalUnit:  models.IntervalMonth,
				IntervalCount: 1,
				Prices:        []models.Price{price, price},
			},
			expectedField: "prices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t)

			_, err := g.CreatePlan(context.Background(), tt.params)
			var verr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.expectedField, verr.Field)
		})
	}
}

// TestUpdatePlan_IntervalOptional tests that update may omit the
// interval when no prices are sent
func TestUpdatePlan_IntervalOptional(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.UpdatePlan(context.Background(), PlanParams{
		PlanReference:     "vid_plan",
		TaxClassification: "TaxableGoods",
	})
	require.NoError(t, err)

	planObj, _ := client.LastCall().Body.GetObject("billingPlan")
	_, hasPeriods := planObj.Get("periods")
	assert.False(t, hasPeriods)
	tax, _ := planObj.Get("taxClassification")
	assert.Equal(t, "TaxableGoods", tax)
}

// TestFetchPlan_MethodSelection tests the id vs reference fork
func TestFetchPlan_MethodSelection(t *testing.T) {
	g, client := newTestGateway(t)
	client.EnqueueReply(mock.SuccessReply(nil))

	_, err := g.FetchPlan(context.Background(), FetchParams{ID: "plan_1"})
	require.NoError(t, err)

	call := client.LastCall()
	assert.Equal(t, "fetchByMerchantBillingPlanId", call.Action)
	id, _ := call.Body.Get("merchantBillingPlanId")
	assert.Equal(t, "plan_1", id)
}
