package vindicia

import (
	"context"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Chargeback operations. Chargebacks are discovered by the disputed
// transaction or by delta since a time; the processor assigns them no
// merchant id, so updates go by reference alone.

// FetchChargebacks lists chargebacks by the disputed transaction's
// merchant id, by the chargeback's own reference, or by time range; an
// identity cannot combine with a range
func (g *Gateway) FetchChargebacks(ctx context.Context, p FetchChargebacksParams) (*Response, error) {
	hasIdentity := p.TransactionID != "" || p.ChargebackReference != ""
	hasRange := p.StartTime != nil || p.EndTime != nil

	switch {
	case hasIdentity && hasRange:
		return nil, pkgerrors.NewValidationError("transactionId",
			"identity-based and time-range-based lookups cannot be combined")
	case hasRange:
		if p.StartTime == nil || p.EndTime == nil {
			return nil, pkgerrors.NewValidationError("startTime",
				"both startTime and endTime are required for a range fetch")
		}
		args := ports.NewObject("Chargeback")
		args.Set("timestamp", p.StartTime.Format(wireTimeFormat))
		args.Set("endTimestamp", p.EndTime.Format(wireTimeFormat))
		args.Set("page", 0)
		args.Set("pageSize", 100)
		return g.send(ctx, "Chargeback", "fetchDeltaSince", args, defaultSuccessCodes)
	case p.TransactionID != "":
		args := ports.NewObject("Chargeback")
		args.Set("merchantTransactionId", p.TransactionID)
		return g.send(ctx, "Chargeback", "fetchByMerchantTransactionId", args, defaultSuccessCodes)
	case p.ChargebackReference != "":
		args := ports.NewObject("Chargeback")
		args.Set("vid", p.ChargebackReference)
		return g.send(ctx, "Chargeback", "fetchByVid", args, defaultSuccessCodes)
	default:
		return nil, pkgerrors.NewValidationError("transactionId",
			"either a transaction identity or a time range is required")
	}
}

// UpdateChargeback reports a status change back to the processor
func (g *Gateway) UpdateChargeback(ctx context.Context, p UpdateChargebackParams) (*Response, error) {
	if p.ChargebackReference == "" {
		return nil, pkgerrors.NewValidationError("chargebackReference",
			"chargebackReference is required; chargebacks carry no merchant id")
	}
	chargeback := ports.NewObject("Chargeback")
	chargeback.Set("VID", p.ChargebackReference)
	if p.Status != "" {
		chargeback.Set("status", p.Status)
	}
	if p.CaseNumber != "" {
		chargeback.Set("caseNumber", p.CaseNumber)
	}
	args := ports.NewObject("Chargeback")
	args.Set("chargeback", chargeback)
	return g.send(ctx, "Chargeback", "update", args, defaultSuccessCodes)
}
