package vindicia

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/config"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Shared payload construction. Every concrete request composes these
// builders; all validation here happens before anything touches the
// network.

// wireTimeFormat is the timestamp layout CashBox accepts
const wireTimeFormat = "2006-01-02T15:04:05-07:00"

// wireAmount renders a monetary amount with cent precision
func wireAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// requireIdentity enforces the create/update identity rules: create
// demands the merchant id, update accepts either the id or the gateway
// reference. The error names both accepted parameters.
func requireIdentity(update bool, id, reference, idParam, refParam string) error {
	if update {
		if id == "" && reference == "" {
			return pkgerrors.NewValidationError(idParam,
				fmt.Sprintf("either %s or %s is required", idParam, refParam))
		}
		return nil
	}
	if id == "" {
		return pkgerrors.NewValidationError(idParam, fmt.Sprintf("%s is required", idParam))
	}
	return nil
}

// resolveFetch picks the RPC method and identity field for a fetch:
// merchant-id lookups and reference lookups use different remote
// methods. Exactly one identity must be supplied.
func resolveFetch(id, reference, idParam, refParam, actionByID, actionByRef, fieldByID string) (action, field, value string, err error) {
	switch {
	case id != "" && reference != "":
		return "", "", "", pkgerrors.NewValidationError(idParam,
			fmt.Sprintf("only one of %s and %s may be supplied", idParam, refParam))
	case id != "":
		return actionByID, fieldByID, id, nil
	case reference != "":
		return actionByRef, "vid", reference, nil
	default:
		return "", "", "", pkgerrors.NewValidationError(idParam,
			fmt.Sprintf("either %s or %s is required", idParam, refParam))
	}
}

// validateAmountItems enforces the invariant that an itemized total must
// equal the flat amount when both are given. The comparison is done in
// decimal, never float.
func validateAmountItems(amount decimal.Decimal, hasAmount bool, items *models.ItemBag) error {
	if !hasAmount || items.Count() == 0 {
		return nil
	}
	total := items.Total()
	if !total.Equal(amount) {
		return pkgerrors.NewValidationError("items",
			fmt.Sprintf("sum of item totals (%s) does not equal amount (%s)",
				total.StringFixed(2), amount.StringFixed(2)))
	}
	return nil
}

// buildNameValues flattens caller attributes into the processor's
// generic extra-fields collection
func buildNameValues(attributes map[string]interface{}) ([]*ports.Object, error) {
	if len(attributes) == 0 {
		return nil, nil
	}
	bag, err := models.NewAttributeBag(attributes)
	if err != nil {
		return nil, pkgerrors.NewValidationError("attributes", err.Error())
	}
	pairs := make([]*ports.Object, 0, bag.Count())
	for _, nv := range bag.NameValues() {
		pair := ports.NewObject("NameValuePair")
		pair.Set("name", nv.Name)
		pair.Set("value", nv.Value)
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// buildItemObjects converts line items to the wire form, defaulting the
// tax classification per item. With no items and a positive amount, a
// single generic line is synthesized: name "Item", the full amount,
// quantity 1, sku "0".
func buildItemObjects(items []models.Item, amount decimal.Decimal, hasAmount bool, defaultTax string) []*ports.Object {
	if len(items) == 0 {
		if !hasAmount {
			return nil
		}
		items = []models.Item{{
			SKU:      "0",
			Name:     "Item",
			Price:    amount,
			Quantity: 1,
		}}
	}
	objects := make([]*ports.Object, 0, len(items))
	for i, item := range items {
		obj := ports.NewObject("TransactionItem")
		sku := item.SKU
		if sku == "" {
			sku = fmt.Sprintf("%d", i)
		}
		obj.Set("sku", sku)
		if item.Name != "" {
			obj.Set("name", item.Name)
		}
		obj.Set("price", wireAmount(item.Price))
		obj.Set("quantity", item.Quantity)
		tax := item.TaxClassification
		if tax == "" {
			tax = defaultTax
		}
		obj.Set("taxClassification", tax)
		objects = append(objects, obj)
	}
	return objects
}

// buildAccountObject builds the Account payload shared by customer
// operations and embedded account stubs
func buildAccountObject(p CustomerParams, update bool) (*ports.Object, error) {
	if err := requireIdentity(update, p.CustomerID, p.CustomerReference, "customerId", "customerReference"); err != nil {
		return nil, err
	}
	if update && p.Card != nil {
		// Card data may only change via the payment method path
		return nil, pkgerrors.NewValidationError("card",
			"card details cannot be updated through the customer; update the payment method instead")
	}
	account := ports.NewObject("Account")
	if p.CustomerID != "" {
		account.Set("merchantAccountId", p.CustomerID)
	}
	if p.CustomerReference != "" {
		account.Set("VID", p.CustomerReference)
	}
	if p.Name != "" {
		account.Set("name", p.Name)
	}
	if p.Email != "" {
		account.Set("emailAddress", p.Email)
	}
	if len(p.TaxExemptions) > 0 {
		exemptions := make([]*ports.Object, 0, len(p.TaxExemptions))
		for _, e := range p.TaxExemptions {
			obj := ports.NewObject("TaxExemption")
			obj.Set("exemptionId", e.ExemptionID)
			obj.Set("region", e.Region)
			obj.Set("active", e.Active)
			exemptions = append(exemptions, obj)
		}
		account.Set("taxExemptions", exemptions)
	}
	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		account.Set("nameValues", nameValues)
	}
	return account, nil
}

// accountStub builds the minimal account reference embedded in
// transactions and subscriptions
func accountStub(customerID, customerReference string) (*ports.Object, error) {
	if customerID == "" && customerReference == "" {
		return nil, pkgerrors.NewValidationError("customerId",
			"either customerId or customerReference is required")
	}
	account := ports.NewObject("Account")
	if customerID != "" {
		account.Set("merchantAccountId", customerID)
	}
	if customerReference != "" {
		account.Set("VID", customerReference)
	}
	return account, nil
}

// inferPaymentMethodType infers the method type from which fields are
// present: card data means a card, a return-redirect URL means PayPal
func inferPaymentMethodType(card *CardParams, returnURL string) (models.PaymentMethodType, error) {
	switch {
	case card != nil:
		return models.PaymentMethodCreditCard, nil
	case returnURL != "":
		return models.PaymentMethodPayPal, nil
	default:
		return "", pkgerrors.NewValidationError("paymentMethodType",
			"type could not be inferred: supply card details, a returnUrl, or an explicit type")
	}
}

// buildCardObject builds the creditCard sub-object and billing address
func buildCardObject(method *ports.Object, card *CardParams) {
	cc := ports.NewObject("CreditCard")
	cc.Set("account", card.Number)
	cc.Set("expirationDate", fmt.Sprintf("%04d%02d", card.ExpiryYear, card.ExpiryMonth))
	method.Set("creditCard", cc)
	if card.CVV != "" {
		method.Set("customerSpecifiedType", "CreditCard")
		method.Set("cvn", card.CVV)
	}
	if card.Name != "" {
		method.Set("accountHolderName", card.Name)
	}
	if card.Address != "" || card.City != "" || card.PostalCode != "" || card.Country != "" {
		addr := ports.NewObject("Address")
		if card.Name != "" {
			addr.Set("name", card.Name)
		}
		if card.Address != "" {
			addr.Set("addr1", card.Address)
		}
		if card.City != "" {
			addr.Set("city", card.City)
		}
		if card.State != "" {
			addr.Set("district", card.State)
		}
		if card.PostalCode != "" {
			addr.Set("postalCode", card.PostalCode)
		}
		if card.Country != "" {
			addr.Set("country", card.Country)
		}
		method.Set("billingAddress", addr)
	}
}

// buildPaymentMethodObject builds the PaymentMethod payload for the
// standalone operations, where the identity rules apply in full
func buildPaymentMethodObject(p PaymentMethodParams, update bool) (*ports.Object, error) {
	if err := requireIdentity(update, p.PaymentMethodID, p.PaymentMethodReference, "paymentMethodId", "paymentMethodReference"); err != nil {
		return nil, err
	}
	return paymentMethodBody(p, update)
}

// embeddedPaymentMethodObject builds a payment method riding another
// object's payload (transaction, account, autobill). Inline card or
// redirect details need no merchant id of their own: the processor
// saves the method together with its parent. A stored-method reference
// still needs id or VID.
func embeddedPaymentMethodObject(p PaymentMethodParams) (*ports.Object, error) {
	stored := p.Card == nil && p.ReturnURL == ""
	if stored {
		if err := requireIdentity(true, p.PaymentMethodID, p.PaymentMethodReference, "paymentMethodId", "paymentMethodReference"); err != nil {
			return nil, err
		}
	}
	return paymentMethodBody(p, stored)
}

// paymentMethodBody builds the PaymentMethod object itself. The type
// branches the sub-structure; on update the type is never altered, even
// when inferable fields are present.
func paymentMethodBody(p PaymentMethodParams, update bool) (*ports.Object, error) {
	method := ports.NewObject("PaymentMethod")
	if p.PaymentMethodID != "" {
		method.Set("merchantPaymentMethodId", p.PaymentMethodID)
	}
	if p.PaymentMethodReference != "" {
		method.Set("VID", p.PaymentMethodReference)
	}

	methodType := p.Type
	if methodType == "" && !update {
		inferred, err := inferPaymentMethodType(p.Card, p.ReturnURL)
		if err != nil {
			return nil, err
		}
		methodType = inferred
	}
	if !update {
		switch methodType {
		case models.PaymentMethodCreditCard, models.PaymentMethodPayPal,
			models.PaymentMethodApplePay, models.PaymentMethodToken:
		default:
			return nil, pkgerrors.NewValidationError("paymentMethodType",
				fmt.Sprintf("invalid payment method type %q", methodType))
		}
		method.Set("type", string(methodType))
	}

	if p.Card != nil {
		buildCardObject(method, p.Card)
	}
	if methodType == models.PaymentMethodPayPal || p.ReturnURL != "" {
		paypal := ports.NewObject("PayPal")
		if p.PayPalEmail != "" {
			paypal.Set("paypalEmail", p.PayPalEmail)
		}
		if p.ReturnURL != "" {
			paypal.Set("returnUrl", p.ReturnURL)
		}
		if p.CancelURL != "" {
			paypal.Set("cancelUrl", p.CancelURL)
		}
		method.Set("paypal", paypal)
	}
	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		method.Set("nameValues", nameValues)
	}
	return method, nil
}

// paymentMethodFromTransaction derives the payment method parameters a
// transaction supplies inline
func paymentMethodFromTransaction(p TransactionParams) PaymentMethodParams {
	return PaymentMethodParams{
		PaymentMethodID:        p.PaymentMethodID,
		PaymentMethodReference: p.PaymentMethodReference,
		Type:                   p.PaymentMethodType,
		Card:                   p.Card,
		ReturnURL:              p.ReturnURL,
		CancelURL:              p.CancelURL,
	}
}

// buildTransactionObject builds the Transaction payload for authorize
// and purchase
func buildTransactionObject(p TransactionParams, cfg *config.Config) (*ports.Object, error) {
	if p.Amount.IsZero() && len(p.Items) == 0 {
		return nil, pkgerrors.NewValidationError("amount", "amount or items are required")
	}
	if p.Currency == "" {
		return nil, pkgerrors.NewValidationError("currency", "currency is required")
	}
	hasAmount := !p.Amount.IsZero()
	if err := validateAmountItems(p.Amount, hasAmount, models.NewItemBag(p.Items)); err != nil {
		return nil, err
	}

	txn := ports.NewObject("Transaction")
	transactionID := p.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	txn.Set("merchantTransactionId", transactionID)
	txn.Set("currency", p.Currency)
	if hasAmount {
		txn.Set("amount", wireAmount(p.Amount))
	}
	if p.IP != "" {
		txn.Set("sourceIp", p.IP)
	}

	account, err := accountStub(p.CustomerID, p.CustomerReference)
	if err != nil {
		return nil, err
	}
	txn.Set("account", account)

	// A payment method riding the transaction: either a stored method
	// reference or inline details describing a new one
	if p.PaymentMethodID != "" || p.PaymentMethodReference != "" || p.Card != nil || p.ReturnURL != "" || p.PaymentMethodType != "" {
		method, err := embeddedPaymentMethodObject(paymentMethodFromTransaction(p))
		if err != nil {
			return nil, err
		}
		txn.Set("srcPaymentMethod", method)
	}

	statement := p.StatementDescriptor
	if statement == "" {
		statement = cfg.StatementDescriptor
	}
	if statement != "" {
		txn.Set("billingStatementIdentifier", statement)
	}

	// Request-level classification overrides the configured default;
	// per-item classifications override both
	defaultTax := p.TaxClassification
	if defaultTax == "" {
		defaultTax = cfg.TaxClassification
	}
	txn.Set("transactionItems", buildItemObjects(p.Items, p.Amount, hasAmount, defaultTax))

	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		txn.Set("nameValues", nameValues)
	}
	return txn, nil
}

// minChargebackProbability resolves the risk gate for a request,
// falling back to the configured default
func minChargebackProbability(override *int, cfg *config.Config) int {
	if override != nil {
		return *override
	}
	return cfg.MinChargebackProbability
}
