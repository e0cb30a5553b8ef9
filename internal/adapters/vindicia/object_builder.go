package vindicia

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnibill/vindicia/internal/domain/models"
)

// The object builder turns decoded reply trees into domain objects.
// Reply trees are map[string]interface{} with []interface{} for
// repeated elements. Fields are routinely absent; every accessor here
// tolerates missing or oddly typed values and returns the zero value.

// asMap narrows a reply value to a map
func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// asSlice narrows a reply value to a slice. The transport collapses a
// one-element array to a bare object, so a lone map is re-wrapped.
func asSlice(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{v}
	}
}

// getString reads a string field from a reply map
func getString(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// getInt reads an integer field, accepting the string form the wire
// codec produces
func getInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0
		}
		return int(d.IntPart())
	default:
		return 0
	}
}

// getBool reads a boolean field, accepting "true"/"false" strings
func getBool(m map[string]interface{}, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}

// getDecimal reads a monetary field
func getDecimal(m map[string]interface{}, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}
}

// getTime reads a timestamp field; the processor emits RFC 3339 with a
// numeric zone offset
func getTime(m map[string]interface{}, key string) *time.Time {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// buildAttributes converts a nameValues collection back into attributes
func buildAttributes(v interface{}) *models.AttributeBag {
	entries := asSlice(v)
	if len(entries) == 0 {
		return nil
	}
	bag := &models.AttributeBag{}
	for _, entry := range entries {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		_ = bag.Add(getString(m, "name"), getString(m, "value"))
	}
	return bag
}

// buildCustomer builds a Customer from an account reply
func buildCustomer(m map[string]interface{}) *models.Customer {
	if m == nil {
		return nil
	}
	customer := &models.Customer{
		ID:        getString(m, "merchantAccountId"),
		Reference: getString(m, "VID"),
		Name:      getString(m, "name"),
		Email:     getString(m, "emailAddress"),
	}
	if exemptions := asSlice(m["taxExemptions"]); len(exemptions) > 0 {
		bag := models.NewTaxExemptionBag(nil)
		for _, e := range exemptions {
			em, ok := asMap(e)
			if !ok {
				continue
			}
			bag.Add(models.TaxExemption{
				ExemptionID: getString(em, "exemptionId"),
				Region:      getString(em, "region"),
				Active:      getBool(em, "active"),
			})
		}
		customer.TaxExemptions = bag
	}
	customer.Attributes = buildAttributes(m["nameValues"])
	return customer
}

// buildCard builds masked card details from a creditCard sub-object
func buildCard(m map[string]interface{}, billing map[string]interface{}) *models.Card {
	if m == nil {
		return nil
	}
	card := &models.Card{
		MaskedNumber: getString(m, "account"),
		Brand:        getString(m, "paymentNetwork"),
	}
	// expirationDate arrives as yyyymm
	if exp := getString(m, "expirationDate"); len(exp) == 6 {
		if year, err := strconv.Atoi(exp[:4]); err == nil {
			card.ExpiryYear = year
		}
		if month, err := strconv.Atoi(exp[4:]); err == nil {
			card.ExpiryMonth = month
		}
	}
	if billing != nil {
		card.Name = getString(billing, "name")
		card.Address = getString(billing, "addr1")
		card.City = getString(billing, "city")
		card.State = getString(billing, "district")
		card.PostalCode = getString(billing, "postalCode")
		card.Country = getString(billing, "country")
	}
	return card
}

// buildPaymentMethod builds a PaymentMethod from a paymentMethod reply.
// The type-specific substructure is selected by the reply's type field.
func buildPaymentMethod(m map[string]interface{}) *models.PaymentMethod {
	if m == nil {
		return nil
	}
	method := &models.PaymentMethod{
		ID:        getString(m, "merchantPaymentMethodId"),
		Reference: getString(m, "VID"),
		Type:      models.PaymentMethodType(getString(m, "type")),
		Active:    getBool(m, "active"),
	}
	billing, _ := asMap(m["billingAddress"])
	switch method.Type {
	case models.PaymentMethodCreditCard:
		cc, _ := asMap(m["creditCard"])
		method.Card = buildCard(cc, billing)
	case models.PaymentMethodPayPal:
		if pp, ok := asMap(m["paypal"]); ok {
			method.PayPalEmail = getString(pp, "paypalEmail")
		}
	}
	method.Attributes = buildAttributes(m["nameValues"])
	return method
}

// buildStatusLog builds the ordered status history of a transaction
func buildStatusLog(v interface{}) []models.TransactionStatus {
	entries := asSlice(v)
	if len(entries) == 0 {
		return nil
	}
	log := make([]models.TransactionStatus, 0, len(entries))
	for _, entry := range entries {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		status := models.TransactionStatus{
			Status: getString(m, "status"),
		}
		if cc, ok := asMap(m["creditCardStatus"]); ok {
			status.AuthorizationCode = getString(cc, "authCode")
		}
		if ts := getTime(m, "timestamp"); ts != nil {
			status.Timestamp = *ts
		}
		log = append(log, status)
	}
	return log
}

// buildItems builds transaction line items
func buildItems(v interface{}) *models.ItemBag {
	entries := asSlice(v)
	if len(entries) == 0 {
		return nil
	}
	bag := models.NewItemBag(nil)
	for _, entry := range entries {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		bag.Add(models.Item{
			SKU:               getString(m, "sku"),
			Name:              getString(m, "name"),
			Price:             getDecimal(m, "price"),
			Quantity:          getInt(m, "quantity"),
			TaxClassification: getString(m, "taxClassification"),
			AutoBillItemVid:   getString(m, "VID"),
		})
	}
	return bag
}

// buildTransaction builds a Transaction from a transaction reply
func buildTransaction(m map[string]interface{}) *models.Transaction {
	if m == nil {
		return nil
	}
	txn := &models.Transaction{
		ID:        getString(m, "merchantTransactionId"),
		Reference: getString(m, "VID"),
		Currency:  getString(m, "currency"),
		Amount:    getDecimal(m, "amount"),
	}
	if account, ok := asMap(m["account"]); ok {
		txn.Customer = buildCustomer(account)
	}
	if pm, ok := asMap(m["srcPaymentMethod"]); ok {
		txn.PaymentMethod = buildPaymentMethod(pm)
	}
	txn.Items = buildItems(m["transactionItems"])
	txn.StatusLog = buildStatusLog(m["statusLog"])
	if len(txn.StatusLog) > 0 {
		txn.Status = txn.StatusLog[0].Status
	}
	// The most recent status entry carries the verification results and,
	// for PayPal, the redirect the buyer must visit
	if entries := asSlice(m["statusLog"]); len(entries) > 0 {
		if first, ok := asMap(entries[0]); ok {
			if cc, ok := asMap(first["creditCardStatus"]); ok {
				txn.AVSCode = getString(cc, "avsCode")
				txn.CVNCode = getString(cc, "cvnCode")
			}
			if pp, ok := asMap(first["payPalStatus"]); ok {
				txn.PayPalRedirect = getString(pp, "redirectUrl")
			}
		}
	}
	txn.Attributes = buildAttributes(m["nameValues"])
	return txn
}

// buildPlan builds a Plan from a billingPlan reply
func buildPlan(m map[string]interface{}) *models.Plan {
	if m == nil {
		return nil
	}
	plan := &models.Plan{
		ID:                getString(m, "merchantBillingPlanId"),
		Reference:         getString(m, "VID"),
		TaxClassification: getString(m, "taxClassification"),
	}
	if periods := asSlice(m["periods"]); len(periods) > 0 {
		if period, ok := asMap(periods[0]); ok {
			plan.IntervalUnit = models.PlanIntervalUnit(getString(period, "type"))
			plan.IntervalCount = getInt(period, "quantity")
			plan.Prices = buildPrices(period["prices"])
		}
	}
	plan.Attributes = buildAttributes(m["nameValues"])
	return plan
}

// buildPrices builds a price bag, dropping duplicate currencies the
// processor should never send
func buildPrices(v interface{}) *models.PriceBag {
	entries := asSlice(v)
	if len(entries) == 0 {
		return nil
	}
	bag := &models.PriceBag{}
	for _, entry := range entries {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		_ = bag.Add(models.Price{
			Currency: getString(m, "currency"),
			Amount:   getDecimal(m, "amount"),
		})
	}
	return bag
}

// buildProduct builds a Product from a product reply
func buildProduct(m map[string]interface{}) *models.Product {
	if m == nil {
		return nil
	}
	product := &models.Product{
		ID:                getString(m, "merchantProductId"),
		Reference:         getString(m, "VID"),
		TaxClassification: getString(m, "taxClassification"),
	}
	if plan, ok := asMap(m["defaultBillingPlan"]); ok {
		product.Plan = buildPlan(plan)
	}
	product.Prices = buildPrices(m["prices"])
	product.Attributes = buildAttributes(m["nameValues"])
	return product
}

// buildSubscription builds a Subscription from an autobill reply
func buildSubscription(m map[string]interface{}) *models.Subscription {
	if m == nil {
		return nil
	}
	sub := &models.Subscription{
		ID:           getString(m, "merchantAutoBillId"),
		Reference:    getString(m, "VID"),
		Currency:     getString(m, "currency"),
		BillingDay:   getInt(m, "billingDay"),
		Status:       models.SubscriptionStatus(getString(m, "status")),
		BillingState: getString(m, "billingState"),
		CancelReason: getString(m, "cancelReason"),
		StartTime:    getTime(m, "startTimestamp"),
		EndTime:      getTime(m, "endTimestamp"),
	}
	if account, ok := asMap(m["account"]); ok {
		sub.Customer = buildCustomer(account)
	}
	if pm, ok := asMap(m["paymentMethod"]); ok {
		sub.PaymentMethod = buildPaymentMethod(pm)
	}
	if plan, ok := asMap(m["billingPlan"]); ok {
		sub.Plan = buildPlan(plan)
	}
	// The subscribed product rides the first autobill item
	if items := asSlice(m["items"]); len(items) > 0 {
		if item, ok := asMap(items[0]); ok {
			if product, ok := asMap(item["product"]); ok {
				sub.Product = buildProduct(product)
			}
		}
	}
	sub.Attributes = buildAttributes(m["nameValues"])
	return sub
}

// buildRefund builds a Refund from a refund reply
func buildRefund(m map[string]interface{}) *models.Refund {
	if m == nil {
		return nil
	}
	refund := &models.Refund{
		ID:        getString(m, "merchantRefundId"),
		Reference: getString(m, "VID"),
		Currency:  getString(m, "currency"),
		Amount:    getDecimal(m, "amount"),
		Note:      getString(m, "note"),
		Status:    getString(m, "status"),
	}
	if txn, ok := asMap(m["transaction"]); ok {
		refund.Transaction = buildTransaction(txn)
	}
	if entries := asSlice(m["refundItems"]); len(entries) > 0 {
		bag := models.NewRefundItemBag(nil)
		for _, entry := range entries {
			im, ok := asMap(entry)
			if !ok {
				continue
			}
			bag.Add(models.RefundItem{
				SKU:                  getString(im, "sku"),
				TransactionItemIndex: getInt(im, "transactionItemIndexNumber"),
				Amount:               getDecimal(im, "amount"),
				TaxOnly:              getBool(im, "taxOnly"),
			})
		}
		refund.Items = bag
	}
	refund.Attributes = buildAttributes(m["nameValues"])
	return refund
}

// buildChargeback builds a Chargeback from a chargeback reply
func buildChargeback(m map[string]interface{}) *models.Chargeback {
	if m == nil {
		return nil
	}
	return &models.Chargeback{
		Reference:             getString(m, "VID"),
		Currency:              getString(m, "currency"),
		Amount:                getDecimal(m, "amount"),
		Status:                getString(m, "status"),
		StatusChangedTime:     getTime(m, "statusChangedTimestamp"),
		ProcessorReceivedTime: getTime(m, "processorReceivedTimestamp"),
		TransactionID:         getString(m, "merchantTransactionId"),
		ReasonCode:            getString(m, "reasonCode"),
		CaseNumber:            getString(m, "caseNumber"),
		DivisionNumber:        getString(m, "divisionNumber"),
		MerchantNumber:        getString(m, "merchantNumber"),
		PresentmentAmount:     getDecimal(m, "presentmentAmount"),
		PresentmentCurrency:   getString(m, "presentmentCurrency"),
		PostedTime:            getTime(m, "postedTimestamp"),
		ReferenceNumber:       getString(m, "referenceNumber"),
	}
}
