package vindicia

import (
	"fmt"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Response wraps a reply envelope. Domain objects are built lazily on
// first access and memoized for the lifetime of the response; nothing is
// shared across calls.
type Response struct {
	action       string
	reply        *ports.SoapReply
	successCodes []string

	code    string
	message string

	transaction   *models.Transaction
	customer      *models.Customer
	paymentMethod *models.PaymentMethod
	subscription  *models.Subscription
	plan          *models.Plan
	product       *models.Product
	refund        *models.Refund
}

// newResponse extracts the envelope. A reply without a return code or
// return string is a hard failure: absent must never read as success or
// as an empty message.
func newResponse(action string, reply *ports.SoapReply, successCodes []string) (*Response, error) {
	ret, ok := reply.Get("return")
	if !ok {
		return nil, pkgerrors.NewResponseError(action, "return")
	}
	envelope, ok := asMap(ret)
	if !ok {
		return nil, pkgerrors.NewResponseError(action, "return")
	}
	code, ok := envelope["returnCode"].(string)
	if !ok || code == "" {
		return nil, pkgerrors.NewResponseError(action, "returnCode")
	}
	message, ok := envelope["returnString"].(string)
	if !ok {
		return nil, pkgerrors.NewResponseError(action, "returnString")
	}
	if len(successCodes) == 0 {
		successCodes = defaultSuccessCodes
	}
	return &Response{
		action:       action,
		reply:        reply,
		successCodes: successCodes,
		code:         code,
		message:      message,
	}, nil
}

// Code returns the processor's return code
func (r *Response) Code() string {
	return r.code
}

// Message returns the processor's return string
func (r *Response) Message() string {
	return r.message
}

// IsSuccessful reports whether the return code is in this operation's
// success whitelist. A false result is a normal business decline, not an
// error.
func (r *Response) IsSuccessful() bool {
	return containsCode(r.successCodes, r.code)
}

// Decline converts an unsuccessful response into a typed payment error
func (r *Response) Decline() *pkgerrors.PaymentError {
	info := GetResponseCode(r.code)
	return &pkgerrors.PaymentError{
		Code:           r.code,
		Message:        info.Description,
		GatewayMessage: r.message,
		IsRetriable:    info.IsRetriable,
		Category:       info.Category,
		Details:        map[string]interface{}{"action": r.action},
	}
}

// replyMap returns a named payload sibling of the return envelope
func (r *Response) replyMap(name string) map[string]interface{} {
	v, ok := r.reply.Get(name)
	if !ok {
		return nil
	}
	m, _ := asMap(v)
	return m
}

// replySlice returns a named payload list, re-wrapping a collapsed
// single element
func (r *Response) replySlice(name string) []interface{} {
	v, ok := r.reply.Get(name)
	if !ok {
		return nil
	}
	return asSlice(v)
}

// Transaction returns the embedded transaction, if the reply carries one
func (r *Response) Transaction() *models.Transaction {
	if r.transaction == nil {
		r.transaction = buildTransaction(r.replyMap("transaction"))
	}
	return r.transaction
}

// Customer returns the embedded account, if the reply carries one
func (r *Response) Customer() *models.Customer {
	if r.customer == nil {
		r.customer = buildCustomer(r.replyMap("account"))
	}
	return r.customer
}

// PaymentMethod returns the embedded payment method, if the reply
// carries one
func (r *Response) PaymentMethod() *models.PaymentMethod {
	if r.paymentMethod == nil {
		r.paymentMethod = buildPaymentMethod(r.replyMap("paymentMethod"))
	}
	return r.paymentMethod
}

// Subscription returns the embedded autobill, if the reply carries one
func (r *Response) Subscription() *models.Subscription {
	if r.subscription == nil {
		r.subscription = buildSubscription(r.replyMap("autobill"))
	}
	return r.subscription
}

// Plan returns the embedded billing plan, if the reply carries one
func (r *Response) Plan() *models.Plan {
	if r.plan == nil {
		r.plan = buildPlan(r.replyMap("billingPlan"))
	}
	return r.plan
}

// Product returns the embedded product, if the reply carries one
func (r *Response) Product() *models.Product {
	if r.product == nil {
		r.product = buildProduct(r.replyMap("product"))
	}
	return r.product
}

// Refund returns the first refund in the reply, if any
func (r *Response) Refund() *models.Refund {
	if r.refund == nil {
		refunds := r.replySlice("refunds")
		if len(refunds) > 0 {
			if m, ok := asMap(refunds[0]); ok {
				r.refund = buildRefund(m)
			}
		}
	}
	return r.refund
}

// Refunds returns every refund in the reply
func (r *Response) Refunds() []*models.Refund {
	entries := r.replySlice("refunds")
	refunds := make([]*models.Refund, 0, len(entries))
	for _, entry := range entries {
		if m, ok := asMap(entry); ok {
			refunds = append(refunds, buildRefund(m))
		}
	}
	return refunds
}

// Transactions returns every transaction in the reply
func (r *Response) Transactions() []*models.Transaction {
	entries := r.replySlice("transactions")
	txns := make([]*models.Transaction, 0, len(entries))
	for _, entry := range entries {
		if m, ok := asMap(entry); ok {
			txns = append(txns, buildTransaction(m))
		}
	}
	return txns
}

// Subscriptions returns every autobill in the reply
func (r *Response) Subscriptions() []*models.Subscription {
	entries := r.replySlice("autobills")
	subs := make([]*models.Subscription, 0, len(entries))
	for _, entry := range entries {
		if m, ok := asMap(entry); ok {
			subs = append(subs, buildSubscription(m))
		}
	}
	return subs
}

// Chargebacks returns every chargeback in the reply
func (r *Response) Chargebacks() []*models.Chargeback {
	entries := r.replySlice("chargebacks")
	chargebacks := make([]*models.Chargeback, 0, len(entries))
	for _, entry := range entries {
		if m, ok := asMap(entry); ok {
			chargebacks = append(chargebacks, buildChargeback(m))
		}
	}
	return chargebacks
}

// PaymentMethodByID scans the reply's account for the payment method the
// caller asked about. The processor returns the account's full method
// list; the match is on the caller's original id, never the first
// element.
func (r *Response) PaymentMethodByID(merchantPaymentMethodID string) *models.PaymentMethod {
	account := r.replyMap("account")
	if account == nil {
		return nil
	}
	for _, entry := range asSlice(account["paymentMethods"]) {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		if getString(m, "merchantPaymentMethodId") == merchantPaymentMethodID {
			return buildPaymentMethod(m)
		}
	}
	return nil
}

// CaptureResponse wraps a multi-record capture or void reply. The
// processor reports aggregate success/failure counters alongside
// per-transaction return codes; the two must agree.
type CaptureResponse struct {
	*Response
	QtySuccess int
	QtyFail    int
}

// newCaptureResponse validates counter consistency at parse time. A
// reply whose counters contradict its per-record codes is
// self-contradictory and cannot be trusted either way.
func newCaptureResponse(action string, reply *ports.SoapReply) (*CaptureResponse, error) {
	base, err := newResponse(action, reply, defaultSuccessCodes)
	if err != nil {
		return nil, err
	}
	resp := &CaptureResponse{Response: base}
	ret, _ := reply.Get("return")
	if envelope, ok := asMap(ret); ok {
		resp.QtySuccess = getInt(envelope, "qtySuccess")
		resp.QtyFail = getInt(envelope, "qtyFail")
	}
	if base.IsSuccessful() {
		if records := asSlice(mustGet(reply, "results")); len(records) > 0 {
			total, failed := 0, 0
			for _, entry := range records {
				m, ok := asMap(entry)
				if !ok {
					continue
				}
				total++
				if code := getString(m, "returnCode"); code != "" && code != codeOK {
					failed++
				}
			}
			if failed != resp.QtyFail {
				return nil, pkgerrors.NewInconsistentReplyError(action,
					fmt.Sprintf("qtyFail %d disagrees with %d per-record failures", resp.QtyFail, failed))
			}
			if total-failed != resp.QtySuccess {
				return nil, pkgerrors.NewInconsistentReplyError(action,
					fmt.Sprintf("qtySuccess %d disagrees with %d per-record successes", resp.QtySuccess, total-failed))
			}
		}
	}
	return resp, nil
}

func mustGet(reply *ports.SoapReply, name string) interface{} {
	v, _ := reply.Get(name)
	return v
}
