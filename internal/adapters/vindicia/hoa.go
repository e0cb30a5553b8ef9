package vindicia

import (
	"context"
	"fmt"

	"github.com/omnibill/vindicia/internal/adapters/ports"
	"github.com/omnibill/vindicia/internal/domain/models"
	pkgerrors "github.com/omnibill/vindicia/pkg/errors"
)

// Hosted Order Automation. The browser posts sensitive fields straight
// to the processor, so a hosted operation is described to the processor
// up front as a WebSession: hidden form values carrying the parts of the
// payload the merchant supplies, plus method parameters naming the RPC
// the processor runs once the browser's fields arrive.
//
// The hidden values are derived by building the companion regular
// request and walking its payload. The field-naming convention must
// match the hosted page templates exactly; a divergence breaks only the
// hosted flow, silently.

// HOA method names, as the hosted templates know them
const (
	hoaMethodAuth                = "Transaction_Auth"
	hoaMethodAuthCapture         = "Transaction_AuthCapture"
	hoaMethodUpdatePaymentMethod = "Account_UpdatePaymentMethod"
	hoaMethodUpdateAutoBill      = "AutoBill_Update"
)

// hoaFixedPrefixes is the special-case table for embedded objects whose
// hosted-form fields live under a fixed name regardless of nesting
// depth. Reverse-engineered from the processor's templates; do not
// infer a pattern from it. An Account nested in a Transaction is NOT
// short-circuited: those fields keep their literal path.
var hoaFixedPrefixes = map[string]string{
	"PaymentMethod": "vin_PaymentMethod",
	"BillingPlan":   "vin_BillingPlan",
}

// hoaMethodSuccessCodes maps each hosted method to the success
// whitelist of the operation it defers
var hoaMethodSuccessCodes = map[string][]string{
	hoaMethodAuth:                defaultSuccessCodes,
	hoaMethodAuthCapture:         defaultSuccessCodes,
	hoaMethodUpdatePaymentMethod: paymentMethodSuccessCodes,
	hoaMethodUpdateAutoBill:      defaultSuccessCodes,
}

// HOAParams carry the session-level inputs of a hosted operation
type HOAParams struct {
	ReturnURL string
	ErrorURL  string
	IP        string

	Attributes map[string]interface{}
}

// CompleteHOAParams identify the session to finalize
type CompleteHOAParams struct {
	SessionReference string
}

// hoaWalk recursively flattens a payload object into hosted-form
// fields. ownerType is the CashBox type of the object holding the
// current field; it drives the Account special case.
func hoaWalk(prefix, ownerType string, obj *ports.Object, out *[]models.NameValue) {
	for _, field := range obj.Fields {
		switch v := field.Value.(type) {
		case nil:
			continue
		case *ports.Object:
			if v == nil {
				continue
			}
			if next, ok := hoaPrefixFor(ownerType, field.Name, v.Type); ok {
				hoaWalk(next, v.Type, v, out)
			} else {
				hoaWalk(prefix+"_"+field.Name, v.Type, v, out)
			}
		case []*ports.Object:
			if field.Name == "nameValues" {
				// The extra-fields collection posts under one fixed key
				for _, pair := range v {
					name, _ := pair.Get("name")
					value, _ := pair.Get("value")
					*out = append(*out, models.NameValue{
						Name:  fmt.Sprintf("vin_NameValues_%s", models.WireValue(name)),
						Value: models.WireValue(value),
					})
				}
				continue
			}
			for i, element := range v {
				if next, ok := hoaPrefixFor(ownerType, field.Name, element.Type); ok {
					hoaWalk(next, element.Type, element, out)
					continue
				}
				hoaWalk(fmt.Sprintf("%s_%s_%d", prefix, field.Name, i), element.Type, element, out)
			}
		default:
			*out = append(*out, models.NameValue{
				Name:  prefix + "_" + field.Name,
				Value: models.WireValue(v),
			})
		}
	}
}

// hoaPrefixFor consults the special-case table. The Account
// short-circuit applies only inside an AutoBill.
func hoaPrefixFor(ownerType, fieldName, objectType string) (string, bool) {
	if fixed, ok := hoaFixedPrefixes[objectType]; ok {
		return fixed, true
	}
	if objectType == "Account" && ownerType == "AutoBill" {
		return "vin_Account", true
	}
	return "", false
}

// hoaFormValues derives the hidden form fields from a companion
// request's main payload object
func hoaFormValues(obj *ports.Object) []models.NameValue {
	var out []models.NameValue
	hoaWalk("vin_"+obj.Type, obj.Type, obj, &out)
	return out
}

// hoaMethodParams derives the method-parameter pairs from the companion
// request's scalar call arguments
func hoaMethodParams(method string, args *ports.Object) []models.NameValue {
	var out []models.NameValue
	for _, field := range args.Fields {
		switch field.Value.(type) {
		case *ports.Object, []*ports.Object:
			continue
		default:
			out = append(out, models.NameValue{
				Name:  fmt.Sprintf("%s_%s", method, field.Name),
				Value: models.WireValue(field.Value),
			})
		}
	}
	return out
}

// nameValueObjects converts wire pairs to payload objects
func nameValueObjects(pairs []models.NameValue) []*ports.Object {
	objects := make([]*ports.Object, 0, len(pairs))
	for _, pair := range pairs {
		obj := ports.NewObject("NameValuePair")
		obj.Set("name", pair.Name)
		obj.Set("value", pair.Value)
		objects = append(objects, obj)
	}
	return objects
}

// initializeSession builds and dispatches the WebSession for a hosted
// operation whose companion payload and call arguments are given
func (g *HOAGateway) initializeSession(ctx context.Context, method string, payload *ports.Object, companionArgs *ports.Object, h HOAParams) (*HOAInitializeResponse, error) {
	returnURL := h.ReturnURL
	if returnURL == "" {
		returnURL = g.cfg.HOAReturnURL
	}
	errorURL := h.ErrorURL
	if errorURL == "" {
		errorURL = g.cfg.HOAErrorURL
	}
	if returnURL == "" {
		return nil, pkgerrors.NewValidationError("returnUrl", "returnUrl is required")
	}
	if errorURL == "" {
		return nil, pkgerrors.NewValidationError("errorUrl", "errorUrl is required")
	}

	session := ports.NewObject("WebSession")
	session.Set("returnURL", returnURL)
	session.Set("errorURL", errorURL)
	if h.IP != "" {
		session.Set("ipAddress", h.IP)
	}
	session.Set("method", method)
	session.Set("version", APIVersion)
	session.Set("privateFormValues", nameValueObjects(hoaFormValues(payload)))
	session.Set("methodParamValues", nameValueObjects(hoaMethodParams(method, companionArgs)))
	nameValues, err := buildNameValues(h.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		session.Set("nameValues", nameValues)
	}

	args := ports.NewObject("WebSession")
	args.Set("session", session)
	reply, err := g.dispatch(ctx, "WebSession", "initialize", args)
	if err != nil {
		return nil, err
	}
	base, err := newResponse("initialize", reply, defaultSuccessCodes)
	if err != nil {
		return nil, err
	}
	g.observe("WebSession", "initialize", base.Code())
	return &HOAInitializeResponse{Response: base}, nil
}

// Authorize opens a hosted session for a card authorization. Card
// fields come from the browser; everything else is pinned here.
func (g *HOAGateway) Authorize(ctx context.Context, p TransactionParams, h HOAParams) (*HOAInitializeResponse, error) {
	args, err := g.authorizeArgs(p)
	if err != nil {
		return nil, err
	}
	payload, _ := args.GetObject("transaction")
	return g.initializeSession(ctx, hoaMethodAuth, payload, args, h)
}

// Purchase opens a hosted session for an immediate sale
func (g *HOAGateway) Purchase(ctx context.Context, p TransactionParams, h HOAParams) (*HOAInitializeResponse, error) {
	args, err := g.authorizeArgs(p)
	if err != nil {
		return nil, err
	}
	payload, _ := args.GetObject("transaction")
	return g.initializeSession(ctx, hoaMethodAuthCapture, payload, args, h)
}

// CreatePaymentMethod opens a hosted session that saves a payment
// method against an account
func (g *HOAGateway) CreatePaymentMethod(ctx context.Context, p PaymentMethodParams, h HOAParams) (*HOAInitializeResponse, error) {
	if p.CustomerID == "" && p.CustomerReference == "" {
		return nil, pkgerrors.NewValidationError("customerId",
			"either customerId or customerReference is required")
	}
	// The card itself arrives from the browser; the companion method
	// carries identity and attributes only
	method := ports.NewObject("PaymentMethod")
	if p.PaymentMethodID != "" {
		method.Set("merchantPaymentMethodId", p.PaymentMethodID)
	}
	method.Set("type", string(models.PaymentMethodCreditCard))
	nameValues, err := buildNameValues(p.Attributes)
	if err != nil {
		return nil, err
	}
	if nameValues != nil {
		method.Set("nameValues", nameValues)
	}

	account, err := accountStub(p.CustomerID, p.CustomerReference)
	if err != nil {
		return nil, err
	}
	account.Set("paymentMethods", []*ports.Object{method})

	args := ports.NewObject("Account")
	args.Set("account", account)
	args.Set("updateBehavior", "Update")
	args.Set("validatePaymentMethod", p.Validate)
	args.Set("minChargebackProbability", g.cfg.MinChargebackProbability)
	return g.initializeSession(ctx, hoaMethodUpdatePaymentMethod, account, args, h)
}

// CreateSubscription opens a hosted session that starts a subscription
// with browser-supplied payment details
func (g *HOAGateway) CreateSubscription(ctx context.Context, p SubscriptionParams, h HOAParams) (*HOAInitializeResponse, error) {
	autobill, err := buildSubscriptionObject(g.Gateway, p, false)
	if err != nil {
		return nil, err
	}
	args := ports.NewObject("AutoBill")
	args.Set("autobill", autobill)
	args.Set("duplicateBehavior", "Fail")
	args.Set("validatePaymentMethod", false)
	args.Set("minChargebackProbability", minChargebackProbability(p.MinChargebackProbability, g.cfg))
	return g.initializeSession(ctx, hoaMethodUpdateAutoBill, autobill, args, h)
}

// Complete finalizes a hosted session after the browser posted to the
// processor and was redirected back
func (g *HOAGateway) Complete(ctx context.Context, p CompleteHOAParams) (*HOAResponse, error) {
	if p.SessionReference == "" {
		return nil, pkgerrors.NewValidationError("sessionReference",
			"sessionReference is required")
	}
	session := ports.NewObject("WebSession")
	session.Set("VID", p.SessionReference)
	args := ports.NewObject("WebSession")
	args.Set("session", session)

	reply, err := g.dispatch(ctx, "WebSession", "finalize", args)
	if err != nil {
		return nil, err
	}
	resp, err := newHOAResponse(reply)
	if err != nil {
		return nil, err
	}
	g.observe("WebSession", "finalize", resp.Code())
	return resp, nil
}

// HOAInitializeResponse wraps the session-creation reply
type HOAInitializeResponse struct {
	*Response
}

// SessionReference returns the web session VID the hosted form must
// post under
func (r *HOAInitializeResponse) SessionReference() string {
	session := r.replyMap("session")
	if session == nil {
		return ""
	}
	return getString(session, "VID")
}

// HOAResponse wraps a session finalize reply. Two categorically
// different failures hide in it: the finalize call itself failing, and
// the deferred method failing. Retrying the whole flow only makes sense
// for the former; the latter means the flow completed and the business
// operation (e.g. the authorization) was declined.
type HOAResponse struct {
	*Response

	methodCode    string
	methodMessage string
	methodCodes   []string
}

// newHOAResponse extracts both the session envelope and the nested
// method return
func newHOAResponse(reply *ports.SoapReply) (*HOAResponse, error) {
	base, err := newResponse("finalize", reply, defaultSuccessCodes)
	if err != nil {
		return nil, err
	}
	resp := &HOAResponse{Response: base, methodCodes: defaultSuccessCodes}
	if !base.IsSuccessful() {
		return resp, nil
	}

	session := base.replyMap("session")
	if session == nil {
		return nil, pkgerrors.NewResponseError("finalize", "session")
	}
	if codes, ok := hoaMethodSuccessCodes[getString(session, "method")]; ok {
		resp.methodCodes = codes
	}
	apiReturn, ok := asMap(session["apiReturn"])
	if !ok {
		return nil, pkgerrors.NewResponseError("finalize", "session.apiReturn")
	}
	code, ok := apiReturn["returnCode"].(string)
	if !ok || code == "" {
		return nil, pkgerrors.NewResponseError("finalize", "session.apiReturn.returnCode")
	}
	message, ok := apiReturn["returnString"].(string)
	if !ok {
		return nil, pkgerrors.NewResponseError("finalize", "session.apiReturn.returnString")
	}
	resp.methodCode = code
	resp.methodMessage = message
	return resp, nil
}

// IsRequestFailure reports that the session finalize call itself
// failed: the caller should retry the whole hosted flow
func (r *HOAResponse) IsRequestFailure() bool {
	return !r.Response.IsSuccessful()
}

// IsMethodFailure reports that the session completed but the deferred
// method was declined
func (r *HOAResponse) IsMethodFailure() bool {
	return r.Response.IsSuccessful() && !containsCode(r.methodCodes, r.methodCode)
}

// IsSuccessful reports that both the session and its method succeeded
func (r *HOAResponse) IsSuccessful() bool {
	return r.Response.IsSuccessful() && containsCode(r.methodCodes, r.methodCode)
}

// MethodCode returns the deferred method's return code
func (r *HOAResponse) MethodCode() string {
	return r.methodCode
}

// MethodMessage returns the deferred method's return string
func (r *HOAResponse) MethodMessage() string {
	return r.methodMessage
}

// methodReply returns a payload object from the deferred method's reply
func (r *HOAResponse) methodReply(name string) map[string]interface{} {
	session := r.replyMap("session")
	if session == nil {
		return nil
	}
	apiReply, ok := asMap(session["apiReply"])
	if !ok {
		return nil
	}
	m, _ := asMap(apiReply[name])
	return m
}

// Transaction returns the transaction the hosted method produced, if
// any
func (r *HOAResponse) Transaction() *models.Transaction {
	return buildTransaction(r.methodReply("transaction"))
}

// Customer returns the account the hosted method produced, if any
func (r *HOAResponse) Customer() *models.Customer {
	return buildCustomer(r.methodReply("account"))
}

// Subscription returns the autobill the hosted method produced, if any
func (r *HOAResponse) Subscription() *models.Subscription {
	return buildSubscription(r.methodReply("autobill"))
}
