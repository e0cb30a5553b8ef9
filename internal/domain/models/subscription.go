package models

import (
	"time"
)

// SubscriptionStatus is the processor-reported status of an AutoBill
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "Active"
	SubscriptionSuspended SubscriptionStatus = "Suspended"
	SubscriptionCancelled SubscriptionStatus = "Cancelled"
)

// Subscription represents a CashBox AutoBill
type Subscription struct {
	ID        string // merchantAutoBillId
	Reference string // VID
	Currency  string

	Customer      *Customer
	Product       *Product
	Plan          *Plan
	PaymentMethod *PaymentMethod
	Items         *ItemBag

	BillingDay   int
	Status       SubscriptionStatus
	BillingState string
	StartTime    *time.Time
	EndTime      *time.Time
	CancelReason string

	Attributes *AttributeBag
}
