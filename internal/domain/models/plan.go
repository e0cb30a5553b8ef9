package models

// PlanIntervalUnit is the unit of a billing plan's period
type PlanIntervalUnit string

const (
	IntervalDay   PlanIntervalUnit = "Day"
	IntervalWeek  PlanIntervalUnit = "Week"
	IntervalMonth PlanIntervalUnit = "Month"
	IntervalYear  PlanIntervalUnit = "Year"
)

// Plan represents a CashBox BillingPlan
type Plan struct {
	ID        string // merchantBillingPlanId
	Reference string // VID

	IntervalUnit  PlanIntervalUnit
	IntervalCount int

	TaxClassification string
	Prices            *PriceBag
	Attributes        *AttributeBag
}
