package models

import (
	"github.com/shopspring/decimal"
)

// Item is a single priced line within a transaction or subscription
type Item struct {
	SKU               string
	Name              string
	Description       string
	Price             decimal.Decimal
	Quantity          int
	TaxClassification string
	AutoBillItemVid   string
}

// Total returns price multiplied by quantity
func (i Item) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemBag is an ordered collection of line items
type ItemBag struct {
	items []Item
}

// NewItemBag builds a bag from a slice of items
func NewItemBag(items []Item) *ItemBag {
	return &ItemBag{items: items}
}

// Add appends an item to the bag
func (b *ItemBag) Add(item Item) {
	b.items = append(b.items, item)
}

// Count returns the number of items in the bag
func (b *ItemBag) Count() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// All returns the items in insertion order
func (b *ItemBag) All() []Item {
	if b == nil {
		return nil
	}
	return b.items
}

// Total returns the sum of price x quantity over all items
func (b *ItemBag) Total() decimal.Decimal {
	total := decimal.Zero
	if b == nil {
		return total
	}
	for _, item := range b.items {
		total = total.Add(item.Total())
	}
	return total
}

// RefundItem is a single line within an itemized refund. It targets one
// line of the original transaction by SKU or by the transaction item's
// index and carries the amount to give back for that line.
type RefundItem struct {
	SKU                  string
	TransactionItemIndex int
	Amount               decimal.Decimal
	TaxOnly              bool
}

// RefundItemBag is an ordered collection of refund items
type RefundItemBag struct {
	items []RefundItem
}

// NewRefundItemBag builds a bag from a slice of refund items
func NewRefundItemBag(items []RefundItem) *RefundItemBag {
	return &RefundItemBag{items: items}
}

// Add appends a refund item to the bag
func (b *RefundItemBag) Add(item RefundItem) {
	b.items = append(b.items, item)
}

// Count returns the number of refund items in the bag
func (b *RefundItemBag) Count() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// All returns the refund items in insertion order
func (b *RefundItemBag) All() []RefundItem {
	if b == nil {
		return nil
	}
	return b.items
}

// Total returns the sum of the refund item amounts
func (b *RefundItemBag) Total() decimal.Decimal {
	total := decimal.Zero
	if b == nil {
		return total
	}
	for _, item := range b.items {
		total = total.Add(item.Amount)
	}
	return total
}

// TaxExemption marks a customer as exempt from a tax region
type TaxExemption struct {
	ExemptionID string
	Region      string
	Active      bool
}

// TaxExemptionBag is an ordered collection of tax exemptions
type TaxExemptionBag struct {
	exemptions []TaxExemption
}

// NewTaxExemptionBag builds a bag from a slice of exemptions
func NewTaxExemptionBag(exemptions []TaxExemption) *TaxExemptionBag {
	return &TaxExemptionBag{exemptions: exemptions}
}

// Add appends an exemption to the bag
func (b *TaxExemptionBag) Add(e TaxExemption) {
	b.exemptions = append(b.exemptions, e)
}

// Count returns the number of exemptions in the bag
func (b *TaxExemptionBag) Count() int {
	if b == nil {
		return 0
	}
	return len(b.exemptions)
}

// All returns the exemptions in insertion order
func (b *TaxExemptionBag) All() []TaxExemption {
	if b == nil {
		return nil
	}
	return b.exemptions
}
