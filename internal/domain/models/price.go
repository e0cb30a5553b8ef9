package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a currency/amount pair on a product or billing plan
type Price struct {
	Currency string
	Amount   decimal.Decimal
}

// DuplicateCurrencyError is returned when two prices with the same
// currency are added to one bag
type DuplicateCurrencyError struct {
	Currency string
}

func (e *DuplicateCurrencyError) Error() string {
	return fmt.Sprintf("price bag already contains currency %q", e.Currency)
}

// PriceBag is an ordered collection of prices with at most one price per
// currency
type PriceBag struct {
	prices []Price
}

// NewPriceBag builds a bag from a slice of prices, enforcing currency
// uniqueness
func NewPriceBag(prices []Price) (*PriceBag, error) {
	bag := &PriceBag{}
	for _, p := range prices {
		if err := bag.Add(p); err != nil {
			return nil, err
		}
	}
	return bag, nil
}

// Add appends a price; adding a currency already present fails
func (b *PriceBag) Add(p Price) error {
	for _, existing := range b.prices {
		if existing.Currency == p.Currency {
			return &DuplicateCurrencyError{Currency: p.Currency}
		}
	}
	b.prices = append(b.prices, p)
	return nil
}

// Count returns the number of prices in the bag
func (b *PriceBag) Count() int {
	if b == nil {
		return 0
	}
	return len(b.prices)
}

// All returns the prices in insertion order
func (b *PriceBag) All() []Price {
	if b == nil {
		return nil
	}
	return b.prices
}

// Get returns the price for a currency, if present
func (b *PriceBag) Get(currency string) (Price, bool) {
	if b == nil {
		return Price{}, false
	}
	for _, p := range b.prices {
		if p.Currency == currency {
			return p, true
		}
	}
	return Price{}, false
}
