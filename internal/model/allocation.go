package model

// BrandGuess is an upstream receipt parser's ticker guess for one line item.
type BrandGuess struct {
	Symbol     string
	Confidence float64
}

// Item is one line item from an itemized purchase.
type Item struct {
	Name       string
	BrandGuess *BrandGuess
}

// Retailer identifies the merchant's own publicly traded security.
type Retailer struct {
	Symbol string
	Name   string
}

// AllocationLine is one (ticker, amount) slice of a round-up distribution.
type AllocationLine struct {
	StockSymbol string
	StockName   string
	Reason      string
	Amount      float64
	Percentage  float64
	Confidence  float64
}
