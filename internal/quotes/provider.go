// Package quotes fetches market prices for investment positions from
// external data sources.
package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"centavo/internal/models"
)

// Asset identifies a position a provider should price.
type Asset struct {
	InvestmentID uint
	Ticker       string
	Type         models.InvestmentType
}

// PriceResult is a successfully fetched price for an asset.
type PriceResult struct {
	InvestmentID uint
	Ticker       string
	PriceCents   int64
	FetchedAt    time.Time
}

// FetchError is a failed price fetch for a specific asset.
type FetchError struct {
	InvestmentID uint
	Ticker       string
	Err          error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch price for %s (ID %d): %v", e.Ticker, e.InvestmentID, e.Err)
}

// Provider fetches current market prices for a set of assets.
type Provider interface {
	// Name returns the provider's display name (e.g., "Yahoo Finance", "CoinGecko").
	Name() string

	// Supports returns true if this provider can price the given investment type.
	Supports(typ models.InvestmentType) bool

	// FetchPrices fetches current prices for the given assets.
	// A provider should return as many prices as possible, even if some fail.
	FetchPrices(ctx context.Context, assets []Asset) ([]PriceResult, []FetchError)
}

// toCents converts a float price from a provider into cents without
// accumulating binary float error.
func toCents(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
