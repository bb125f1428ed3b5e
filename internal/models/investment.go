package models

// InvestmentType classifies an investable asset.
type InvestmentType string

const (
	InvestmentTypeFixedIncome InvestmentType = "cdi"
	InvestmentTypeStock       InvestmentType = "stock"
	InvestmentTypeRealEstate  InvestmentType = "real_estate"
	InvestmentTypeCrypto      InvestmentType = "crypto"
	InvestmentTypeBDR         InvestmentType = "bdr"
)

// QuantityEpsilon absorbs floating-point drift when deciding whether a
// position has been fully liquidated.
const QuantityEpsilon = 1e-6

// Investment is an aggregated position in one asset. A position is keyed
// by (Ticker, Type) when Ticker is set, else by (Name, Type). Monetary
// fields are cents; InvestedAmount is the cumulative cost basis and
// CurrentAmount the last known market value, tracked independently so
// they diverge to represent unrealized gain or loss.
type Investment struct {
	Base
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Name           string         `gorm:"not null" json:"name"`
	Type           InvestmentType `gorm:"not null" json:"type"`
	Ticker         string         `gorm:"index" json:"ticker,omitempty"`
	Quantity       float64        `gorm:"not null;default:0" json:"quantity"`
	InvestedAmount int64          `gorm:"type:bigint;not null;default:0" json:"invested_amount"`
	CurrentAmount  int64          `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetAmount   *int64         `gorm:"type:bigint" json:"target_amount,omitempty"`
}

// AverageCost returns the average cost per unit in cents, or 0 when the
// position holds no quantity.
func (i *Investment) AverageCost() float64 {
	if i.Quantity <= 0 {
		return 0
	}
	return float64(i.InvestedAmount) / i.Quantity
}

// MatchesKey reports whether a lot with the given ticker, name and type
// merges into this position.
func (i *Investment) MatchesKey(ticker, name string, typ InvestmentType) bool {
	if i.Type != typ {
		return false
	}
	if ticker != "" {
		return i.Ticker == ticker
	}
	return i.Name == name
}
