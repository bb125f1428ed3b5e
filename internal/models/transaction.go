package models

import "time"

// TransactionType represents the direction of a money movement.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Categories a transaction can be filed under. The set mirrors the
// categories the product exposes in its forms.
const (
	CategoryHousing       = "Moradia"
	CategoryFood          = "Alimentação"
	CategoryTransport     = "Transporte"
	CategoryHealth        = "Saúde"
	CategoryEducation     = "Educação"
	CategoryLeisure       = "Lazer"
	CategoryFixedExpense  = "Gasto Fixo"
	CategorySubscriptions = "Assinaturas"
	CategoryClothing      = "Vestuário"
	CategoryGifts         = "Presentes"
	CategoryMaintenance   = "Manutenção"
	CategoryOther         = "Outros"
	CategorySalary        = "Salário"
	CategoryInvestment    = "Investimento"
	CategoryExtraIncome   = "Renda Extra"
)

// TransactionCategories lists every valid category value.
var TransactionCategories = []string{
	CategoryHousing, CategoryFood, CategoryTransport, CategoryHealth,
	CategoryEducation, CategoryLeisure, CategoryFixedExpense,
	CategorySubscriptions, CategoryClothing, CategoryGifts,
	CategoryMaintenance, CategoryOther, CategorySalary,
	CategoryInvestment, CategoryExtraIncome,
}

// ValidCategory reports whether s is one of the known categories.
func ValidCategory(s string) bool {
	for _, c := range TransactionCategories {
		if c == s {
			return true
		}
	}
	return false
}

// Transaction represents a single money movement. Amounts are stored in
// cents. IsEssential is always true for income.
type Transaction struct {
	Base
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Description   string          `gorm:"not null" json:"description"`
	Amount        int64           `gorm:"type:bigint;not null" json:"amount"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	Category      string          `gorm:"not null" json:"category"`
	Type          TransactionType `gorm:"not null" json:"type"`
	IsEssential   bool            `gorm:"not null;default:false" json:"is_essential"`
	PaymentMethod string          `json:"payment_method"`
	ReceiptURL    string          `json:"receipt_url,omitempty"`
}
