package services

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/quotes"
)

// validInvestmentType reports whether typ is a known investment type.
func validInvestmentType(typ models.InvestmentType) bool {
	switch typ {
	case models.InvestmentTypeFixedIncome, models.InvestmentTypeStock,
		models.InvestmentTypeRealEstate, models.InvestmentTypeCrypto,
		models.InvestmentTypeBDR:
		return true
	default:
		return false
	}
}

// investmentService handles investment-related business logic.
type investmentService struct {
	db        *gorm.DB
	providers []quotes.Provider
}

// NewInvestmentService creates a new InvestmentServicer. The providers
// are consulted in order when refreshing market prices.
func NewInvestmentService(db *gorm.DB, providers []quotes.Provider) InvestmentServicer {
	return &investmentService{db: db, providers: providers}
}

// findPosition looks up the open position a lot merges into. A lot with a
// ticker matches on (ticker, type); a lot without one matches on
// (name, type). Returns nil when no position matches.
func (s *investmentService) findPosition(tx *gorm.DB, userID uint, in AddLotInput) (*models.Investment, error) {
	q := tx.Where("user_id = ? AND type = ?", userID, in.Type)
	if in.Ticker != "" {
		q = q.Where("ticker = ?", in.Ticker)
	} else {
		q = q.Where("name = ?", in.Name)
	}

	var position models.Investment
	if err := q.First(&position).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &position, nil
}

// AddLot registers a purchase. The lot merges into an existing position
// with the same key, or opens a new one. A lot enters at cost: its
// contribution to CurrentAmount equals its InvestedAmount, so buying
// never creates an instant gain.
func (s *investmentService) AddLot(userID uint, in AddLotInput) (*models.Investment, error) {
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !validInvestmentType(in.Type) {
		return nil, apperrors.ErrInvalidInvestmentType
	}
	if in.Quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	}
	if in.InvestedAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invested amount must be greater than zero")
	}

	var result *models.Investment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		position, err := s.findPosition(tx, userID, in)
		if err != nil {
			return err
		}

		if position == nil {
			position = &models.Investment{
				UserID:         userID,
				Name:           in.Name,
				Type:           in.Type,
				Ticker:         in.Ticker,
				Quantity:       in.Quantity,
				InvestedAmount: in.InvestedAmount,
				CurrentAmount:  in.InvestedAmount,
				TargetAmount:   in.TargetAmount,
			}
			if txErr := tx.Create(position).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			result = position
			return nil
		}

		position.Quantity += in.Quantity
		position.InvestedAmount += in.InvestedAmount
		position.CurrentAmount += in.InvestedAmount
		if in.TargetAmount != nil {
			position.TargetAmount = in.TargetAmount
		}
		if txErr := tx.Save(position).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		result = position
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserInvestments returns a paginated list of the user's positions.
func (s *investmentService) GetUserInvestments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	base := s.db.Model(&models.Investment{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Order("created_at ASC").
		Scopes(pagination.Paginate(page)).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInvestmentByID returns a position if it belongs to the user.
func (s *investmentService) GetInvestmentByID(userID, investmentID uint) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.Where("user_id = ?", userID).First(&investment, investmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &investment, nil
}

// Sell disposes of part or all of a position at the given unit price.
// Quantities within QuantityEpsilon of the full position clamp to a full
// liquidation and the position is removed. A partial sale preserves the
// average cost: the remaining invested amount is avgCost x remaining, and
// the current amount is re-marked at the sale price. The realized gain or
// loss is reported in the result; no ledger entry is synthesized.
func (s *investmentService) Sell(userID, investmentID uint, quantity float64, salePricePerUnit int64) (*SellResult, error) {
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	}
	if salePricePerUnit < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sale price cannot be negative")
	}

	investment, err := s.GetInvestmentByID(userID, investmentID)
	if err != nil {
		return nil, err
	}

	if quantity > investment.Quantity+models.QuantityEpsilon {
		return nil, apperrors.ErrInsufficientQuantity
	}

	fullLiquidation := quantity >= investment.Quantity-models.QuantityEpsilon

	var result *SellResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if fullLiquidation {
			proceeds := int64(math.Round(investment.Quantity * float64(salePricePerUnit)))
			result = &SellResult{
				Liquidated:       true,
				QuantitySold:     investment.Quantity,
				Proceeds:         proceeds,
				RealizedGainLoss: proceeds - investment.InvestedAmount,
			}
			if txErr := tx.Delete(investment).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			return nil
		}

		avgCost := investment.AverageCost()
		remaining := investment.Quantity - quantity
		proceeds := int64(math.Round(quantity * float64(salePricePerUnit)))
		costOfSold := int64(math.Round(avgCost * quantity))

		investment.Quantity = remaining
		investment.InvestedAmount = int64(math.Round(avgCost * remaining))
		investment.CurrentAmount = int64(math.Round(remaining * float64(salePricePerUnit)))

		if txErr := tx.Save(investment).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		result = &SellResult{
			Investment:       investment,
			QuantitySold:     quantity,
			Proceeds:         proceeds,
			RealizedGainLoss: proceeds - costOfSold,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateCurrentAmount manually marks a position's market value. This is
// the only way to revalue positions without a ticker.
func (s *investmentService) UpdateCurrentAmount(userID, investmentID uint, currentAmount int64) (*models.Investment, error) {
	if currentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount cannot be negative")
	}

	investment, err := s.GetInvestmentByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(investment).Update("current_amount", currentAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	investment.CurrentAmount = currentAmount
	return investment, nil
}

// DeleteInvestment soft-deletes a position owned by the user.
func (s *investmentService) DeleteInvestment(userID, investmentID uint) error {
	investment, err := s.GetInvestmentByID(userID, investmentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(investment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RefreshQuotes re-marks ticker-bearing positions at live market prices.
// Positions without a ticker, with no quantity, or whose type no provider
// supports are skipped and keep their last value. A failed fetch skips
// that position only.
func (s *investmentService) RefreshQuotes(ctx context.Context, userID uint) (*QuoteRefreshResult, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &QuoteRefreshResult{}
	log := logger.Get()

	// Group refreshable positions by the first provider that supports
	// their type.
	byProvider := make(map[quotes.Provider][]quotes.Asset)
	quantities := make(map[uint]float64, len(investments))

	for i := range investments {
		inv := &investments[i]
		if inv.Ticker == "" || inv.Quantity <= 0 {
			result.Skipped++
			continue
		}
		provider := s.providerFor(inv.Type)
		if provider == nil {
			result.Skipped++
			continue
		}
		byProvider[provider] = append(byProvider[provider], quotes.Asset{
			InvestmentID: inv.ID,
			Ticker:       inv.Ticker,
			Type:         inv.Type,
		})
		quantities[inv.ID] = inv.Quantity
	}

	for provider, assets := range byProvider {
		prices, fetchErrors := provider.FetchPrices(ctx, assets)

		for _, fe := range fetchErrors {
			log.Warnw("quote fetch failed, keeping last value",
				"provider", provider.Name(), "ticker", fe.Ticker, "error", fe.Err)
			result.Errors = append(result.Errors, fe.Error())
		}

		for _, price := range prices {
			value := int64(math.Round(quantities[price.InvestmentID] * float64(price.PriceCents)))
			if err := s.db.Model(&models.Investment{}).
				Where("id = ?", price.InvestmentID).
				Update("current_amount", value).Error; err != nil {
				log.Errorw("failed to persist refreshed quote",
					"investment_id", price.InvestmentID, "error", err)
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.Updated++
		}
	}

	return result, nil
}

// providerFor returns the first provider that supports the given type.
func (s *investmentService) providerFor(typ models.InvestmentType) quotes.Provider {
	for _, p := range s.providers {
		if p.Supports(typ) {
			return p
		}
	}
	return nil
}

// GetPortfolio returns an aggregated summary across all positions.
func (s *investmentService) GetPortfolio(userID uint) (*PortfolioSummary, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &PortfolioSummary{
		ByType: make(map[models.InvestmentType]TypeSummary),
	}

	for i := range investments {
		inv := &investments[i]
		summary.TotalInvested += inv.InvestedAmount
		summary.TotalCurrent += inv.CurrentAmount

		ts := summary.ByType[inv.Type]
		ts.Invested += inv.InvestedAmount
		ts.Current += inv.CurrentAmount
		ts.Count++
		summary.ByType[inv.Type] = ts
	}

	summary.TotalGainLoss = summary.TotalCurrent - summary.TotalInvested
	if summary.TotalInvested > 0 {
		summary.GainLossPct = float64(summary.TotalGainLoss) / float64(summary.TotalInvested) * 100
	}

	return summary, nil
}
