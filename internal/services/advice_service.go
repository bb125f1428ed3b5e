package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
	"centavo/internal/quotes"
)

// Fallback messages shown when the assistant cannot answer. The HTTP
// layer returns these as a normal response body, never as a 5xx.
const (
	adviceMissingKey  = "Erro: Chave de API do Gemini não configurada."
	adviceRateLimited = "⚠️ Atingimos o limite gratuito de consultas por hoje. Por favor, tente novamente mais tarde."
	adviceUnavailable = "⚠️ O modelo de IA está temporariamente indisponível. Tente novamente em alguns minutos."
	adviceGenericErr  = "Ocorreu um erro ao consultar a IA. Tente novamente."
	adviceEmptyReply  = "Desculpe, tive um problema ao processar sua análise financeira."
)

// MarketSnapshotter supplies the crypto market context for the assistant.
// *quotes.CoinGeckoProvider satisfies it.
type MarketSnapshotter interface {
	TopMarkets(ctx context.Context, limit int) ([]quotes.MarketCoin, error)
}

// contentGenerator abstracts the model call so tests can stub it.
type contentGenerator interface {
	Generate(ctx context.Context, model, systemInstruction, prompt string) (string, error)
}

// geminiGenerator calls the Gemini API through the Google GenAI SDK.
type geminiGenerator struct {
	apiKey string
}

func (g *geminiGenerator) Generate(ctx context.Context, model, systemInstruction, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr(float32(0.7)),
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// adviceService builds the user's financial context and asks the model
// for advice.
type adviceService struct {
	db        *gorm.DB
	stats     TransactionServicer
	markets   MarketSnapshotter
	generator contentGenerator
	apiKey    string
	model     string
}

// NewAdviceService creates a new AdviceServicer.
func NewAdviceService(db *gorm.DB, stats TransactionServicer, markets MarketSnapshotter, apiKey, model string) AdviceServicer {
	return &adviceService{
		db:        db,
		stats:     stats,
		markets:   markets,
		generator: &geminiGenerator{apiKey: apiKey},
		apiKey:    apiKey,
		model:     model,
	}
}

// categoryTotals sums expenses per category.
func (s *adviceService) categoryTotals(userID uint) (map[string]int64, error) {
	type row struct {
		Category string
		Total    int64
	}
	var rows []row
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Group("category").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	totals := make(map[string]int64, len(rows))
	for _, r := range rows {
		totals[r.Category] = r.Total
	}
	return totals, nil
}

// buildSystemInstruction composes the assistant persona with the user's
// live financial context.
func buildSystemInstruction(stats *LedgerStats, categories map[string]int64, investments []models.Investment, coins []quotes.MarketCoin) string {
	var categoryParts []string
	for category, total := range categories {
		categoryParts = append(categoryParts, fmt.Sprintf("%s: %s", category, formatBRL(total)))
	}

	var portfolioParts []string
	for _, inv := range investments {
		label := inv.Ticker
		if label == "" {
			label = string(inv.Type)
		}
		portfolioParts = append(portfolioParts, fmt.Sprintf("%s (%s) - Qtd: %g", inv.Name, label, inv.Quantity))
	}

	var marketParts []string
	for _, coin := range coins {
		marketParts = append(marketParts, fmt.Sprintf("%s: R$%.2f (%.2f%%)", coin.Name, coin.CurrentPrice, coin.Change24hPerc))
	}

	return fmt.Sprintf(`Você é o assistente financeiro pessoal do Centavo.
Sua missão é ajudar o usuário a gerir dinheiro, economizar e investir melhor.

DADOS ATUAIS DO USUÁRIO (Contexto Real):
- SALDO EM CONTA: %s
- FLUXO: Entradas %s | Saídas %s
- GASTOS POR CATEGORIA: %s
- CARTEIRA DE INVESTIMENTOS: %s
- MERCADO CRIPTO (CoinGecko): %s

SUAS DIRETRIZES:
1. Responda dúvidas sobre os gastos específicos do usuário (ex: "onde gastei mais?").
2. Sugira rebalanceamento de investimentos baseado no mercado atual.
3. Use um tom profissional, porém amigável e encorajador.
4. Explique conceitos financeiros complexos de forma simples.
5. OBRIGATÓRIO: Sempre termine recomendações de ativos com um aviso de que não é recomendação oficial de compra.

Responda sempre em Português (Brasil) usando formatação Markdown rica.`,
		formatBRL(stats.TotalBalance),
		formatBRL(stats.TotalIncome),
		formatBRL(stats.TotalExpenses),
		strings.Join(categoryParts, "; "),
		strings.Join(portfolioParts, "; "),
		strings.Join(marketParts, ", "))
}

// adviceFallback maps a model error to a user-visible message.
func adviceFallback(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "quota") {
		return adviceRateLimited
	}
	if strings.Contains(msg, "404") || strings.Contains(strings.ToLower(msg), "not found") {
		return adviceUnavailable
	}
	return adviceGenericErr
}

// GetAdvice answers a free-form financial question with the user's data
// as context. Failures degrade to descriptive messages instead of errors
// so the conversation never breaks.
func (s *adviceService) GetAdvice(ctx context.Context, userID uint, prompt string) (string, error) {
	if prompt == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "prompt is required")
	}
	if s.apiKey == "" {
		return adviceMissingKey, nil
	}

	stats, err := s.stats.GetStats(userID, TransactionFilter{})
	if err != nil {
		return "", err
	}
	categories, err := s.categoryTotals(userID)
	if err != nil {
		return "", err
	}
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Find(&investments).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Get()

	// Market context is best effort; the assistant still answers without it.
	var coins []quotes.MarketCoin
	if s.markets != nil {
		coins, err = s.markets.TopMarkets(ctx, 10)
		if err != nil {
			log.Warnw("crypto market snapshot unavailable", "error", err)
			coins = nil
		}
	}

	systemInstruction := buildSystemInstruction(stats, categories, investments, coins)

	answer, err := s.generator.Generate(ctx, s.model, systemInstruction, prompt)
	if err != nil {
		log.Errorw("gemini request failed", "error", err)
		return adviceFallback(err), nil
	}
	if answer == "" {
		return adviceEmptyReply, nil
	}
	return answer, nil
}
