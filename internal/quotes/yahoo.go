package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"centavo/internal/models"
)

const (
	yahooBaseURL  = "https://query1.finance.yahoo.com/v7/finance/quote"
	yahooBatchMax = 50
	yahooUA       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// yahooQuoteResponse is the top-level Yahoo Finance API response.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
		Error  *json.RawMessage   `json:"error"`
	} `json:"quoteResponse"`
}

// yahooQuoteResult is a single quote result from Yahoo Finance.
type yahooQuoteResult struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// YahooProvider fetches prices from Yahoo Finance for stocks, FIIs, and BDRs.
type YahooProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewYahooProvider creates a new Yahoo Finance price provider.
func NewYahooProvider(httpClient *http.Client, baseURL string) *YahooProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// Supports returns true for exchange-traded investment types.
func (p *YahooProvider) Supports(typ models.InvestmentType) bool {
	switch typ {
	case models.InvestmentTypeStock, models.InvestmentTypeRealEstate, models.InvestmentTypeBDR:
		return true
	default:
		return false
	}
}

// buildYahooSymbol converts a B3 ticker to a Yahoo-compatible one.
// B3 listings carry the .SA suffix on Yahoo; tickers that already
// contain a dot are passed through untouched.
func buildYahooSymbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.Contains(t, ".") {
		return t
	}
	return t + ".SA"
}

// FetchPrices fetches current prices from Yahoo Finance in batches.
func (p *YahooProvider) FetchPrices(ctx context.Context, assets []Asset) ([]PriceResult, []FetchError) {
	if len(assets) == 0 {
		return nil, nil
	}

	// Build Yahoo tickers and maintain mapping back to investment IDs.
	symbolToAsset := make(map[string]Asset, len(assets))
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		sym := buildYahooSymbol(a.Ticker)
		symbolToAsset[sym] = a
		symbols = append(symbols, sym)
	}

	var allResults []PriceResult
	var allErrors []FetchError
	now := time.Now().UTC()

	for i := 0; i < len(symbols); i += yahooBatchMax {
		end := min(i+yahooBatchMax, len(symbols))
		batch := symbols[i:end]

		results, fetchErrors := p.fetchBatch(ctx, batch, symbolToAsset, now)
		allResults = append(allResults, results...)
		allErrors = append(allErrors, fetchErrors...)
	}

	return allResults, allErrors
}

// fetchBatch fetches prices for a single batch of symbols.
func (p *YahooProvider) fetchBatch(ctx context.Context, symbols []string, symbolToAsset map[string]Asset, now time.Time) ([]PriceResult, []FetchError) {
	url := p.baseURL + "?symbols=" + strings.Join(symbols, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, batchErrors(symbols, symbolToAsset, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, batchErrors(symbols, symbolToAsset, fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, batchErrors(symbols, symbolToAsset, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var quoteResp yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, batchErrors(symbols, symbolToAsset, fmt.Errorf("decoding response: %w", err))
	}

	// Index results by symbol for lookup.
	resultMap := make(map[string]float64, len(quoteResp.QuoteResponse.Result))
	for _, r := range quoteResp.QuoteResponse.Result {
		resultMap[r.Symbol] = r.RegularMarketPrice
	}

	var results []PriceResult
	var fetchErrors []FetchError

	for _, sym := range symbols {
		asset := symbolToAsset[sym]
		price, found := resultMap[sym]
		if !found {
			fetchErrors = append(fetchErrors, FetchError{
				InvestmentID: asset.InvestmentID,
				Ticker:       asset.Ticker,
				Err:          fmt.Errorf("symbol %s not found in response", sym),
			})
			continue
		}
		if price == 0 {
			fetchErrors = append(fetchErrors, FetchError{
				InvestmentID: asset.InvestmentID,
				Ticker:       asset.Ticker,
				Err:          fmt.Errorf("zero price for %s", sym),
			})
			continue
		}
		results = append(results, PriceResult{
			InvestmentID: asset.InvestmentID,
			Ticker:       asset.Ticker,
			PriceCents:   toCents(price),
			FetchedAt:    now,
		})
	}

	return results, fetchErrors
}

// batchErrors creates FetchErrors for all symbols in a failed batch.
func batchErrors(symbols []string, symbolToAsset map[string]Asset, err error) []FetchError {
	errors := make([]FetchError, len(symbols))
	for i, sym := range symbols {
		asset := symbolToAsset[sym]
		errors[i] = FetchError{
			InvestmentID: asset.InvestmentID,
			Ticker:       asset.Ticker,
			Err:          err,
		}
	}
	return errors
}
