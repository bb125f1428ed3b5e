package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"centavo/internal/models"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// coinGeckoIDs maps common ticker symbols to CoinGecko coin IDs.
// CoinGecko's simple/price endpoint is keyed by coin ID, not symbol.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"BNB":   "binancecoin",
	"LTC":   "litecoin",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"USDT":  "tether",
	"USDC":  "usd-coin",
}

// MarketCoin is a single entry from CoinGecko's market listing,
// used to build market context for the assistant.
type MarketCoin struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	Change24hPerc float64 `json:"price_change_percentage_24h"`
}

// CoinGeckoProvider fetches crypto prices from CoinGecko, quoted in BRL.
type CoinGeckoProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewCoinGeckoProvider creates a new CoinGecko price provider.
func NewCoinGeckoProvider(httpClient *http.Client, baseURL string) *CoinGeckoProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	return &CoinGeckoProvider{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the provider's display name.
func (p *CoinGeckoProvider) Name() string { return "CoinGecko" }

// Supports returns true for the crypto investment type only.
func (p *CoinGeckoProvider) Supports(typ models.InvestmentType) bool {
	return typ == models.InvestmentTypeCrypto
}

// FetchPrices fetches current BRL prices from CoinGecko's simple/price endpoint.
func (p *CoinGeckoProvider) FetchPrices(ctx context.Context, assets []Asset) ([]PriceResult, []FetchError) {
	if len(assets) == 0 {
		return nil, nil
	}

	// Resolve tickers to CoinGecko IDs up front; unknown symbols fail
	// individually without blocking the rest of the batch.
	idToAsset := make(map[string]Asset, len(assets))
	ids := make([]string, 0, len(assets))
	var fetchErrors []FetchError

	for _, a := range assets {
		id, ok := coinGeckoIDs[strings.ToUpper(strings.TrimSpace(a.Ticker))]
		if !ok {
			fetchErrors = append(fetchErrors, FetchError{
				InvestmentID: a.InvestmentID,
				Ticker:       a.Ticker,
				Err:          fmt.Errorf("no CoinGecko ID mapping for %s", a.Ticker),
			})
			continue
		}
		idToAsset[id] = a
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fetchErrors
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=brl", p.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, append(fetchErrors, idErrors(ids, idToAsset, fmt.Errorf("building request: %w", err))...)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, append(fetchErrors, idErrors(ids, idToAsset, fmt.Errorf("http request: %w", err))...)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, append(fetchErrors, idErrors(ids, idToAsset, fmt.Errorf("unexpected status %d", resp.StatusCode))...)
	}

	// Response shape: {"bitcoin": {"brl": 345000.12}, ...}
	var priceMap map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&priceMap); err != nil {
		return nil, append(fetchErrors, idErrors(ids, idToAsset, fmt.Errorf("decoding response: %w", err))...)
	}

	now := time.Now().UTC()
	var results []PriceResult

	for _, id := range ids {
		asset := idToAsset[id]
		entry, found := priceMap[id]
		if !found {
			fetchErrors = append(fetchErrors, FetchError{
				InvestmentID: asset.InvestmentID,
				Ticker:       asset.Ticker,
				Err:          fmt.Errorf("coin %s not found in response", id),
			})
			continue
		}
		price := entry["brl"]
		if price == 0 {
			fetchErrors = append(fetchErrors, FetchError{
				InvestmentID: asset.InvestmentID,
				Ticker:       asset.Ticker,
				Err:          fmt.Errorf("zero price for %s", id),
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

// TopMarkets fetches the top coins by market cap, quoted in BRL.
// The result feeds the assistant's market context and is best effort.
func (p *CoinGeckoProvider) TopMarkets(ctx context.Context, limit int) ([]MarketCoin, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := fmt.Sprintf("%s/coins/markets?vs_currency=brl&order=market_cap_desc&per_page=%d&page=1", p.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var coins []MarketCoin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return coins, nil
}

// idErrors creates FetchErrors for all coin IDs in a failed request.
func idErrors(ids []string, idToAsset map[string]Asset, err error) []FetchError {
	errors := make([]FetchError, len(ids))
	for i, id := range ids {
		asset := idToAsset[id]
		errors[i] = FetchError{
			InvestmentID: asset.InvestmentID,
			Ticker:       asset.Ticker,
			Err:          err,
		}
	}
	return errors
}
