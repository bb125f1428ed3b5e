package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"centavo/internal/models"
)

func newCoinGeckoMockServer(prices map[string]float64, markets []MarketCoin) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/simple/price"):
			requested := strings.Split(r.URL.Query().Get("ids"), ",")
			resp := make(map[string]map[string]float64)
			for _, id := range requested {
				if price, ok := prices[id]; ok {
					resp[id] = map[string]float64{"brl": price}
				}
			}
			_ = json.NewEncoder(w).Encode(resp)
		case strings.HasPrefix(r.URL.Path, "/coins/markets"):
			_ = json.NewEncoder(w).Encode(markets)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCoinGeckoProvider_Supports(t *testing.T) {
	p := NewCoinGeckoProvider(http.DefaultClient, "")

	if !p.Supports(models.InvestmentTypeCrypto) {
		t.Error("expected Supports(crypto) = true")
	}
	for _, typ := range []models.InvestmentType{models.InvestmentTypeStock, models.InvestmentTypeFixedIncome, ""} {
		if p.Supports(typ) {
			t.Errorf("expected Supports(%q) = false", typ)
		}
	}
}

func TestCoinGeckoProvider_FetchPrices_Success(t *testing.T) {
	server := newCoinGeckoMockServer(map[string]float64{
		"bitcoin":  345000.00,
		"ethereum": 18500.50,
	}, nil)
	defer server.Close()

	p := NewCoinGeckoProvider(server.Client(), server.URL)
	assets := []Asset{
		{InvestmentID: 1, Ticker: "BTC", Type: models.InvestmentTypeCrypto},
		{InvestmentID: 2, Ticker: "eth", Type: models.InvestmentTypeCrypto},
	}

	results, fetchErrors := p.FetchPrices(context.Background(), assets)
	if len(fetchErrors) != 0 {
		t.Fatalf("expected 0 errors, got %d: %v", len(fetchErrors), fetchErrors)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	expected := map[uint]int64{
		1: 34500000,
		2: 1850050,
	}
	for _, r := range results {
		want, ok := expected[r.InvestmentID]
		if !ok {
			t.Errorf("unexpected investment ID %d", r.InvestmentID)
			continue
		}
		if r.PriceCents != want {
			t.Errorf("investment %d: got price %d, want %d", r.InvestmentID, r.PriceCents, want)
		}
	}
}

func TestCoinGeckoProvider_FetchPrices_UnknownSymbol(t *testing.T) {
	server := newCoinGeckoMockServer(map[string]float64{
		"bitcoin": 345000.00,
	}, nil)
	defer server.Close()

	p := NewCoinGeckoProvider(server.Client(), server.URL)
	assets := []Asset{
		{InvestmentID: 1, Ticker: "BTC", Type: models.InvestmentTypeCrypto},
		{InvestmentID: 2, Ticker: "NOTACOIN", Type: models.InvestmentTypeCrypto},
	}

	results, fetchErrors := p.FetchPrices(context.Background(), assets)
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if len(fetchErrors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(fetchErrors))
	}
	if fetchErrors[0].InvestmentID != 2 {
		t.Errorf("expected error for investment ID 2, got %d", fetchErrors[0].InvestmentID)
	}
	if !strings.Contains(fetchErrors[0].Err.Error(), "no CoinGecko ID mapping") {
		t.Errorf("expected mapping error, got: %v", fetchErrors[0].Err)
	}
}

func TestCoinGeckoProvider_FetchPrices_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewCoinGeckoProvider(server.Client(), server.URL)
	assets := []Asset{
		{InvestmentID: 1, Ticker: "BTC", Type: models.InvestmentTypeCrypto},
	}

	results, fetchErrors := p.FetchPrices(context.Background(), assets)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
	if len(fetchErrors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(fetchErrors))
	}
	if !strings.Contains(fetchErrors[0].Err.Error(), "429") {
		t.Errorf("expected error to mention 429, got: %v", fetchErrors[0].Err)
	}
}

func TestCoinGeckoProvider_TopMarkets(t *testing.T) {
	markets := []MarketCoin{
		{Name: "Bitcoin", Symbol: "btc", CurrentPrice: 345000, Change24hPerc: 1.2},
		{Name: "Ethereum", Symbol: "eth", CurrentPrice: 18500, Change24hPerc: -0.8},
	}
	server := newCoinGeckoMockServer(nil, markets)
	defer server.Close()

	p := NewCoinGeckoProvider(server.Client(), server.URL)
	got, err := p.TopMarkets(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(got))
	}
	if got[0].Name != "Bitcoin" || got[0].CurrentPrice != 345000 {
		t.Errorf("unexpected first coin: %+v", got[0])
	}
}
