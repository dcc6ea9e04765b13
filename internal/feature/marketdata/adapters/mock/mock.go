// Package mock はAlpha Vantageを呼ばずに開発するための決定的なProvider実装を提供します。
// 同じシンボル・同じ時刻バケットに対しては常に同じ値を返します。
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradesim_backend/internal/feature/marketdata/domain/entity"
	"tradesim_backend/internal/feature/marketdata/usecase"
)

// stock はモックデータテーブルの1銘柄を表します。
type stock struct {
	symbol     string
	name       string
	basePrice  float64
	volatility float64 // 価格が変動しうる割合（0〜1）
}

// stocks は代表的な米国株20銘柄のモックテーブルです。
var stocks = []stock{
	{"AAPL", "Apple Inc.", 178.50, 0.02},
	{"MSFT", "Microsoft Corporation", 378.90, 0.018},
	{"GOOGL", "Alphabet Inc.", 141.25, 0.022},
	{"AMZN", "Amazon.com Inc.", 178.75, 0.025},
	{"NVDA", "NVIDIA Corporation", 495.20, 0.035},
	{"META", "Meta Platforms Inc.", 505.60, 0.028},
	{"TSLA", "Tesla Inc.", 248.50, 0.04},
	{"BRK.B", "Berkshire Hathaway Inc.", 363.15, 0.012},
	{"JPM", "JPMorgan Chase & Co.", 198.40, 0.015},
	{"V", "Visa Inc.", 279.80, 0.014},
	{"JNJ", "Johnson & Johnson", 156.30, 0.01},
	{"WMT", "Walmart Inc.", 165.25, 0.012},
	{"PG", "Procter & Gamble Co.", 152.40, 0.01},
	{"MA", "Mastercard Inc.", 458.90, 0.015},
	{"UNH", "UnitedHealth Group Inc.", 527.60, 0.016},
	{"HD", "The Home Depot Inc.", 345.20, 0.018},
	{"DIS", "The Walt Disney Company", 112.45, 0.025},
	{"NFLX", "Netflix Inc.", 485.30, 0.03},
	{"ADBE", "Adobe Inc.", 578.90, 0.022},
	{"CRM", "Salesforce Inc.", 272.15, 0.024},
}

// Provider はProviderインターフェースの決定的なモック実装です。
type Provider struct {
	// now はテストから時刻を固定するために差し替え可能です。
	now func() time.Time
}

// ProviderがProviderインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Provider = (*Provider)(nil)

// NewProvider はProviderの新しいインスタンスを生成します。
func NewProvider() *Provider {
	return &Provider{now: time.Now}
}

// lookup はテーブルから銘柄を探します。未知のシンボルには
// シンボルのハッシュから導出した決定的な銘柄を合成します。
func lookup(symbol string) stock {
	for _, s := range stocks {
		if s.symbol == symbol {
			return s
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	// 基準価格は50〜250の範囲に収める
	base := 50 + float64(h.Sum32()%20000)/100
	return stock{
		symbol:     symbol,
		name:       symbol + " Corp.",
		basePrice:  base,
		volatility: 0.02,
	}
}

// priceAt は時刻バケットに基づく擬似的な価格変動を適用した価格を返します。
// 同じ時間内の呼び出しは同じ値になります。
func priceAt(s stock, at time.Time) float64 {
	hourOfDay := (at.Unix() / 3600) % 24
	dayOfYear := (at.Unix() / 86400) % 365

	variation := math.Sin(float64(hourOfDay)*0.5+float64(dayOfYear)*0.1) * s.volatility
	return round2(s.basePrice * (1 + variation))
}

// volumeAt はシンボルと日付から決定的な出来高（1000万〜6000万）を導出します。
func volumeAt(s stock, at time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.symbol))
	_, _ = h.Write([]byte(at.UTC().Format("2006-01-02")))
	return 10_000_000 + int64(h.Sum64()%50_000_000)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func dec2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(round2(v))
}

// FetchQuote は決定的に生成した現在値を返します。
func (p *Provider) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	s := lookup(symbol)
	now := p.now()

	price := priceAt(s, now)
	previous := priceAt(s, now.Add(-24*time.Hour))
	change := round2(price - previous)
	changePercent := 0.0
	if previous != 0 {
		changePercent = round2(change / previous * 100)
	}

	return entity.Quote{
		Symbol:        s.symbol,
		Name:          s.name,
		Price:         dec2(price),
		Change:        dec2(change),
		ChangePercent: dec2(changePercent),
		High:          dec2(price * (1 + s.volatility*0.5)),
		Low:           dec2(price * (1 - s.volatility*0.5)),
		Open:          dec2(price - change*0.3),
		PreviousClose: dec2(price - change),
		Volume:        volumeAt(s, now),
	}, nil
}

// SearchSymbols はモックテーブルをシンボル・社名の部分一致で検索します。
func (p *Provider) SearchSymbols(ctx context.Context, query string) ([]entity.SymbolMatch, error) {
	q := strings.ToLower(query)

	matches := make([]entity.SymbolMatch, 0)
	for _, s := range stocks {
		if strings.Contains(strings.ToLower(s.symbol), q) ||
			strings.Contains(strings.ToLower(s.name), q) {
			matches = append(matches, entity.SymbolMatch{
				Symbol: s.symbol,
				Name:   s.name,
				Type:   "Equity",
				Region: "United States",
			})
		}
	}
	return matches, nil
}

// FetchDailyHistory は直近30日分の決定的な日足を古い順に返します。
func (p *Provider) FetchDailyHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error) {
	const days = 30

	s := lookup(symbol)
	now := p.now()

	bars := make([]entity.DailyBar, 0, days)
	for i := days - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * 24 * time.Hour)
		price := priceAt(s, at)
		dayVolatility := s.volatility * 0.5

		bars = append(bars, entity.DailyBar{
			Date:   at.UTC().Truncate(24 * time.Hour),
			Open:   dec2(price * (1 - dayVolatility*0.3)),
			High:   dec2(price * (1 + dayVolatility)),
			Low:    dec2(price * (1 - dayVolatility)),
			Close:  dec2(price),
			Volume: volumeAt(s, at),
		})
	}
	return bars, nil
}
