package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradesim_backend/internal/feature/marketdata/adapters/alphavantage/dto"
	"tradesim_backend/internal/feature/marketdata/domain/entity"
	"tradesim_backend/internal/feature/marketdata/usecase"
)

// historyDays は日足履歴で返す最大日数です。
const historyDays = 30

// Client はAlpha Vantage外部APIから株価データを取得するProvider実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがProviderを実装していることをコンパイル時に検証します。
var _ usecase.Provider = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// get はAlpha Vantageのエンドポイントを呼び出し、レスポンスをoutにデコードします。
// Alpha Vantageはエラーや流量制限もHTTP 200で返すため、呼び出し側で
// APIStatusフィールドを確認する必要があります。
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", c.cfg.APIKey)
	u := fmt.Sprintf("%s?%s", c.cfg.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("alphavantage http %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}

// checkStatus はペイロードに混ぜられたエラー・流量制限フィールドを検査します。
func checkStatus(s dto.APIStatus) error {
	if s.ErrorMessage != "" {
		return fmt.Errorf("alphavantage: %s", s.ErrorMessage)
	}
	if s.Note != "" {
		return fmt.Errorf("alphavantage throttled: %s", s.Note)
	}
	if s.Information != "" {
		return fmt.Errorf("alphavantage throttled: %s", s.Information)
	}
	return nil
}

// FetchQuote はGLOBAL_QUOTEエンドポイントから現在値を取得します。
func (c *Client) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)

	var body dto.GlobalQuoteResponse
	if err := c.get(ctx, q, &body); err != nil {
		return entity.Quote{}, err
	}
	if err := checkStatus(body.APIStatus); err != nil {
		return entity.Quote{}, err
	}
	if body.GlobalQuote.Symbol == "" {
		return entity.Quote{}, fmt.Errorf("alphavantage: no quote data for %q", symbol)
	}

	g := body.GlobalQuote

	price, err := decimal.NewFromString(g.Price)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse price %q: %w", g.Price, err)
	}
	change, err := decimal.NewFromString(g.Change)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse change %q: %w", g.Change, err)
	}
	// 変化率は"1.2345%"のように%サフィックス付きで返る
	changePercent, err := decimal.NewFromString(strings.TrimSuffix(g.ChangePercent, "%"))
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse change percent %q: %w", g.ChangePercent, err)
	}
	high, err := decimal.NewFromString(g.High)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse high %q: %w", g.High, err)
	}
	low, err := decimal.NewFromString(g.Low)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse low %q: %w", g.Low, err)
	}
	open, err := decimal.NewFromString(g.Open)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse open %q: %w", g.Open, err)
	}
	prevClose, err := decimal.NewFromString(g.PreviousClose)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse previous close %q: %w", g.PreviousClose, err)
	}
	volume, err := strconv.ParseInt(g.Volume, 10, 64)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse volume %q: %w", g.Volume, err)
	}

	return entity.Quote{
		Symbol:        g.Symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		High:          high,
		Low:           low,
		Open:          open,
		PreviousClose: prevClose,
		Volume:        volume,
	}, nil
}

// SearchSymbols はSYMBOL_SEARCHエンドポイントで銘柄を検索します。
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]entity.SymbolMatch, error) {
	q := url.Values{}
	q.Set("function", "SYMBOL_SEARCH")
	q.Set("keywords", query)

	var body dto.SymbolSearchResponse
	if err := c.get(ctx, q, &body); err != nil {
		return nil, err
	}
	if err := checkStatus(body.APIStatus); err != nil {
		return nil, err
	}

	matches := make([]entity.SymbolMatch, 0, len(body.BestMatches))
	for _, m := range body.BestMatches {
		matches = append(matches, entity.SymbolMatch{
			Symbol: m.Symbol,
			Name:   m.Name,
			Type:   m.Type,
			Region: m.Region,
		})
	}
	return matches, nil
}

// FetchDailyHistory はTIME_SERIES_DAILYエンドポイントから直近の日足を取得し、
// 古い順に最大30本返します。
func (c *Client) FetchDailyHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "compact")

	var body dto.DailySeriesResponse
	if err := c.get(ctx, q, &body); err != nil {
		return nil, err
	}
	if err := checkStatus(body.APIStatus); err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(body.TimeSeries))
	for d := range body.TimeSeries {
		dates = append(dates, d)
	}
	// 日付文字列は辞書順＝時系列順
	sort.Strings(dates)
	if len(dates) > historyDays {
		dates = dates[len(dates)-historyDays:]
	}

	bars := make([]entity.DailyBar, 0, len(dates))
	for _, d := range dates {
		v := body.TimeSeries[d]

		tm, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", d, err)
		}
		open, err := decimal.NewFromString(v.Open)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		high, err := decimal.NewFromString(v.High)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		low, err := decimal.NewFromString(v.Low)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		cl, err := decimal.NewFromString(v.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		volume, err := strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}

		bars = append(bars, entity.DailyBar{
			Date:   tm,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cl,
			Volume: volume,
		})
	}
	return bars, nil
}
