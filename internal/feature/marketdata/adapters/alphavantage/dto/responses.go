// Package dto defines data transfer objects for the Alpha Vantage API responses.
package dto

// APIStatus carries the out-of-band status fields Alpha Vantage mixes into
// every payload. A 200 response with a populated Note or Information field
// means the request was throttled, not served.
type APIStatus struct {
	Note         string `json:"Note,omitempty"`
	Information  string `json:"Information,omitempty"`
	ErrorMessage string `json:"Error Message,omitempty"`
}

// GlobalQuoteResponse represents the JSON response from the GLOBAL_QUOTE function.
type GlobalQuoteResponse struct {
	APIStatus
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// SymbolSearchResponse represents the JSON response from the SYMBOL_SEARCH function.
type SymbolSearchResponse struct {
	APIStatus
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
		Type   string `json:"3. type"`
		Region string `json:"4. region"`
	} `json:"bestMatches"`
}

// DailySeriesResponse represents the JSON response from the TIME_SERIES_DAILY function.
// The series is a map keyed by date string ("2006-01-02").
type DailySeriesResponse struct {
	APIStatus
	TimeSeries map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}
