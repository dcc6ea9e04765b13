package usecase

import "errors"

// watchlistフィーチャーのセンチネルエラーです。
// transport層はこれらをHTTPステータスコードへ変換します。
var (
	// ErrAlreadyInWatchlist は同じ銘柄を二重に追加しようとした場合に返されます。
	ErrAlreadyInWatchlist = errors.New("symbol already in watchlist")

	// ErrUnknownSymbol は相場情報が取得できない銘柄を追加しようとした場合に返されます。
	ErrUnknownSymbol = errors.New("unknown symbol")
)
