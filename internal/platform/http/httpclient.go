// Package http は外部API呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// 株価プロバイダへの接続パラメータ。呼び出し頻度はレート制限で
// 抑えられているため、少数のコネクションを長めに使い回します。
const (
	dialTimeout         = 5 * time.Second
	dialKeepAlive       = 30 * time.Second
	maxIdleConns        = 10
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// NewHTTPClient は株価プロバイダ呼び出し用に設定されたHTTPクライアントを作成します。
// timeoutはリクエスト全体の上限で、設定（ALPHA_VANTAGE_TIMEOUT）から渡されます。
// http.DefaultClientにはタイムアウトがないため、外部呼び出しには必ずこちらを使うこと。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: dialKeepAlive,
			}).DialContext,
			MaxIdleConns:        maxIdleConns,
			IdleConnTimeout:     idleConnTimeout,
			TLSHandshakeTimeout: tlsHandshakeTimeout,
		},
	}
}
