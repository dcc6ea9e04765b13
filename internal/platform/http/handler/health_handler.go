// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceName は監視側でのサービス識別用にヘルスレスポンスへ含めます。
const serviceName = "tradesim-backend"

// Health は監視・ロードバランサー向けの /healthz エンドポイントを処理します。
// レスポンスは中間キャッシュに載せないようCache-Controlを付与します。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	}
}
