package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reissbruno/monitoramento-processual-tjsp/api/handler"
	"github.com/reissbruno/monitoramento-processual-tjsp/api/middleware"
	"github.com/reissbruno/monitoramento-processual-tjsp/cache"
	"github.com/reissbruno/monitoramento-processual-tjsp/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(f handler.Fetcher, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(cfg.Portal, cc, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	movimentacoes := handler.Movimentacoes(f, cc, cfg.Webhook.Secret)
	protected.GET("/processos/:numero/movimentacoes", movimentacoes)
	protected.GET("/movimentacoes", movimentacoes)

	return r
}
