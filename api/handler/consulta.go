package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reissbruno/monitoramento-processual-tjsp/cache"
	"github.com/reissbruno/monitoramento-processual-tjsp/models"
	"github.com/reissbruno/monitoramento-processual-tjsp/webhook"
)

// Fetcher is the part of scraper.Fetcher the handlers depend on.
type Fetcher interface {
	Fetch(ctx context.Context, caseID string, tel *models.Telemetry) *models.FetchResult
}

// Movimentacoes returns a handler for
// GET /api/v1/processos/:numero/movimentacoes and
// GET /api/v1/movimentacoes?numero_processo=...
//
// Flow:
//  1. Bind optional query parameters (max_age, callback_url).
//  2. Serve from cache when max_age allows it.
//  3. Fetch with a fresh Telemetry bound to this request.
//  4. Cache successes, schedule the callback, write the result.
func Movimentacoes(f Fetcher, cc *cache.Cache, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.ConsultaQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorDetail{
				Code:    models.CodeInvalidInput,
				Message: models.MsgInvalidInput,
			})
			return
		}

		caseID := c.Param("numero")
		if caseID == "" {
			caseID = c.Query("numero_processo")
		}
		key := cache.Key(caseID)

		if cc != nil && q.MaxAge > 0 {
			if cached, hit := cc.Get(key, q.MaxAge); hit {
				c.Header("X-Cache", "hit")
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		result := f.Fetch(c.Request.Context(), caseID, models.NewTelemetry())

		if cc != nil && q.MaxAge > 0 {
			cc.Set(key, result)
			c.Header("X-Cache", "miss")
		}

		if q.CallbackURL != "" && result.Code != models.CodeUnprocessable {
			webhook.DeliverAsync(q.CallbackURL, webhookSecret, webhook.NewConsultaEvent(caseID, result))
		}

		c.JSON(StatusFor(result), result)
	}
}

// StatusFor translates result codes to HTTP status codes.
func StatusFor(r *models.FetchResult) int {
	switch r.Code {
	case models.CodeSuccess:
		return http.StatusOK
	case models.CodeUnprocessable:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
