package models

// ConsultaQuery holds the optional query parameters of
// GET /api/v1/processos/:numero/movimentacoes.
type ConsultaQuery struct {
	// MaxAge allows serving a cached result younger than this many
	// milliseconds. Zero (default) always queries the portal.
	MaxAge int `form:"max_age" binding:"omitempty,min=0"`

	// CallbackURL, when set, receives the result as a signed webhook event
	// after the response is computed.
	CallbackURL string `form:"callback_url" binding:"omitempty,url"`
}
