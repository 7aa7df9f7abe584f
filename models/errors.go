package models

import "fmt"

// Result codes carried in every response body.
const (
	CodeSuccess          = 200
	CodeUnprocessable    = 2
	CodeRetriesExhausted = 3
	CodeInternal         = 4
)

// Result messages paired with the codes above.
const (
	MsgSuccess       = "SUCESSO"
	MsgUnprocessable = "ERRO_ENTIDADE_NAO_PROCESSAVEL"
	MsgInternal      = "ERRO_SERVIDOR_INTERNO"
)

// Codes used only by the API layer (middleware rejections).
const (
	CodeUnauthorized = 401
	CodeRateLimited  = 429
	CodeInvalidInput = 400

	MsgUnauthorized = "ERRO_NAO_AUTORIZADO"
	MsgRateLimited  = "ERRO_LIMITE_REQUISICOES"
	MsgInvalidInput = "ERRO_REQUISICAO_INVALIDA"
)

// ErrorDetail is the minimal {code, message} body used for API-level
// rejections that never reach the fetcher.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FetchError is the internal error type carrying a result code.
// It implements the error interface and supports error wrapping via Unwrap.
type FetchError struct {
	Code    int
	Message string
	Err     error // wrapped original error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(code int, message string, err error) *FetchError {
	return &FetchError{Code: code, Message: message, Err: err}
}
