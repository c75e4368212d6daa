package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/commboard/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 数値のエラー種別と人間向けメッセージを含む。
type ErrorResponseBody struct {
	ErrorCode int    `json:"errorCode"`
	Error     string `json:"error"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		ErrorCode: apiErr.Code,
		Error:     apiErr.Message,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     model.ErrCodeStoreUnavailable,
		Message:  "Internal Server Error",
		Category: model.CategorySystem,
	})
}
