package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/commboard/internal/middleware"
	"github.com/hitoshi/commboard/internal/model"
)

// writeJSON は成功レスポンスをJSONで書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSONBody はリクエストボディをデコードする。
// 空のボディは全項目が未指定のリクエストとして扱う。
func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return model.NewBadRequestError()
	}
	return nil
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		if statusCode >= http.StatusInternalServerError {
			slog.Error("request failed", slog.String("error", err.Error()))
		}
		middleware.WriteErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorの種別とカテゴリからHTTPステータスコードを決める。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch {
	case apiErr.Code == model.ErrCodeStoreUnavailable:
		return http.StatusInternalServerError
	case apiErr.Code == model.ErrCodeResultInvalid && apiErr.Category == model.CategoryAuth:
		return http.StatusUnauthorized
	case apiErr.Code == model.ErrCodeResultInvalid && apiErr.Category == model.CategoryNotFound:
		return http.StatusNotFound
	case apiErr.Code == 0:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
