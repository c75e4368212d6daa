// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/commboard/internal/middleware"
	"github.com/hitoshi/commboard/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	Register(ctx context.Context, userID, password, email, nickname string) error
	Login(ctx context.Context, userID, password string) (string, error)
}

// AccountHandler は登録・ログイン・本人情報のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

type loginRequest struct {
	ID string `json:"id"`
	PW string `json:"pw"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type joinRequest struct {
	ID    string `json:"id"`
	PW    string `json:"pw"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type userInfoResponse struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// Login は資格情報を照合してトークンを返す。
// POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.ID, req.PW)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Join はアカウントを登録する。
// POST /join
func (h *AccountHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Register(r.Context(), req.ID, req.PW, req.Email, req.Name); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// UserInfo は認証済みアカウントの情報を返す。
// GET /userInfo
func (h *AccountHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		handleServiceError(w, model.NewUnauthenticatedError())
		return
	}

	writeJSON(w, http.StatusOK, userInfoResponse{
		UserID:   account.UserID,
		Nickname: account.Nickname,
		Email:    account.Email,
	})
}
