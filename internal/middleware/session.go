// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/commboard/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// accountContextKey はリクエストコンテキストに認証済みアカウントを格納するためのキー。
var accountContextKey = contextKey("account")

// SessionResolver はトークンからアカウントを解決するインターフェース。
// auth.SessionResolverが実装する。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.Account, error)
}

// TokenFromRequest はAuthorizationヘッダーからトークンを取り出す。
// "Bearer <token>"形式とトークンのみの形式の両方を受け付ける。
func TokenFromRequest(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// NewSessionMiddleware はAuthorizationヘッダーのトークンを解決し、
// 認証済みアカウントをリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い、または解決できない場合は401を返す。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := resolver.Resolve(r.Context(), TokenFromRequest(r))
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				if errors.Is(err, model.ErrStoreUnavailable) {
					WriteErrorResponse(w, http.StatusInternalServerError, model.NewStoreUnavailableError())
					return
				}
				WriteInternalServerError(w)
				return
			}
			if account == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			setLoggedAccount(r.Context(), account.ID)
			next.ServeHTTP(w, r.WithContext(ContextWithAccount(r.Context(), account)))
		})
	}
}

// AccountFromContext はリクエストコンテキストから認証済みアカウントを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func AccountFromContext(ctx context.Context) (*model.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(*model.Account)
	if !ok || account == nil {
		return nil, false
	}
	return account, true
}

// ContextWithAccount はコンテキストにアカウントを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAccount(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}
