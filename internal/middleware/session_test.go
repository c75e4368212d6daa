package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/commboard/internal/model"
)

// --- モック定義 ---

type mockSessionResolver struct {
	resolveFn func(ctx context.Context, token string) (*model.Account, error)
}

func (m *mockSessionResolver) Resolve(ctx context.Context, token string) (*model.Account, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return nil, nil
}

var _ SessionResolver = (*mockSessionResolver)(nil)

func resolverFor(token string, account *model.Account) *mockSessionResolver {
	return &mockSessionResolver{
		resolveFn: func(_ context.Context, got string) (*model.Account, error) {
			if got == token {
				return account, nil
			}
			return nil, nil
		},
	}
}

// --- テスト ---

func TestSessionMiddleware_ValidToken_InjectsAccount(t *testing.T) {
	account := &model.Account{ID: 7, UserID: "bob", Nickname: "Bobby"}
	mw := NewSessionMiddleware(resolverFor("tok-1", account))

	var captured *model.Account
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"tok-1", "Bearer tok-1", "bearer tok-1"} {
		t.Run(header, func(t *testing.T) {
			captured = nil
			req := httptest.NewRequest(http.MethodGet, "/userInfo", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if captured == nil || captured.ID != 7 {
				t.Errorf("account = %+v, want ID 7", captured)
			}
		})
	}
}

func TestSessionMiddleware_Unauthenticated(t *testing.T) {
	mw := NewSessionMiddleware(resolverFor("tok-1", &model.Account{ID: 1}))

	tests := []struct {
		name   string
		header string
	}{
		{"ヘッダーなし", ""},
		{"未知のトークン", "unknown"},
		{"Bearerのみ", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/userInfo", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if called {
				t.Error("next handler must not be called")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.ErrorCode != model.ErrCodeResultInvalid {
				t.Errorf("errorCode = %d, want %d", body.ErrorCode, model.ErrCodeResultInvalid)
			}
		})
	}
}

func TestSessionMiddleware_StoreUnavailable(t *testing.T) {
	resolver := &mockSessionResolver{
		resolveFn: func(context.Context, string) (*model.Account, error) {
			return nil, errors.Join(model.NewStoreUnavailableError(), errors.New("dial tcp: refused"))
		},
	}
	handler := NewSessionMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/userInfo", nil)
	req.Header.Set("Authorization", "tok")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ErrorResponseBody
	json.NewDecoder(w.Body).Decode(&body)
	if body.ErrorCode != model.ErrCodeStoreUnavailable {
		t.Errorf("errorCode = %d, want %d", body.ErrorCode, model.ErrCodeStoreUnavailable)
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"abc", "abc"},
		{"Bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"  abc  ", "abc"},
		{"Bearer", "Bearer"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		if got := TokenFromRequest(req); got != tt.want {
			t.Errorf("TokenFromRequest(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestAccountFromContext_Empty(t *testing.T) {
	if _, ok := AccountFromContext(context.Background()); ok {
		t.Error("expected no account in empty context")
	}
	ctx := ContextWithAccount(context.Background(), &model.Account{ID: 3})
	if a, ok := AccountFromContext(ctx); !ok || a.ID != 3 {
		t.Errorf("AccountFromContext = %+v, %v", a, ok)
	}
}
