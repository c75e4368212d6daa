package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// クライアントには数値のエラー種別と人間向けメッセージを返す。
type APIError struct {
	Code     int    // 数値エラー種別
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, not_found, content, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Is はエラー種別が一致する場合にtrueを返す。
// targetにCategoryが設定されている場合はCategoryも比較する。
// errors.Is(err, model.ErrStoreUnavailable) のように種別で比較できる。
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	if t.Category != "" && t.Category != e.Category {
		return false
	}
	return e.Code == t.Code
}

// 定義済みエラーコード
const (
	ErrCodeUserInvalid       = 101
	ErrCodeMissingValue      = 102
	ErrCodeResultInvalid     = 201
	ErrCodeDuplicateData     = 202
	ErrCodeDuplicateID       = 203
	ErrCodeDuplicateEmail    = 204
	ErrCodeDuplicateNickname = 205
	ErrCodeStoreUnavailable  = 301
	ErrCodeBadRequest        = 302
)

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryContent    = "content"
	CategorySystem     = "system"
)

// 種別比較用のセンチネル。
var (
	ErrInvalidCredentials = &APIError{Code: ErrCodeUserInvalid}
	ErrMissingValue       = &APIError{Code: ErrCodeMissingValue}
	ErrUnauthenticated    = &APIError{Code: ErrCodeResultInvalid, Category: CategoryAuth}
	ErrNotFound           = &APIError{Code: ErrCodeResultInvalid, Category: CategoryNotFound}
	ErrResultInvalid      = &APIError{Code: ErrCodeResultInvalid, Category: CategoryContent}
	ErrStoreUnavailable   = &APIError{Code: ErrCodeStoreUnavailable}
	ErrBadRequest         = &APIError{Code: ErrCodeBadRequest}
)

// DuplicateField は登録時に重複した項目を表す。
type DuplicateField string

const (
	DuplicateUserID   DuplicateField = "user_id"
	DuplicateEmail    DuplicateField = "email"
	DuplicateNickname DuplicateField = "nickname"
)

// CodeOf はエラーの数値種別を返す。APIErrorでない場合は0を返す。
func CodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// NewMissingValueError は必須項目の欠落エラーを生成する。
func NewMissingValueError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingValue,
		Message:  message,
		Category: CategoryValidation,
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// IDとパスワードのどちらが誤っているかは明かさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserInvalid,
		Message:  "ID or password is missing",
		Category: CategoryAuth,
	}
}

// NewUnauthenticatedError はトークンが無い、または解決できない場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeResultInvalid,
		Message:  "Result Not Found",
		Category: CategoryAuth,
	}
}

// NewDuplicateError は登録時の重複エラーを項目別に生成する。
func NewDuplicateError(field DuplicateField) *APIError {
	switch field {
	case DuplicateUserID:
		return &APIError{Code: ErrCodeDuplicateID, Message: "User already exists", Category: CategoryValidation}
	case DuplicateEmail:
		return &APIError{Code: ErrCodeDuplicateEmail, Message: "Email already exists", Category: CategoryValidation}
	case DuplicateNickname:
		return &APIError{Code: ErrCodeDuplicateNickname, Message: "Nickname already exists", Category: CategoryValidation}
	default:
		return &APIError{Code: ErrCodeDuplicateData, Message: "Duplicate data", Category: CategoryValidation}
	}
}

// NewNotFoundError は参照先が存在しない場合のエラーを生成する。
func NewNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeResultInvalid,
		Message:  "Result Not Found",
		Category: CategoryNotFound,
	}
}

// NewResultInvalidError はクエリが有効な結果を返さなかった場合のエラーを生成する。
func NewResultInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeResultInvalid,
		Message:  "Result NOT found",
		Category: CategoryContent,
	}
}

// NewStoreUnavailableError はデータストアに接続できない場合のエラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "DB connection failed",
		Category: CategorySystem,
	}
}

// NewBadRequestError は不正なリクエストのエラーを生成する。
func NewBadRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  "Bad Request",
		Category: CategoryValidation,
	}
}
