// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は投稿の本文とタイトルをサニタイズし、
// 掲示板を閲覧するユーザーをXSSから保護する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は投稿保存前のサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// Sanitize は本文をUGCポリシーでサニタイズする。
	// 書式タグとリンクは残し、script, iframe, styleおよびon*属性を除去する。
	Sanitize(rawHTML string) string

	// SanitizeTitle はタイトルから全てのタグを除去し、前後の空白を落とす。
	SanitizeTitle(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなので共有する。
type contentSanitizer struct {
	body  *bluemonday.Policy
	title *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
//   - 本文: UGCポリシー。リンクにはtarget="_blank"とrel="nofollow noreferrer noopener"を付与
//   - タイトル: StrictPolicy（テキストのみ）
func NewContentSanitizer() *contentSanitizer {
	body := bluemonday.UGCPolicy()
	body.AllowRelativeURLs(false)
	body.AddTargetBlankToFullyQualifiedLinks(true)
	body.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		body:  body,
		title: bluemonday.StrictPolicy(),
	}
}

// Sanitize は本文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return strings.TrimSpace(s.body.Sanitize(rawHTML))
}

// SanitizeTitle はタイトルをプレーンテキストにする。
func (s *contentSanitizer) SanitizeTitle(raw string) string {
	return strings.TrimSpace(s.title.Sanitize(raw))
}
