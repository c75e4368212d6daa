// Package post は投稿の作成、単体取得、カテゴリ別一覧を提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/commboard/internal/metrics"
	"github.com/hitoshi/commboard/internal/model"
	"github.com/hitoshi/commboard/internal/repository"
	"github.com/hitoshi/commboard/internal/security"
)

// Service は投稿に関するビジネスロジックを提供する。
type Service struct {
	posts     repository.PostRepository
	accounts  repository.AccountRepository
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	posts repository.PostRepository,
	accounts repository.AccountRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		posts:     posts,
		accounts:  accounts,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// CreatePost は認証済みアカウントを著者として投稿を作成する。
// 著者IDはセッションから解決したアカウントのみを使い、クライアント入力は使わない。
func (s *Service) CreatePost(ctx context.Context, author *model.Account, title, content, category string) (*model.Post, error) {
	if author == nil || author.ID == 0 {
		return nil, model.NewUnauthenticatedError()
	}

	title = s.sanitizer.SanitizeTitle(title)
	content = s.sanitizer.Sanitize(content)
	if title == "" || content == "" || category == "" {
		return nil, model.NewMissingValueError("Missing Value")
	}

	p := &model.Post{
		Title:    title,
		Content:  content,
		Category: category,
		WriterID: author.ID,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.RecordPostCreated()
	slog.Info("post created",
		slog.Int64("post_id", p.ID),
		slog.Int64("writer_id", p.WriterID),
		slog.String("category", p.Category),
	)
	return p, nil
}

// ReadPost は投稿を著者のニックネーム付きで返す。
// 投稿または著者が存在しない場合はNotFoundを返す。
func (s *Service) ReadPost(ctx context.Context, id int64) (*model.EnrichedPost, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError()
	}

	author, err := s.accounts.FindByID(ctx, p.WriterID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}
	if author == nil {
		return nil, model.NewNotFoundError()
	}

	return &model.EnrichedPost{Post: *p, AuthorName: author.Nickname}, nil
}

// ListPosts はカテゴリ内の投稿を新しい順に1ページ分返す。
//
// pageは1始まりで、1以下は先頭ページとして扱う。
// 著者を解決できない投稿はページから除外するが、Totalには含まれる。
// Totalはカテゴリ内の全投稿数、Itemsは著者を解決できた投稿のみを表す。
// ページが空の場合は件数クエリを発行せずに{0, []}を返す。
func (s *Service) ListPosts(ctx context.Context, category string, page int) (*model.PostPage, error) {
	if category == "" {
		return nil, model.NewMissingValueError("Category is missing")
	}

	rows, err := s.posts.ListByCategory(ctx, category, model.PageOffset(page), model.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(rows) == 0 {
		return &model.PostPage{Total: 0, Items: []model.EnrichedPost{}}, nil
	}

	items := make([]model.EnrichedPost, 0, len(rows))
	for _, p := range rows {
		author, err := s.accounts.FindByID(ctx, p.WriterID)
		if err != nil {
			return nil, fmt.Errorf("failed to find author: %w", err)
		}
		if author == nil {
			continue
		}
		items = append(items, model.EnrichedPost{Post: *p, AuthorName: author.Nickname})
	}

	if dropped := len(rows) - len(items); dropped > 0 {
		s.metrics.RecordOrphanedPostsDropped(dropped)
		slog.Warn("orphaned posts dropped from page",
			slog.String("category", category),
			slog.Int("page", page),
			slog.Int("dropped", dropped),
		)
	}
	if len(items) == 0 {
		return nil, model.NewResultInvalidError()
	}

	total, err := s.posts.CountByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	return &model.PostPage{Total: total, Items: items}, nil
}
