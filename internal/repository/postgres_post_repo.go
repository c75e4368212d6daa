package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/commboard/internal/database"
	"github.com/hitoshi/commboard/internal/model"
)

const postColumns = `id, title, content, category, writer_id, written_time`

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	gw *database.Gateway
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(gw *database.Gateway) *PostgresPostRepo {
	return &PostgresPostRepo{gw: gw}
}

// Create は投稿を作成し、採番されたIDと作成日時をpostに設定する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	found, err := r.gw.QueryOne(ctx,
		`INSERT INTO board (title, content, writer_id, category)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, written_time`,
		[]any{post.Title, post.Content, post.WriterID, post.Category},
		&post.ID, &post.WrittenTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	if !found {
		return fmt.Errorf("failed to insert post: %w", model.NewResultInvalidError())
	}
	return nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	found, err := r.gw.QueryOne(ctx,
		`SELECT `+postColumns+` FROM board WHERE id = $1`,
		[]any{id},
		&post.ID, &post.Title, &post.Content, &post.Category, &post.WriterID, &post.WrittenTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	if !found {
		return nil, nil
	}
	return post, nil
}

// ListByCategory はカテゴリ内の投稿をwritten_time降順で取得する。
// 同一時刻の投稿はIDの降順で並べ、ページ間で順序が揺れないようにする。
func (r *PostgresPostRepo) ListByCategory(ctx context.Context, category string, offset, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.gw.QueryEach(ctx,
		`SELECT `+postColumns+` FROM board
		 WHERE category = $1
		 ORDER BY written_time DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		[]any{category, limit, offset},
		func(rows *sql.Rows) error {
			post := &model.Post{}
			if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.Category, &post.WriterID, &post.WrittenTime); err != nil {
				return fmt.Errorf("failed to scan post: %w", err)
			}
			posts = append(posts, post)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by category: %w", err)
	}
	return posts, nil
}

// CountByCategory はカテゴリ内の投稿総数を返す。ページではなくカテゴリ全体が対象。
func (r *PostgresPostRepo) CountByCategory(ctx context.Context, category string) (int64, error) {
	n, err := r.gw.Count(ctx,
		`SELECT COUNT(*) FROM board WHERE category = $1`,
		category,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts by category: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
