package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/commboard/internal/middleware"
	"github.com/hitoshi/commboard/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	CreatePost(ctx context.Context, author *model.Account, title, content, category string) (*model.Post, error)
	ReadPost(ctx context.Context, id int64) (*model.EnrichedPost, error)
	ListPosts(ctx context.Context, category string, page int) (*model.PostPage, error)
}

// PostHandler は投稿のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

type writeRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type readResponse struct {
	WriterID int64     `json:"writer_id"`
	Name     string    `json:"name"`
	Time     time.Time `json:"time"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
}

type boardItem struct {
	ID          int64     `json:"id"`
	Writer      string    `json:"writer"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	WrittenTime time.Time `json:"written_time"`
}

// boardResponse の total はカテゴリ内の全投稿数。
// 著者を解決できない投稿は array に含まれないため、total と一致しないことがある。
type boardResponse struct {
	Total int64       `json:"total"`
	Array []boardItem `json:"array"`
}

// Write は認証済みアカウントを著者として投稿を作成する。
// POST /write
func (h *PostHandler) Write(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		handleServiceError(w, model.NewUnauthenticatedError())
		return
	}

	var req writeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if _, err := h.service.CreatePost(r.Context(), account, req.Title, req.Content, req.Category); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Read は投稿を1件返す。
// GET /read?id=
func (h *PostHandler) Read(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		handleServiceError(w, &model.APIError{
			Code:     model.ErrCodeUserInvalid,
			Message:  "ID is missing",
			Category: model.CategoryValidation,
		})
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		handleServiceError(w, model.NewBadRequestError())
		return
	}

	p, err := h.service.ReadPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readResponse{
		WriterID: p.WriterID,
		Name:     p.AuthorName,
		Time:     p.WrittenTime,
		Title:    p.Title,
		Content:  p.Content,
	})
}

// Board はカテゴリ内の投稿を新しい順に1ページ分返す。
// GET /board?category=&page=
func (h *PostHandler) Board(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := parsePage(raw)
		if err != nil {
			handleServiceError(w, model.NewMissingValueError("Page is missing"))
			return
		}
		page = n
	}

	result, err := h.service.ListPosts(r.Context(), q.Get("category"), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]boardItem, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, boardItem{
			ID:          p.ID,
			Writer:      p.AuthorName,
			Title:       p.Title,
			Content:     p.Content,
			WrittenTime: p.WrittenTime,
		})
	}

	writeJSON(w, http.StatusOK, boardResponse{Total: result.Total, Array: items})
}

// parsePage はページ番号を解釈する。intに収まらない数値は上下限に丸める。
func parsePage(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return math.MinInt, nil
		}
		return math.MaxInt, nil
	}
	return n, err
}
