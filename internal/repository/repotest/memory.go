// Package repotest はテスト用のインメモリリポジトリを提供する。
// PostgreSQLの実装と同じ一意制約と並び順を再現する。
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/commboard/internal/model"
	"github.com/hitoshi/commboard/internal/repository"
)

// Store はアカウント、トークン、投稿を保持するインメモリストア。
type Store struct {
	mu            sync.Mutex
	accounts      map[int64]*model.Account
	tokens        map[string]*model.Token
	posts         map[int64]*model.Post
	nextAccountID int64
	nextPostID    int64
	clock         time.Time

	countCalls int
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*model.Account),
		tokens:   make(map[string]*model.Token),
		posts:    make(map[int64]*model.Post),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Accounts はAccountRepositoryを返す。
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Tokens はTokenRepositoryを返す。
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s: s} }

// Posts はPostRepositoryを返す。
func (s *Store) Posts() *PostRepo { return &PostRepo{s: s} }

// DeleteAccount はアカウントを削除する。著者が消えた状態の再現に使う。
func (s *Store) DeleteAccount(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
}

// CountCalls はCountByCategoryが呼ばれた回数を返す。
func (s *Store) CountCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countCalls
}

// tick は投稿ごとに1秒進む時計を返す。
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// AccountRepo はインメモリのAccountRepository。
type AccountRepo struct{ s *Store }

func (r *AccountRepo) FindByID(_ context.Context, id int64) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.accounts[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (r *AccountRepo) FindConflicting(_ context.Context, userID, email, nickname string) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.sortedAccounts() {
		if a.UserID == userID || a.Email == email || a.Nickname == nickname {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) FindByCredentials(_ context.Context, userID, passwordHash string) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.sortedAccounts() {
		if a.UserID == userID && a.PasswordHash == passwordHash {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

// Create は3つの一意制約を検査してからアカウントを追加する。
func (r *AccountRepo) Create(_ context.Context, account *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		switch {
		case a.UserID == account.UserID:
			return model.NewDuplicateError(model.DuplicateUserID)
		case a.Email == account.Email:
			return model.NewDuplicateError(model.DuplicateEmail)
		case a.Nickname == account.Nickname:
			return model.NewDuplicateError(model.DuplicateNickname)
		}
	}
	r.s.nextAccountID++
	account.ID = r.s.nextAccountID
	c := *account
	r.s.accounts[c.ID] = &c
	return nil
}

func (s *Store) sortedAccounts() []*model.Account {
	out := make([]*model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TokenRepo はインメモリのTokenRepository。
type TokenRepo struct{ s *Store }

func (r *TokenRepo) Create(_ context.Context, token *model.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *token
	c.CreatedAt = r.s.clock
	r.s.tokens[c.Value] = &c
	return nil
}

func (r *TokenRepo) FindByValue(_ context.Context, value string) (*model.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tokens[value]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

// PostRepo はインメモリのPostRepository。
type PostRepo struct{ s *Store }

func (r *PostRepo) Create(_ context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPostID++
	post.ID = r.s.nextPostID
	post.WrittenTime = r.s.tick()
	c := *post
	r.s.posts[c.ID] = &c
	return nil
}

func (r *PostRepo) FindByID(_ context.Context, id int64) (*model.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.posts[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

// ListByCategory はwritten_time降順、同時刻ならID降順で返す。
func (r *PostRepo) ListByCategory(_ context.Context, category string, offset, limit int) ([]*model.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []*model.Post
	for _, p := range r.s.posts {
		if p.Category == category {
			c := *p
			matched = append(matched, &c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].WrittenTime.Equal(matched[j].WrittenTime) {
			return matched[i].WrittenTime.After(matched[j].WrittenTime)
		}
		return matched[i].ID > matched[j].ID
	})
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *PostRepo) CountByCategory(_ context.Context, category string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.countCalls++
	var n int64
	for _, p := range r.s.posts {
		if p.Category == category {
			n++
		}
	}
	return n, nil
}

// compile-time interface check
var (
	_ repository.AccountRepository = (*AccountRepo)(nil)
	_ repository.TokenRepository   = (*TokenRepo)(nil)
	_ repository.PostRepository    = (*PostRepo)(nil)
)
