package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/commboard/internal/model"
)

func TestResolve_EmptyTokenReturnsNilWithoutQuery(t *testing.T) {
	called := false
	tokens := &mockTokenRepo{
		findByValueFn: func(context.Context, string) (*model.Token, error) {
			called = true
			return nil, nil
		},
	}
	r := NewSessionResolver(&mockAccountRepo{}, tokens)

	acc, err := r.Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, acc)
	assert.False(t, called)
}

func TestResolve_UnknownToken(t *testing.T) {
	_, resolver, _ := newMemoryService(t)

	acc, err := resolver.Resolve(context.Background(), "does-not-exist")

	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestResolve_DeletedAccount(t *testing.T) {
	svc, resolver, store := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "a", "pw", "a@x.com", "nick"))
	token, err := svc.Login(ctx, "a", "pw")
	require.NoError(t, err)

	acc, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, acc)

	store.DeleteAccount(acc.ID)

	acc, err = resolver.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestResolve_StoreFailurePropagates(t *testing.T) {
	tokens := &mockTokenRepo{
		findByValueFn: func(context.Context, string) (*model.Token, error) {
			return nil, model.NewStoreUnavailableError()
		},
	}
	r := NewSessionResolver(&mockAccountRepo{}, tokens)

	_, err := r.Resolve(context.Background(), "tok")

	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestResolve_LooksUpBoundAccount(t *testing.T) {
	var lookedUp int64
	tokens := &mockTokenRepo{
		findByValueFn: func(_ context.Context, v string) (*model.Token, error) {
			return &model.Token{Value: v, AccountID: 7}, nil
		},
	}
	accounts := &mockAccountRepo{
		findByIDFn: func(_ context.Context, id int64) (*model.Account, error) {
			lookedUp = id
			return &model.Account{ID: id, Nickname: "n"}, nil
		},
	}
	r := NewSessionResolver(accounts, tokens)

	acc, err := r.Resolve(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, int64(7), lookedUp)
	assert.Equal(t, int64(7), acc.ID)
}
