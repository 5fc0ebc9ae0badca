package docstore

import (
	"context"
	"testing"

	"codbank/internal/docstore/rules"
	"codbank/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetDocument(ctx context.Context, path string, dst interface{}) error {
	return m.Called(ctx, path, dst).Error(0)
}

func (m *mockStore) SetDocument(ctx context.Context, path string, data interface{}) error {
	return m.Called(ctx, path, data).Error(0)
}

func (m *mockStore) UpdateDocument(ctx context.Context, path string, fields map[string]interface{}) error {
	return m.Called(ctx, path, fields).Error(0)
}

func (m *mockStore) ListDocuments(ctx context.Context, collectionPath string, dst interface{}) error {
	return m.Called(ctx, collectionPath, dst).Error(0)
}

func (m *mockStore) IncrementField(ctx context.Context, path, field string, delta, floor float64) (float64, error) {
	args := m.Called(ctx, path, field, delta, floor)
	return args.Get(0).(float64), args.Error(1)
}

type account struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
}

func newGuarded(t *testing.T) (*GuardedStore, *mockStore) {
	t.Helper()
	engine, err := rules.NewEngine(rules.DefaultRules("codusers", 1000), nil)
	require.NoError(t, err)
	inner := &mockStore{}
	return NewGuardedStore(inner, engine), inner
}

func asUser(uid, role string) context.Context {
	return utils.WithRole(utils.WithUserID(context.Background(), uid), role)
}

func TestGuardedStore_OwnerReadsProfile(t *testing.T) {
	store, inner := newGuarded(t)
	ctx := asUser("u1", "CUSTOMER")
	var dst map[string]interface{}
	inner.On("GetDocument", ctx, "codusers/u1", &dst).Return(nil).Once()

	require.NoError(t, store.GetDocument(ctx, "codusers/u1", &dst))
	inner.AssertExpectations(t)
}

func TestGuardedStore_DeniesOtherUsersAndAnonymous(t *testing.T) {
	store, inner := newGuarded(t)
	var dst map[string]interface{}

	err := store.GetDocument(asUser("u2", "CUSTOMER"), "codusers/u1", &dst)
	assert.ErrorIs(t, err, rules.ErrAccessDenied)

	err = store.GetDocument(context.Background(), "codusers/u1", &dst)
	assert.ErrorIs(t, err, rules.ErrAccessDenied)

	inner.AssertNotCalled(t, "GetDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardedStore_AdminBypassesOwnership(t *testing.T) {
	store, inner := newGuarded(t)
	ctx := asUser("ops", "ADMIN")
	var dst []account
	inner.On("ListDocuments", ctx, "codusers/u1/accounts", &dst).Return(nil).Once()

	require.NoError(t, store.ListDocuments(ctx, "codusers/u1/accounts", &dst))
	inner.AssertExpectations(t)
}

func TestGuardedStore_AccountCreationNeedsOpeningDeposit(t *testing.T) {
	store, inner := newGuarded(t)
	ctx := asUser("u1", "CUSTOMER")

	poor := account{ID: "a1", Balance: 500}
	err := store.SetDocument(ctx, "codusers/u1/accounts/a1", poor)
	assert.ErrorIs(t, err, rules.ErrAccessDenied)

	funded := account{ID: "a2", Balance: 1000}
	inner.On("SetDocument", ctx, "codusers/u1/accounts/a2", funded).Return(nil).Once()
	require.NoError(t, store.SetDocument(ctx, "codusers/u1/accounts/a2", funded))
	inner.AssertExpectations(t)
}

func TestGuardedStore_IncrementIsAnUpdate(t *testing.T) {
	store, inner := newGuarded(t)
	ctx := asUser("u1", "CUSTOMER")
	inner.On("IncrementField", ctx, "codusers/u1", "balance", -25.0, 0.0).Return(75.0, nil).Once()

	balance, err := store.IncrementField(ctx, "codusers/u1", "balance", -25, 0)
	require.NoError(t, err)
	assert.Equal(t, 75.0, balance)

	_, err = store.IncrementField(asUser("u2", "CUSTOMER"), "codusers/u1", "balance", 1000, 0)
	assert.ErrorIs(t, err, rules.ErrAccessDenied)
	inner.AssertExpectations(t)
}

func TestRequestData_RejectsNonObjects(t *testing.T) {
	_, err := requestData([]int{1, 2})
	assert.Error(t, err)
}
