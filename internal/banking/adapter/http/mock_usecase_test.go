package http_test

import (
	"context"

	authmodel "codbank/internal/auth/domain/model"
	"codbank/internal/banking/domain/model"

	"github.com/stretchr/testify/mock"
)

type mockBankingUsecase struct {
	mock.Mock
}

func (m *mockBankingUsecase) Register(ctx context.Context, req model.RegisterRequest) (*model.Profile, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*model.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBankingUsecase) Login(ctx context.Context, email, password string) (*authmodel.Identity, error) {
	args := m.Called(ctx, email, password)
	if id := args.Get(0); id != nil {
		return id.(*authmodel.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBankingUsecase) GetBalance(ctx context.Context, userID string) (*model.BalanceView, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*model.BalanceView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBankingUsecase) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	args := m.Called(ctx, userID)
	if a := args.Get(0); a != nil {
		return a.([]model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBankingUsecase) OpenAccount(ctx context.Context, userID string, req model.OpenAccountRequest) (*model.Account, error) {
	args := m.Called(ctx, userID, req)
	if a := args.Get(0); a != nil {
		return a.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBankingUsecase) Deposit(ctx context.Context, userID string, amount float64) (float64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockBankingUsecase) Withdraw(ctx context.Context, userID string, amount float64) (float64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockBankingUsecase) Rates() []model.Currency {
	return m.Called().Get(0).([]model.Currency)
}

func (m *mockBankingUsecase) Convert(amount float64, from, to string) (*model.Conversion, error) {
	args := m.Called(amount, from, to)
	if c := args.Get(0); c != nil {
		return c.(*model.Conversion), args.Error(1)
	}
	return nil, args.Error(1)
}
