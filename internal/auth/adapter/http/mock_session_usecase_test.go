package http_test

import (
	"context"

	"codbank/internal/auth/domain/model"
	"codbank/internal/auth/domain/repository"

	"github.com/stretchr/testify/mock"
)

type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) CreateSession(ctx context.Context, req model.LoginRequest) (*model.IssuedSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IssuedSession), args.Error(1)
}

func (m *mockSessionUsecase) VerifySession(ctx context.Context, token string) (*repository.Claims, bool) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*repository.Claims), args.Bool(1)
}

func (m *mockSessionUsecase) DeleteSession(ctx context.Context, token string) {
	m.Called(ctx, token)
}
