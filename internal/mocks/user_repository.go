package mocks

import (
	"context"

	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository é um mock para a interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, entity *model.UserEntity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*model.UserEntity, error) {
	args := m.Called(ctx, limit, offset)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*model.UserEntity), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.UserEntity, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.UserEntity), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.UserEntity, error) {
	args := m.Called(ctx, username)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.UserEntity), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.UserEntity, error) {
	args := m.Called(ctx, username, email)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.UserEntity), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, entity *model.UserEntity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
