// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/haguru/kakashi/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockPrincipalRepository is a mock implementation of interfaces.PrincipalRepository.
type MockPrincipalRepository struct {
	mock.Mock
}

type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// NewMockPrincipalRepository creates a new mock and registers expectation
// assertions as a test cleanup.
func NewMockPrincipalRepository(t mockConstructorTestingT) *MockPrincipalRepository {
	m := &MockPrincipalRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPrincipalRepository) AddPrincipal(ctx context.Context, principal models.Principal) (string, error) {
	args := m.Called(ctx, principal)
	return args.String(0), args.Error(1)
}

func (m *MockPrincipalRepository) GetPrincipalByUsername(ctx context.Context, username string) (*models.Principal, error) {
	args := m.Called(ctx, username)
	var principal *models.Principal
	if args.Get(0) != nil {
		principal = args.Get(0).(*models.Principal)
	}
	return principal, args.Error(1)
}

func (m *MockPrincipalRepository) GetPrincipalByID(ctx context.Context, id string) (*models.Principal, error) {
	args := m.Called(ctx, id)
	var principal *models.Principal
	if args.Get(0) != nil {
		principal = args.Get(0).(*models.Principal)
	}
	return principal, args.Error(1)
}

func (m *MockPrincipalRepository) EnsureIndices(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPrincipalRepository) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
