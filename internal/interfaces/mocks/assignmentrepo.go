package mocks

import (
	"context"

	"github.com/haguru/kakashi/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAssignmentRepository is a mock implementation of interfaces.AssignmentRepository.
type MockAssignmentRepository struct {
	mock.Mock
}

// NewMockAssignmentRepository creates a new mock and registers expectation
// assertions as a test cleanup.
func NewMockAssignmentRepository(t mockConstructorTestingT) *MockAssignmentRepository {
	m := &MockAssignmentRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAssignmentRepository) AddAssignment(ctx context.Context, assignment models.Assignment) (string, error) {
	args := m.Called(ctx, assignment)
	return args.String(0), args.Error(1)
}

func (m *MockAssignmentRepository) GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error) {
	args := m.Called(ctx, id)
	var assignment *models.Assignment
	if args.Get(0) != nil {
		assignment = args.Get(0).(*models.Assignment)
	}
	return assignment, args.Error(1)
}

func (m *MockAssignmentRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	args := m.Called(ctx, adminID)
	var assignments []models.Assignment
	if args.Get(0) != nil {
		assignments = args.Get(0).([]models.Assignment)
	}
	return assignments, args.Error(1)
}

func (m *MockAssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAssignmentRepository) EnsureIndices(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
