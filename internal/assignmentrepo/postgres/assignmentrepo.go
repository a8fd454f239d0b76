package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/haguru/kakashi/internal/collections"
	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"
)

const createTableStmt = `CREATE TABLE IF NOT EXISTS assignments (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	task TEXT NOT NULL,
	admin TEXT NOT NULL,
	status TEXT NOT NULL,
	date_time TIMESTAMPTZ NOT NULL
)`

// PostgresAssignmentRepository implements AssignmentRepository for PostgreSQL.
type PostgresAssignmentRepository struct {
	dbClient interfaces.DBClient
}

// NewPostgresAssignmentRepository creates a new PostgreSQL assignment repository.
func NewPostgresAssignmentRepository(dbClient interfaces.DBClient) (interfaces.AssignmentRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	return &PostgresAssignmentRepository{dbClient: dbClient}, nil
}

// AddAssignment saves a new assignment and returns its id.
func (r *PostgresAssignmentRepository) AddAssignment(ctx context.Context, assignment models.Assignment) (string, error) {
	doc := map[string]interface{}{
		"user_id":   assignment.UserID,
		"task":      assignment.Task,
		"admin":     assignment.Admin,
		"status":    string(assignment.Status),
		"date_time": assignment.DateTime,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, collections.Assignments, doc)
	if err != nil {
		return "", fmt.Errorf("failed to add assignment to PostgreSQL: %w", err)
	}
	strID, ok := insertedID.(string)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to string (expected UUID)")
	}
	return strID, nil
}

// GetAssignmentByID retrieves an assignment by id. Returns (nil, nil) when no
// row matches.
func (r *PostgresAssignmentRepository) GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	filter := map[string]interface{}{"id": id}
	err := r.dbClient.FindOne(ctx, collections.Assignments, filter, &assignment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment from PostgreSQL: %w", err)
	}
	return &assignment, nil
}

// ListByAdmin returns every assignment addressed to the given admin id, in
// store-native order.
func (r *PostgresAssignmentRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	docs, err := r.dbClient.FindMany(ctx, collections.Assignments, map[string]interface{}{"admin": adminID})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments from PostgreSQL: %w", err)
	}

	assignments := make([]models.Assignment, 0, len(docs))
	for _, doc := range docs {
		var assignment models.Assignment
		if err := mapstructure.Decode(doc, &assignment); err != nil {
			return nil, fmt.Errorf("failed to decode assignment row: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	return assignments, nil
}

// UpdateStatus sets the status of the assignment with the given id.
func (r *PostgresAssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	filter := map[string]interface{}{"id": id}
	update := map[string]interface{}{"status": string(status)}

	_, err := r.dbClient.UpdateOne(ctx, collections.Assignments, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update assignment status in PostgreSQL: %w", err)
	}
	return nil
}

// EnsureIndices creates the assignments table and the index on admin used by
// ListByAdmin.
func (r *PostgresAssignmentRepository) EnsureIndices(ctx context.Context) error {
	if err := r.dbClient.EnsureSchema(ctx, collections.Assignments, createTableStmt); err != nil {
		return err
	}
	return r.dbClient.EnsureSchema(ctx, collections.Assignments,
		"CREATE INDEX IF NOT EXISTS assignments_admin_idx ON assignments (admin)")
}

// Close closes the PostgreSQL database connection.
func (r *PostgresAssignmentRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
