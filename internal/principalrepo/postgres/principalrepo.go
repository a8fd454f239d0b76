package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver for database/sql

	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"
)

// createTableFormat keeps one principal namespace per table; the UNIQUE
// constraint on username gives the atomic insert-if-absent semantics.
const createTableFormat = `CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
)`

// PostgresPrincipalRepository implements PrincipalRepository for PostgreSQL,
// bound to a single table (users or admins).
type PostgresPrincipalRepository struct {
	dbClient interfaces.DBClient
	table    string
}

// NewPostgresPrincipalRepository creates a repository over the given table.
func NewPostgresPrincipalRepository(dbClient interfaces.DBClient, table string) (interfaces.PrincipalRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	if table == "" {
		return nil, fmt.Errorf("table cannot be empty")
	}
	return &PostgresPrincipalRepository{dbClient: dbClient, table: table}, nil
}

// AddPrincipal saves a new principal. A username collision surfaces as the
// driver's unique_violation and fails without mutating the store.
func (r *PostgresPrincipalRepository) AddPrincipal(ctx context.Context, principal models.Principal) (string, error) {
	doc := map[string]interface{}{
		"username": principal.Username,
		"password": principal.HashedPassword,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, r.table, doc)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return "", fmt.Errorf("username '%s' already exists", principal.Username)
		}
		return "", fmt.Errorf("failed to add principal to PostgreSQL: %w", err)
	}
	strID, ok := insertedID.(string)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to string (expected UUID)")
	}
	return strID, nil
}

// GetPrincipalByUsername retrieves a principal by username. Returns
// (nil, nil) when no row matches.
func (r *PostgresPrincipalRepository) GetPrincipalByUsername(ctx context.Context, username string) (*models.Principal, error) {
	return r.findOne(ctx, map[string]interface{}{"username": username})
}

// GetPrincipalByID retrieves a principal by id. Returns (nil, nil) when no
// row matches.
func (r *PostgresPrincipalRepository) GetPrincipalByID(ctx context.Context, id string) (*models.Principal, error) {
	return r.findOne(ctx, map[string]interface{}{"id": id})
}

func (r *PostgresPrincipalRepository) findOne(ctx context.Context, filter map[string]interface{}) (*models.Principal, error) {
	var principal models.Principal
	err := r.dbClient.FindOne(ctx, r.table, filter, &principal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get principal from PostgreSQL: %w", err)
	}
	return &principal, nil
}

// EnsureIndices creates the table with its unique username constraint.
func (r *PostgresPrincipalRepository) EnsureIndices(ctx context.Context) error {
	return r.dbClient.EnsureSchema(ctx, r.table, fmt.Sprintf(createTableFormat, r.table))
}

// Close closes the PostgreSQL database connection.
func (r *PostgresPrincipalRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
