package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/haguru/kakashi/config"
	"github.com/haguru/kakashi/internal/interfaces"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 10
	// DefaultMaxIdleConns is the default maximum number of idle connections to the database.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 30 * time.Second
)

// PostgresDatabaseClient implements the DBClient interface for PostgreSQL databases.
// Queries are built dynamically from map-shaped documents/filters; table and
// field names are checked against configured allow-lists before they are
// interpolated, values always travel as placeholders.
type PostgresDatabaseClient struct {
	db              *sql.DB
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	validTables     map[string]bool
	validFields     map[string]bool
	logger          interfaces.Logger
}

// NewPostgresDatabaseClient creates a client from the Postgres backend config.
func NewPostgresDatabaseClient(dbConfig *config.PostgresConfig, logger interfaces.Logger) interfaces.DBClient {
	maxOpen := dbConfig.Options.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = DefaultMaxOpenConns
	}
	maxIdle := dbConfig.Options.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleConns
	}
	maxLifetime := dbConfig.Options.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = DefaultConnMaxLifetime
	}

	return &PostgresDatabaseClient{
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: maxLifetime,
		validTables:     config.ListToMap(dbConfig.ValidTables),
		validFields:     config.ListToMap(dbConfig.ValidFields),
		logger:          logger,
	}
}

// Connect establishes a connection to a PostgreSQL database.
func (p *PostgresDatabaseClient) Connect(ctx context.Context, dsn string) error {
	var err error
	p.db, err = sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	p.db.SetMaxOpenConns(p.MaxOpenConns)
	p.db.SetMaxIdleConns(p.MaxIdleConns)
	p.db.SetConnMaxLifetime(p.ConnMaxLifetime)

	return p.Ping(ctx)
}

// Disconnect closes the PostgreSQL database connection.
func (p *PostgresDatabaseClient) Disconnect(ctx context.Context) error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// InsertOne inserts a single document into a PostgreSQL table.
// 'document' is expected to be a map[string]interface{}; an 'id' UUID is
// generated when the document does not carry one.
func (p *PostgresDatabaseClient) InsertOne(ctx context.Context, tableName string, document interfaces.Document) (interface{}, error) {
	docMap, ok := document.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("PostgreSQL InsertOne expects document to be map[string]interface{}")
	}

	if _, exists := docMap["id"]; !exists {
		docMap["id"] = uuid.New().String()
	}

	columns := make([]string, 0, len(docMap))
	placeholders := make([]string, 0, len(docMap))
	values := make([]interface{}, 0, len(docMap))

	i := 1
	for col, val := range docMap {
		if err := p.checkField(col); err != nil {
			return nil, err
		}
		columns = append(columns, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
		values = append(values, val)
		i++
	}

	if err := p.checkTable(tableName); err != nil {
		return nil, err
	}

	// Table and column names are allow-listed above, values are placeholders.
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	) // #nosec G201

	var insertedID interface{}
	err := p.db.QueryRowContext(ctx, query, values...).Scan(&insertedID)
	if err != nil {
		return nil, err
	}
	return insertedID, nil
}

// FindOne retrieves a single row from a PostgreSQL table and decodes it into
// 'result', a pointer to a struct with mapstructure tags. Returns
// sql.ErrNoRows unwrapped when nothing matches.
func (p *PostgresDatabaseClient) FindOne(ctx context.Context, tableName string, filter interfaces.Document, result interfaces.Document) error {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return fmt.Errorf("PostgreSQL FindOne expects filter to be map[string]interface{}")
	}
	if len(filterMap) == 0 {
		return fmt.Errorf("PostgreSQL FindOne requires a non-empty filter")
	}

	rows, err := p.findRows(ctx, tableName, filterMap, " LIMIT 1")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return sql.ErrNoRows
	}

	return mapstructure.Decode(rows[0], result)
}

// FindMany retrieves multiple rows from a PostgreSQL table as maps keyed by
// column name. An empty filter returns the whole table.
func (p *PostgresDatabaseClient) FindMany(ctx context.Context, tableName string, filter interfaces.Document) ([]interfaces.Document, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("PostgreSQL FindMany expects filter to be map[string]interface{}")
	}

	rows, err := p.findRows(ctx, tableName, filterMap, "")
	if err != nil {
		return nil, err
	}

	results := make([]interfaces.Document, 0, len(rows))
	for _, row := range rows {
		results = append(results, row)
	}
	return results, nil
}

// findRows runs a SELECT * with an equality WHERE clause built from the
// filter and returns the rows as column-keyed maps.
func (p *PostgresDatabaseClient) findRows(ctx context.Context, tableName string, filterMap map[string]interface{}, suffix string) ([]map[string]interface{}, error) {
	if err := p.checkTable(tableName); err != nil {
		return nil, err
	}

	whereClauses := make([]string, 0, len(filterMap))
	whereValues := make([]interface{}, 0, len(filterMap))
	paramCount := 1
	for col, val := range filterMap {
		if err := p.checkField(col); err != nil {
			return nil, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		whereValues = append(whereValues, val)
		paramCount++
	}
	whereString := ""
	if len(whereClauses) > 0 {
		whereString = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Table and column names are allow-listed above, values are placeholders.
	query := fmt.Sprintf("SELECT * FROM %s%s%s", tableName, whereString, suffix) // #nosec G201

	rows, err := p.db.QueryContext(ctx, query, whereValues...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			p.logger.Warn("Failed to close rows", "table", tableName, "error", cerr)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		columnPointers := make([]interface{}, len(columns))
		columnValues := make([]interface{}, len(columns))
		for i := range columns {
			columnPointers[i] = &columnValues[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		rowMap := make(map[string]interface{})
		for i, colName := range columns {
			val := columnValues[i]
			if b, ok := val.([]byte); ok { // byte slices carry string-like types
				rowMap[colName] = string(b)
			} else {
				rowMap[colName] = val
			}
		}
		results = append(results, rowMap)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateOne updates rows in a PostgreSQL table.
// 'filter' and 'update' are expected to be map[string]interface{}.
func (p *PostgresDatabaseClient) UpdateOne(ctx context.Context, tableName string, filter interfaces.Document, update interfaces.Document) (int64, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL UpdateOne expects filter to be map[string]interface{}")
	}
	updateMap, ok := update.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL UpdateOne expects update to be map[string]interface{}")
	}

	if err := p.checkTable(tableName); err != nil {
		return 0, err
	}

	setClauses := make([]string, 0, len(updateMap))
	whereClauses := make([]string, 0, len(filterMap))
	values := make([]interface{}, 0, len(updateMap)+len(filterMap))
	paramCount := 1

	for col, val := range updateMap {
		if err := p.checkField(col); err != nil {
			return 0, err
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		values = append(values, val)
		paramCount++
	}

	for col, val := range filterMap {
		if err := p.checkField(col); err != nil {
			return 0, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		values = append(values, val)
		paramCount++
	}

	// Table and column names are allow-listed above, values are placeholders.
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		tableName,
		strings.Join(setClauses, ", "),
		strings.Join(whereClauses, " AND "),
	) // #nosec G201

	res, err := p.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOne deletes rows from a PostgreSQL table matching the filter.
func (p *PostgresDatabaseClient) DeleteOne(ctx context.Context, tableName string, filter interfaces.Document) (int64, error) {
	return p.deleteRows(ctx, tableName, filter, true)
}

// DeleteMany deletes all rows from a PostgreSQL table matching the filter.
func (p *PostgresDatabaseClient) DeleteMany(ctx context.Context, tableName string, filter interfaces.Document) (int64, error) {
	return p.deleteRows(ctx, tableName, filter, false)
}

func (p *PostgresDatabaseClient) deleteRows(ctx context.Context, tableName string, filter interfaces.Document, requireFilter bool) (int64, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL delete expects filter to be map[string]interface{}")
	}
	if requireFilter && len(filterMap) == 0 {
		return 0, fmt.Errorf("PostgreSQL DeleteOne requires a non-empty filter")
	}

	if err := p.checkTable(tableName); err != nil {
		return 0, err
	}

	whereClauses := make([]string, 0, len(filterMap))
	whereValues := make([]interface{}, 0, len(filterMap))
	paramCount := 1
	for col, val := range filterMap {
		if err := p.checkField(col); err != nil {
			return 0, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		whereValues = append(whereValues, val)
		paramCount++
	}

	whereString := ""
	if len(whereClauses) > 0 {
		whereString = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Table and column names are allow-listed above, values are placeholders.
	query := fmt.Sprintf("DELETE FROM %s%s", tableName, whereString) // #nosec G201

	res, err := p.db.ExecContext(ctx, query, whereValues...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks the health of the PostgreSQL connection.
func (p *PostgresDatabaseClient) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// EnsureSchema executes a CREATE TABLE (IF NOT EXISTS) statement for the
// given table. The schema document must be the statement string.
func (p *PostgresDatabaseClient) EnsureSchema(ctx context.Context, tableName string, schema interfaces.Document) error {
	if p.db == nil {
		return fmt.Errorf("PostgresDatabaseClient is not connected to a database")
	}

	if err := p.checkTable(tableName); err != nil {
		return err
	}

	createStmt, ok := schema.(string)
	if !ok {
		return fmt.Errorf("EnsureSchema expects schema to be a CREATE TABLE statement string")
	}
	_, err := p.db.ExecContext(ctx, createStmt)
	return err
}

func (p *PostgresDatabaseClient) checkTable(tableName string) error {
	if tableName == "" {
		return fmt.Errorf("PostgresDatabaseClient: Table name cannot be empty")
	}
	if !p.validTables[tableName] {
		return fmt.Errorf("PostgresDatabaseClient: Invalid table name: %s", tableName)
	}
	return nil
}

func (p *PostgresDatabaseClient) checkField(fieldName string) error {
	if !p.validFields[fieldName] {
		return fmt.Errorf("PostgresDatabaseClient: Invalid field name: %s", fieldName)
	}
	return nil
}
