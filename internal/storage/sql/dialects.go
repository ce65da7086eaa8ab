package sql

import "fmt"

// SQLiteDialect implements SQLDialect for SQLite
type SQLiteDialect struct {
	BaseDialect
}

func (d *SQLiteDialect) PlaceholderFormat() string {
	return "?"
}

func (d *SQLiteDialect) JSONType() string {
	return "TEXT"
}

func (d *SQLiteDialect) TimeType() string {
	return "DATETIME"
}

func (d *SQLiteDialect) SchemaSQL(tableName string) []string {
	return baseSchemaSQL(tableName, "TEXT", d.JSONType(), d.TimeType())
}

// PostgresDialect implements SQLDialect for PostgreSQL
type PostgresDialect struct {
	BaseDialect
}

func (d *PostgresDialect) PlaceholderFormat() string {
	return "$"
}

// JSONType is json, not jsonb, so the payload text is kept as received
func (d *PostgresDialect) JSONType() string {
	return "JSON"
}

func (d *PostgresDialect) TimeType() string {
	return "TIMESTAMP WITH TIME ZONE"
}

func (d *PostgresDialect) SchemaSQL(tableName string) []string {
	return baseSchemaSQL(tableName, "VARCHAR(255)", d.JSONType(), d.TimeType())
}

// MySQLDialect implements SQLDialect for MySQL
type MySQLDialect struct {
	BaseDialect
}

func (d *MySQLDialect) PlaceholderFormat() string {
	return "?"
}

// JSONType is plain text; MySQL's JSON type rewrites the document
func (d *MySQLDialect) JSONType() string {
	return "LONGTEXT"
}

// TimeType keeps microseconds so receipt order survives the round trip
func (d *MySQLDialect) TimeType() string {
	return "DATETIME(6)"
}

// SchemaSQL declares indexes inline; MySQL has no CREATE INDEX IF NOT EXISTS.
func (d *MySQLDialect) SchemaSQL(tableName string) []string {
	return []string{fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			action VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			from_branch VARCHAR(255),
			to_branch VARCHAR(255),
			received_at %s NOT NULL,
			repository VARCHAR(255) NOT NULL,
			event_type VARCHAR(255) NOT NULL,
			raw_payload %s NOT NULL,
			INDEX idx_%s_received_at (received_at),
			INDEX idx_%s_action (action)
		)
	`, tableName, d.TimeType(), d.JSONType(), tableName, tableName)}
}

// dialectFor returns the dialect for a database/sql driver name
func dialectFor(driver string) (SQLDialect, error) {
	switch driver {
	case "sqlite3":
		return &SQLiteDialect{}, nil
	case "postgres", "pgx":
		return &PostgresDialect{}, nil
	case "mysql":
		return &MySQLDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
