package sql

import "fmt"

// SQLDialect defines database-specific SQL syntax
type SQLDialect interface {
	// PlaceholderFormat returns the format for SQL placeholders ("?" or "$")
	PlaceholderFormat() string

	// JSONType returns the column type for storing JSON
	JSONType() string

	// TimeType returns the column type for storing timestamps
	TimeType() string

	// SchemaSQL returns the statements creating the events table and its
	// indexes, one statement per element
	SchemaSQL(tableName string) []string
}

// BaseDialect provides common implementations
type BaseDialect struct{}

// PlaceholderFormat returns "$" as the default placeholder format
func (d *BaseDialect) PlaceholderFormat() string {
	return "$"
}

// JSONType returns json as the default payload type; jsonb would normalize it
func (d *BaseDialect) JSONType() string {
	return "json"
}

// TimeType returns timestamp as the default time type
func (d *BaseDialect) TimeType() string {
	return "timestamp"
}

// SchemaSQL returns the default table creation SQL
func (d *BaseDialect) SchemaSQL(tableName string) []string {
	return baseSchemaSQL(tableName, "VARCHAR(255)", d.JSONType(), d.TimeType())
}

func baseSchemaSQL(tableName, textType, jsonType, timeType string) []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			action %s NOT NULL,
			author %s NOT NULL,
			from_branch %s,
			to_branch %s,
			received_at %s NOT NULL,
			repository %s NOT NULL,
			event_type %s NOT NULL,
			raw_payload %s NOT NULL
		)`, tableName, textType, textType, textType, textType, timeType, textType, textType, jsonType),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_received_at ON %s (received_at)`, tableName, tableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_action ON %s (action)`, tableName, tableName),
	}
}
