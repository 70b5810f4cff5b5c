package dataagent

import "context"

// Store is the data store boundary used by the data tools. Implementations
// acquire and release their connection within each call.
type Store interface {
	// Address returns the configured data store address.
	Address() string

	// Query runs one SQL text. Row-returning statements yield rows, anything
	// else yields the number of affected rows.
	Query(ctx context.Context, query string) (QueryResult, error)

	// Schema returns the declared column types of table in column order.
	Schema(ctx context.Context, table string) ([]Field, error)

	// CreateTable creates table when it does not exist and returns the DDL
	// it issued.
	CreateTable(ctx context.Context, table string, columns []Field) (string, error)

	// InsertRows appends rows to table, creating it from the value types of
	// the rows when it does not exist.
	InsertRows(ctx context.Context, table string, rows []Row) (int, error)

	// TableExists reports whether table exists.
	TableExists(ctx context.Context, table string) (bool, error)
}

// QueryResult is the outcome of Store.Query.
type QueryResult struct {
	ReturnsRows  bool
	Rows         []Row
	RowsAffected int64
}
