package mock

import (
	"context"

	"github.com/fwojciec/dataagent"
)

// Interface compliance check.
var _ dataagent.Store = (*Store)(nil)

// Store is a test double for dataagent.Store. Address returns AddressValue;
// every other method delegates to its function field and panics when the
// field is nil.
type Store struct {
	AddressValue  string
	QueryFn       func(ctx context.Context, query string) (dataagent.QueryResult, error)
	SchemaFn      func(ctx context.Context, table string) ([]dataagent.Field, error)
	CreateTableFn func(ctx context.Context, table string, columns []dataagent.Field) (string, error)
	InsertRowsFn  func(ctx context.Context, table string, rows []dataagent.Row) (int, error)
	TableExistsFn func(ctx context.Context, table string) (bool, error)
}

// Address returns AddressValue.
func (s *Store) Address() string { return s.AddressValue }

// Query delegates to QueryFn.
func (s *Store) Query(ctx context.Context, query string) (dataagent.QueryResult, error) {
	return s.QueryFn(ctx, query)
}

// Schema delegates to SchemaFn.
func (s *Store) Schema(ctx context.Context, table string) ([]dataagent.Field, error) {
	return s.SchemaFn(ctx, table)
}

// CreateTable delegates to CreateTableFn.
func (s *Store) CreateTable(ctx context.Context, table string, columns []dataagent.Field) (string, error) {
	return s.CreateTableFn(ctx, table, columns)
}

// InsertRows delegates to InsertRowsFn.
func (s *Store) InsertRows(ctx context.Context, table string, rows []dataagent.Row) (int, error) {
	return s.InsertRowsFn(ctx, table, rows)
}

// TableExists delegates to TableExistsFn.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	return s.TableExistsFn(ctx, table)
}
