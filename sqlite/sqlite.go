// Package sqlite implements dataagent.Store on an embedded SQLite database.
//
// Every call opens its own connection and closes it before returning, so
// a Store holds no resources and needs no Close.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/dataagent"
	_ "modernc.org/sqlite"
)

var _ dataagent.Store = (*Store)(nil)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a SQLite-backed data store.
type Store struct {
	address string
	path    string
}

// New returns a Store for address. Accepted forms are sqlite:///relative,
// sqlite:////absolute, sqlite:path and a bare file path.
func New(address string) (*Store, error) {
	path, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Store{address: address, path: path}, nil
}

// ParseAddress extracts the database file path from a store address.
func ParseAddress(address string) (string, error) {
	a := strings.TrimSpace(address)
	var path string
	switch {
	case strings.HasPrefix(a, "sqlite:///"):
		path = strings.TrimPrefix(a, "sqlite:///")
	case strings.HasPrefix(a, "sqlite://"):
		path = strings.TrimPrefix(a, "sqlite://")
	case strings.HasPrefix(a, "sqlite:"):
		path = strings.TrimPrefix(a, "sqlite:")
	case strings.Contains(a, "://"):
		return "", fmt.Errorf("sqlite: unsupported address %q: %w", address, dataagent.ErrValidation)
	default:
		path = a
	}
	if path == "" {
		return "", fmt.Errorf("sqlite: address %q has no database path: %w", address, dataagent.ErrValidation)
	}
	return path, nil
}

// Address returns the address the store was built from.
func (s *Store) Address() string { return s.address }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w: %w", dir, err, dataagent.ErrStoreUnavailable)
		}
	}
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w: %w", s.path, err, dataagent.ErrStoreUnavailable)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w: %w", s.path, err, dataagent.ErrStoreUnavailable)
	}
	return db, nil
}

// Query runs query inside a transaction and commits it.
func (s *Store) Query(ctx context.Context, query string) (dataagent.QueryResult, error) {
	db, err := s.open(ctx)
	if err != nil {
		return dataagent.QueryResult{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return dataagent.QueryResult{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var res dataagent.QueryResult
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return dataagent.QueryResult{}, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return dataagent.QueryResult{}, err
	}
	if len(cols) > 0 {
		res.ReturnsRows = true
		res.Rows, err = scanRows(rows)
		if err != nil {
			return dataagent.QueryResult{}, err
		}
	} else {
		if err := drain(rows); err != nil {
			return dataagent.QueryResult{}, err
		}
		// The connection is private to this call, so changes() cannot
		// carry over from another query.
		if err := tx.QueryRowContext(ctx, "SELECT changes()").Scan(&res.RowsAffected); err != nil {
			return dataagent.QueryResult{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return dataagent.QueryResult{}, err
	}
	return res, nil
}

// Schema returns the declared column types of table.
func (s *Store) Schema(ctx context.Context, table string) ([]dataagent.Field, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []dataagent.Field
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, dataagent.Field{Name: name, Value: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no such table: %s: %w", table, dataagent.ErrTableNotFound)
	}
	return cols, nil
}

// CreateTable issues CREATE TABLE IF NOT EXISTS for table.
func (s *Store) CreateTable(ctx context.Context, table string, columns []dataagent.Field) (string, error) {
	ddl, err := CreateTableDDL(table, columns)
	if err != nil {
		return "", err
	}
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return "", err
	}
	return ddl, nil
}

// CreateTableDDL renders the CREATE TABLE IF NOT EXISTS statement for table.
// Column values are declared types.
func CreateTableDDL(table string, columns []dataagent.Field) (string, error) {
	if err := checkIdent(table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s has no columns: %w", table, dataagent.ErrValidation)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if err := checkIdent(c.Name); err != nil {
			return "", err
		}
		typ, ok := c.Value.(string)
		if !ok || strings.ContainsAny(typ, ";") {
			return "", fmt.Errorf("invalid type %v for column %s: %w", c.Value, c.Name, dataagent.ErrValidation)
		}
		defs[i] = strings.TrimSpace(c.Name + " " + typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", table, strings.Join(defs, ", ")), nil
}

// InsertRows appends rows to table in one transaction. A missing table is
// created first with column types taken from the first non-null value of
// each column.
func (s *Store) InsertRows(ctx context.Context, table string, rows []dataagent.Row) (int, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	cols := columnOrder(rows)
	for _, c := range cols {
		if err := checkIdent(c); err != nil {
			return 0, err
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	ddl, err := CreateTableDDL(table, inferColumns(cols, rows))
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			v, _ := row.Get(c)
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// TableExists reports whether table exists.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	db, err := s.open(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var n int
	err = db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Init creates the given tables. Existing tables are left untouched.
func Init(ctx context.Context, s dataagent.Store, tables []dataagent.TableDef) error {
	for _, t := range tables {
		if _, err := s.CreateTable(ctx, t.Name, t.Columns); err != nil {
			return fmt.Errorf("sqlite: init %s: %w", t.Name, err)
		}
	}
	return nil
}

// Initialized reports whether every table in tables exists.
func Initialized(ctx context.Context, s dataagent.Store, tables []dataagent.TableDef) (bool, error) {
	for _, t := range tables {
		ok, err := s.TableExists(ctx, t.Name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: %w", name, dataagent.ErrValidation)
	}
	return nil
}

func drain(rows *sql.Rows) error {
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

func scanRows(rows *sql.Rows) ([]dataagent.Row, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	// SQLite stores booleans as integers; the declared type restores them.
	boolean := make([]bool, len(cols))
	for i, ct := range types {
		boolean[i] = strings.EqualFold(ct.DatabaseTypeName(), "BOOLEAN")
	}
	out := []dataagent.Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(dataagent.Row, len(cols))
		for i, c := range cols {
			v := normalize(vals[i])
			if n, ok := v.(int64); ok && boolean[i] {
				v = n != 0
			}
			row[i] = dataagent.Field{Name: c, Value: v}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return v
	}
}

// columnOrder returns the union of column names across rows in order of
// first appearance.
func columnOrder(rows []dataagent.Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, f := range r {
			if !seen[f.Name] {
				seen[f.Name] = true
				cols = append(cols, f.Name)
			}
		}
	}
	return cols
}

func inferColumns(cols []string, rows []dataagent.Row) []dataagent.Field {
	out := make([]dataagent.Field, len(cols))
	for i, c := range cols {
		typ := "TEXT"
		for _, r := range rows {
			v, ok := r.Get(c)
			if !ok || v == nil {
				continue
			}
			typ = sqlType(v)
			break
		}
		out[i] = dataagent.Field{Name: c, Value: typ}
	}
	return out
}

func sqlType(v any) string {
	switch v.(type) {
	case bool:
		return "BOOLEAN"
	case int, int32, int64:
		return "INTEGER"
	case float32, float64:
		return "REAL"
	default:
		return "TEXT"
	}
}
