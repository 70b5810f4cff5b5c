package datatool_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/datatool"
	"github.com/fwojciec/dataagent/mock"
	"github.com/fwojciec/dataagent/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *datatool.Registry {
	t.Helper()
	store, err := sqlite.New("sqlite:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	reg, err := datatool.NewRegistry(store, datatool.Names...)
	require.NoError(t, err)
	return reg
}

func execute(t *testing.T, reg *datatool.Registry, name string, args any) *dataagent.ToolResult {
	t.Helper()
	b, err := json.Marshal(args)
	require.NoError(t, err)
	res, err := reg.Execute(context.Background(), name, b)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("keeps registration order", func(t *testing.T) {
		t.Parallel()
		reg, err := datatool.NewRegistry(&mock.Store{}, datatool.GetSchema, datatool.CreateTable, datatool.RunSQL)
		require.NoError(t, err)

		var names []string
		for _, tool := range reg.Tools() {
			names = append(names, tool.Name)
		}
		assert.Equal(t, []string{"get_schema", "create_table", "run_sql"}, names)
		assert.True(t, reg.Has(datatool.RunSQL))
		assert.False(t, reg.Has(datatool.ParseCSV))
	})

	t.Run("rejects unknown tool", func(t *testing.T) {
		t.Parallel()
		_, err := datatool.NewRegistry(&mock.Store{}, "bash")
		assert.ErrorIs(t, err, dataagent.ErrUnknownTool)
	})

	t.Run("rejects duplicate tool", func(t *testing.T) {
		t.Parallel()
		_, err := datatool.NewRegistry(&mock.Store{}, datatool.RunSQL, datatool.RunSQL)
		assert.ErrorIs(t, err, dataagent.ErrValidation)
	})

	t.Run("marks store tools", func(t *testing.T) {
		t.Parallel()
		reg, err := datatool.NewRegistry(&mock.Store{}, datatool.Names...)
		require.NoError(t, err)
		for _, tool := range reg.Tools() {
			assert.Equal(t, tool.Name != datatool.ParseCSV, tool.Store, tool.Name)
			assert.True(t, json.Valid(tool.Parameters), tool.Name)
		}
	})
}

func TestRegistry_Execute(t *testing.T) {
	t.Parallel()

	t.Run("parses CSV into typed rows", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		res := execute(t, reg, datatool.ParseCSV, map[string]any{"csv_content": "id,name\n1,Ann\n2,Bo"})
		require.False(t, res.IsError(), res.Text())
		assert.JSONEq(t, `[{"id":1,"name":"Ann"},{"id":2,"name":"Bo"}]`, res.Content)
	})

	t.Run("create table twice succeeds and leaves no rows", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		args := map[string]any{"table_name": "t1", "schema_json": `{"id":"INTEGER PRIMARY KEY","name":"TEXT"}`}

		first := execute(t, reg, datatool.CreateTable, args)
		require.False(t, first.IsError(), first.Text())
		assert.Equal(t, "Table 't1' created or already exists. DDL: CREATE TABLE IF NOT EXISTS t1 (id INTEGER PRIMARY KEY, name TEXT);", first.Content)

		second := execute(t, reg, datatool.CreateTable, args)
		require.False(t, second.IsError(), second.Text())

		rows := execute(t, reg, datatool.RunSQL, map[string]any{"query": "SELECT * FROM t1"})
		require.False(t, rows.IsError(), rows.Text())
		assert.JSONEq(t, `[]`, rows.Content)
	})

	t.Run("insert then select returns the row", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		execute(t, reg, datatool.CreateTable, map[string]any{"table_name": "t1", "schema_json": `{"id":"INTEGER PRIMARY KEY","name":"TEXT"}`})

		ins := execute(t, reg, datatool.InsertRows, map[string]any{"table_name": "t1", "data_json": `[{"id":1,"name":"Ann"}]`})
		require.False(t, ins.IsError(), ins.Text())
		assert.Equal(t, "Successfully inserted 1 rows into 't1'.", ins.Content)

		rows := execute(t, reg, datatool.RunSQL, map[string]any{"query": "SELECT * FROM t1"})
		require.False(t, rows.IsError(), rows.Text())
		assert.JSONEq(t, `[{"id":1,"name":"Ann"}]`, rows.Content)
	})

	t.Run("csv round trip through insert and select", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		csvText := "id,name,score,active\n1,Ann,1.5,True\n2,Bo,,False"

		parsed := execute(t, reg, datatool.ParseCSV, map[string]any{"csv_content": csvText})
		require.False(t, parsed.IsError(), parsed.Text())

		ins := execute(t, reg, datatool.InsertRows, map[string]any{"table_name": "people", "data_json": parsed.Content})
		require.False(t, ins.IsError(), ins.Text())

		rows := execute(t, reg, datatool.RunSQL, map[string]any{"query": "SELECT id, name, score FROM people ORDER BY id"})
		require.False(t, rows.IsError(), rows.Text())
		assert.JSONEq(t, `[{"id":1,"name":"Ann","score":1.5},{"id":2,"name":"Bo","score":null}]`, rows.Content)
	})

	t.Run("customer sample survives parse insert and select", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		sample := dataagent.DefaultConfig().Samples[dataagent.SampleCustomer]

		parsed := execute(t, reg, datatool.ParseCSV, map[string]any{"csv_content": sample})
		require.False(t, parsed.IsError(), parsed.Text())
		assert.Contains(t, parsed.Content, `"is_active":true`)

		ins := execute(t, reg, datatool.InsertRows, map[string]any{"table_name": "stg_customers", "data_json": parsed.Content})
		require.False(t, ins.IsError(), ins.Text())

		rows := execute(t, reg, datatool.RunSQL, map[string]any{"query": "SELECT * FROM stg_customers ORDER BY customer_id"})
		require.False(t, rows.IsError(), rows.Text())
		assert.JSONEq(t, parsed.Content, rows.Content)
	})

	t.Run("returning clause on its own line yields rows", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		execute(t, reg, datatool.CreateTable, map[string]any{"table_name": "c", "schema_json": `{"id":"INTEGER PRIMARY KEY","name":"TEXT"}`})

		res := execute(t, reg, datatool.RunSQL, map[string]any{"query": "INSERT INTO c (id, name) VALUES (99, 'z')\nRETURNING id"})
		require.False(t, res.IsError(), res.Text())
		assert.JSONEq(t, `[{"id":99}]`, res.Content)
	})

	t.Run("accepts data_json as an embedded array", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		res, err := reg.Execute(context.Background(), datatool.InsertRows,
			json.RawMessage(`{"table_name":"t2","data_json":[{"b":2,"a":1}]}`))
		require.NoError(t, err)
		require.False(t, res.IsError(), res.Text())

		schema := execute(t, reg, datatool.GetSchema, map[string]any{"table_name": "t2"})
		require.False(t, schema.IsError(), schema.Text())
		assert.Equal(t, `{"b":"INTEGER","a":"INTEGER"}`, schema.Content)
	})

	t.Run("statement without rows reports rows affected", func(t *testing.T) {
		t.Parallel()
		reg := newRegistry(t)
		execute(t, reg, datatool.RunSQL, map[string]any{"query": "CREATE TABLE t (a INTEGER)"})
		res := execute(t, reg, datatool.RunSQL, map[string]any{"query": "INSERT INTO t VALUES (1)"})
		require.False(t, res.IsError(), res.Text())
		assert.Equal(t, "Query executed successfully with no rows returned. Rows affected: 1", res.Content)
	})

	t.Run("unsupported tool is not dispatched", func(t *testing.T) {
		t.Parallel()
		reg, err := datatool.NewRegistry(&mock.Store{}, datatool.RunSQL)
		require.NoError(t, err)
		res, err := reg.Execute(context.Background(), datatool.ParseCSV, json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.Equal(t, dataagent.ToolErrUnsupported, res.Kind())
		assert.Contains(t, res.Text(), "not supported")
	})

	t.Run("binds database_url to the configured store", func(t *testing.T) {
		t.Parallel()
		store := &mock.Store{
			AddressValue: "sqlite:configured.db",
			QueryFn: func(context.Context, string) (dataagent.QueryResult, error) {
				return dataagent.QueryResult{ReturnsRows: true}, nil
			},
		}
		reg, err := datatool.NewRegistry(store, datatool.RunSQL)
		require.NoError(t, err)
		res, err := reg.Execute(context.Background(), datatool.RunSQL,
			json.RawMessage(`{"database_url":"postgres://elsewhere","query":"SELECT 1"}`))
		require.NoError(t, err)
		assert.Equal(t, "[]", res.Content)
	})
}

func TestRegistry_ExecuteFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tool string
		args string
		kind dataagent.ToolErrorKind
	}{
		{name: "drop missing table", tool: datatool.RunSQL, args: `{"query":"DROP TABLE nonexistent"}`, kind: dataagent.ToolErrQuery},
		{name: "malformed sql", tool: datatool.RunSQL, args: `{"query":"SELEC nope"}`, kind: dataagent.ToolErrQuery},
		{name: "bad json arguments", tool: datatool.RunSQL, args: `{"query":`, kind: dataagent.ToolErrInvalidArguments},
		{name: "missing query", tool: datatool.RunSQL, args: `{}`, kind: dataagent.ToolErrInvalidArguments},
		{name: "unknown table schema", tool: datatool.GetSchema, args: `{"table_name":"missing"}`, kind: dataagent.ToolErrQuery},
		{name: "bad schema json", tool: datatool.CreateTable, args: `{"table_name":"t","schema_json":"{not json"}`, kind: dataagent.ToolErrInvalidArguments},
		{name: "schema json not an object", tool: datatool.CreateTable, args: `{"table_name":"t","schema_json":"[1]"}`, kind: dataagent.ToolErrInvalidArguments},
		{name: "invalid table name", tool: datatool.CreateTable, args: `{"table_name":"a b","schema_json":"{\"id\":\"INTEGER\"}"}`, kind: dataagent.ToolErrInvalidArguments},
		{name: "bad data json", tool: datatool.InsertRows, args: `{"table_name":"t","data_json":"[{"}`, kind: dataagent.ToolErrInvalidArguments},
		{name: "data json not objects", tool: datatool.InsertRows, args: `{"table_name":"t","data_json":"[1,2]"}`, kind: dataagent.ToolErrInvalidArguments},
		{name: "missing csv", tool: datatool.ParseCSV, args: `{}`, kind: dataagent.ToolErrMissingInput},
		{name: "ragged csv", tool: datatool.ParseCSV, args: `{"csv_content":"a,b\n1,2,3"}`, kind: dataagent.ToolErrInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg := newRegistry(t)
			res, err := reg.Execute(context.Background(), tt.tool, json.RawMessage(tt.args))
			require.NoError(t, err)
			require.True(t, res.IsError())
			assert.Equal(t, tt.kind, res.Kind())
			assert.Contains(t, res.Text(), "Error")
		})
	}
}

func TestRegistry_StoreUnavailable(t *testing.T) {
	t.Parallel()
	store := &mock.Store{
		QueryFn: func(context.Context, string) (dataagent.QueryResult, error) {
			return dataagent.QueryResult{}, dataagent.ErrStoreUnavailable
		},
	}
	reg, err := datatool.NewRegistry(store, datatool.RunSQL)
	require.NoError(t, err)

	res, err := reg.Execute(context.Background(), datatool.RunSQL, json.RawMessage(`{"query":"SELECT 1"}`))
	require.NoError(t, err)
	assert.Equal(t, dataagent.ToolErrStore, res.Kind())
	assert.Equal(t, "Error executing SQL query: store unavailable", res.Text())
}

func TestRegistry_Conforms(t *testing.T) {
	t.Parallel()
	reg, err := datatool.NewRegistry(&mock.Store{}, datatool.Names...)
	require.NoError(t, err)

	assert.NoError(t, reg.Conforms(datatool.RunSQL, json.RawMessage(`{"query":"SELECT 1"}`)))
	assert.Error(t, reg.Conforms(datatool.RunSQL, json.RawMessage(`{"database_url":"x"}`)))
	assert.Error(t, reg.Conforms(datatool.ParseCSV, json.RawMessage(`{"csv_content":1}`)))
	assert.ErrorIs(t, reg.Conforms("bash", json.RawMessage(`{}`)), dataagent.ErrUnknownTool)
}

func TestBindAddress(t *testing.T) {
	t.Parallel()

	got := datatool.BindAddress(json.RawMessage(`{"database_url":"other","query":"SELECT 1"}`), "sqlite:x.db")
	assert.JSONEq(t, `{"database_url":"sqlite:x.db","query":"SELECT 1"}`, string(got))

	got = datatool.BindAddress(nil, "sqlite:x.db")
	assert.JSONEq(t, `{"database_url":"sqlite:x.db"}`, string(got))

	bad := json.RawMessage(`{"query":`)
	assert.Equal(t, bad, datatool.BindAddress(bad, "sqlite:x.db"))
}
