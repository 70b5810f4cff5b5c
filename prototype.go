package dataagent

// TableDef is a table name with its column definitions in declaration
// order.
type TableDef struct {
	Name    string
	Columns []Field
}

// PrototypeTables returns the tables of the prototype database: two
// staging tables and the warehouse tables they feed.
func PrototypeTables() []TableDef {
	return []TableDef{
		{Name: "stg_customers", Columns: []Field{
			{Name: "customer_id", Value: "INTEGER PRIMARY KEY"},
			{Name: "name", Value: "TEXT"},
			{Name: "email", Value: "TEXT"},
			{Name: "registration_date", Value: "TEXT"},
			{Name: "is_active", Value: "BOOLEAN"},
		}},
		{Name: "stg_sales", Columns: []Field{
			{Name: "order_id", Value: "INTEGER PRIMARY KEY"},
			{Name: "customer_id", Value: "INTEGER"},
			{Name: "product_id", Value: "TEXT"},
			{Name: "order_date", Value: "TEXT"},
			{Name: "amount", Value: "REAL"},
		}},
		{Name: "fact_sales", Columns: []Field{
			{Name: "sale_id", Value: "INTEGER PRIMARY KEY AUTOINCREMENT"},
			{Name: "order_id", Value: "INTEGER"},
			{Name: "customer_id", Value: "INTEGER"},
			{Name: "product_id", Value: "TEXT"},
			{Name: "sale_date", Value: "TEXT"},
			{Name: "amount", Value: "REAL"},
		}},
		{Name: "dim_customer", Columns: []Field{
			{Name: "customer_key", Value: "INTEGER PRIMARY KEY AUTOINCREMENT"},
			{Name: "customer_id", Value: "INTEGER"},
			{Name: "name", Value: "TEXT"},
			{Name: "email", Value: "TEXT"},
			{Name: "start_date", Value: "TEXT"},
			{Name: "end_date", Value: "TEXT"},
			{Name: "is_current", Value: "BOOLEAN"},
		}},
	}
}
