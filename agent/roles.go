package agent

import (
	"fmt"
	"slices"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/datatool"
)

// Role is the fixed configuration of one agent: its display name, the
// purpose stated in the context message and the tools offered to the model.
type Role struct {
	Key     string
	Name    string
	Purpose string
	Tools   []string

	// SubstituteCSV replaces the csv_content argument of parse_csv with
	// CSV found in the request or in the configured samples.
	SubstituteCSV bool

	// AutoInsert follows a successful parse_csv with an insert_rows into
	// the table named in the request.
	AutoInsert bool
}

// Registry names the tools a Role's executor must provide. It is Tools
// plus the tools the driver issues on its own.
func (r Role) Registry() []string {
	names := slices.Clone(r.Tools)
	if r.AutoInsert && !slices.Contains(names, datatool.InsertRows) {
		names = append(names, datatool.InsertRows)
	}
	return names
}

// Offers reports whether name is one of the tools offered to the model.
func (r Role) Offers(name string) bool {
	return slices.Contains(r.Tools, name)
}

// Pipeline loads raw CSV data into staging tables.
func Pipeline() Role {
	return Role{
		Key:           "pipeline",
		Name:          "Data Pipeline Agent",
		Purpose:       "Your goal is to ingest raw data: parse CSV content and load the rows into the staging table the user names.",
		Tools:         []string{datatool.RunSQL, datatool.ParseCSV},
		SubstituteCSV: true,
		AutoInsert:    true,
	}
}

// Warehouse designs and populates fact and dimension tables.
func Warehouse() Role {
	return Role{
		Key:     "warehouse",
		Name:    "Data Warehouse Agent",
		Purpose: "Your goal is to design and populate the data warehouse: inspect staging tables, create fact and dimension tables and transform staging data into them with SQL.",
		Tools:   []string{datatool.GetSchema, datatool.CreateTable, datatool.RunSQL},
	}
}

// Mart builds and queries reporting data marts.
func Mart() Role {
	return Role{
		Key:     "mart",
		Name:    "Data Mart Agent",
		Purpose: "Your goal is to help create and query data marts for reporting.",
		Tools:   []string{datatool.RunSQL, datatool.GetSchema},
	}
}

// Roles returns every role in display order.
func Roles() []Role {
	return []Role{Pipeline(), Warehouse(), Mart()}
}

// RoleByKey returns the role with the given key.
func RoleByKey(key string) (Role, error) {
	for _, r := range Roles() {
		if r.Key == key {
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("agent: unknown role %q: %w", key, dataagent.ErrValidation)
}
