package dataagent

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultDatabaseURL is the address of the prototype database.
const DefaultDatabaseURL = "sqlite:///data/prototype.db"

// Sample keys used by Config.Samples.
const (
	SampleCustomer = "customer"
	SampleSales    = "sales"
)

// Config is the process-wide configuration handed to every agent and
// executor. It is built once in main and not mutated afterwards.
type Config struct {
	// DatabaseURL is the single data store address. Every store tool call
	// is bound to it regardless of what the model asks for.
	DatabaseURL string

	// Model is the remote model ID. Empty selects the provider default.
	Model string

	// Samples maps a keyword to a CSV payload the pipeline agent falls back
	// to when the request carries no CSV of its own.
	Samples map[string]string
}

// DefaultConfig returns the prototype configuration.
func DefaultConfig() Config {
	return Config{
		DatabaseURL: DefaultDatabaseURL,
		Samples: map[string]string{
			SampleCustomer: sampleCustomerCSV,
			SampleSales:    sampleSalesCSV,
		},
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("database url is empty: %w", ErrValidation)
	}
	return nil
}

// Sample returns the first sample whose keyword appears in text,
// case-insensitively. Keywords are tried in sorted order.
func (c Config) Sample(text string) (keyword, csv string, ok bool) {
	lower := strings.ToLower(text)
	for _, k := range slices.Sorted(maps.Keys(c.Samples)) {
		if strings.Contains(lower, strings.ToLower(k)) {
			return k, c.Samples[k], true
		}
	}
	return "", "", false
}

const sampleCustomerCSV = `customer_id,name,email,registration_date,is_active
1,Alice Smith,alice@example.com,2023-01-15,True
2,Bob Johnson,bob@example.com,2023-02-20,False
3,Charlie Brown,charlie@example.com,2023-03-10,True
4,Diana Prince,diana@example.com,2023-04-05,True
`

const sampleSalesCSV = `order_id,customer_id,product_id,order_date,amount
101,1,P001,2024-05-01,150.00
102,3,P002,2024-05-01,200.00
103,1,P003,2024-05-02,50.00
104,2,P001,2024-05-02,100.00
105,4,P004,2024-05-03,300.00
`
