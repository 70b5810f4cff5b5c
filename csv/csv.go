// Package csv parses CSV text into typed rows.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fwojciec/dataagent"
)

// ErrEmpty indicates CSV text with no header row.
var ErrEmpty = errors.New("csv: no header row")

// Parse reads content as CSV with a header row. Cell values are inferred
// per column: integer, then float, then boolean (True/False), else text.
// Empty cells become nil. Blank lines are skipped.
func Parse(content string) ([]dataagent.Row, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(content)))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		records = append(records, rec)
	}

	kinds := make([]kind, len(header))
	for c := range header {
		kinds[c] = inferColumn(records, c)
	}

	rows := make([]dataagent.Row, 0, len(records))
	for _, rec := range records {
		row := make(dataagent.Row, len(header))
		for c, name := range header {
			row[c] = dataagent.Field{Name: name, Value: convert(rec[c], kinds[c])}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type kind int

const (
	kindInt kind = iota
	kindFloat
	kindBool
	kindText
)

// inferColumn picks the narrowest kind every non-empty cell of column c
// satisfies. A column of only empty cells is text.
func inferColumn(records [][]string, c int) kind {
	var cells []string
	for _, rec := range records {
		if v := strings.TrimSpace(rec[c]); v != "" {
			cells = append(cells, v)
		}
	}
	if len(cells) == 0 {
		return kindText
	}
	for k := kindInt; k < kindText; k++ {
		if allFit(cells, k) {
			return k
		}
	}
	return kindText
}

func allFit(cells []string, k kind) bool {
	for _, v := range cells {
		if !fits(v, k) {
			return false
		}
	}
	return true
}

func fits(v string, k kind) bool {
	switch k {
	case kindInt:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	case kindFloat:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	case kindBool:
		return v == "True" || v == "False"
	default:
		return true
	}
}

func convert(v string, k kind) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	switch k {
	case kindInt:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case kindBool:
		return v == "True"
	default:
		return v
	}
}
