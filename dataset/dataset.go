// Package dataset loads evaluation cases: queries paired with a schema and
// the answer the checker is expected to produce.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rlch/relcheck/analysis"
)

// CSV column names.
const (
	ColumnStatement = "statement"
	ColumnSchema    = "schema"
	ColumnExpected  = "correct_query"
)

// Sentinel errors.
var (
	ErrMissingColumn = errors.New("dataset: missing column")
	ErrNoDatasets    = errors.New("dataset: no .csv files found")
)

// Case is one evaluation row.
type Case struct {
	// File is the dataset the case came from.
	File string
	// Line is the 1-based line of the row in File.
	Line      int
	Statement string
	Schema    *analysis.Schema
	// Expected is the corrected query, or "" when the statement is
	// expected to be rejected.
	Expected string
}

// ID returns file:line.
func (c *Case) ID() string {
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// LoadCSV reads every case in the file at path.
func LoadCSV(path string) ([]*Case, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, path)
}

// ReadCSV reads cases from r. The first record is a header naming at least
// the statement, schema and correct_query columns, in any order. name is
// recorded as each case's File.
func ReadCSV(r io.Reader, name string) ([]*Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", name, err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var cases []*Case

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		line, _ := reader.FieldPos(0)

		c, err := cols.parse(record)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}

		c.File = name
		c.Line = line
		cases = append(cases, c)
	}

	return cases, nil
}

type columns struct {
	statement, schema, expected int
}

func columnIndex(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var cols columns

	for name, dst := range map[string]*int{
		ColumnStatement: &cols.statement,
		ColumnSchema:    &cols.schema,
		ColumnExpected:  &cols.expected,
	} {
		i, ok := idx[name]
		if !ok {
			return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}

		*dst = i
	}

	return cols, nil
}

func (cols columns) parse(record []string) (*Case, error) {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}

		return ""
	}

	schema, err := analysis.ParseSchemaString(field(cols.schema))
	if err != nil {
		return nil, err
	}

	return &Case{
		Statement: field(cols.statement),
		Schema:    schema,
		Expected:  field(cols.expected),
	}, nil
}
