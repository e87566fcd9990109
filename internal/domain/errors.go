package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from an input file's header.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("load %s: required columns missing: %s", e.Table, strings.Join(e.Missing, ", "))
}

// EncodingError reports bytes that decode under none of the attempted encodings.
type EncodingError struct {
	Table     string
	Encodings []string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("load %s: content not decodable as %s", e.Table, strings.Join(e.Encodings, " or "))
}

// ParseError reports a malformed row encountered under the abort policy.
type ParseError struct {
	Table string
	Line  int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("load %s: malformed row at line %d: %v", e.Table, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports cleaning that exhausted an entire table. Row-level
// problems are counted and tolerated; losing every row is a hard failure.
type ValidationError struct {
	Table   string
	RowsIn  int
	Dropped int
}

func (e *ValidationError) Error() string {
	if e.RowsIn == 0 {
		return fmt.Sprintf("clean %s: input table is empty", e.Table)
	}
	return fmt.Sprintf("clean %s: no rows survived cleaning (%d in, %d dropped)", e.Table, e.RowsIn, e.Dropped)
}

// AggregationError reports a join that produced zero rows, which indicates an
// upstream identifier mismatch or a window that excludes the whole dataset.
type AggregationError struct {
	Details     int
	OutOfWindow int
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate: join produced zero rows (%d detail rows, %d outside analysis window)", e.Details, e.OutOfWindow)
}
