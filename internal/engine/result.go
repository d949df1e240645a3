package engine

import (
	"fmt"

	"github.com/latticedb/latticedb/internal/value"
)

// Result is the structured outcome of one statement: ok/message plus
// an optional header and row list. Values render via
// value.Value.Canonical() for display.
type Result struct {
	OK      bool
	Message string
	Header  []string
	Rows    [][]value.Value
}

func ok(message string) Result {
	return Result{OK: true, Message: message}
}

func okRows(header []string, rows [][]value.Value) Result {
	return Result{OK: true, Header: header, Rows: rows}
}

func fail(format string, args ...interface{}) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}
