package ports

import (
	"io"

	"mmmsynth/domain/mmm"
)

// TableWriter serializes the published columns of a table
type TableWriter interface {
	// Format returns the short format name, e.g. "csv"
	Format() string

	// Write encodes the table to w
	Write(w io.Writer, t *mmm.Table) error
}

// TableReader loads a previously exported table
type TableReader interface {
	Read(path string) (*mmm.Table, error)
}
