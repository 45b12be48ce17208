package ports

import (
	"io"

	"choicelab/adapters/tabular"
)

// TableReader loads a header-named table from a file or stream
type TableReader interface {
	ReadFile(path string) (*tabular.Table, error)
	ReadCSV(src io.Reader, name string) (*tabular.Table, error)
	ReadExcel(src io.Reader, name string) (*tabular.Table, error)
}
