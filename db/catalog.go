package db

import (
	"path/filepath"

	"github.com/OneOfOne/xxhash"
	"github.com/pkg/errors"
)

// Catalog maps a table id to the schema of its tuples. It must return an
// equal descriptor for a given id for as long as pages of that table exist.
type Catalog interface {
	TupleDesc(tableID int) (*TupleDesc, error)
}

// MemCatalog is a Catalog backed by a map. It is not safe for concurrent
// registration.
type MemCatalog struct {
	tables map[int]*TupleDesc
}

func NewMemCatalog() *MemCatalog {
	return &MemCatalog{tables: map[int]*TupleDesc{}}
}

// AddTable registers desc under tableID, replacing any previous entry.
func (c *MemCatalog) AddTable(tableID int, desc *TupleDesc) {
	c.tables[tableID] = desc
}

// AddFile registers desc for the heap file at path and returns its table id.
func (c *MemCatalog) AddFile(path string, desc *TupleDesc) (int, error) {
	id, err := TableIDFor(path)
	if err != nil {
		return 0, err
	}
	c.AddTable(id, desc)
	return id, nil
}

func (c *MemCatalog) TupleDesc(tableID int) (*TupleDesc, error) {
	desc, ok := c.tables[tableID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTable, "table %d", tableID)
	}
	return desc, nil
}

// TableIDFor derives the table id of the heap file at path from its absolute
// path, so the same file always yields the same id.
func TableIDFor(path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, &IOError{Op: "resolve", Path: path, Err: err}
	}
	return int(xxhash.ChecksumString32(filepath.Clean(abs))), nil
}
